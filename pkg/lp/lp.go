// Package lp 提供混合整数线性模型的内存表示
// 模型由约束构建器产出，交给外部求解器执行搜索；本包不做任何求解。
package lp

import (
	"fmt"
	"strings"
)

// VarKind 决策变量类型
type VarKind int

const (
	Binary  VarKind = iota // 0/1 变量
	Integer                // 非负整数变量
)

// Var 决策变量
type Var struct {
	Name string
	Kind VarKind
}

// Term 线性项：系数 × 变量
type Term struct {
	Coef float64
	Var  *Var
}

// Expr 线性表达式
type Expr struct {
	Terms []Term
}

// Add 追加一个线性项
func (e *Expr) Add(coef float64, v *Var) {
	e.Terms = append(e.Terms, Term{Coef: coef, Var: v})
}

// AddExpr 以给定系数合并另一个表达式
func (e *Expr) AddExpr(coef float64, other Expr) {
	for _, t := range other.Terms {
		e.Terms = append(e.Terms, Term{Coef: coef * t.Coef, Var: t.Var})
	}
}

// Empty 检查表达式是否没有任何项
func (e Expr) Empty() bool {
	return len(e.Terms) == 0
}

// Sense 约束关系
type Sense int

const (
	LessEq    Sense = iota // <=
	GreaterEq              // >=
	Equal                  // =
)

// String 返回关系符号
func (s Sense) String() string {
	switch s {
	case GreaterEq:
		return ">="
	case Equal:
		return "="
	default:
		return "<="
	}
}

// Constraint 线性约束：Expr Sense RHS
type Constraint struct {
	Name  string
	Expr  Expr
	Sense Sense
	RHS   float64
}

// Model 优化模型
// 变量按名字索引；缺失的键通过显式存在性检查暴露，绝不默认为零。
type Model struct {
	Name     string
	Maximize bool

	objective   Expr
	vars        []*Var
	varIndex    map[string]*Var
	constraints []Constraint
	conNames    map[string]bool
}

// NewModel 创建空模型
func NewModel(name string, maximize bool) *Model {
	return &Model{
		Name:     name,
		Maximize: maximize,
		varIndex: make(map[string]*Var),
		conNames: make(map[string]bool),
	}
}

// AddBinary 添加0/1变量
func (m *Model) AddBinary(name string) (*Var, error) {
	return m.addVar(name, Binary)
}

// AddInteger 添加非负整数变量
func (m *Model) AddInteger(name string) (*Var, error) {
	return m.addVar(name, Integer)
}

func (m *Model) addVar(name string, kind VarKind) (*Var, error) {
	if _, exists := m.varIndex[name]; exists {
		return nil, fmt.Errorf("变量 '%s' 已存在", name)
	}
	v := &Var{Name: name, Kind: kind}
	m.vars = append(m.vars, v)
	m.varIndex[name] = v
	return v, nil
}

// Var 按名字查找变量
func (m *Model) Var(name string) (*Var, bool) {
	v, ok := m.varIndex[name]
	return v, ok
}

// HasVar 检查变量是否存在
func (m *Model) HasVar(name string) bool {
	_, ok := m.varIndex[name]
	return ok
}

// Vars 按插入顺序返回所有变量
func (m *Model) Vars() []*Var {
	return m.vars
}

// SetObjective 设置目标函数
func (m *Model) SetObjective(e Expr) {
	m.objective = e
}

// Objective 返回目标函数
func (m *Model) Objective() Expr {
	return m.objective
}

// AddConstraint 添加约束
func (m *Model) AddConstraint(name string, e Expr, sense Sense, rhs float64) error {
	if m.conNames[name] {
		return fmt.Errorf("约束 '%s' 已存在", name)
	}
	if e.Empty() {
		return fmt.Errorf("约束 '%s' 没有任何线性项", name)
	}
	m.conNames[name] = true
	m.constraints = append(m.constraints, Constraint{Name: name, Expr: e, Sense: sense, RHS: rhs})
	return nil
}

// Constraints 按插入顺序返回所有约束
func (m *Model) Constraints() []Constraint {
	return m.constraints
}

// NumVars 返回变量数量
func (m *Model) NumVars() int {
	return len(m.vars)
}

// NumConstraints 返回约束数量
func (m *Model) NumConstraints() int {
	return len(m.constraints)
}

// SanitizeName 将任意字符串转换为模型命名安全的形式
// LP 文本格式只允许字母数字和少量符号，其余字符替换为下划线。
func SanitizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
