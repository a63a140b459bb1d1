// Package solver 定义外部求解器的调用契约
// 组合搜索本身不在本系统内实现：模型被序列化后交给外部 MILP 求解器，
// 本包只负责契约类型与进程适配。
package solver

import (
	"context"

	"github.com/klewi95/FiFi-Dienstplan/pkg/lp"
)

// Status 求解状态
type Status string

const (
	StatusOptimal    Status = "Optimal"
	StatusInfeasible Status = "Infeasible"
	StatusUnbounded  Status = "Unbounded"
	StatusNotSolved  Status = "NotSolved"
)

// Solution 求解结果
// 状态为 Optimal 时 Values 为每个决策变量提供一个数值；
// 其他状态下 Values 不可用。
type Solution struct {
	Status    Status             `json:"status"`
	Objective float64            `json:"objective"`
	Values    map[string]float64 `json:"values,omitempty"`
}

// Value 按变量名取值
func (s *Solution) Value(name string) (float64, bool) {
	v, ok := s.Values[name]
	return v, ok
}

// IsOptimal 检查是否找到最优解
func (s *Solution) IsOptimal() bool {
	return s.Status == StatusOptimal
}

// Solver 求解器接口
// 对固定模型的复现性取决于底层求解器自身是否确定；
// 模型本身对相同输入是完全确定的。
type Solver interface {
	// Name 返回求解器名称
	Name() string

	// Solve 执行求解
	Solve(ctx context.Context, m *lp.Model) (*Solution, error)
}
