package solver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klewi95/FiFi-Dienstplan/pkg/logger"
	"github.com/klewi95/FiFi-Dienstplan/pkg/lp"
)

// CBCSolver 通过子进程调用 COIN-OR CBC 求解器
// 模型以 CPLEX LP 文本格式写入临时文件，解从 CBC 的 solution 文件读回。
type CBCSolver struct {
	binary    string
	workDir   string // 为空时使用系统临时目录
	keepFiles bool
}

// NewCBCSolver 创建 CBC 求解器适配
func NewCBCSolver(binary string) *CBCSolver {
	if binary == "" {
		binary = "cbc"
	}
	return &CBCSolver{binary: binary}
}

// SetWorkDir 设置工作目录
func (s *CBCSolver) SetWorkDir(dir string) {
	s.workDir = dir
}

// SetKeepFiles 设置是否保留模型与解文件（排查问题用）
func (s *CBCSolver) SetKeepFiles(keep bool) {
	s.keepFiles = keep
}

// Name 返回求解器名称
func (s *CBCSolver) Name() string {
	return "cbc"
}

// Solve 执行求解
func (s *CBCSolver) Solve(ctx context.Context, m *lp.Model) (*Solution, error) {
	dir, err := os.MkdirTemp(s.workDir, "fifi-lp-")
	if err != nil {
		return nil, fmt.Errorf("创建求解工作目录失败: %w", err)
	}
	if !s.keepFiles {
		defer os.RemoveAll(dir)
	}

	lpPath := filepath.Join(dir, "model.lp")
	solPath := filepath.Join(dir, "model.sol")

	f, err := os.Create(lpPath)
	if err != nil {
		return nil, fmt.Errorf("创建模型文件失败: %w", err)
	}
	if err := WriteLP(f, m); err != nil {
		f.Close()
		return nil, fmt.Errorf("写入模型失败: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("关闭模型文件失败: %w", err)
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, s.binary, lpPath, "solve", "solution", solPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("执行 %s 失败: %w (输出: %s)", s.binary, err, truncateOutput(output))
	}

	logger.Debug().
		Str("solver", s.binary).
		Dur("duration", time.Since(start)).
		Int("variables", m.NumVars()).
		Int("constraints", m.NumConstraints()).
		Msg("外部求解完成")

	sf, err := os.Open(solPath)
	if err != nil {
		return nil, fmt.Errorf("打开解文件失败: %w", err)
	}
	defer sf.Close()

	return ParseSolution(sf, m)
}

// WriteLP 将模型序列化为 CPLEX LP 文本格式
func WriteLP(w io.Writer, m *lp.Model) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\\ %s\n", m.Name)
	if m.Maximize {
		fmt.Fprintln(bw, "Maximize")
	} else {
		fmt.Fprintln(bw, "Minimize")
	}

	obj := m.Objective()
	if obj.Empty() && m.NumVars() > 0 {
		// 目标为空时写一个零系数项，保持文件格式合法
		obj.Add(0, m.Vars()[0])
	}
	fmt.Fprint(bw, " obj:")
	writeExpr(bw, obj)
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Subject To")
	for _, c := range m.Constraints() {
		fmt.Fprintf(bw, " %s:", c.Name)
		writeExpr(bw, c.Expr)
		fmt.Fprintf(bw, " %s %s\n", c.Sense, formatNum(c.RHS))
	}

	var binaries, generals []*lp.Var
	for _, v := range m.Vars() {
		if v.Kind == lp.Binary {
			binaries = append(binaries, v)
		} else {
			generals = append(generals, v)
		}
	}

	if len(generals) > 0 {
		fmt.Fprintln(bw, "Generals")
		for _, v := range generals {
			fmt.Fprintf(bw, " %s\n", v.Name)
		}
	}
	if len(binaries) > 0 {
		fmt.Fprintln(bw, "Binaries")
		for _, v := range binaries {
			fmt.Fprintf(bw, " %s\n", v.Name)
		}
	}

	fmt.Fprintln(bw, "End")
	return bw.Flush()
}

// writeExpr 输出线性表达式，控制单行长度避免超过 LP 格式限制
func writeExpr(w *bufio.Writer, e lp.Expr) {
	lineLen := 0
	for i, t := range e.Terms {
		var piece string
		if t.Coef < 0 {
			piece = fmt.Sprintf(" - %s %s", formatNum(-t.Coef), t.Var.Name)
		} else if i == 0 {
			piece = fmt.Sprintf(" %s %s", formatNum(t.Coef), t.Var.Name)
		} else {
			piece = fmt.Sprintf(" + %s %s", formatNum(t.Coef), t.Var.Name)
		}

		if lineLen+len(piece) > 200 {
			fmt.Fprint(w, "\n ")
			lineLen = 1
		}
		fmt.Fprint(w, piece)
		lineLen += len(piece)
	}
}

// formatNum 输出无多余尾零的数值
func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseSolution 解析 CBC 的 solution 文件
// 首行形如 "Optimal - objective value 123.45"，其后每行为
// "索引 变量名 取值 检验数"。文件可能省略取值为零的变量，
// 因此先用模型变量集合补零，保证最优解对每个变量都有值。
func ParseSolution(r io.Reader, m *lp.Model) (*Solution, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return nil, fmt.Errorf("解文件为空")
	}

	header := strings.TrimSpace(scanner.Text())
	sol := &Solution{Status: parseStatus(header)}

	if idx := strings.Index(header, "objective value"); idx >= 0 {
		fields := strings.Fields(header[idx:])
		if len(fields) >= 3 {
			if obj, err := strconv.ParseFloat(fields[2], 64); err == nil {
				sol.Objective = obj
			}
		}
	}

	if sol.Status != StatusOptimal {
		return sol, nil
	}

	sol.Values = make(map[string]float64, m.NumVars())
	for _, v := range m.Vars() {
		sol.Values[v.Name] = 0
	}

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		name := fields[1]
		if _, ok := m.Var(name); !ok {
			continue
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("解析变量 '%s' 的取值失败: %w", name, err)
		}
		sol.Values[name] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取解文件失败: %w", err)
	}

	return sol, nil
}

// parseStatus 将 CBC 状态行映射为统一状态
func parseStatus(header string) Status {
	lower := strings.ToLower(header)
	switch {
	case strings.HasPrefix(lower, "optimal"):
		return StatusOptimal
	case strings.Contains(lower, "infeasible"):
		return StatusInfeasible
	case strings.Contains(lower, "unbounded"):
		return StatusUnbounded
	default:
		return StatusNotSolved
	}
}

// truncateOutput 截断求解器输出用于错误信息
func truncateOutput(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > 400 {
		return s[:400] + "..."
	}
	return s
}
