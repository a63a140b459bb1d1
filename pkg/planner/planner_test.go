package planner

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/klewi95/FiFi-Dienstplan/pkg/calendar"
	"github.com/klewi95/FiFi-Dienstplan/pkg/errors"
	"github.com/klewi95/FiFi-Dienstplan/pkg/lp"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
	"github.com/klewi95/FiFi-Dienstplan/pkg/solver"
)

// stubSolver 返回预设解的求解器替身
// 最优解会用模型变量集补零，与真实求解器的契约保持一致。
type stubSolver struct {
	calls    int
	status   solver.Status
	assigned map[string]float64
	err      error
}

func (s *stubSolver) Name() string { return "stub" }

func (s *stubSolver) Solve(_ context.Context, m *lp.Model) (*solver.Solution, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	sol := &solver.Solution{Status: s.status}
	if s.status == solver.StatusOptimal {
		sol.Values = make(map[string]float64, m.NumVars())
		for _, v := range m.Vars() {
			sol.Values[v.Name] = 0
		}
		for name, value := range s.assigned {
			sol.Values[name] = value
		}
	}
	return sol, nil
}

// 全员全天可用的员工，便于测试聚焦在单个约束上
func openEmployee(name string, maxHours float64) *model.Employee {
	availability := make(map[string][]model.ShiftKind)
	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"} {
		availability[day] = []model.ShiftKind{model.ShiftEarly, model.ShiftLate}
	}
	return &model.Employee{
		Name:           name,
		MaxWeeklyHours: maxHours,
		Availability:   availability,
	}
}

// 2025-03-03 是周一；3 月上旬德国无法定节假日
func testHorizon(t *testing.T, start, end string) model.DateRange {
	t.Helper()
	return model.DateRange{StartDate: start, EndDate: end}
}

func TestGenerateNoEmployees(t *testing.T) {
	stub := &stubSolver{status: solver.StatusOptimal}
	p := New(stub, DefaultPolicy(), calendar.DefaultConfig())

	_, err := p.Generate(context.Background(), nil, testHorizon(t, "2025-03-03", "2025-03-05"))
	if !errors.Is(err, errors.CodeNoEmployeeData) {
		t.Fatalf("错误 = %v, 期望 NO_EMPLOYEE_DATA", err)
	}
	if stub.calls != 0 {
		t.Errorf("空员工集不应触达求解器，实际调用 %d 次", stub.calls)
	}
}

func TestGenerateInvalidEmployee(t *testing.T) {
	tests := []struct {
		name      string
		employees []*model.Employee
	}{
		{
			"最小周工时大于最大周工时",
			[]*model.Employee{{Name: "Anna", MinWeeklyHours: 30, MaxWeeklyHours: 20}},
		},
		{
			"全员最大周工时之和为零",
			[]*model.Employee{
				{Name: "Anna", MaxWeeklyHours: 0},
				{Name: "Ben", MaxWeeklyHours: 0},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubSolver{status: solver.StatusOptimal}
			p := New(stub, DefaultPolicy(), calendar.DefaultConfig())

			_, err := p.Generate(context.Background(), tt.employees, testHorizon(t, "2025-03-03", "2025-03-05"))
			if !errors.Is(err, errors.CodeInvalidEmployee) {
				t.Fatalf("错误 = %v, 期望 INVALID_EMPLOYEE_CONFIGURATION", err)
			}
			if stub.calls != 0 {
				t.Errorf("校验错误应在求解前报出，实际调用求解器 %d 次", stub.calls)
			}
		})
	}
}

func TestGenerateInfeasible(t *testing.T) {
	stub := &stubSolver{status: solver.StatusInfeasible}
	p := New(stub, DefaultPolicy(), calendar.DefaultConfig())

	employees := []*model.Employee{openEmployee("Anna", 40), openEmployee("Ben", 40)}
	schedule, err := p.Generate(context.Background(), employees, testHorizon(t, "2025-03-03", "2025-03-05"))
	if schedule != nil {
		t.Error("非最优状态不应返回部分排班")
	}
	if !errors.Is(err, errors.CodeInfeasibleModel) {
		t.Fatalf("错误 = %v, 期望 INFEASIBLE_MODEL", err)
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatal("错误应为 AppError")
	}
	if appErr.Fields["solver_status"] != "Infeasible" {
		t.Errorf("solver_status = %v, 期望 Infeasible", appErr.Fields["solver_status"])
	}
}

func TestGenerateSchedule(t *testing.T) {
	// 两名员工，一天两班各一人次会违反 min_staff；这里通过替身解
	// 直接指定变量取值，验证的是还原逻辑而非求解本身。
	assigned := map[string]float64{
		"x_Anna_2025_03_03_Early": 1,
		"x_Anna_2025_03_04_Late":  0.999999, // 松弛残差应按 1 处理
		"x_Ben_2025_03_03_Late":   1,
		"x_Ben_2025_03_04_Early":  0.4, // 低于阈值应按 0 处理
	}
	stub := &stubSolver{status: solver.StatusOptimal, assigned: assigned}
	p := New(stub, DefaultPolicy(), calendar.DefaultConfig())

	// 传入顺序故意乱序，输出必须按员工名升序
	employees := []*model.Employee{openEmployee("Ben", 40), openEmployee("Anna", 40)}
	schedule, err := p.Generate(context.Background(), employees, testHorizon(t, "2025-03-03", "2025-03-04"))
	if err != nil {
		t.Fatalf("Generate 失败: %v", err)
	}

	if len(schedule.Employees) != 2 {
		t.Fatalf("员工数 = %d, 期望 2", len(schedule.Employees))
	}
	if schedule.Employees[0].Employee != "Anna" || schedule.Employees[1].Employee != "Ben" {
		t.Errorf("员工顺序 = [%s, %s], 期望按名升序", schedule.Employees[0].Employee, schedule.Employees[1].Employee)
	}

	anna := schedule.ForEmployee("Anna")
	if len(anna) != 2 {
		t.Fatalf("Anna 条目数 = %d, 期望 2", len(anna))
	}
	if anna[0].Date != "2025-03-03" || anna[0].Kind != model.ShiftEarly {
		t.Errorf("Anna 首条 = %s/%s, 期望 2025-03-03/Early", anna[0].Date, anna[0].Kind)
	}
	if anna[1].Date != "2025-03-04" || anna[1].Kind != model.ShiftLate {
		t.Errorf("Anna 次条 = %s/%s, 期望 2025-03-04/Late", anna[1].Date, anna[1].Kind)
	}

	ben := schedule.ForEmployee("Ben")
	if len(ben) != 1 {
		t.Fatalf("Ben 条目数 = %d, 期望 1（0.4 不应判为选中）", len(ben))
	}

	// 工作日 Late：14.75 起 8 小时，扣 1 小时休息
	late := anna[1]
	if late.StartClock != "14:45" || late.EndClock != "22:45" {
		t.Errorf("Late 钟点 = %s-%s, 期望 14:45-22:45", late.StartClock, late.EndClock)
	}
	if late.PaidHours != 7 || !late.BreakTaken {
		t.Errorf("Late 工时 = %v (break=%v), 期望 7 (break=true)", late.PaidHours, late.BreakTaken)
	}

	if schedule.RunID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("RunID 不应为零值")
	}
}

func TestGenerateInvalidHorizon(t *testing.T) {
	stub := &stubSolver{status: solver.StatusOptimal}
	p := New(stub, DefaultPolicy(), calendar.DefaultConfig())

	employees := []*model.Employee{openEmployee("Anna", 40)}
	if _, err := p.Generate(context.Background(), employees, testHorizon(t, "2025-03-05", "2025-03-03")); err == nil {
		t.Error("结束早于开始的周期应报错")
	}
}
