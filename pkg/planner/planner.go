// Package planner 实现排班核心：约束模型构建与解的还原
// 构建阶段把人员、日历与政策常量翻译为混合整数线性模型，
// 求解交给外部求解器，之后把 0/1 变量取值译回带钟点时间的排班表。
package planner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/klewi95/FiFi-Dienstplan/pkg/calendar"
	"github.com/klewi95/FiFi-Dienstplan/pkg/errors"
	"github.com/klewi95/FiFi-Dienstplan/pkg/logger"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
	"github.com/klewi95/FiFi-Dienstplan/pkg/solver"
)

// Policy 排班政策常量
// 全部可外部覆盖，用于适配不同的劳动法规
type Policy struct {
	MaxConsecutiveDays    int     `json:"max_consecutive_days"`
	MaxDailyHours         float64 `json:"max_daily_hours"`
	MinRestHours          float64 `json:"min_rest_hours"`
	MinStaffPerShift      int     `json:"min_staff_per_shift"`
	MaxStaffPerShift      int     `json:"max_staff_per_shift"`
	AllowedShiftDeviation float64 `json:"allowed_shift_deviation"`
	PenaltyPerExcessDay   float64 `json:"penalty_per_excess_day"`
	PreferenceWeight      float64 `json:"preference_weight"`
	PenaltyWeight         float64 `json:"penalty_weight"`
	RollingWindowDays     int     `json:"rolling_window_days"`
	RollingMaxHours       float64 `json:"rolling_max_hours"`
}

// DefaultPolicy 返回默认政策常量
func DefaultPolicy() Policy {
	return Policy{
		MaxConsecutiveDays:    6,
		MaxDailyHours:         8,
		MinRestHours:          11,
		MinStaffPerShift:      2,
		MaxStaffPerShift:      3,
		AllowedShiftDeviation: 2,
		PenaltyPerExcessDay:   100,
		PreferenceWeight:      10,
		PenaltyWeight:         1,
		RollingWindowDays:     28,
		RollingMaxHours:       192, // 48 小时/周 × 4 周
	}
}

// ModelSizeRecorder 模型规模的指标记录器
type ModelSizeRecorder interface {
	RecordModelSize(variables, constraints int)
}

// Planner 排班器
// 每次 Generate 调用独立持有自己的变量集与模型实例，
// 不同排班周期之间不共享任何可变状态。
type Planner struct {
	solver   solver.Solver
	policy   Policy
	calCfg   calendar.Config
	log      *logger.PlannerLogger
	recorder ModelSizeRecorder
}

// New 创建排班器
func New(s solver.Solver, policy Policy, calCfg calendar.Config) *Planner {
	return &Planner{
		solver: s,
		policy: policy,
		calCfg: calCfg,
		log:    logger.NewPlannerLogger(),
	}
}

// WithRecorder 设置模型规模指标记录器
func (p *Planner) WithRecorder(rec ModelSizeRecorder) *Planner {
	p.recorder = rec
	return p
}

// Generate 执行一次完整排班
// 流程：校验 → 构建模型 → 外部求解 → 还原排班表。
// 求解状态非最优时整次排班失败，绝不返回部分排班。
func (p *Planner) Generate(ctx context.Context, employees []*model.Employee, horizon model.DateRange) (*model.Schedule, error) {
	if err := horizon.Validate(); err != nil {
		return nil, err
	}
	if err := validateEmployees(employees); err != nil {
		return nil, err
	}

	// 稳定的员工顺序决定模型与输出的确定性
	sorted := make([]*model.Employee, len(employees))
	copy(sorted, employees)
	model.SortEmployees(sorted)

	runID := uuid.New()
	dates := horizon.Dates()
	start := time.Now()
	p.log.StartRun(runID.String(), len(sorted), len(dates))

	cal := calendar.NewResolver(p.calCfg, horizon)

	m, vars, err := buildModel(sorted, dates, cal, p.policy)
	if err != nil {
		return nil, err
	}
	p.log.ModelBuilt(runID.String(), m.NumVars(), m.NumConstraints())
	if p.recorder != nil {
		p.recorder.RecordModelSize(m.NumVars(), m.NumConstraints())
	}

	sol, err := p.solver.Solve(ctx, m)
	if err != nil {
		return nil, errors.SolverFailure(err)
	}
	if !sol.IsOptimal() {
		p.log.Infeasible(runID.String(), string(sol.Status))
		return nil, errors.InfeasibleModel(string(sol.Status))
	}

	perEmployee, err := extractSchedule(sorted, dates, cal, vars, sol)
	if err != nil {
		return nil, err
	}

	schedule := &model.Schedule{
		RunID:     runID,
		Horizon:   horizon,
		CreatedAt: time.Now().UTC(),
		Employees: perEmployee,
	}
	p.log.RunComplete(runID.String(), time.Since(start), schedule.TotalEntries())
	return schedule, nil
}

// validateEmployees 在构建模型之前完成全部员工校验
// 公平份额目标依赖最大周工时之和作分母，总和为零属于配置错误而非求解不可行。
func validateEmployees(employees []*model.Employee) error {
	if len(employees) == 0 {
		return errors.ErrNoEmployeeData
	}

	totalMax := 0.0
	for _, e := range employees {
		if err := e.Validate(); err != nil {
			return err
		}
		totalMax += e.MaxWeeklyHours
	}
	if totalMax == 0 {
		return errors.New(errors.CodeInvalidEmployee, "所有员工的最大周工时之和为零，公平份额无法计算")
	}
	return nil
}
