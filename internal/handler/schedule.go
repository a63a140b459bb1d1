// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/klewi95/FiFi-Dienstplan/internal/config"
	"github.com/klewi95/FiFi-Dienstplan/internal/constraints"
	"github.com/klewi95/FiFi-Dienstplan/internal/repository"
	"github.com/klewi95/FiFi-Dienstplan/pkg/calendar"
	"github.com/klewi95/FiFi-Dienstplan/pkg/errors"
	"github.com/klewi95/FiFi-Dienstplan/pkg/export"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
	"github.com/klewi95/FiFi-Dienstplan/pkg/planner"
	"github.com/klewi95/FiFi-Dienstplan/pkg/solver"
	"github.com/klewi95/FiFi-Dienstplan/pkg/stats"
	"github.com/klewi95/FiFi-Dienstplan/pkg/swap"
	"github.com/klewi95/FiFi-Dienstplan/pkg/validator"
)

// RunRecorder 排班生成指标记录器
type RunRecorder interface {
	RecordRun(status, solverName string, duration time.Duration)
}

// ScheduleHandler 排班处理器
type ScheduleHandler struct {
	cfg       *config.Config
	solver    solver.Solver
	employees *repository.EmployeeRepository
	schedules *repository.ScheduleRepository
	recorder  RunRecorder
}

// NewScheduleHandler 创建排班处理器
func NewScheduleHandler(cfg *config.Config, s solver.Solver, employees *repository.EmployeeRepository, schedules *repository.ScheduleRepository) *ScheduleHandler {
	return &ScheduleHandler{cfg: cfg, solver: s, employees: employees, schedules: schedules}
}

// WithRecorder 设置排班生成指标记录器
func (h *ScheduleHandler) WithRecorder(rec RunRecorder) *ScheduleHandler {
	h.recorder = rec
	return h
}

// recordRun 上报一次排班生成结果
func (h *ScheduleHandler) recordRun(status string, start time.Time) {
	if h.recorder != nil {
		h.recorder.RecordRun(status, h.solver.Name(), time.Since(start))
	}
}

// GenerateRequest 排班生成请求
type GenerateRequest struct {
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Employees []*model.Employee `json:"employees,omitempty"` // 缺省从仓储读取
	Policy    *planner.Policy   `json:"policy,omitempty"`    // 缺省用服务配置
}

// GenerateResponse 排班生成响应
type GenerateResponse struct {
	RunID    string          `json:"run_id"`
	Schedule *model.Schedule `json:"schedule"`
	Duration string          `json:"duration"`
}

// Generate 生成排班
// 员工集从仓储读取；求解超时由服务配置控制。
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	horizon, appErr := h.resolveHorizon(req.StartDate, req.EndDate)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	employees := req.Employees
	if len(employees) == 0 {
		stored, err := h.employees.List(r.Context(), repository.DefaultListFilter().WithLimit(1000))
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "读取员工失败"))
			return
		}
		employees = stored
	}

	policy := h.cfg.Policy
	if req.Policy != nil {
		policy = *req.Policy
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Solver.Timeout)
	defer cancel()

	start := time.Now()
	p := planner.New(h.solver, policy, h.calendarConfig())
	if rec, ok := h.recorder.(planner.ModelSizeRecorder); ok {
		p = p.WithRecorder(rec)
	}
	schedule, err := p.Generate(ctx, employees, horizon)
	if err != nil {
		if errors.Is(err, errors.CodeInfeasibleModel) {
			h.recordRun("infeasible", start)
		} else {
			h.recordRun("failure", start)
		}
		respondError(w, toAppError(err))
		return
	}
	h.recordRun("success", start)

	if err := h.schedules.Save(r.Context(), schedule); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存排班失败"))
		return
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		RunID:    schedule.RunID.String(),
		Schedule: schedule,
		Duration: time.Since(start).String(),
	})
}

// ValidateResponse 审计响应
type ValidateResponse struct {
	RunID      string                `json:"run_id"`
	Valid      bool                  `json:"valid"`
	Violations []validator.Violation `json:"violations,omitempty"`
}

// Validate 审计一次已保存的排班
func (h *ScheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	schedule, appErr := h.loadRun(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	employees, err := h.employees.List(r.Context(), repository.DefaultListFilter().WithLimit(1000))
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "读取员工失败"))
		return
	}

	cal := calendar.NewResolver(h.calendarConfig(), schedule.Horizon)
	violations := validator.NewAuditor(h.cfg.Policy, cal).Audit(schedule, employees)

	respondJSON(w, http.StatusOK, ValidateResponse{
		RunID:      schedule.RunID.String(),
		Valid:      len(violations) == 0,
		Violations: violations,
	})
}

// Export 以CSV导出一次排班
func (h *ScheduleHandler) Export(w http.ResponseWriter, r *http.Request) {
	schedule, appErr := h.loadRun(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="dienstplan-%s.csv"`, schedule.Horizon.StartDate))
	if err := export.WriteCSV(w, schedule); err != nil {
		// 表头可能已经写出，此时只能记录
		respondError(w, errors.Wrap(err, errors.CodeInternal, "导出失败"))
	}
}

// ReportResponse 统计报告响应
type ReportResponse struct {
	RunID    string                 `json:"run_id"`
	Coverage *stats.CoverageMetrics `json:"coverage"`
	Fairness *stats.FairnessMetrics `json:"fairness"`
}

// Report 返回一次排班的覆盖与公平性报告
func (h *ScheduleHandler) Report(w http.ResponseWriter, r *http.Request) {
	schedule, appErr := h.loadRun(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	cal := calendar.NewResolver(h.calendarConfig(), schedule.Horizon)
	respondJSON(w, http.StatusOK, ReportResponse{
		RunID:    schedule.RunID.String(),
		Coverage: stats.NewCoverageAnalyzer(h.cfg.Policy, cal).Analyze(schedule),
		Fairness: stats.NewFairnessAnalyzer(cal).Analyze(schedule),
	})
}

// SwapRequest 换班评估请求
type SwapRequest struct {
	RunID string          `json:"run_id"`
	From  string          `json:"from"`
	To    string          `json:"to,omitempty"` // 为空时返回推荐
	Date  string          `json:"date"`
	Kind  model.ShiftKind `json:"kind"`
}

// Swap 评估一次换班，或在未指定接班人时推荐候选人
func (h *ScheduleHandler) Swap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	runID, err := uuid.Parse(req.RunID)
	if err != nil {
		respondError(w, errors.InvalidInput("run_id", "必须是合法的UUID"))
		return
	}
	schedule, err := h.schedules.GetByRunID(r.Context(), runID)
	if err != nil {
		respondError(w, toAppError(err))
		return
	}

	employees, err := h.employees.List(r.Context(), repository.DefaultListFilter().WithLimit(1000))
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "读取员工失败"))
		return
	}

	cal := calendar.NewResolver(h.calendarConfig(), schedule.Horizon)

	if req.To == "" {
		recs, err := swap.NewRecommender(h.cfg.Policy, cal).
			Recommend(schedule, employees, req.From, req.Date, req.Kind, swap.DefaultOptions())
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "换班推荐失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recs})
		return
	}

	eval, err := swap.NewEvaluator(h.cfg.Policy, cal).Evaluate(schedule, employees, swap.Request{
		From: req.From, To: req.To, Date: req.Date, Kind: req.Kind,
	})
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "换班评估失败"))
		return
	}
	respondJSON(w, http.StatusOK, eval)
}

// Rules 返回模型内置规则族及当前策略下的参数默认值
func (h *ScheduleHandler) Rules(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rules": constraints.Library(h.cfg.Policy),
	})
}

// ListRuns 列出最近的排班批次
func (h *ScheduleHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.schedules.ListRuns(r.Context(), 20)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询排班批次失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// loadRun 按 run_id 查询参数读取一次排班
func (h *ScheduleHandler) loadRun(r *http.Request) (*model.Schedule, *errors.AppError) {
	runID, err := uuid.Parse(r.URL.Query().Get("run_id"))
	if err != nil {
		return nil, errors.InvalidInput("run_id", "必须是合法的UUID")
	}

	schedule, err := h.schedules.GetByRunID(r.Context(), runID)
	if err != nil {
		return nil, toAppError(err)
	}
	return schedule, nil
}

// resolveHorizon 解析排班周期，缺省回落到服务配置
func (h *ScheduleHandler) resolveHorizon(start, end string) (model.DateRange, *errors.AppError) {
	if start == "" {
		start = h.cfg.Calendar.DefaultHorizonStart
	}
	if end == "" {
		end = h.cfg.Calendar.DefaultHorizonEnd
	}

	horizon := model.DateRange{StartDate: start, EndDate: end}
	if err := horizon.Validate(); err != nil {
		return model.DateRange{}, errors.Wrap(err, errors.CodeInvalidInput, "排班周期无效")
	}
	return horizon, nil
}

// calendarConfig 把服务配置转为日历配置
func (h *ScheduleHandler) calendarConfig() calendar.Config {
	return calendar.Config{
		Jurisdiction:        h.cfg.Calendar.Jurisdiction,
		BreakThresholdHours: h.cfg.Calendar.BreakThresholdHours,
		BreakDeductionHours: h.cfg.Calendar.BreakDeductionHours,
	}
}

// toAppError 统一错误转换
func toAppError(err error) *errors.AppError {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr
	}
	return errors.Wrap(err, errors.CodeInternal, "内部错误")
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}
