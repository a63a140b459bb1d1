// Package swap 提供班表生成后的换班评估与推荐
package swap

import (
	"fmt"
	"time"

	"github.com/klewi95/FiFi-Dienstplan/pkg/calendar"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
	"github.com/klewi95/FiFi-Dienstplan/pkg/planner"
	"github.com/klewi95/FiFi-Dienstplan/pkg/validator"
)

// Evaluator 换班评估器
// 在已生成的班表上模拟把一条班次转给另一名员工，并用审计器检查
// 调整后的班表是否仍满足全部规则。
type Evaluator struct {
	policy planner.Policy
	cal    *calendar.Resolver
}

// NewEvaluator 创建换班评估器
func NewEvaluator(policy planner.Policy, cal *calendar.Resolver) *Evaluator {
	return &Evaluator{policy: policy, cal: cal}
}

// Request 换班请求：把 from 员工在 date 的 kind 班次转给 to 员工
type Request struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Date string          `json:"date"`
	Kind model.ShiftKind `json:"kind"`
}

// Issue 换班中发现的问题
type Issue struct {
	Severity string `json:"severity"` // error/warning
	Message  string `json:"message"`
}

// Evaluation 换班评估结果
type Evaluation struct {
	Feasible   bool                  `json:"feasible"`
	Issues     []Issue               `json:"issues,omitempty"`
	Violations []validator.Violation `json:"violations,omitempty"` // 调整后新增的违规
}

// Evaluate 评估一次换班
// 原班表不被修改；评估在副本上进行。
func (e *Evaluator) Evaluate(schedule *model.Schedule, employees []*model.Employee, req Request) (*Evaluation, error) {
	result := &Evaluation{Feasible: true}

	entry, ok := findEntry(schedule, req.From, req.Date, req.Kind)
	if !ok {
		return nil, fmt.Errorf("员工 %s 在 %s 没有 %s 班次", req.From, req.Date, req.Kind)
	}

	target := findEmployee(employees, req.To)
	if target == nil {
		return nil, fmt.Errorf("找不到员工 %s", req.To)
	}

	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("日期 %s 无效: %w", req.Date, err)
	}

	if !target.CanWork(date, req.Kind) {
		result.Feasible = false
		result.Issues = append(result.Issues, Issue{
			Severity: "error",
			Message:  fmt.Sprintf("%s 在 %s 不能上 %s 班", req.To, req.Date, req.Kind),
		})
		return result, nil
	}

	if hasEntryOn(schedule, req.To, req.Date) {
		result.Feasible = false
		result.Issues = append(result.Issues, Issue{
			Severity: "error",
			Message:  fmt.Sprintf("%s 在 %s 已有班次", req.To, req.Date),
		})
		return result, nil
	}

	adjusted := applyTakeover(schedule, req.From, req.To, entry)
	auditor := validator.NewAuditor(e.policy, e.cal)

	before := violationSet(auditor.Audit(schedule, employees))
	after := auditor.Audit(adjusted, employees)

	for _, v := range after {
		if before[violationKey(v)] {
			continue
		}
		result.Violations = append(result.Violations, v)
	}

	if len(result.Violations) > 0 {
		result.Feasible = false
		for _, v := range result.Violations {
			result.Issues = append(result.Issues, Issue{
				Severity: "error",
				Message:  fmt.Sprintf("换班引入违规 [%s]: %s", v.Type, v.Message),
			})
		}
	}

	return result, nil
}

// applyTakeover 在班表副本上把条目从一名员工转移到另一名员工
func applyTakeover(schedule *model.Schedule, from, to string, entry model.ScheduleEntry) *model.Schedule {
	adjusted := &model.Schedule{
		RunID:     schedule.RunID,
		Horizon:   schedule.Horizon,
		CreatedAt: schedule.CreatedAt,
	}

	seenTarget := false
	for _, es := range schedule.Employees {
		copied := model.EmployeeSchedule{Employee: es.Employee}
		for _, en := range es.Entries {
			if es.Employee == from && en.Date == entry.Date && en.Kind == entry.Kind {
				continue
			}
			copied.Entries = append(copied.Entries, en)
		}
		if es.Employee == to {
			seenTarget = true
			copied.Entries = insertSorted(copied.Entries, entry)
		}
		adjusted.Employees = append(adjusted.Employees, copied)
	}

	if !seenTarget {
		adjusted.Employees = append(adjusted.Employees, model.EmployeeSchedule{
			Employee: to,
			Entries:  []model.ScheduleEntry{entry},
		})
	}

	return adjusted
}

// insertSorted 按日期升序插入条目
func insertSorted(entries []model.ScheduleEntry, entry model.ScheduleEntry) []model.ScheduleEntry {
	pos := len(entries)
	for i, en := range entries {
		if en.Date > entry.Date {
			pos = i
			break
		}
	}
	entries = append(entries, model.ScheduleEntry{})
	copy(entries[pos+1:], entries[pos:])
	entries[pos] = entry
	return entries
}

func findEntry(schedule *model.Schedule, employee, date string, kind model.ShiftKind) (model.ScheduleEntry, bool) {
	for _, en := range schedule.ForEmployee(employee) {
		if en.Date == date && en.Kind == kind {
			return en, true
		}
	}
	return model.ScheduleEntry{}, false
}

func hasEntryOn(schedule *model.Schedule, employee, date string) bool {
	for _, en := range schedule.ForEmployee(employee) {
		if en.Date == date {
			return true
		}
	}
	return false
}

func findEmployee(employees []*model.Employee, name string) *model.Employee {
	for _, e := range employees {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func violationSet(violations []validator.Violation) map[string]bool {
	set := make(map[string]bool, len(violations))
	for _, v := range violations {
		set[violationKey(v)] = true
	}
	return set
}

func violationKey(v validator.Violation) string {
	return fmt.Sprintf("%s|%s|%s", v.Type, v.Employee, v.Date)
}
