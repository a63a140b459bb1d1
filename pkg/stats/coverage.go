// Package stats 提供排班表的统计分析功能
package stats

import (
	"time"

	"github.com/klewi95/FiFi-Dienstplan/pkg/calendar"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
	"github.com/klewi95/FiFi-Dienstplan/pkg/planner"
)

// CoverageMetrics 覆盖指标
type CoverageMetrics struct {
	TotalSlots     int     `json:"total_slots"`     // 周期内提供的班次槽位总数（按人数上界）
	AssignedShifts int     `json:"assigned_shifts"` // 实际排入的班次数
	TotalPaidHours float64 `json:"total_paid_hours"`

	DailyCoverage map[string]DayCoverage `json:"daily_coverage"`

	// 问题识别
	Understaffed []StaffingGap `json:"understaffed,omitempty"`
	Overstaffed  []StaffingGap `json:"overstaffed,omitempty"`
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Date             string                  `json:"date"`
	WeekendOrHoliday bool                    `json:"weekend_or_holiday"`
	Headcount        map[model.ShiftKind]int `json:"headcount"`
	PaidHours        float64                 `json:"paid_hours"`
}

// StaffingGap 人数越界的槽位
type StaffingGap struct {
	Date     string          `json:"date"`
	Kind     model.ShiftKind `json:"shift_kind"`
	Assigned int             `json:"assigned"`
	Bound    int             `json:"bound"` // 被突破的上界或下界
}

// CoverageAnalyzer 覆盖分析器
type CoverageAnalyzer struct {
	policy planner.Policy
	cal    *calendar.Resolver
}

// NewCoverageAnalyzer 创建覆盖分析器
func NewCoverageAnalyzer(policy planner.Policy, cal *calendar.Resolver) *CoverageAnalyzer {
	return &CoverageAnalyzer{policy: policy, cal: cal}
}

// Analyze 统计排班表的覆盖情况
// 每个 (日期, 班次) 槽位的人数与政策上下界比对，越界槽位单独列出。
func (c *CoverageAnalyzer) Analyze(schedule *model.Schedule) *CoverageMetrics {
	metrics := &CoverageMetrics{
		DailyCoverage: make(map[string]DayCoverage),
	}

	type slot struct {
		date string
		kind model.ShiftKind
	}
	headcount := make(map[slot]int)
	paidByDate := make(map[string]float64)

	for _, es := range schedule.Employees {
		for _, entry := range es.Entries {
			headcount[slot{entry.Date, entry.Kind}]++
			paidByDate[entry.Date] += entry.PaidHours
			metrics.AssignedShifts++
			metrics.TotalPaidHours += entry.PaidHours
		}
	}

	for _, d := range schedule.Horizon.Dates() {
		date := d.Format(model.DateLayout)
		day := DayCoverage{
			Date:             date,
			WeekendOrHoliday: c.cal.IsWeekendOrHoliday(d),
			Headcount:        make(map[model.ShiftKind]int),
			PaidHours:        paidByDate[date],
		}
		for _, kind := range c.cal.CatalogFor(d).Kinds() {
			n := headcount[slot{date, kind}]
			day.Headcount[kind] = n
			metrics.TotalSlots += c.policy.MaxStaffPerShift

			if n < c.policy.MinStaffPerShift {
				metrics.Understaffed = append(metrics.Understaffed, StaffingGap{
					Date: date, Kind: kind, Assigned: n, Bound: c.policy.MinStaffPerShift,
				})
			} else if n > c.policy.MaxStaffPerShift {
				metrics.Overstaffed = append(metrics.Overstaffed, StaffingGap{
					Date: date, Kind: kind, Assigned: n, Bound: c.policy.MaxStaffPerShift,
				})
			}
		}
		metrics.DailyCoverage[date] = day
	}

	return metrics
}

// AnalyzeRange 只统计指定日期范围内的覆盖情况
func (c *CoverageAnalyzer) AnalyzeRange(schedule *model.Schedule, start, end time.Time) *CoverageMetrics {
	filtered := &model.Schedule{
		RunID: schedule.RunID,
		Horizon: model.DateRange{
			StartDate: start.Format(model.DateLayout),
			EndDate:   end.Format(model.DateLayout),
		},
		CreatedAt: schedule.CreatedAt,
	}

	for _, es := range schedule.Employees {
		out := model.EmployeeSchedule{Employee: es.Employee}
		for _, entry := range es.Entries {
			d, err := time.Parse(model.DateLayout, entry.Date)
			if err != nil {
				continue
			}
			if d.Before(start) || d.After(end) {
				continue
			}
			out.Entries = append(out.Entries, entry)
		}
		filtered.Employees = append(filtered.Employees, out)
	}

	return c.Analyze(filtered)
}
