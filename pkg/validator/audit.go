// Package validator 提供排班表的劳动规则审计
// 审计独立于模型构建：对任何来源的排班表（求解产出、人工调整后）
// 按同一套政策常量复查，违规以结构化清单返回。
package validator

import (
	"fmt"
	"sort"
	"time"

	"github.com/klewi95/FiFi-Dienstplan/pkg/calendar"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
	"github.com/klewi95/FiFi-Dienstplan/pkg/planner"
)

// ViolationType 违规类型
type ViolationType string

const (
	ViolationMultipleShifts ViolationType = "multiple_shifts"  // 一日多班
	ViolationStaffing       ViolationType = "staffing"         // 人数越界
	ViolationRestTime       ViolationType = "rest_time"        // 休息时间不足
	ViolationDailyHours     ViolationType = "daily_hours"      // 单日工时超限
	ViolationWeeklyHours    ViolationType = "weekly_hours"     // 周工时越界
	ViolationConsecutive    ViolationType = "consecutive"      // 连续工作日过多
	ViolationRollingHours   ViolationType = "rolling_hours"    // 滚动窗口工时超限
)

// Violation 一条违规记录
type Violation struct {
	Type     ViolationType `json:"type"`
	Employee string        `json:"employee,omitempty"`
	Date     string        `json:"date"`
	Message  string        `json:"message"`
}

// Auditor 排班审计器
type Auditor struct {
	policy planner.Policy
	cal    *calendar.Resolver
}

// NewAuditor 创建审计器
// 日历解析器须与排班时使用的周期一致，否则周末/节假日判定会漂移。
func NewAuditor(policy planner.Policy, cal *calendar.Resolver) *Auditor {
	return &Auditor{policy: policy, cal: cal}
}

// Audit 审计整张排班表
// 返回的清单按发现顺序排列；清单为空表示全部规则通过。
func (a *Auditor) Audit(schedule *model.Schedule, employees []*model.Employee) []Violation {
	var violations []Violation

	byName := make(map[string]*model.Employee, len(employees))
	for _, e := range employees {
		byName[e.Name] = e
	}

	violations = append(violations, a.checkStaffing(schedule)...)
	for _, es := range schedule.Employees {
		violations = append(violations, a.checkOneShiftPerDay(es)...)
		violations = append(violations, a.checkRest(es)...)
		violations = append(violations, a.checkDailyHours(es)...)
		if e := byName[es.Employee]; e != nil {
			violations = append(violations, a.checkWeeklyHours(es, e)...)
		}
		violations = append(violations, a.checkConsecutive(es)...)
		violations = append(violations, a.checkRollingHours(es)...)
	}
	return violations
}

// checkStaffing 每 (日期, 班次) 的实际人数须落在上下界内
func (a *Auditor) checkStaffing(schedule *model.Schedule) []Violation {
	var violations []Violation

	type slot struct {
		date string
		kind model.ShiftKind
	}
	headcount := make(map[slot]int)
	for _, es := range schedule.Employees {
		for _, entry := range es.Entries {
			headcount[slot{entry.Date, entry.Kind}]++
		}
	}

	for _, d := range schedule.Horizon.Dates() {
		date := d.Format(model.DateLayout)
		for _, kind := range a.cal.CatalogFor(d).Kinds() {
			n := headcount[slot{date, kind}]
			if n < a.policy.MinStaffPerShift || n > a.policy.MaxStaffPerShift {
				violations = append(violations, Violation{
					Type: ViolationStaffing,
					Date: date,
					Message: fmt.Sprintf("%s %s 班实际 %d 人，要求 %d 到 %d 人",
						date, kind, n, a.policy.MinStaffPerShift, a.policy.MaxStaffPerShift),
				})
			}
		}
	}
	return violations
}

// checkOneShiftPerDay 每员工每日至多一班
func (a *Auditor) checkOneShiftPerDay(es model.EmployeeSchedule) []Violation {
	var violations []Violation
	perDay := make(map[string]int)
	for _, entry := range es.Entries {
		perDay[entry.Date]++
	}

	dates := make([]string, 0, len(perDay))
	for date := range perDay {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		if perDay[date] > 1 {
			violations = append(violations, Violation{
				Type:     ViolationMultipleShifts,
				Employee: es.Employee,
				Date:     date,
				Message:  fmt.Sprintf("员工 %s 在 %s 被排了 %d 个班次", es.Employee, date, perDay[date]),
			})
		}
	}
	return violations
}

// checkRest 相邻两天班次之间的休息须达到下限
// 间隔按模型同一口径计算：前一班结束时刻可越过午夜，
// 次日开始时刻不大于它时先加 24 小时。
func (a *Auditor) checkRest(es model.EmployeeSchedule) []Violation {
	var violations []Violation

	for i := 0; i < len(es.Entries)-1; i++ {
		current, next := es.Entries[i], es.Entries[i+1]
		d1, err1 := time.Parse(model.DateLayout, current.Date)
		d2, err2 := time.Parse(model.DateLayout, next.Date)
		if err1 != nil || err2 != nil || !d2.Equal(d1.AddDate(0, 0, 1)) {
			continue
		}

		end := a.cal.Start(current.Kind, d1) + a.cal.Duration(current.Kind, d1)
		start := a.cal.Start(next.Kind, d2)
		if start <= end {
			start += 24
		}
		if rest := start - end; rest < a.policy.MinRestHours {
			violations = append(violations, Violation{
				Type:     ViolationRestTime,
				Employee: es.Employee,
				Date:     next.Date,
				Message: fmt.Sprintf("员工 %s 在 %s 前仅休息 %.1f 小时，要求 %.0f 小时",
					es.Employee, next.Date, rest, a.policy.MinRestHours),
			})
		}
	}
	return violations
}

// checkDailyHours 单日实际工时上限
func (a *Auditor) checkDailyHours(es model.EmployeeSchedule) []Violation {
	var violations []Violation
	perDay := make(map[string]float64)
	var order []string
	for _, entry := range es.Entries {
		if _, ok := perDay[entry.Date]; !ok {
			order = append(order, entry.Date)
		}
		perDay[entry.Date] += entry.PaidHours
	}

	for _, date := range order {
		if perDay[date] > a.policy.MaxDailyHours {
			violations = append(violations, Violation{
				Type:     ViolationDailyHours,
				Employee: es.Employee,
				Date:     date,
				Message: fmt.Sprintf("员工 %s 在 %s 工作 %.1f 小时，上限 %.0f 小时",
					es.Employee, date, perDay[date], a.policy.MaxDailyHours),
			})
		}
	}
	return violations
}

// checkWeeklyHours 按 ISO 周核对合同工时上下界
func (a *Auditor) checkWeeklyHours(es model.EmployeeSchedule, e *model.Employee) []Violation {
	var violations []Violation
	perWeek := make(map[string]float64)
	var order []string

	for _, entry := range es.Entries {
		d, err := time.Parse(model.DateLayout, entry.Date)
		if err != nil {
			continue
		}
		week := model.ISOWeekKey(d)
		if _, ok := perWeek[week]; !ok {
			order = append(order, week)
		}
		perWeek[week] += entry.PaidHours
	}

	for _, week := range order {
		hours := perWeek[week]
		if hours < e.MinWeeklyHours || hours > e.MaxWeeklyHours {
			violations = append(violations, Violation{
				Type:     ViolationWeeklyHours,
				Employee: es.Employee,
				Date:     week,
				Message: fmt.Sprintf("员工 %s 第 %s 周工作 %.1f 小时，合同区间 %.1f 到 %.1f",
					es.Employee, week, hours, e.MinWeeklyHours, e.MaxWeeklyHours),
			})
		}
	}
	return violations
}

// checkConsecutive 每个 7 天滑动窗口内的工作日数上限
func (a *Auditor) checkConsecutive(es model.EmployeeSchedule) []Violation {
	var violations []Violation
	windowSize := a.policy.MaxConsecutiveDays + 1

	worked := make(map[string]bool)
	for _, entry := range es.Entries {
		worked[entry.Date] = true
	}
	if len(worked) <= a.policy.MaxConsecutiveDays {
		return violations
	}

	dates := make([]time.Time, 0, len(worked))
	for date := range worked {
		if d, err := time.Parse(model.DateLayout, date); err == nil {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	for _, start := range dates {
		count := 0
		for _, d := range dates {
			offset := int(d.Sub(start).Hours() / 24)
			if offset >= 0 && offset < windowSize {
				count++
			}
		}
		if count > a.policy.MaxConsecutiveDays {
			violations = append(violations, Violation{
				Type:     ViolationConsecutive,
				Employee: es.Employee,
				Date:     start.Format(model.DateLayout),
				Message: fmt.Sprintf("员工 %s 自 %s 起的 %d 天内工作 %d 天，上限 %d 天",
					es.Employee, start.Format(model.DateLayout), windowSize, count, a.policy.MaxConsecutiveDays),
			})
		}
	}
	return violations
}

// checkRollingHours 滚动窗口实际工时上限
func (a *Auditor) checkRollingHours(es model.EmployeeSchedule) []Violation {
	var violations []Violation
	if len(es.Entries) == 0 {
		return violations
	}

	hoursByDate := make(map[string]float64)
	for _, entry := range es.Entries {
		hoursByDate[entry.Date] += entry.PaidHours
	}

	first, err := time.Parse(model.DateLayout, es.Entries[0].Date)
	if err != nil {
		return violations
	}
	last, err := time.Parse(model.DateLayout, es.Entries[len(es.Entries)-1].Date)
	if err != nil {
		return violations
	}

	for start := first; !start.After(last); start = start.AddDate(0, 0, 1) {
		total := 0.0
		for offset := 0; offset < a.policy.RollingWindowDays; offset++ {
			total += hoursByDate[start.AddDate(0, 0, offset).Format(model.DateLayout)]
		}
		if total > a.policy.RollingMaxHours {
			violations = append(violations, Violation{
				Type:     ViolationRollingHours,
				Employee: es.Employee,
				Date:     start.Format(model.DateLayout),
				Message: fmt.Sprintf("员工 %s 自 %s 起 %d 天内工作 %.1f 小时，上限 %.0f 小时",
					es.Employee, start.Format(model.DateLayout), a.policy.RollingWindowDays, total, a.policy.RollingMaxHours),
			})
		}
	}
	return violations
}
