// Package model 定义排班规划的核心数据模型
package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/klewi95/FiFi-Dienstplan/pkg/errors"
)

// validate 结构校验器（无状态，可并发复用）
var validate = validator.New()

// Employee 员工记录
// 键空间约定：Availability 以英文星期名为键；Restrictions 以具体日期
// (YYYY-MM-DD) 为键，对该日期覆盖可用性；Preferences 以具体日期或星期名
// 为键，具体日期优先。
type Employee struct {
	Name           string                        `json:"name" validate:"required"`
	MaxWeeklyHours float64                       `json:"max_weekly_hours" validate:"gte=0"`
	MinWeeklyHours float64                       `json:"min_weekly_hours" validate:"gte=0"`
	Availability   map[string][]ShiftKind        `json:"availability"`
	Restrictions   map[string][]ShiftKind        `json:"restrictions,omitempty"`
	Preferences    map[string]map[ShiftKind]int  `json:"preferences,omitempty"`
}

// Validate 校验员工记录
// 结构校验（validator 标签）之外补充语义规则：周工时上下界关系、
// 键空间合法性。矛盾的记录在模型构建前报错，而不是等求解器报不可行。
func (e *Employee) Validate() error {
	if err := validate.Struct(e); err != nil {
		return errors.InvalidEmployee(e.Name, err.Error())
	}

	if e.MinWeeklyHours > e.MaxWeeklyHours {
		return errors.InvalidEmployee(e.Name, fmt.Sprintf(
			"最小周工时 %.1f 大于最大周工时 %.1f", e.MinWeeklyHours, e.MaxWeeklyHours))
	}

	for day := range e.Availability {
		if !IsWeekdayName(day) {
			return errors.InvalidEmployee(e.Name, fmt.Sprintf("可用性的键 '%s' 不是合法星期名", day))
		}
	}

	for date := range e.Restrictions {
		if _, err := time.Parse(DateLayout, date); err != nil {
			return errors.InvalidEmployee(e.Name, fmt.Sprintf("限制的键 '%s' 不是合法日期", date))
		}
	}

	for key := range e.Preferences {
		if IsWeekdayName(key) {
			continue
		}
		if _, err := time.Parse(DateLayout, key); err != nil {
			return errors.InvalidEmployee(e.Name, fmt.Sprintf("偏好的键 '%s' 既不是日期也不是星期名", key))
		}
	}

	return nil
}

// IsAvailable 检查员工在某星期的可用性是否包含某班次
func (e *Employee) IsAvailable(weekday string, kind ShiftKind) bool {
	for _, k := range e.Availability[weekday] {
		if k == kind {
			return true
		}
	}
	return false
}

// IsRestricted 检查员工在某具体日期是否被禁止上某班次
func (e *Employee) IsRestricted(date string, kind ShiftKind) bool {
	for _, k := range e.Restrictions[date] {
		if k == kind {
			return true
		}
	}
	return false
}

// CanWork 检查员工在某日期能否上某班次
// 星期可用性排除或日期限制命中任意一条即不可排。
func (e *Employee) CanWork(date time.Time, kind ShiftKind) bool {
	if !e.IsAvailable(WeekdayName(date), kind) {
		return false
	}
	return !e.IsRestricted(date.Format(DateLayout), kind)
}

// PreferenceScore 返回员工对 (日期, 班次) 的期望分值
// 解析顺序：具体日期条目优先且短路（即使其中没有该班次也返回 0，
// 不再回退到星期名条目）；否则取星期名条目；都没有则为 0。
func (e *Employee) PreferenceScore(date time.Time, kind ShiftKind) int {
	if e.Preferences == nil {
		return 0
	}

	if datePref, ok := e.Preferences[date.Format(DateLayout)]; ok {
		return datePref[kind]
	}

	if dayPref, ok := e.Preferences[WeekdayName(date)]; ok {
		return dayPref[kind]
	}

	return 0
}

// SortEmployees 按员工名升序排序（保证模型与输出的确定性）
func SortEmployees(employees []*Employee) {
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].Name < employees[j].Name
	})
}
