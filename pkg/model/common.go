// Package model 定义排班规划的核心数据模型
package model

import (
	"fmt"
	"time"
)

// DateLayout 日期格式 (YYYY-MM-DD)
const DateLayout = "2006-01-02"

// DateRange 排班周期（闭区间）
type DateRange struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// Validate 检查日期范围是否合法
func (dr DateRange) Validate() error {
	start, err := time.Parse(DateLayout, dr.StartDate)
	if err != nil {
		return fmt.Errorf("开始日期无效: %w", err)
	}
	end, err := time.Parse(DateLayout, dr.EndDate)
	if err != nil {
		return fmt.Errorf("结束日期无效: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("结束日期 %s 早于开始日期 %s", dr.EndDate, dr.StartDate)
	}
	return nil
}

// Dates 按顺序展开周期内的所有日期
func (dr DateRange) Dates() []time.Time {
	start, err1 := time.Parse(DateLayout, dr.StartDate)
	end, err2 := time.Parse(DateLayout, dr.EndDate)
	if err1 != nil || err2 != nil || end.Before(start) {
		return nil
	}

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Days 返回周期天数
func (dr DateRange) Days() int {
	return len(dr.Dates())
}

// Years 返回周期覆盖的所有自然年
func (dr DateRange) Years() []int {
	dates := dr.Dates()
	if len(dates) == 0 {
		return nil
	}

	first := dates[0].Year()
	last := dates[len(dates)-1].Year()
	years := make([]int, 0, last-first+1)
	for y := first; y <= last; y++ {
		years = append(years, y)
	}
	return years
}

// WeekdayName 返回日期的英文星期名（与员工可用性/偏好的键一致）
func WeekdayName(t time.Time) string {
	return t.Weekday().String()
}

// WeekdayNames 返回英文星期名，周一起始
func WeekdayNames() []string {
	return []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
}

// IsWeekdayName 检查字符串是否为合法的星期名
func IsWeekdayName(s string) bool {
	switch s {
	case "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday":
		return true
	}
	return false
}

// ISOWeekKey 返回日期所在 ISO 周的键 (年-周)
func ISOWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
