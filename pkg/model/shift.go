// Package model 定义排班规划的核心数据模型
package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ShiftKind 班次类型
type ShiftKind string

const (
	ShiftEarly ShiftKind = "Early" // 早班
	ShiftLate  ShiftKind = "Late"  // 晚班
)

// ShiftSpec 班次参数：时长与开始时刻（自午夜起的小时数，可为小数）
type ShiftSpec struct {
	DurationHours float64 `json:"duration"`
	StartHour     float64 `json:"start"`
}

// Catalog 班次目录（某类日期下提供的全部班次）
type Catalog map[ShiftKind]ShiftSpec

// Kinds 按稳定顺序返回目录中的班次类型
func (c Catalog) Kinds() []ShiftKind {
	kinds := make([]ShiftKind, 0, len(c))
	for k := range c {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Has 检查目录是否提供某班次
func (c Catalog) Has(kind ShiftKind) bool {
	_, ok := c[kind]
	return ok
}

// DefaultWeekdayCatalog 返回工作日默认班次目录
func DefaultWeekdayCatalog() Catalog {
	return Catalog{
		ShiftEarly: {DurationHours: 8, StartHour: 6.75},  // 6:45
		ShiftLate:  {DurationHours: 8, StartHour: 14.75}, // 14:45
	}
}

// DefaultWeekendCatalog 返回周末/节假日默认班次目录
func DefaultWeekendCatalog() Catalog {
	return Catalog{
		ShiftEarly: {DurationHours: 5, StartHour: 9.25},  // 9:15
		ShiftLate:  {DurationHours: 6, StartHour: 14.25}, // 14:15
	}
}

// ScheduleEntry 排班表中的一条班次记录
type ScheduleEntry struct {
	Date       string    `json:"date"`         // YYYY-MM-DD（班次开始日）
	Weekday    string    `json:"weekday"`      // 英文星期名
	Kind       ShiftKind `json:"shift_kind"`   //
	StartClock string    `json:"start_time"`   // HH:MM
	EndClock   string    `json:"end_time"`     // HH:MM（跨午夜时已回绕）
	PaidHours  float64   `json:"paid_hours"`   // 扣除休息后的实际工时
	BreakTaken bool      `json:"break_taken"`  // 是否扣除了无薪休息
}

// EmployeeSchedule 单个员工的排班（按日期升序）
type EmployeeSchedule struct {
	Employee string          `json:"employee"`
	Entries  []ScheduleEntry `json:"entries"`
}

// Schedule 一次求解产出的完整排班表
type Schedule struct {
	RunID     uuid.UUID          `json:"run_id"`
	Horizon   DateRange          `json:"horizon"`
	CreatedAt time.Time          `json:"created_at"`
	Employees []EmployeeSchedule `json:"employees"` // 按员工名升序
}

// TotalEntries 返回排班条目总数
func (s *Schedule) TotalEntries() int {
	total := 0
	for _, es := range s.Employees {
		total += len(es.Entries)
	}
	return total
}

// ForEmployee 返回指定员工的排班条目
func (s *Schedule) ForEmployee(name string) []ScheduleEntry {
	for _, es := range s.Employees {
		if es.Employee == name {
			return es.Entries
		}
	}
	return nil
}
