package planner

import (
	"context"
	"testing"
	"time"

	"github.com/klewi95/FiFi-Dienstplan/pkg/calendar"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
	"github.com/klewi95/FiFi-Dienstplan/pkg/solver"
)

func TestClockString(t *testing.T) {
	tests := []struct {
		name  string
		hours float64
		want  string
	}{
		{"整点", 6, "06:00"},
		{"三刻", 14.75, "14:45"},
		{"一刻", 9.25, "09:15"},
		{"零点", 0, "00:00"},
		{"截断而非四舍五入", 10.99, "10:59"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clockString(tt.hours); got != tt.want {
				t.Errorf("clockString(%v) = %s, 期望 %s", tt.hours, got, tt.want)
			}
		})
	}
}

func TestBuildEntryWeekdayLate(t *testing.T) {
	horizon := model.DateRange{StartDate: "2025-03-03", EndDate: "2025-03-03"}
	cal := calendar.NewResolver(calendar.DefaultConfig(), horizon)
	d, _ := time.Parse(model.DateLayout, "2025-03-03")

	// 工作日 Late：14.75 起 8 小时 → 14:45–22:45，扣 1 小时休息
	entry := buildEntry(cal, d, model.ShiftLate)
	if entry.StartClock != "14:45" || entry.EndClock != "22:45" {
		t.Errorf("钟点 = %s-%s, 期望 14:45-22:45", entry.StartClock, entry.EndClock)
	}
	if entry.PaidHours != 7 {
		t.Errorf("实际工时 = %v, 期望 7", entry.PaidHours)
	}
	if !entry.BreakTaken {
		t.Error("8 小时班次应标记休息扣除")
	}
	if entry.Weekday != "Monday" {
		t.Errorf("星期名 = %s, 期望 Monday", entry.Weekday)
	}
}

func TestBuildEntryNoBreak(t *testing.T) {
	// 周末 Late：14.25 起 6 小时 → 14:15–20:15，不扣休息
	horizon := model.DateRange{StartDate: "2025-03-08", EndDate: "2025-03-08"}
	cal := calendar.NewResolver(calendar.DefaultConfig(), horizon)
	d, _ := time.Parse(model.DateLayout, "2025-03-08")

	entry := buildEntry(cal, d, model.ShiftLate)
	if entry.StartClock != "14:15" || entry.EndClock != "20:15" {
		t.Errorf("钟点 = %s-%s, 期望 14:15-20:15", entry.StartClock, entry.EndClock)
	}
	if entry.PaidHours != 6 || entry.BreakTaken {
		t.Errorf("6 小时班次不应扣休息: paid=%v break=%v", entry.PaidHours, entry.BreakTaken)
	}
}

func TestBuildEntryMidnightWrap(t *testing.T) {
	// 22:00 起 8 小时 → 原始结束 30.0，须回绕为 06:00；日期保持开始日
	cfg := calendar.DefaultConfig()
	cfg.WeekdayCatalog = model.Catalog{
		model.ShiftLate: {DurationHours: 8, StartHour: 22},
	}
	horizon := model.DateRange{StartDate: "2025-03-03", EndDate: "2025-03-03"}
	cal := calendar.NewResolver(cfg, horizon)
	d, _ := time.Parse(model.DateLayout, "2025-03-03")

	entry := buildEntry(cal, d, model.ShiftLate)
	if entry.StartClock != "22:00" {
		t.Errorf("开始 = %s, 期望 22:00", entry.StartClock)
	}
	if entry.EndClock != "06:00" {
		t.Errorf("结束 = %s, 期望回绕后的 06:00", entry.EndClock)
	}
	if entry.Date != "2025-03-03" {
		t.Errorf("日期 = %s, 跨午夜班次应保持开始日", entry.Date)
	}
}

func TestExtractMissingValue(t *testing.T) {
	employees := []*model.Employee{openEmployee("Anna", 40)}
	horizon := model.DateRange{StartDate: "2025-03-03", EndDate: "2025-03-03"}
	cal := calendar.NewResolver(calendar.DefaultConfig(), horizon)
	dates := horizon.Dates()

	m, vars, err := buildModel(employees, dates, cal, DefaultPolicy())
	if err != nil {
		t.Fatalf("构建模型失败: %v", err)
	}

	// 解缺少某个变量的取值属于求解器违约，必须显式报错
	stub := &stubSolver{status: solver.StatusOptimal}
	sol, _ := stub.Solve(context.Background(), m)
	delete(sol.Values, "x_Anna_2025_03_03_Early")

	if _, err := extractSchedule(employees, dates, cal, vars, sol); err == nil {
		t.Error("缺少变量取值时应报错而不是按零处理")
	}
}
