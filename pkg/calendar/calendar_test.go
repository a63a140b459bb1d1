package calendar

import (
	"testing"
	"time"

	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatalf("解析日期 %s 失败: %v", s, err)
	}
	return d
}

func TestIsWeekendOrHoliday(t *testing.T) {
	horizon := model.DateRange{StartDate: "2025-04-28", EndDate: "2025-11-02"}
	r := NewResolver(DefaultConfig(), horizon)

	cases := []struct {
		name string
		date string
		want bool
	}{
		{"普通周四", "2025-05-08", false},
		{"周六", "2025-05-03", true},
		{"周日", "2025-05-04", true},
		{"劳动节（周四）", "2025-05-01", true},
		{"基督圣体节（北威州）", "2025-06-19", true},
		{"德国统一日", "2025-10-03", true},
		{"宗教改革日不是北威州节假日", "2025-10-31", false},
		{"诸圣节（北威州）", "2025-11-01", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.IsWeekendOrHoliday(mustDate(t, tc.date)); got != tc.want {
				t.Errorf("IsWeekendOrHoliday(%s) = %v, want %v", tc.date, got, tc.want)
			}
		})
	}
}

func TestJurisdictionNormalization(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Jurisdiction = "de-nw"
	horizon := model.DateRange{StartDate: "2025-06-16", EndDate: "2025-06-22"}
	r := NewResolver(cfg, horizon)

	if !r.IsWeekendOrHoliday(mustDate(t, "2025-06-19")) {
		t.Error("小写带前缀的州代码应被归一化")
	}
}

func TestCatalogFor(t *testing.T) {
	horizon := model.DateRange{StartDate: "2025-04-28", EndDate: "2025-05-04"}
	r := NewResolver(DefaultConfig(), horizon)

	weekday := mustDate(t, "2025-04-28") // 周一
	holiday := mustDate(t, "2025-05-01") // 劳动节

	if got := r.Duration(model.ShiftEarly, weekday); got != 8 {
		t.Errorf("工作日早班时长 = %v, want 8", got)
	}
	if got := r.Start(model.ShiftEarly, weekday); got != 6.75 {
		t.Errorf("工作日早班开始 = %v, want 6.75", got)
	}

	// 节假日切换到周末目录
	if got := r.Duration(model.ShiftEarly, holiday); got != 5 {
		t.Errorf("节假日早班时长 = %v, want 5", got)
	}
	if got := r.Start(model.ShiftLate, holiday); got != 14.25 {
		t.Errorf("节假日晚班开始 = %v, want 14.25", got)
	}
}

func TestPaidHoursAndBreak(t *testing.T) {
	horizon := model.DateRange{StartDate: "2025-03-03", EndDate: "2025-03-09"}
	r := NewResolver(DefaultConfig(), horizon)

	weekday := mustDate(t, "2025-03-03")  // 8小时班，扣1小时
	saturday := mustDate(t, "2025-03-08") // 早班5小时/晚班6小时，不扣

	cases := []struct {
		name      string
		date      time.Time
		kind      model.ShiftKind
		wantPaid  float64
		wantBreak bool
	}{
		{"工作日早班扣休息", weekday, model.ShiftEarly, 7, true},
		{"工作日晚班扣休息", weekday, model.ShiftLate, 7, true},
		{"周六早班不扣", saturday, model.ShiftEarly, 5, false},
		{"周六晚班恰好6小时不扣", saturday, model.ShiftLate, 6, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.PaidHours(tc.kind, tc.date); got != tc.wantPaid {
				t.Errorf("PaidHours = %v, want %v", got, tc.wantPaid)
			}
			if got := r.BreakTaken(tc.kind, tc.date); got != tc.wantBreak {
				t.Errorf("BreakTaken = %v, want %v", got, tc.wantBreak)
			}
		})
	}
}

func TestHolidaysSorted(t *testing.T) {
	horizon := model.DateRange{StartDate: "2025-04-01", EndDate: "2025-06-30"}
	r := NewResolver(DefaultConfig(), horizon)

	holidays := r.Holidays()
	if len(holidays) == 0 {
		t.Fatal("周期内应有节假日")
	}
	for i := 1; i < len(holidays); i++ {
		if holidays[i] < holidays[i-1] {
			t.Errorf("节假日未按升序排列: %v", holidays)
		}
	}

	want := map[string]bool{
		"2025-04-18": true, // 耶稣受难日
		"2025-04-21": true, // 复活节星期一
		"2025-05-01": true, // 劳动节
		"2025-05-29": true, // 耶稣升天节
		"2025-06-09": true, // 圣灵降临节星期一
		"2025-06-19": true, // 基督圣体节
	}
	got := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		got[h] = true
	}
	for date := range want {
		if !got[date] {
			t.Errorf("缺少节假日 %s, got %v", date, holidays)
		}
	}
}
