package model

import (
	"testing"
	"time"
)

func TestDateRangeValidate(t *testing.T) {
	cases := []struct {
		name    string
		dr      DateRange
		wantErr bool
	}{
		{"合法区间", DateRange{StartDate: "2025-03-03", EndDate: "2025-03-09"}, false},
		{"单日区间", DateRange{StartDate: "2025-03-03", EndDate: "2025-03-03"}, false},
		{"结束早于开始", DateRange{StartDate: "2025-03-09", EndDate: "2025-03-03"}, true},
		{"开始日期格式错误", DateRange{StartDate: "03.03.2025", EndDate: "2025-03-09"}, true},
		{"结束日期为空", DateRange{StartDate: "2025-03-03"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.dr.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestDateRangeDates(t *testing.T) {
	dr := DateRange{StartDate: "2025-02-27", EndDate: "2025-03-02"}
	dates := dr.Dates()

	want := []string{"2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02"}
	if len(dates) != len(want) {
		t.Fatalf("Dates() 返回 %d 个日期, want %d", len(dates), len(want))
	}
	for i, w := range want {
		if got := dates[i].Format(DateLayout); got != w {
			t.Errorf("位置 %d: got %s, want %s", i, got, w)
		}
	}

	if dr.Days() != 4 {
		t.Errorf("Days() = %d, want 4", dr.Days())
	}
}

func TestDateRangeYears(t *testing.T) {
	dr := DateRange{StartDate: "2024-12-29", EndDate: "2025-01-03"}
	years := dr.Years()
	if len(years) != 2 || years[0] != 2024 || years[1] != 2025 {
		t.Errorf("Years() = %v, want [2024 2025]", years)
	}
}

func TestISOWeekKey(t *testing.T) {
	cases := []struct {
		name string
		date string
		want string
	}{
		{"三月普通周", "2025-03-03", "2025-W10"},
		{"周日属同一ISO周", "2025-03-09", "2025-W10"},
		{"跨年日期归属前一年的周", "2025-12-29", "2026-W01"},
		{"一月日期可能属前一年", "2027-01-01", "2026-W53"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := time.Parse(DateLayout, tc.date)
			if err != nil {
				t.Fatalf("解析日期失败: %v", err)
			}
			if got := ISOWeekKey(d); got != tc.want {
				t.Errorf("ISOWeekKey(%s) = %s, want %s", tc.date, got, tc.want)
			}
		})
	}
}

func TestCatalogKindsSorted(t *testing.T) {
	c := Catalog{
		ShiftLate:  {DurationHours: 8, StartHour: 14.75},
		ShiftEarly: {DurationHours: 8, StartHour: 6.75},
	}
	kinds := c.Kinds()
	if len(kinds) != 2 || kinds[0] != ShiftEarly || kinds[1] != ShiftLate {
		t.Errorf("Kinds() = %v, want [Early Late]", kinds)
	}
}
