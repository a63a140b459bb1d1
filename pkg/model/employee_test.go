package model

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		t.Fatalf("解析日期 %s 失败: %v", s, err)
	}
	return d
}

func TestEmployeeValidate(t *testing.T) {
	cases := []struct {
		name    string
		emp     Employee
		wantErr bool
	}{
		{
			name: "合法员工",
			emp: Employee{
				Name:           "Anna",
				MaxWeeklyHours: 40,
				MinWeeklyHours: 20,
				Availability:   map[string][]ShiftKind{"Monday": {ShiftEarly}},
			},
		},
		{
			name:    "缺少姓名",
			emp:     Employee{MaxWeeklyHours: 40},
			wantErr: true,
		},
		{
			name: "最小工时大于最大工时",
			emp: Employee{
				Name:           "Ben",
				MaxWeeklyHours: 20,
				MinWeeklyHours: 30,
			},
			wantErr: true,
		},
		{
			name: "可用性键不是星期名",
			emp: Employee{
				Name:           "Clara",
				MaxWeeklyHours: 40,
				Availability:   map[string][]ShiftKind{"Funday": {ShiftEarly}},
			},
			wantErr: true,
		},
		{
			name: "限制键不是日期",
			emp: Employee{
				Name:           "David",
				MaxWeeklyHours: 40,
				Restrictions:   map[string][]ShiftKind{"Monday": {ShiftEarly}},
			},
			wantErr: true,
		},
		{
			name: "偏好键可以是日期或星期名",
			emp: Employee{
				Name:           "Eva",
				MaxWeeklyHours: 40,
				Preferences: map[string]map[ShiftKind]int{
					"Monday":     {ShiftEarly: 50},
					"2025-03-10": {ShiftLate: -30},
				},
			},
		},
		{
			name: "偏好键非法",
			emp: Employee{
				Name:           "Frank",
				MaxWeeklyHours: 40,
				Preferences:    map[string]map[ShiftKind]int{"sometime": {ShiftEarly: 1}},
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.emp.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestCanWork(t *testing.T) {
	emp := &Employee{
		Name:           "Anna",
		MaxWeeklyHours: 40,
		Availability: map[string][]ShiftKind{
			"Monday":  {ShiftEarly, ShiftLate},
			"Tuesday": {ShiftEarly},
		},
		Restrictions: map[string][]ShiftKind{
			"2025-03-03": {ShiftLate}, // 周一
		},
	}

	monday := mustDate(t, "2025-03-03")
	tuesday := mustDate(t, "2025-03-04")
	wednesday := mustDate(t, "2025-03-05")

	cases := []struct {
		name string
		date time.Time
		kind ShiftKind
		want bool
	}{
		{"可用且无限制", monday, ShiftEarly, true},
		{"可用但当日被限制", monday, ShiftLate, false},
		{"星期可用性只含早班", tuesday, ShiftLate, false},
		{"星期不在可用性中", wednesday, ShiftEarly, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := emp.CanWork(tc.date, tc.kind); got != tc.want {
				t.Errorf("CanWork(%s, %s) = %v, want %v", tc.date.Format(DateLayout), tc.kind, got, tc.want)
			}
		})
	}
}

func TestPreferenceScorePrecedence(t *testing.T) {
	emp := &Employee{
		Name:           "Anna",
		MaxWeeklyHours: 40,
		Preferences: map[string]map[ShiftKind]int{
			"Monday":     {ShiftEarly: 50, ShiftLate: -20},
			"2025-03-03": {ShiftLate: 80},
		},
	}

	monday := mustDate(t, "2025-03-03")      // 有具体日期条目
	nextMonday := mustDate(t, "2025-03-10")  // 只有星期名条目
	wednesday := mustDate(t, "2025-03-05")   // 两者都没有

	cases := []struct {
		name string
		date time.Time
		kind ShiftKind
		want int
	}{
		{"具体日期条目优先", monday, ShiftLate, 80},
		{"日期条目存在但无该班次时短路为0", monday, ShiftEarly, 0},
		{"回退到星期名条目", nextMonday, ShiftEarly, 50},
		{"星期名条目的负分", nextMonday, ShiftLate, -20},
		{"无任何条目为0", wednesday, ShiftEarly, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := emp.PreferenceScore(tc.date, tc.kind); got != tc.want {
				t.Errorf("PreferenceScore(%s, %s) = %d, want %d", tc.date.Format(DateLayout), tc.kind, got, tc.want)
			}
		})
	}
}

func TestSortEmployees(t *testing.T) {
	employees := []*Employee{
		{Name: "Clara"},
		{Name: "Anna"},
		{Name: "Ben"},
	}
	SortEmployees(employees)

	want := []string{"Anna", "Ben", "Clara"}
	for i, name := range want {
		if employees[i].Name != name {
			t.Errorf("位置 %d: got %s, want %s", i, employees[i].Name, name)
		}
	}
}
