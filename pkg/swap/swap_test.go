package swap

import (
	"testing"

	"github.com/klewi95/FiFi-Dienstplan/pkg/calendar"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
	"github.com/klewi95/FiFi-Dienstplan/pkg/planner"
)

func openEmployee(name string) *model.Employee {
	availability := make(map[string][]model.ShiftKind)
	for _, day := range model.WeekdayNames() {
		availability[day] = []model.ShiftKind{model.ShiftEarly, model.ShiftLate}
	}
	return &model.Employee{
		Name:           name,
		MaxWeeklyHours: 40,
		Availability:   availability,
	}
}

func weekdayEntry(date, weekday string, kind model.ShiftKind) model.ScheduleEntry {
	e := model.ScheduleEntry{Date: date, Weekday: weekday, Kind: kind, PaidHours: 7, BreakTaken: true}
	if kind == model.ShiftEarly {
		e.StartClock, e.EndClock = "06:45", "14:45"
	} else {
		e.StartClock, e.EndClock = "14:45", "22:45"
	}
	return e
}

func fixture() (*model.Schedule, []*model.Employee, *calendar.Resolver) {
	horizon := model.DateRange{StartDate: "2025-03-03", EndDate: "2025-03-05"}
	schedule := &model.Schedule{
		Horizon: horizon,
		Employees: []model.EmployeeSchedule{
			{Employee: "Anna", Entries: []model.ScheduleEntry{
				weekdayEntry("2025-03-03", "Monday", model.ShiftLate),
			}},
			{Employee: "Ben", Entries: []model.ScheduleEntry{
				weekdayEntry("2025-03-03", "Monday", model.ShiftEarly),
			}},
			{Employee: "Clara"},
		},
	}
	employees := []*model.Employee{openEmployee("Anna"), openEmployee("Ben"), openEmployee("Clara")}
	cal := calendar.NewResolver(calendar.DefaultConfig(), horizon)
	return schedule, employees, cal
}

func TestEvaluateFeasibleTakeover(t *testing.T) {
	schedule, employees, cal := fixture()
	e := NewEvaluator(planner.DefaultPolicy(), cal)

	eval, err := e.Evaluate(schedule, employees, Request{
		From: "Anna", To: "Clara", Date: "2025-03-03", Kind: model.ShiftLate,
	})
	if err != nil {
		t.Fatalf("Evaluate() 出错: %v", err)
	}
	if !eval.Feasible {
		t.Errorf("空闲员工接班应可行, issues=%v", eval.Issues)
	}

	// 原班表不被修改
	if len(schedule.ForEmployee("Anna")) != 1 {
		t.Error("评估不应修改原班表")
	}
}

func TestEvaluateTargetAlreadyWorking(t *testing.T) {
	schedule, employees, cal := fixture()
	e := NewEvaluator(planner.DefaultPolicy(), cal)

	eval, err := e.Evaluate(schedule, employees, Request{
		From: "Anna", To: "Ben", Date: "2025-03-03", Kind: model.ShiftLate,
	})
	if err != nil {
		t.Fatalf("Evaluate() 出错: %v", err)
	}
	if eval.Feasible {
		t.Error("目标员工当日已有班次, 换班应不可行")
	}
}

func TestEvaluateTargetNotAvailable(t *testing.T) {
	schedule, employees, cal := fixture()
	employees[2].Availability = map[string][]model.ShiftKind{"Tuesday": {model.ShiftEarly}}

	e := NewEvaluator(planner.DefaultPolicy(), cal)
	eval, err := e.Evaluate(schedule, employees, Request{
		From: "Anna", To: "Clara", Date: "2025-03-03", Kind: model.ShiftLate,
	})
	if err != nil {
		t.Fatalf("Evaluate() 出错: %v", err)
	}
	if eval.Feasible {
		t.Error("不在可用性内的员工接班应不可行")
	}
}

func TestEvaluateRestViolation(t *testing.T) {
	schedule, employees, cal := fixture()
	// Clara 周二有早班，接下周一晚班只剩8小时休息
	schedule.Employees[2].Entries = []model.ScheduleEntry{
		weekdayEntry("2025-03-04", "Tuesday", model.ShiftEarly),
	}

	e := NewEvaluator(planner.DefaultPolicy(), cal)
	eval, err := e.Evaluate(schedule, employees, Request{
		From: "Anna", To: "Clara", Date: "2025-03-03", Kind: model.ShiftLate,
	})
	if err != nil {
		t.Fatalf("Evaluate() 出错: %v", err)
	}
	if eval.Feasible {
		t.Error("休息不足的换班应不可行")
	}

	found := false
	for _, v := range eval.Violations {
		if v.Type == "rest_time" && v.Employee == "Clara" {
			found = true
		}
	}
	if !found {
		t.Errorf("应报告Clara的休息时间违规, got %v", eval.Violations)
	}
}

func TestEvaluateMissingEntry(t *testing.T) {
	schedule, employees, cal := fixture()
	e := NewEvaluator(planner.DefaultPolicy(), cal)

	if _, err := e.Evaluate(schedule, employees, Request{
		From: "Anna", To: "Clara", Date: "2025-03-04", Kind: model.ShiftLate,
	}); err == nil {
		t.Error("不存在的班次应报错")
	}
}

func TestRecommend(t *testing.T) {
	schedule, employees, cal := fixture()
	// Clara 偏好周一晚班，David 可接但无偏好
	employees = append(employees, openEmployee("David"))
	schedule.Employees = append(schedule.Employees, model.EmployeeSchedule{Employee: "David"})
	employees[2].Preferences = map[string]map[model.ShiftKind]int{
		"Monday": {model.ShiftLate: 50},
	}

	r := NewRecommender(planner.DefaultPolicy(), cal)
	recs, err := r.Recommend(schedule, employees, "Anna", "2025-03-03", model.ShiftLate, DefaultOptions())
	if err != nil {
		t.Fatalf("Recommend() 出错: %v", err)
	}

	if len(recs) != 2 {
		t.Fatalf("应有2条推荐 (Clara、David), got %d: %v", len(recs), recs)
	}
	if recs[0].Employee != "Clara" || recs[0].Rank != 1 {
		t.Errorf("偏好该班次的员工应排第一, got %v", recs[0])
	}
	if recs[1].Employee != "David" || recs[1].Rank != 2 {
		t.Errorf("第二名应为David, got %v", recs[1])
	}
}

func TestRecommendExclude(t *testing.T) {
	schedule, employees, cal := fixture()
	r := NewRecommender(planner.DefaultPolicy(), cal)

	opts := DefaultOptions()
	opts.Exclude = []string{"Clara"}
	recs, err := r.Recommend(schedule, employees, "Anna", "2025-03-03", model.ShiftLate, opts)
	if err != nil {
		t.Fatalf("Recommend() 出错: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("排除唯一可行候选后应无推荐, got %v", recs)
	}
}
