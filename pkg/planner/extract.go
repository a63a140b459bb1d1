package planner

import (
	"fmt"
	"time"

	"github.com/klewi95/FiFi-Dienstplan/pkg/calendar"
	"github.com/klewi95/FiFi-Dienstplan/pkg/lp"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
	"github.com/klewi95/FiFi-Dienstplan/pkg/solver"
)

// assignedThreshold 0/1 变量的判定阈值
// MILP 松弛可能产生 0.999999 之类的取值，超过阈值按 1 处理而不是报错。
const assignedThreshold = 0.5

// extractSchedule 把求解出的变量取值还原为每员工的排班条目
// 员工按名升序、日期按周期顺序遍历，条目顺序因此确定。
// 最优解应为每个决策变量提供取值，缺失视为求解器违约。
func extractSchedule(employees []*model.Employee, dates []time.Time, cal *calendar.Resolver, vars map[assignKey]*lp.Var, sol *solver.Solution) ([]model.EmployeeSchedule, error) {
	result := make([]model.EmployeeSchedule, 0, len(employees))

	for _, e := range employees {
		es := model.EmployeeSchedule{Employee: e.Name}
		for _, d := range dates {
			for _, kind := range cal.CatalogFor(d).Kinds() {
				key := assignKey{employee: e.Name, date: d.Format(model.DateLayout), kind: kind}
				v, ok := vars[key]
				if !ok {
					return nil, fmt.Errorf("决策变量 (%s, %s, %s) 不存在", key.employee, key.date, key.kind)
				}
				value, ok := sol.Value(v.Name)
				if !ok {
					return nil, fmt.Errorf("求解结果缺少变量 '%s' 的取值", v.Name)
				}
				if value <= assignedThreshold {
					continue
				}
				es.Entries = append(es.Entries, buildEntry(cal, d, kind))
			}
		}
		result = append(result, es)
	}
	return result, nil
}

// buildEntry 计算一条排班记录的钟点时间与实际工时
// 结束时刻达到或超过 24 时减去 24（班次跨午夜），日期保持开始日不变。
func buildEntry(cal *calendar.Resolver, d time.Time, kind model.ShiftKind) model.ScheduleEntry {
	start := cal.Start(kind, d)
	end := start + cal.Duration(kind, d)
	if end >= 24 {
		end -= 24
	}

	return model.ScheduleEntry{
		Date:       d.Format(model.DateLayout),
		Weekday:    model.WeekdayName(d),
		Kind:       kind,
		StartClock: clockString(start),
		EndClock:   clockString(end),
		PaidHours:  cal.PaidHours(kind, d),
		BreakTaken: cal.BreakTaken(kind, d),
	}
}

// clockString 把自午夜起的小数小时转为 HH:MM
// 分钟按截断取整，不做四舍五入。
func clockString(hours float64) string {
	h := int(hours)
	m := int((hours - float64(h)) * 60)
	return fmt.Sprintf("%02d:%02d", h, m)
}
