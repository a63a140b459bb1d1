package planner

import (
	"fmt"
	"time"

	"github.com/klewi95/FiFi-Dienstplan/pkg/calendar"
	"github.com/klewi95/FiFi-Dienstplan/pkg/lp"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
)

// assignKey 决策变量的键：(员工, 日期, 班次)
type assignKey struct {
	employee string
	date     string // YYYY-MM-DD
	kind     model.ShiftKind
}

// varName 生成模型内的变量名
func (k assignKey) varName() string {
	return fmt.Sprintf("x_%s_%s_%s", lp.SanitizeName(k.employee), lp.SanitizeName(k.date), lp.SanitizeName(string(k.kind)))
}

// modelBuilder 单次排班的模型构建状态
// 每次构建独立持有变量集与模型实例，构建之间不共享。
type modelBuilder struct {
	m         *lp.Model
	vars      map[assignKey]*lp.Var
	employees []*model.Employee
	dates     []time.Time
	cal       *calendar.Resolver
	policy    Policy
	objective lp.Expr
}

// buildModel 把人员、周期与政策翻译为优化模型
// 变量集恰好是 员工 × 周期日期 × 该日提供的班次 的笛卡尔积：
// 未提供的班次不产生变量，不可用或受限的组合通过等式约束固定为零。
// 员工与日期均按固定顺序遍历，相同输入得到完全相同的模型。
func buildModel(employees []*model.Employee, dates []time.Time, cal *calendar.Resolver, policy Policy) (*lp.Model, map[assignKey]*lp.Var, error) {
	b := &modelBuilder{
		m:         lp.NewModel("dienstplan", true),
		vars:      make(map[assignKey]*lp.Var),
		employees: employees,
		dates:     dates,
		cal:       cal,
		policy:    policy,
	}

	if err := b.addVariables(); err != nil {
		return nil, nil, err
	}
	if err := b.addPreferenceObjective(); err != nil {
		return nil, nil, err
	}
	if err := b.addStaffingBounds(); err != nil {
		return nil, nil, err
	}
	if err := b.addHourLimits(); err != nil {
		return nil, nil, err
	}
	if err := b.addExclusions(); err != nil {
		return nil, nil, err
	}
	if err := b.addConsecutiveDayLimits(); err != nil {
		return nil, nil, err
	}
	if err := b.addMinimumRest(); err != nil {
		return nil, nil, err
	}
	if err := b.addFairnessBands(); err != nil {
		return nil, nil, err
	}
	if err := b.addRollingWindowCap(); err != nil {
		return nil, nil, err
	}

	b.m.SetObjective(b.objective)
	return b.m, b.vars, nil
}

// x 按 (员工, 日期, 班次) 查找决策变量
// 缺失的键意味着构建缺陷，显式报错而不是默默按零处理。
func (b *modelBuilder) x(e *model.Employee, d time.Time, kind model.ShiftKind) (*lp.Var, error) {
	key := assignKey{employee: e.Name, date: d.Format(model.DateLayout), kind: kind}
	v, ok := b.vars[key]
	if !ok {
		return nil, fmt.Errorf("决策变量 (%s, %s, %s) 不存在", key.employee, key.date, key.kind)
	}
	return v, nil
}

// kinds 返回某日期提供的班次（升序）
func (b *modelBuilder) kinds(d time.Time) []model.ShiftKind {
	return b.cal.CatalogFor(d).Kinds()
}

// addVariables 为每个 (员工, 日期, 提供的班次) 组合创建0/1变量
func (b *modelBuilder) addVariables() error {
	for _, e := range b.employees {
		for _, d := range b.dates {
			for _, kind := range b.kinds(d) {
				key := assignKey{employee: e.Name, date: d.Format(model.DateLayout), kind: kind}
				v, err := b.m.AddBinary(key.varName())
				if err != nil {
					return fmt.Errorf("构建决策变量失败: %w", err)
				}
				b.vars[key] = v
			}
		}
	}
	return nil
}

// addPreferenceObjective 期望分值加权进入目标函数
func (b *modelBuilder) addPreferenceObjective() error {
	for _, e := range b.employees {
		for _, d := range b.dates {
			for _, kind := range b.kinds(d) {
				score := e.PreferenceScore(d, kind)
				if score == 0 {
					continue
				}
				v, err := b.x(e, d, kind)
				if err != nil {
					return err
				}
				b.objective.Add(b.policy.PreferenceWeight*float64(score), v)
			}
		}
	}
	return nil
}

// addStaffingBounds 每 (日期, 提供的班次) 的人数上下界
func (b *modelBuilder) addStaffingBounds() error {
	for di, d := range b.dates {
		for _, kind := range b.kinds(d) {
			var headcount lp.Expr
			for _, e := range b.employees {
				v, err := b.x(e, d, kind)
				if err != nil {
					return err
				}
				headcount.Add(1, v)
			}
			suffix := fmt.Sprintf("d%d_%s", di, lp.SanitizeName(string(kind)))
			if err := b.m.AddConstraint("staff_min_"+suffix, headcount, lp.GreaterEq, float64(b.policy.MinStaffPerShift)); err != nil {
				return err
			}
			if err := b.m.AddConstraint("staff_max_"+suffix, headcount, lp.LessEq, float64(b.policy.MaxStaffPerShift)); err != nil {
				return err
			}
		}
	}
	return nil
}

// addHourLimits 合同周工时（按 ISO 周）、单日工时上限、每日至多一班
// 工时口径统一使用扣除无薪休息后的实际工时。
func (b *modelBuilder) addHourLimits() error {
	for ei, e := range b.employees {
		weekHours := make(map[string]*lp.Expr)
		var weekOrder []string

		for di, d := range b.dates {
			var dayHours, dayCount lp.Expr
			week := model.ISOWeekKey(d)
			if _, ok := weekHours[week]; !ok {
				weekHours[week] = &lp.Expr{}
				weekOrder = append(weekOrder, week)
			}

			for _, kind := range b.kinds(d) {
				v, err := b.x(e, d, kind)
				if err != nil {
					return err
				}
				paid := b.cal.PaidHours(kind, d)
				dayHours.Add(paid, v)
				dayCount.Add(1, v)
				weekHours[week].Add(paid, v)
			}

			if err := b.m.AddConstraint(fmt.Sprintf("daily_hours_e%d_d%d", ei, di), dayHours, lp.LessEq, b.policy.MaxDailyHours); err != nil {
				return err
			}
			if err := b.m.AddConstraint(fmt.Sprintf("one_shift_e%d_d%d", ei, di), dayCount, lp.LessEq, 1); err != nil {
				return err
			}
		}

		for _, week := range weekOrder {
			expr := *weekHours[week]
			suffix := fmt.Sprintf("e%d_%s", ei, lp.SanitizeName(week))
			if err := b.m.AddConstraint("week_min_"+suffix, expr, lp.GreaterEq, e.MinWeeklyHours); err != nil {
				return err
			}
			if err := b.m.AddConstraint("week_max_"+suffix, expr, lp.LessEq, e.MaxWeeklyHours); err != nil {
				return err
			}
		}
	}
	return nil
}

// addExclusions 可用性与日期限制
// 星期可用性不含该班次，或该日期的限制包含该班次时，变量固定为零。
func (b *modelBuilder) addExclusions() error {
	for ei, e := range b.employees {
		for di, d := range b.dates {
			for _, kind := range b.kinds(d) {
				if e.CanWork(d, kind) {
					continue
				}
				v, err := b.x(e, d, kind)
				if err != nil {
					return err
				}
				var fixed lp.Expr
				fixed.Add(1, v)
				name := fmt.Sprintf("excluded_e%d_d%d_%s", ei, di, lp.SanitizeName(string(kind)))
				if err := b.m.AddConstraint(name, fixed, lp.Equal, 0); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// addConsecutiveDayLimits 连续工作日限制
// 每个长度为 max_consecutive_days+1 的滑动窗口内工作班次 ≤ max_consecutive_days
// （硬约束），同时为每个窗口引入非负整数溢出变量进入目标做软惩罚。
// 硬上界已保证溢出为零，软项保留是为了与既定政策口径一致。
// 周期短于窗口时整组约束跳过。
func (b *modelBuilder) addConsecutiveDayLimits() error {
	windowSize := b.policy.MaxConsecutiveDays + 1
	if len(b.dates) < windowSize {
		return nil
	}

	for ei, e := range b.employees {
		for start := 0; start <= len(b.dates)-windowSize; start++ {
			var worked lp.Expr
			for _, d := range b.dates[start : start+windowSize] {
				for _, kind := range b.kinds(d) {
					v, err := b.x(e, d, kind)
					if err != nil {
						return err
					}
					worked.Add(1, v)
				}
			}

			name := fmt.Sprintf("consecutive_e%d_w%d", ei, start)
			if err := b.m.AddConstraint(name, worked, lp.LessEq, float64(b.policy.MaxConsecutiveDays)); err != nil {
				return err
			}

			over, err := b.m.AddInteger(fmt.Sprintf("over_e%d_w%d", ei, start))
			if err != nil {
				return fmt.Errorf("构建溢出变量失败: %w", err)
			}
			var linked lp.Expr
			linked.AddExpr(1, worked)
			linked.Add(-1, over)
			name = fmt.Sprintf("overflow_e%d_w%d", ei, start)
			if err := b.m.AddConstraint(name, linked, lp.LessEq, float64(b.policy.MaxConsecutiveDays)); err != nil {
				return err
			}
			b.objective.Add(-b.policy.PenaltyWeight*b.policy.PenaltyPerExcessDay, over)
		}
	}
	return nil
}

// addMinimumRest 最小休息时间
// 对相邻两天的每一对班次计算间隔：前一班结束时刻可能越过午夜（≥24），
// 若次日开始时刻不大于它则先加 24 小时再相减。间隔不足时禁止两班同时选中。
func (b *modelBuilder) addMinimumRest() error {
	for ei, e := range b.employees {
		for di := 0; di < len(b.dates)-1; di++ {
			d, next := b.dates[di], b.dates[di+1]
			for _, current := range b.kinds(d) {
				for _, following := range b.kinds(next) {
					if !e.CanWork(d, current) || !e.CanWork(next, following) {
						continue
					}

					end := b.cal.Start(current, d) + b.cal.Duration(current, d)
					startNext := b.cal.Start(following, next)
					if startNext <= end {
						startNext += 24
					}
					if startNext-end >= b.policy.MinRestHours {
						continue
					}

					v1, err := b.x(e, d, current)
					if err != nil {
						return err
					}
					v2, err := b.x(e, next, following)
					if err != nil {
						return err
					}
					var pair lp.Expr
					pair.Add(1, v1)
					pair.Add(1, v2)
					name := fmt.Sprintf("rest_e%d_d%d_%s_%s", ei, di,
						lp.SanitizeName(string(current)), lp.SanitizeName(string(following)))
					if err := b.m.AddConstraint(name, pair, lp.LessEq, 1); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// addFairnessBands 班次总量与周末/节假日负载的公平性
//
// 总量公平：每个员工的目标份额 = 其最大周工时 / 全员最大周工时之和 ×
// 总班次槽位数，实际班次数须落在目标 ± allowed_shift_deviation 内。
//
// 周末公平：每个员工的周末/节假日班次数须落在全员均值 ±1 内。
// 均值 = 总数/n，两边同乘员工数 n 消去分母，保持系数为整数：
//
//	n·count_e − total ≤ n，n·count_e − total ≥ −n
func (b *modelBuilder) addFairnessBands() error {
	totalMax := 0.0
	for _, e := range b.employees {
		totalMax += e.MaxWeeklyHours
	}

	totalSlots := 0
	for _, d := range b.dates {
		totalSlots += len(b.kinds(d))
	}

	n := float64(len(b.employees))
	for ei, e := range b.employees {
		var count lp.Expr
		for _, d := range b.dates {
			for _, kind := range b.kinds(d) {
				v, err := b.x(e, d, kind)
				if err != nil {
					return err
				}
				count.Add(1, v)
			}
		}

		target := e.MaxWeeklyHours / totalMax * float64(totalSlots)
		if err := b.m.AddConstraint(fmt.Sprintf("fair_total_min_e%d", ei), count, lp.GreaterEq, target-b.policy.AllowedShiftDeviation); err != nil {
			return err
		}
		if err := b.m.AddConstraint(fmt.Sprintf("fair_total_max_e%d", ei), count, lp.LessEq, target+b.policy.AllowedShiftDeviation); err != nil {
			return err
		}

		// n·count_e − Σ_f count_f：同一变量的系数合并为 n−1 / −1
		var band lp.Expr
		for _, f := range b.employees {
			coef := -1.0
			if f.Name == e.Name {
				coef += n
			}
			for _, d := range b.dates {
				if !b.cal.IsWeekendOrHoliday(d) {
					continue
				}
				for _, kind := range b.kinds(d) {
					v, err := b.x(f, d, kind)
					if err != nil {
						return err
					}
					band.Add(coef, v)
				}
			}
		}
		if band.Empty() {
			// 周期内没有周末或节假日
			continue
		}
		if err := b.m.AddConstraint(fmt.Sprintf("fair_weekend_max_e%d", ei), band, lp.LessEq, n); err != nil {
			return err
		}
		if err := b.m.AddConstraint(fmt.Sprintf("fair_weekend_min_e%d", ei), band, lp.GreaterEq, -n); err != nil {
			return err
		}
	}
	return nil
}

// addRollingWindowCap 滚动 28 天工时上限
// 只约束完整落在周期内的窗口；周期不足一个窗口时整组跳过。
func (b *modelBuilder) addRollingWindowCap() error {
	if len(b.dates) < b.policy.RollingWindowDays {
		return nil
	}

	for ei, e := range b.employees {
		for start := 0; start <= len(b.dates)-b.policy.RollingWindowDays; start++ {
			var hours lp.Expr
			for _, d := range b.dates[start : start+b.policy.RollingWindowDays] {
				for _, kind := range b.kinds(d) {
					v, err := b.x(e, d, kind)
					if err != nil {
						return err
					}
					hours.Add(b.cal.PaidHours(kind, d), v)
				}
			}
			name := fmt.Sprintf("rolling_e%d_w%d", ei, start)
			if err := b.m.AddConstraint(name, hours, lp.LessEq, b.policy.RollingMaxHours); err != nil {
				return err
			}
		}
	}
	return nil
}
