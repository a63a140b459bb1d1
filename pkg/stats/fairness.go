package stats

import (
	"math"
	"sort"
	"time"

	"github.com/klewi95/FiFi-Dienstplan/pkg/calendar"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
)

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	// 工时公平性
	WorkloadGini        float64 `json:"workload_gini"` // 0=完全公平
	WorkloadStdDev      float64 `json:"workload_std_dev"`
	AvgHoursPerEmployee float64 `json:"avg_hours_per_employee"`
	HoursRange          float64 `json:"hours_range"` // 极差

	// 周末/节假日负载公平性
	WeekendShiftGini   float64 `json:"weekend_shift_gini"`
	WeekendShiftSpread int     `json:"weekend_shift_spread"` // 最多与最少之差

	EmployeeStats []EmployeeStat `json:"employee_stats"` // 按员工名升序
}

// EmployeeStat 单个员工的负载统计
type EmployeeStat struct {
	Employee      string  `json:"employee"`
	TotalHours    float64 `json:"total_hours"`
	ShiftCount    int     `json:"shift_count"`
	WeekendShifts int     `json:"weekend_shifts"`
	Deviation     float64 `json:"deviation"` // 与人均工时的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct {
	cal *calendar.Resolver
}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer(cal *calendar.Resolver) *FairnessAnalyzer {
	return &FairnessAnalyzer{cal: cal}
}

// Analyze 分析排班表的负载公平性
func (f *FairnessAnalyzer) Analyze(schedule *model.Schedule) *FairnessMetrics {
	if len(schedule.Employees) == 0 {
		return &FairnessMetrics{}
	}

	stats := make([]EmployeeStat, 0, len(schedule.Employees))
	for _, es := range schedule.Employees {
		stat := EmployeeStat{Employee: es.Employee}
		for _, entry := range es.Entries {
			stat.TotalHours += entry.PaidHours
			stat.ShiftCount++
			if d, err := time.Parse(model.DateLayout, entry.Date); err == nil && f.cal.IsWeekendOrHoliday(d) {
				stat.WeekendShifts++
			}
		}
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Employee < stats[j].Employee })

	hours := make([]float64, len(stats))
	weekend := make([]float64, len(stats))
	for i, s := range stats {
		hours[i] = s.TotalHours
		weekend[i] = float64(s.WeekendShifts)
	}

	avg := mean(hours)
	for i := range stats {
		if avg > 0 {
			stats[i].Deviation = (stats[i].TotalHours - avg) / avg * 100
		}
	}

	minH, maxH := bounds(hours)
	minW, maxW := bounds(weekend)

	return &FairnessMetrics{
		WorkloadGini:        gini(hours),
		WorkloadStdDev:      math.Sqrt(variance(hours, avg)),
		AvgHoursPerEmployee: avg,
		HoursRange:          maxH - minH,
		WeekendShiftGini:    gini(weekend),
		WeekendShiftSpread:  int(maxW - minW),
		EmployeeStats:       stats,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64, avg float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		diff := v - avg
		sum += diff * diff
	}
	return sum / float64(len(values))
}

func bounds(values []float64) (min, max float64) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// gini 基尼系数：0 为完全均等
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	total := 0.0
	weighted := 0.0
	for i, v := range sorted {
		total += v
		weighted += float64(i+1) * v
	}
	if total == 0 {
		return 0
	}
	return (2*weighted - float64(n+1)*total) / (float64(n) * total)
}
