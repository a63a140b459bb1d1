// Package calendar 提供周末/节假日判定与按日期选择班次目录
package calendar

import (
	"sort"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/de"

	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
)

// 休息扣除规则的默认值：班次超过6小时自动扣除1小时无薪休息
const (
	DefaultBreakThresholdHours = 6.0
	DefaultBreakDeductionHours = 1.0
)

// Config 日历解析配置
type Config struct {
	// Jurisdiction 德国联邦州代码（如 "NW"，也接受 "DE-NW"）
	Jurisdiction string

	WeekdayCatalog model.Catalog
	WeekendCatalog model.Catalog

	BreakThresholdHours float64
	BreakDeductionHours float64
}

// DefaultConfig 返回默认配置（北莱茵-威斯特法伦州）
func DefaultConfig() Config {
	return Config{
		Jurisdiction:        "NW",
		WeekdayCatalog:      model.DefaultWeekdayCatalog(),
		WeekendCatalog:      model.DefaultWeekendCatalog(),
		BreakThresholdHours: DefaultBreakThresholdHours,
		BreakDeductionHours: DefaultBreakDeductionHours,
	}
}

// Resolver 日历解析器
// 节假日集合在创建时一次性计算，之后全部方法都是纯函数。
type Resolver struct {
	weekday  model.Catalog
	weekend  model.Catalog
	holidays map[string]bool // YYYY-MM-DD

	breakThreshold float64
	breakDeduction float64
}

// NewResolver 创建日历解析器，并为排班周期预先计算节假日集合
func NewResolver(cfg Config, horizon model.DateRange) *Resolver {
	if cfg.WeekdayCatalog == nil {
		cfg.WeekdayCatalog = model.DefaultWeekdayCatalog()
	}
	if cfg.WeekendCatalog == nil {
		cfg.WeekendCatalog = model.DefaultWeekendCatalog()
	}
	if cfg.BreakThresholdHours == 0 {
		cfg.BreakThresholdHours = DefaultBreakThresholdHours
	}
	if cfg.BreakDeductionHours == 0 {
		cfg.BreakDeductionHours = DefaultBreakDeductionHours
	}

	c := &cal.Calendar{Name: "DE-" + normalizeRegion(cfg.Jurisdiction)}
	c.AddHoliday(holidaysForRegion(cfg.Jurisdiction)...)

	holidays := make(map[string]bool)
	for _, d := range horizon.Dates() {
		actual, observed, _ := c.IsHoliday(d)
		if actual || observed {
			holidays[d.Format(model.DateLayout)] = true
		}
	}

	return &Resolver{
		weekday:        cfg.WeekdayCatalog,
		weekend:        cfg.WeekendCatalog,
		holidays:       holidays,
		breakThreshold: cfg.BreakThresholdHours,
		breakDeduction: cfg.BreakDeductionHours,
	}
}

// IsWeekendOrHoliday 判定日期是否为周末或法定节假日
func (r *Resolver) IsWeekendOrHoliday(d time.Time) bool {
	wd := d.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return true
	}
	return r.holidays[d.Format(model.DateLayout)]
}

// CatalogFor 返回日期适用的班次目录
func (r *Resolver) CatalogFor(d time.Time) model.Catalog {
	if r.IsWeekendOrHoliday(d) {
		return r.weekend
	}
	return r.weekday
}

// Duration 返回班次在某日期的时长（小时）
func (r *Resolver) Duration(kind model.ShiftKind, d time.Time) float64 {
	return r.CatalogFor(d)[kind].DurationHours
}

// Start 返回班次在某日期的开始时刻（自午夜起的小时数）
func (r *Resolver) Start(kind model.ShiftKind, d time.Time) float64 {
	return r.CatalogFor(d)[kind].StartHour
}

// PaidHours 返回扣除无薪休息后的实际工时
func (r *Resolver) PaidHours(kind model.ShiftKind, d time.Time) float64 {
	duration := r.Duration(kind, d)
	if duration > r.breakThreshold {
		return duration - r.breakDeduction
	}
	return duration
}

// BreakTaken 判定班次在某日期是否触发无薪休息扣除
func (r *Resolver) BreakTaken(kind model.ShiftKind, d time.Time) bool {
	return r.Duration(kind, d) > r.breakThreshold
}

// Holidays 返回周期内命中的节假日（升序）
func (r *Resolver) Holidays() []string {
	dates := make([]string, 0, len(r.holidays))
	for d := range r.holidays {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// normalizeRegion 归一化州代码（"DE-NW" -> "NW"）
func normalizeRegion(region string) string {
	region = strings.ToUpper(strings.TrimSpace(region))
	return strings.TrimPrefix(region, "DE-")
}

// holidaysForRegion 返回全国性节假日加上州特有节假日
func holidaysForRegion(region string) []*cal.Holiday {
	holidays := make([]*cal.Holiday, 0, 12)
	holidays = append(holidays, de.Holidays...)

	switch normalizeRegion(region) {
	case "BW":
		holidays = append(holidays, de.HeiligeDreiKoenige, de.Fronleichnam, de.Allerheiligen)
	case "BY":
		holidays = append(holidays, de.HeiligeDreiKoenige, de.Fronleichnam, de.MariaHimmelfahrt, de.Allerheiligen)
	case "BE":
		holidays = append(holidays, de.Frauentag)
	case "BB", "HB", "HH", "MV", "NI", "SH":
		holidays = append(holidays, de.Reformationstag)
	case "HE":
		holidays = append(holidays, de.Fronleichnam)
	case "NW", "RP":
		holidays = append(holidays, de.Fronleichnam, de.Allerheiligen)
	case "SL":
		holidays = append(holidays, de.Fronleichnam, de.MariaHimmelfahrt, de.Allerheiligen)
	case "SN":
		holidays = append(holidays, de.Reformationstag, de.BussUndBettag)
	case "ST":
		holidays = append(holidays, de.HeiligeDreiKoenige, de.Reformationstag)
	case "TH":
		holidays = append(holidays, de.Weltkindertag, de.Reformationstag)
	}

	return holidays
}
