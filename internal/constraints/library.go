// Package constraints 描述排班模型内置的规则族
// 只读目录，供前端和API消费；规则本身在 pkg/planner 中构建。
package constraints

import (
	"fmt"

	"github.com/klewi95/FiFi-Dienstplan/pkg/planner"
)

// RuleParam 规则参数定义
type RuleParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, float
	Description string `json:"description"`
	Default     string `json:"default"`
	PolicyField string `json:"policy_field,omitempty"` // 对应的Policy字段
}

// RuleDefinition 规则定义
type RuleDefinition struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Type        string      `json:"type"`     // hard 硬约束, soft 软约束
	Category    string      `json:"category"` // 分类
	Description string      `json:"description"`
	Params      []RuleParam `json:"params,omitempty"`
}

// Library 返回模型构建器实现的全部规则族
// 参数默认值取自给定策略。
func Library(p planner.Policy) []RuleDefinition {
	return []RuleDefinition{
		{
			Name:        "staffing_bounds",
			DisplayName: "每班人数上下限",
			Type:        "hard",
			Category:    "排班覆盖",
			Description: "每个日期的每个班次必须有不少于下限、不多于上限的员工当班。",
			Params: []RuleParam{
				{Name: "min_staff", Type: "int", Description: "每班最少人数", Default: itoa(p.MinStaffPerShift), PolicyField: "MinStaffPerShift"},
				{Name: "max_staff", Type: "int", Description: "每班最多人数", Default: itoa(p.MaxStaffPerShift), PolicyField: "MaxStaffPerShift"},
			},
		},
		{
			Name:        "one_shift_per_day",
			DisplayName: "每日单班",
			Type:        "hard",
			Category:    "工时限制",
			Description: "任何员工一天最多当一个班。",
		},
		{
			Name:        "daily_hours_cap",
			DisplayName: "每日工时上限",
			Type:        "hard",
			Category:    "工时限制",
			Description: "员工单日实付工时不超过上限。",
			Params: []RuleParam{
				{Name: "max_daily_hours", Type: "float", Description: "每日最大实付工时", Default: ftoa(p.MaxDailyHours), PolicyField: "MaxDailyHours"},
			},
		},
		{
			Name:        "weekly_hours_band",
			DisplayName: "每周工时区间",
			Type:        "hard",
			Category:    "工时限制",
			Description: "周期内每个ISO周，员工实付工时落在其合同的最小与最大周工时之间。",
		},
		{
			Name:        "availability_exclusion",
			DisplayName: "可用性排除",
			Type:        "hard",
			Category:    "个人约束",
			Description: "员工在其星期可用性之外或被具体日期限制的班次上固定为不当班。",
		},
		{
			Name:        "max_consecutive_days",
			DisplayName: "最大连续工作天数",
			Type:        "hard",
			Category:    "休息规则",
			Description: "任意连续窗口内的工作天数不超过上限。",
			Params: []RuleParam{
				{Name: "max_consecutive_days", Type: "int", Description: "最大连续工作天数", Default: itoa(p.MaxConsecutiveDays), PolicyField: "MaxConsecutiveDays"},
			},
		},
		{
			Name:        "consecutive_overflow_penalty",
			DisplayName: "连续工作超限惩罚",
			Type:        "soft",
			Category:    "休息规则",
			Description: "目标函数中对连续工作窗口的超限天数按罚分系数扣分。",
			Params: []RuleParam{
				{Name: "penalty_per_excess_day", Type: "float", Description: "每超限天的罚分", Default: ftoa(p.PenaltyPerExcessDay), PolicyField: "PenaltyPerExcessDay"},
			},
		},
		{
			Name:        "minimum_rest",
			DisplayName: "最短休息时间",
			Type:        "hard",
			Category:    "休息规则",
			Description: "相邻两天的班次之间必须有足够休息；晚班跨午夜时按回绕后的时刻计算。",
			Params: []RuleParam{
				{Name: "min_rest_hours", Type: "float", Description: "最短休息小时数", Default: ftoa(p.MinRestHours), PolicyField: "MinRestHours"},
			},
		},
		{
			Name:        "total_shift_fairness",
			DisplayName: "总班次公平区间",
			Type:        "hard",
			Category:    "公平性",
			Description: "每个员工的总班次数围绕其周工时占比推算的目标值，允许上下浮动。",
			Params: []RuleParam{
				{Name: "allowed_deviation", Type: "float", Description: "允许的班次数偏差", Default: ftoa(p.AllowedShiftDeviation), PolicyField: "AllowedShiftDeviation"},
			},
		},
		{
			Name:        "weekend_fairness",
			DisplayName: "周末节假日公平区间",
			Type:        "hard",
			Category:    "公平性",
			Description: "每个员工的周末/节假日班次数围绕全员均值，允许上下浮动一班。",
		},
		{
			Name:        "rolling_hours_cap",
			DisplayName: "滚动窗口工时上限",
			Type:        "hard",
			Category:    "工时限制",
			Description: "任意滚动窗口内的累计实付工时不超过上限。",
			Params: []RuleParam{
				{Name: "window_days", Type: "int", Description: "滚动窗口天数", Default: itoa(p.RollingWindowDays), PolicyField: "RollingWindowDays"},
				{Name: "max_hours", Type: "float", Description: "窗口内最大实付工时", Default: ftoa(p.RollingMaxHours), PolicyField: "RollingMaxHours"},
			},
		},
		{
			Name:        "preference_objective",
			DisplayName: "偏好目标",
			Type:        "soft",
			Category:    "个人约束",
			Description: "目标函数按偏好权重奖励满足员工期望的排班。",
			Params: []RuleParam{
				{Name: "preference_weight", Type: "float", Description: "偏好项权重", Default: ftoa(p.PreferenceWeight), PolicyField: "PreferenceWeight"},
				{Name: "penalty_weight", Type: "float", Description: "惩罚项权重", Default: ftoa(p.PenaltyWeight), PolicyField: "PenaltyWeight"},
			},
		},
	}
}

func itoa(v int) string {
	return fmt.Sprintf("%d", v)
}

func ftoa(v float64) string {
	return fmt.Sprintf("%g", v)
}
