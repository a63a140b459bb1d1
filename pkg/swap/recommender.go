package swap

import (
	"fmt"
	"sort"
	"time"

	"github.com/klewi95/FiFi-Dienstplan/pkg/calendar"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
	"github.com/klewi95/FiFi-Dienstplan/pkg/planner"
)

// Recommender 换班推荐器
type Recommender struct {
	evaluator *Evaluator
}

// NewRecommender 创建换班推荐器
func NewRecommender(policy planner.Policy, cal *calendar.Resolver) *Recommender {
	return &Recommender{evaluator: NewEvaluator(policy, cal)}
}

// Recommendation 一条换班推荐
type Recommendation struct {
	Employee string  `json:"employee"`
	Score    float64 `json:"score"`
	Reason   string  `json:"reason"`
	Rank     int     `json:"rank"`
}

// Options 推荐选项
type Options struct {
	MaxResults int      // 最大推荐数量
	Exclude    []string // 排除的员工
}

// DefaultOptions 返回默认选项
func DefaultOptions() Options {
	return Options{MaxResults: 5}
}

// Recommend 为某条班次推荐可接班的员工
// 候选人按偏好分值和当前负载排序；不可行的候选直接跳过。
func (r *Recommender) Recommend(schedule *model.Schedule, employees []*model.Employee, from, date string, kind model.ShiftKind, opts Options) ([]Recommendation, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultOptions().MaxResults
	}

	day, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("日期 %s 无效: %w", date, err)
	}

	excluded := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		excluded[name] = true
	}

	var recommendations []Recommendation
	for _, candidate := range employees {
		if candidate.Name == from || excluded[candidate.Name] {
			continue
		}

		eval, err := r.evaluator.Evaluate(schedule, employees, Request{
			From: from, To: candidate.Name, Date: date, Kind: kind,
		})
		if err != nil {
			return nil, err
		}
		if !eval.Feasible {
			continue
		}

		recommendations = append(recommendations, Recommendation{
			Employee: candidate.Name,
			Score:    r.score(schedule, candidate, day, kind),
			Reason:   r.reason(candidate, day, kind),
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		return recommendations[i].Employee < recommendations[j].Employee
	})

	if len(recommendations) > opts.MaxResults {
		recommendations = recommendations[:opts.MaxResults]
	}
	for i := range recommendations {
		recommendations[i].Rank = i + 1
	}
	return recommendations, nil
}

// score 候选人得分：偏好分值为主，当前班次数越少加分越多
func (r *Recommender) score(schedule *model.Schedule, candidate *model.Employee, day time.Time, kind model.ShiftKind) float64 {
	score := float64(candidate.PreferenceScore(day, kind))
	score -= float64(len(schedule.ForEmployee(candidate.Name)))
	return score
}

func (r *Recommender) reason(candidate *model.Employee, day time.Time, kind model.ShiftKind) string {
	pref := candidate.PreferenceScore(day, kind)
	switch {
	case pref > 0:
		return fmt.Sprintf("%s 期望在 %s 上 %s 班", candidate.Name, day.Format(model.DateLayout), kind)
	case pref < 0:
		return fmt.Sprintf("%s 可以接班但不偏好该班次", candidate.Name)
	default:
		return fmt.Sprintf("%s 可以接班", candidate.Name)
	}
}
