package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/klewi95/FiFi-Dienstplan/pkg/errors"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
)

// ScheduleRepository 排班表仓储
// 一次求解产出的排班表以 run_id 为单位整体存取。
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository 创建排班表仓储
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Save 保存一次排班
// 行级写入按员工、日期顺序，与排班表一致。
func (r *ScheduleRepository) Save(ctx context.Context, schedule *model.Schedule) error {
	query := `
		INSERT INTO schedule_runs (run_id, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query,
		schedule.RunID, schedule.Horizon.StartDate, schedule.Horizon.EndDate, schedule.CreatedAt,
	); err != nil {
		return fmt.Errorf("保存排班批次失败: %w", err)
	}

	entryQuery := `
		INSERT INTO schedule_entries (
			run_id, employee, date, weekday, shift_kind,
			start_time, end_time, paid_hours, break_taken
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, es := range schedule.Employees {
		for _, entry := range es.Entries {
			if _, err := r.db.ExecContext(ctx, entryQuery,
				schedule.RunID, es.Employee, entry.Date, entry.Weekday, entry.Kind,
				entry.StartClock, entry.EndClock, entry.PaidHours, entry.BreakTaken,
			); err != nil {
				return fmt.Errorf("保存排班条目失败: %w", err)
			}
		}
	}
	return nil
}

// GetByRunID 读取一次排班的完整内容
func (r *ScheduleRepository) GetByRunID(ctx context.Context, runID uuid.UUID) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.QueryRowContext(ctx,
		`SELECT run_id, start_date::text, end_date::text, created_at FROM schedule_runs WHERE run_id = $1`,
		runID,
	).Scan(&schedule.RunID, &schedule.Horizon.StartDate, &schedule.Horizon.EndDate, &schedule.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("排班批次", runID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("读取排班批次失败: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT employee, date::text, weekday, shift_kind,
			start_time, end_time, paid_hours, break_taken
		FROM schedule_entries
		WHERE run_id = $1
		ORDER BY employee ASC, date ASC, shift_kind ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("读取排班条目失败: %w", err)
	}
	defer rows.Close()

	var current *model.EmployeeSchedule
	for rows.Next() {
		var employee string
		var entry model.ScheduleEntry
		if err := rows.Scan(
			&employee, &entry.Date, &entry.Weekday, &entry.Kind,
			&entry.StartClock, &entry.EndClock, &entry.PaidHours, &entry.BreakTaken,
		); err != nil {
			return nil, fmt.Errorf("读取排班条目失败: %w", err)
		}

		if current == nil || current.Employee != employee {
			schedule.Employees = append(schedule.Employees, model.EmployeeSchedule{Employee: employee})
			current = &schedule.Employees[len(schedule.Employees)-1]
		}
		current.Entries = append(current.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("读取排班条目失败: %w", err)
	}
	return &schedule, nil
}

// RunSummary 排班批次摘要
type RunSummary struct {
	RunID     uuid.UUID `json:"run_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	Entries   int       `json:"entries"`
}

// ListRuns 列出最近的排班批次
func (r *ScheduleRepository) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.run_id, r.start_date::text, r.end_date::text, r.created_at,
			(SELECT count(*) FROM schedule_entries e WHERE e.run_id = r.run_id)
		FROM schedule_runs r
		ORDER BY r.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("查询排班批次失败: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.RunID, &s.StartDate, &s.EndDate, &s.CreatedAt, &s.Entries); err != nil {
			return nil, fmt.Errorf("读取排班批次失败: %w", err)
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

// Delete 删除一次排班（条目随外键级联删除）
func (r *ScheduleRepository) Delete(ctx context.Context, runID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM schedule_runs WHERE run_id = $1`, runID)
	if err != nil {
		return fmt.Errorf("删除排班批次失败: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("排班批次", runID.String())
	}
	return nil
}
