package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	apperrors "github.com/klewi95/FiFi-Dienstplan/pkg/errors"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
)

// EmployeeRepository 员工仓储
// 员工以名字为主键；映射字段存为 JSONB 列。
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create 创建员工
func (r *EmployeeRepository) Create(ctx context.Context, emp *model.Employee) error {
	availability, restrictions, preferences, err := marshalEmployeeMaps(emp)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO employees (
			name, max_weekly_hours, min_weekly_hours,
			availability, restrictions, preferences
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := r.db.ExecContext(ctx, query,
		emp.Name, emp.MaxWeeklyHours, emp.MinWeeklyHours,
		availability, restrictions, preferences,
	); err != nil {
		return fmt.Errorf("创建员工失败: %w", err)
	}
	return nil
}

// GetByName 根据名字获取员工
func (r *EmployeeRepository) GetByName(ctx context.Context, name string) (*model.Employee, error) {
	query := `
		SELECT name, max_weekly_hours, min_weekly_hours,
			availability, restrictions, preferences
		FROM employees
		WHERE name = $1
	`
	return scanEmployee(r.db.QueryRowContext(ctx, query, name))
}

// List 列出员工
func (r *EmployeeRepository) List(ctx context.Context, filter ListFilter) ([]*model.Employee, error) {
	query := `
		SELECT name, max_weekly_hours, min_weekly_hours,
			availability, restrictions, preferences
		FROM employees
	`
	args := []interface{}{}
	if filter.Search != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, "%"+filter.Search+"%")
	}
	query += fmt.Sprintf(` ORDER BY name ASC LIMIT %d OFFSET %d`, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询员工列表失败: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// Update 更新员工
func (r *EmployeeRepository) Update(ctx context.Context, emp *model.Employee) error {
	availability, restrictions, preferences, err := marshalEmployeeMaps(emp)
	if err != nil {
		return err
	}

	query := `
		UPDATE employees SET
			max_weekly_hours = $2, min_weekly_hours = $3,
			availability = $4, restrictions = $5, preferences = $6,
			updated_at = now()
		WHERE name = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		emp.Name, emp.MaxWeeklyHours, emp.MinWeeklyHours,
		availability, restrictions, preferences,
	)
	if err != nil {
		return fmt.Errorf("更新员工失败: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("员工", emp.Name)
	}
	return nil
}

// Delete 删除员工
func (r *EmployeeRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("删除员工失败: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("员工", name)
	}
	return nil
}

// marshalEmployeeMaps 序列化员工的三个映射字段
func marshalEmployeeMaps(emp *model.Employee) (availability, restrictions, preferences []byte, err error) {
	if availability, err = json.Marshal(emp.Availability); err != nil {
		return nil, nil, nil, fmt.Errorf("序列化可用性失败: %w", err)
	}
	if restrictions, err = json.Marshal(emp.Restrictions); err != nil {
		return nil, nil, nil, fmt.Errorf("序列化限制失败: %w", err)
	}
	if preferences, err = json.Marshal(emp.Preferences); err != nil {
		return nil, nil, nil, fmt.Errorf("序列化偏好失败: %w", err)
	}
	return availability, restrictions, preferences, nil
}

// scanEmployee 从查询结果扫描员工记录
func scanEmployee(row Scanner) (*model.Employee, error) {
	var emp model.Employee
	var availability, restrictions, preferences []byte

	err := row.Scan(
		&emp.Name, &emp.MaxWeeklyHours, &emp.MinWeeklyHours,
		&availability, &restrictions, &preferences,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取员工记录失败: %w", err)
	}

	if err := json.Unmarshal(availability, &emp.Availability); err != nil {
		return nil, fmt.Errorf("解析可用性失败: %w", err)
	}
	if err := json.Unmarshal(restrictions, &emp.Restrictions); err != nil {
		return nil, fmt.Errorf("解析限制失败: %w", err)
	}
	if err := json.Unmarshal(preferences, &emp.Preferences); err != nil {
		return nil, fmt.Errorf("解析偏好失败: %w", err)
	}
	return &emp, nil
}
