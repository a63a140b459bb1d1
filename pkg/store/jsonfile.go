// Package store 提供员工记录的 JSON 文件存取
// 文件格式为按员工名作键的对象，与交互端维护的数据文件兼容。
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
)

// record 文件内单个员工的值部分，名字由键承载
type record struct {
	MaxWeeklyHours float64                            `json:"max_weekly_hours"`
	MinWeeklyHours float64                            `json:"min_weekly_hours"`
	Availability   map[string][]model.ShiftKind       `json:"availability"`
	Restrictions   map[string][]model.ShiftKind       `json:"restrictions,omitempty"`
	Preferences    map[string]map[model.ShiftKind]int `json:"preferences,omitempty"`
}

// JSONStore 基于单个 JSON 文件的员工存储
type JSONStore struct {
	path string
}

// NewJSONStore 创建 JSON 文件存储
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path 返回数据文件路径
func (s *JSONStore) Path() string {
	return s.path
}

// Load 读取全部员工记录
// 文件不存在视为空集合；返回的切片按员工名升序。
func (s *JSONStore) Load() ([]*model.Employee, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取员工文件失败: %w", err)
	}

	var records map[string]record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("解析员工文件失败: %w", err)
	}

	employees := make([]*model.Employee, 0, len(records))
	for name, r := range records {
		employees = append(employees, &model.Employee{
			Name:           name,
			MaxWeeklyHours: r.MaxWeeklyHours,
			MinWeeklyHours: r.MinWeeklyHours,
			Availability:   r.Availability,
			Restrictions:   r.Restrictions,
			Preferences:    r.Preferences,
		})
	}
	model.SortEmployees(employees)
	return employees, nil
}

// Save 写出全部员工记录
// 先写临时文件再原子替换，避免写入中断留下半截文件。
func (s *JSONStore) Save(employees []*model.Employee) error {
	records := make(map[string]record, len(employees))
	for _, e := range employees {
		records[e.Name] = record{
			MaxWeeklyHours: e.MaxWeeklyHours,
			MinWeeklyHours: e.MinWeeklyHours,
			Availability:   e.Availability,
			Restrictions:   e.Restrictions,
			Preferences:    e.Preferences,
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化员工记录失败: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".employees-*.json")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("替换员工文件失败: %w", err)
	}
	return nil
}
