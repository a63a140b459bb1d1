package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}

	if cfg.App.Name != "fifi-dienstplan" {
		t.Errorf("应用名 = %s", cfg.App.Name)
	}
	if cfg.Calendar.Jurisdiction != "NW" {
		t.Errorf("默认州 = %s, 期望 NW", cfg.Calendar.Jurisdiction)
	}
	if cfg.Policy.MaxConsecutiveDays != 6 || cfg.Policy.MinRestHours != 11 {
		t.Errorf("政策默认值错误: %+v", cfg.Policy)
	}
	if cfg.Policy.RollingMaxHours != 192 {
		t.Errorf("滚动窗口上限 = %v, 期望 192", cfg.Policy.RollingMaxHours)
	}
	if cfg.Solver.Binary != "cbc" {
		t.Errorf("求解器 = %s, 期望 cbc", cfg.Solver.Binary)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POLICY_MIN_STAFF_PER_SHIFT", "1")
	t.Setenv("CALENDAR_JURISDICTION", "BY")
	t.Setenv("APP_PORT", "8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Policy.MinStaffPerShift != 1 {
		t.Errorf("人数下界 = %d, 期望覆盖为 1", cfg.Policy.MinStaffPerShift)
	}
	if cfg.Calendar.Jurisdiction != "BY" {
		t.Errorf("州 = %s, 期望 BY", cfg.Calendar.Jurisdiction)
	}
	if cfg.App.Port != 8080 {
		t.Errorf("端口 = %d, 期望 8080", cfg.App.Port)
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Name: "dienstplan", SSLMode: "disable",
	}
	want := "host=db port=5432 user=u password=p dbname=dienstplan sslmode=disable"
	if got := db.DSN(); got != want {
		t.Errorf("DSN = %s, 期望 %s", got, want)
	}
}
