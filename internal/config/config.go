// Package config 提供配置管理
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/klewi95/FiFi-Dienstplan/pkg/planner"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Calendar CalendarConfig `yaml:"calendar"`
	Policy   planner.Policy `yaml:"policy"`
	Solver   SolverConfig   `yaml:"solver"`
	API      APIConfig      `yaml:"api"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// CalendarConfig 日历配置
type CalendarConfig struct {
	// Jurisdiction 德国联邦州代码，决定法定节假日集合
	Jurisdiction        string  `yaml:"jurisdiction"`
	BreakThresholdHours float64 `yaml:"break_threshold_hours"`
	BreakDeductionHours float64 `yaml:"break_deduction_hours"`

	// 默认排班周期（可被请求参数覆盖）
	DefaultHorizonStart string `yaml:"default_horizon_start"` // YYYY-MM-DD
	DefaultHorizonEnd   string `yaml:"default_horizon_end"`
}

// SolverConfig 外部求解器配置
type SolverConfig struct {
	Binary    string        `yaml:"binary"`
	WorkDir   string        `yaml:"work_dir"`
	KeepFiles bool          `yaml:"keep_files"`
	Timeout   time.Duration `yaml:"timeout"`
}

// APIConfig API配置
type APIConfig struct {
	RateLimit int           `yaml:"rate_limit"`
	Timeout   time.Duration `yaml:"timeout"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "fifi-dienstplan"),
			Env:      getEnv("APP_ENV", "development"),
			Port:     getEnvInt("APP_PORT", 7012),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "dienstplan"),
			User:            getEnv("DB_USER", "dienstplan"),
			Password:        getEnv("DB_PASSWORD", "dienstplan123"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Calendar: CalendarConfig{
			Jurisdiction:        getEnv("CALENDAR_JURISDICTION", "NW"),
			BreakThresholdHours: getEnvFloat("CALENDAR_BREAK_THRESHOLD_HOURS", 6),
			BreakDeductionHours: getEnvFloat("CALENDAR_BREAK_DEDUCTION_HOURS", 1),
			DefaultHorizonStart: getEnv("CALENDAR_HORIZON_START", ""),
			DefaultHorizonEnd:   getEnv("CALENDAR_HORIZON_END", ""),
		},
		Policy: planner.Policy{
			MaxConsecutiveDays:    getEnvInt("POLICY_MAX_CONSECUTIVE_DAYS", 6),
			MaxDailyHours:         getEnvFloat("POLICY_MAX_DAILY_HOURS", 8),
			MinRestHours:          getEnvFloat("POLICY_MIN_REST_HOURS", 11),
			MinStaffPerShift:      getEnvInt("POLICY_MIN_STAFF_PER_SHIFT", 2),
			MaxStaffPerShift:      getEnvInt("POLICY_MAX_STAFF_PER_SHIFT", 3),
			AllowedShiftDeviation: getEnvFloat("POLICY_ALLOWED_SHIFT_DEVIATION", 2),
			PenaltyPerExcessDay:   getEnvFloat("POLICY_PENALTY_PER_EXCESS_DAY", 100),
			PreferenceWeight:      getEnvFloat("POLICY_PREFERENCE_WEIGHT", 10),
			PenaltyWeight:         getEnvFloat("POLICY_PENALTY_WEIGHT", 1),
			RollingWindowDays:     getEnvInt("POLICY_ROLLING_WINDOW_DAYS", 28),
			RollingMaxHours:       getEnvFloat("POLICY_ROLLING_MAX_HOURS", 192),
		},
		Solver: SolverConfig{
			Binary:    getEnv("SOLVER_BINARY", "cbc"),
			WorkDir:   getEnv("SOLVER_WORK_DIR", ""),
			KeepFiles: getEnvBool("SOLVER_KEEP_FILES", false),
			Timeout:   getEnvDuration("SOLVER_TIMEOUT", 5*time.Minute),
		},
		API: APIConfig{
			RateLimit: getEnvInt("API_RATE_LIMIT", 100),
			Timeout:   getEnvDuration("API_TIMEOUT", 30*time.Second),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
