// FiFi Dienstplan 排班服务
// 主程序入口

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/klewi95/FiFi-Dienstplan/internal/config"
	"github.com/klewi95/FiFi-Dienstplan/internal/database"
	"github.com/klewi95/FiFi-Dienstplan/internal/handler"
	"github.com/klewi95/FiFi-Dienstplan/internal/metrics"
	"github.com/klewi95/FiFi-Dienstplan/internal/middleware"
	"github.com/klewi95/FiFi-Dienstplan/internal/repository"
	"github.com/klewi95/FiFi-Dienstplan/pkg/logger"
	"github.com/klewi95/FiFi-Dienstplan/pkg/solver"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// .env 不存在时静默跳过
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: logFormat(cfg),
	})

	logger.Info().
		Str("version", Version).
		Str("build", BuildTime).
		Str("commit", GitCommit).
		Str("env", cfg.App.Env).
		Msg("FiFi Dienstplan 启动")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Error().Err(err).Msg("数据库连接失败")
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelMigrate()
	if err := db.Migrate(migrateCtx); err != nil {
		logger.Error().Err(err).Msg("数据库迁移失败")
		os.Exit(1)
	}

	employees := repository.NewEmployeeRepository(db)
	schedules := repository.NewScheduleRepository(db)

	cbc := solver.NewCBCSolver(cfg.Solver.Binary)
	cbc.SetWorkDir(cfg.Solver.WorkDir)
	cbc.SetKeepFiles(cfg.Solver.KeepFiles)

	registry := metrics.New()

	scheduleHandler := handler.NewScheduleHandler(cfg, cbc, employees, schedules).WithRecorder(registry)
	employeeHandler := handler.NewEmployeeHandler(employees)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Health(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"degraded","database":"%v"}`, err)
			return
		}
		w.Write([]byte(`{"status":"ok","service":"fifi-dienstplan"}`))
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	mux.HandleFunc("/api/v1/employees", employeeHandler.Collection)
	mux.HandleFunc("/api/v1/employees/", employeeHandler.Item)

	mux.HandleFunc("/api/v1/schedule/generate", scheduleHandler.Generate)
	mux.HandleFunc("/api/v1/schedule/validate", scheduleHandler.Validate)
	mux.HandleFunc("/api/v1/schedule/export", scheduleHandler.Export)
	mux.HandleFunc("/api/v1/schedule/report", scheduleHandler.Report)
	mux.HandleFunc("/api/v1/schedule/runs", scheduleHandler.ListRuns)
	mux.HandleFunc("/api/v1/schedule/swap", scheduleHandler.Swap)
	mux.HandleFunc("/api/v1/rules", scheduleHandler.Rules)

	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, registry.Handler())
	}

	rateLimiter := middleware.NewRateLimiter(cfg.API.RateLimit, time.Minute)
	root := middleware.Chain(mux,
		middleware.RequestIDMiddleware,
		middleware.RecoveryMiddleware,
		middleware.SecurityHeadersMiddleware,
		middleware.RateLimitMiddleware(rateLimiter),
		middleware.MetricsMiddleware(registry),
		middleware.LoggingMiddleware,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Solver.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("solver", cbc.Name()).
			Msg("HTTP服务监听")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

func logFormat(cfg *config.Config) string {
	if cfg.IsDevelopment() {
		return "console"
	}
	return "json"
}
