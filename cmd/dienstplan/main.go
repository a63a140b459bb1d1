// dienstplan 排班命令行工具
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/klewi95/FiFi-Dienstplan/internal/cli"
	"github.com/klewi95/FiFi-Dienstplan/internal/config"
	"github.com/klewi95/FiFi-Dienstplan/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
		Output: "stderr",
	})

	root := cli.NewRootCmd(&cli.App{Config: cfg})
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
