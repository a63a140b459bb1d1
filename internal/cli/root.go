// Package cli 提供dienstplan命令行工具
package cli

import (
	"github.com/spf13/cobra"

	"github.com/klewi95/FiFi-Dienstplan/internal/config"
)

// App CLI命令共享的依赖
type App struct {
	Config *config.Config
}

// NewRootCmd 创建顶层dienstplan命令并注册所有子命令
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "dienstplan",
		Short:         "基于MILP的员工排班工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newGenerateCmd(app),
		newValidateCmd(app),
		newEmployeesCmd(app),
		newHolidaysCmd(app),
	)

	return root
}
