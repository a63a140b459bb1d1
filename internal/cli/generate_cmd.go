package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/klewi95/FiFi-Dienstplan/pkg/calendar"
	"github.com/klewi95/FiFi-Dienstplan/pkg/export"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
	"github.com/klewi95/FiFi-Dienstplan/pkg/planner"
	"github.com/klewi95/FiFi-Dienstplan/pkg/solver"
	"github.com/klewi95/FiFi-Dienstplan/pkg/store"
	"github.com/klewi95/FiFi-Dienstplan/pkg/validator"
)

func newGenerateCmd(app *App) *cobra.Command {
	var employeesPath, start, end, csvPath, jsonPath string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "生成一个排班周期的班表",
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := store.NewJSONStore(employeesPath).Load()
			if err != nil {
				return err
			}

			horizon, err := app.resolveHorizon(start, end)
			if err != nil {
				return err
			}

			cbc := solver.NewCBCSolver(app.Config.Solver.Binary)
			cbc.SetWorkDir(app.Config.Solver.WorkDir)
			cbc.SetKeepFiles(app.Config.Solver.KeepFiles)

			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Solver.Timeout)
			defer cancel()

			p := planner.New(cbc, app.Config.Policy, app.calendarConfig())
			schedule, err := p.Generate(ctx, employees, horizon)
			if err != nil {
				return err
			}

			fmt.Printf("排班完成: %s 至 %s, %d 名员工, %d 条班次\n",
				horizon.StartDate, horizon.EndDate, len(schedule.Employees), schedule.TotalEntries())

			if csvPath != "" {
				if err := export.SaveCSV(csvPath, schedule); err != nil {
					return err
				}
				fmt.Printf("CSV已写入 %s\n", csvPath)
			}

			if jsonPath != "" {
				if err := saveScheduleJSON(jsonPath, schedule); err != nil {
					return err
				}
				fmt.Printf("JSON已写入 %s\n", jsonPath)
			}

			if csvPath == "" && jsonPath == "" {
				return printScheduleTable(schedule)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&employeesPath, "employees", "employees.json", "员工数据文件")
	cmd.Flags().StringVar(&start, "start", "", "周期开始日期 (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "周期结束日期 (YYYY-MM-DD)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV输出路径")
	cmd.Flags().StringVar(&jsonPath, "json", "", "JSON输出路径")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newValidateCmd(app *App) *cobra.Command {
	var employeesPath, schedulePath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "审计一份已生成的班表",
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := store.NewJSONStore(employeesPath).Load()
			if err != nil {
				return err
			}

			schedule, err := loadScheduleJSON(schedulePath)
			if err != nil {
				return err
			}

			cal := calendar.NewResolver(app.calendarConfig(), schedule.Horizon)
			violations := validator.NewAuditor(app.Config.Policy, cal).Audit(schedule, employees)

			if len(violations) == 0 {
				fmt.Println("班表通过全部规则检查")
				return nil
			}

			for _, v := range violations {
				fmt.Printf("[%s] %s %s: %s\n", v.Type, v.Employee, v.Date, v.Message)
			}
			return fmt.Errorf("发现 %d 处违规", len(violations))
		},
	}

	cmd.Flags().StringVar(&employeesPath, "employees", "employees.json", "员工数据文件")
	cmd.Flags().StringVar(&schedulePath, "schedule", "", "班表JSON文件")
	_ = cmd.MarkFlagRequired("schedule")

	return cmd
}

func (app *App) resolveHorizon(start, end string) (model.DateRange, error) {
	if start == "" {
		start = app.Config.Calendar.DefaultHorizonStart
	}
	if end == "" {
		end = app.Config.Calendar.DefaultHorizonEnd
	}
	horizon := model.DateRange{StartDate: start, EndDate: end}
	if err := horizon.Validate(); err != nil {
		return model.DateRange{}, err
	}
	return horizon, nil
}

func (app *App) calendarConfig() calendar.Config {
	return calendar.Config{
		Jurisdiction:        app.Config.Calendar.Jurisdiction,
		BreakThresholdHours: app.Config.Calendar.BreakThresholdHours,
		BreakDeductionHours: app.Config.Calendar.BreakDeductionHours,
	}
}

func saveScheduleJSON(path string, schedule *model.Schedule) error {
	data, err := json.MarshalIndent(schedule, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func loadScheduleJSON(path string) (*model.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var schedule model.Schedule
	if err := json.Unmarshal(data, &schedule); err != nil {
		return nil, fmt.Errorf("解析班表文件 %s 失败: %w", path, err)
	}
	return &schedule, nil
}

func printScheduleTable(schedule *model.Schedule) error {
	for _, es := range schedule.Employees {
		fmt.Printf("\n%s\n", es.Employee)
		for _, e := range es.Entries {
			fmt.Printf("  %s %-9s %-5s %s-%s %.1fh\n",
				e.Date, e.Weekday, e.Kind, e.StartClock, e.EndClock, e.PaidHours)
		}
	}
	return nil
}
