package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/klewi95/FiFi-Dienstplan/pkg/calendar"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
	"github.com/klewi95/FiFi-Dienstplan/pkg/store"
)

func newEmployeesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "查看员工数据",
	}

	cmd.AddCommand(
		newEmployeesListCmd(),
		newEmployeesShowCmd(),
	)

	return cmd
}

func newEmployeesListCmd() *cobra.Command {
	var employeesPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "列出全部员工",
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := store.NewJSONStore(employeesPath).Load()
			if err != nil {
				return err
			}

			for _, e := range employees {
				fmt.Printf("%-20s %5.1f - %5.1f 小时/周\n", e.Name, e.MinWeeklyHours, e.MaxWeeklyHours)
			}
			fmt.Printf("共 %d 名员工\n", len(employees))
			return nil
		},
	}

	cmd.Flags().StringVar(&employeesPath, "employees", "employees.json", "员工数据文件")
	return cmd
}

func newEmployeesShowCmd() *cobra.Command {
	var employeesPath string

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "显示单个员工的可用性与偏好",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := store.NewJSONStore(employeesPath).Load()
			if err != nil {
				return err
			}

			var emp *model.Employee
			for _, e := range employees {
				if e.Name == args[0] {
					emp = e
					break
				}
			}
			if emp == nil {
				return fmt.Errorf("找不到员工 %s", args[0])
			}

			fmt.Printf("%s\n", emp.Name)
			fmt.Printf("  周工时: %.1f - %.1f\n", emp.MinWeeklyHours, emp.MaxWeeklyHours)

			fmt.Println("  可用性:")
			for _, day := range model.WeekdayNames() {
				kinds := emp.Availability[day]
				if len(kinds) == 0 {
					continue
				}
				fmt.Printf("    %-9s %v\n", day, kinds)
			}

			if len(emp.Restrictions) > 0 {
				fmt.Println("  限制:")
				for _, date := range sortedMapKeys(emp.Restrictions) {
					fmt.Printf("    %s 禁止 %v\n", date, emp.Restrictions[date])
				}
			}

			if len(emp.Preferences) > 0 {
				fmt.Println("  偏好:")
				for _, key := range sortedMapKeys(emp.Preferences) {
					fmt.Printf("    %-10s %v\n", key, emp.Preferences[key])
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&employeesPath, "employees", "employees.json", "员工数据文件")
	return cmd
}

func newHolidaysCmd(app *App) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "列出排班周期内的法定节假日",
		RunE: func(cmd *cobra.Command, args []string) error {
			horizon, err := app.resolveHorizon(start, end)
			if err != nil {
				return err
			}

			cal := calendar.NewResolver(app.calendarConfig(), horizon)
			holidays := cal.Holidays()
			if len(holidays) == 0 {
				fmt.Printf("%s 至 %s 没有法定节假日 (%s)\n",
					horizon.StartDate, horizon.EndDate, app.Config.Calendar.Jurisdiction)
				return nil
			}

			for _, h := range holidays {
				fmt.Println(h)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "周期开始日期 (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "周期结束日期 (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func sortedMapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
