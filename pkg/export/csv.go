// Package export 把排班表导出为表格格式
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
)

// csvHeader 导出列，顺序固定
var csvHeader = []string{
	"employee", "date", "weekday_name", "shift_kind",
	"start_time", "end_time", "paid_hours", "break_taken",
}

// WriteCSV 按固定列序写出排班表，每个排入的班次一行
// 行序与排班表一致：员工名升序，员工内按日期升序。
func WriteCSV(w io.Writer, schedule *model.Schedule) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("写入表头失败: %w", err)
	}

	for _, es := range schedule.Employees {
		for _, entry := range es.Entries {
			record := []string{
				es.Employee,
				entry.Date,
				entry.Weekday,
				string(entry.Kind),
				entry.StartClock,
				entry.EndClock,
				strconv.FormatFloat(entry.PaidHours, 'f', -1, 64),
				yesNo(entry.BreakTaken),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("写入排班行失败: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV 导出到文件
func SaveCSV(path string, schedule *model.Schedule) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建导出文件失败: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, schedule); err != nil {
		return err
	}
	return f.Close()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
