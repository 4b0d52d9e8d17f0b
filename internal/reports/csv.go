package reports

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// WriteMonthlyCSV serialises a monthly report to CSV: one row per
// accounted day plus a totals footer.
func WriteMonthlyCSV(w io.Writer, report MonthlyReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"Date", "First In", "Last Out", "Worked Minutes", "Expected Minutes", "Unpaired"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range report.Days {
		if err := writer.Write([]string{
			row.Date.Format("2006-01-02"),
			formatClock(row.FirstIn),
			formatClock(row.LastOut),
			strconv.Itoa(row.WorkedMinutes),
			strconv.Itoa(row.ExpectedMinutes),
			strconv.Itoa(row.Unpaired),
		}); err != nil {
			return err
		}
	}
	footer := []string{
		"Total",
		"",
		"",
		strconv.Itoa(report.Totals.WorkedMinutes),
		strconv.Itoa(report.Totals.ExpectedMinutes),
		"",
	}
	if err := writer.Write(footer); err != nil {
		return err
	}
	if err := writer.Write([]string{
		"Balance", "", "", strconv.Itoa(report.Totals.BalanceMinutes), "", "",
	}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}
