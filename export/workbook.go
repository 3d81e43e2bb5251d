// Package export renders a staff member's month as an .xlsx workbook with
// an attendance sheet, a report sheet and a summary sheet.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/warp/workday-engine/attendance"
	"github.com/warp/workday-engine/generic"
	"github.com/warp/workday-engine/performance"
	"github.com/warp/workday-engine/reports"
)

const (
	SheetAttendance = "Attendance"
	SheetReports    = "Reports"
	SheetSummary    = "Summary"
)

// Month is everything one workbook shows. Score may be nil.
type Month struct {
	Staff      generic.Staff
	Month      generic.MonthRef
	Location   *time.Location
	Attendance attendance.History
	Reports    reports.Timeline
	Score      *performance.Score
}

// MonthlyWorkbook renders m and returns the file plus a suggested filename.
func MonthlyWorkbook(m Month) (*bytes.Buffer, string, error) {
	loc := m.Location
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetSummary)
	if err != nil {
		return nil, "", fmt.Errorf("create summary sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(SheetAttendance); err != nil {
		return nil, "", fmt.Errorf("create attendance sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetReports); err != nil {
		return nil, "", fmt.Errorf("create reports sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	writeSummary(f, m, headerStyle)
	writeAttendance(f, m.Attendance, loc, headerStyle)
	writeReports(f, m.Reports, headerStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}

	name := strings.ReplaceAll(m.Staff.DisplayName(), " ", "_")
	filename := fmt.Sprintf("%s_%s.xlsx", name, m.Month.String())
	return buf, filename, nil
}

func writeSummary(f *excelize.File, m Month, headerStyle int) {
	f.SetColWidth(SheetSummary, "A", "A", 24)
	f.SetColWidth(SheetSummary, "B", "B", 28)

	f.SetCellValue(SheetSummary, "A1", fmt.Sprintf("%s - %s", m.Staff.DisplayName(), m.Month.String()))
	f.MergeCell(SheetSummary, "A1", "B1")
	f.SetCellStyle(SheetSummary, "A1", "B1", headerStyle)

	rows := [][2]any{
		{"Email", m.Staff.Email},
		{"Total work hours", m.Attendance.TotalWorkHours},
		{"Completed days", m.Attendance.Count(attendance.StatusCompleted)},
		{"Checked in only", m.Attendance.Count(attendance.StatusCheckedInOnly)},
		{"Absent days", m.Attendance.Count(attendance.StatusAbsent)},
		{"Reports submitted", m.Reports.Count(reports.StatusSubmitted)},
		{"Reports missed", m.Reports.Count(reports.StatusMissed)},
	}
	if m.Score != nil {
		rows = append(rows,
			[2]any{"Performance score", round2(m.Score.Score)},
			[2]any{"Report consistency", round2(m.Score.ReportConsistency)},
			[2]any{"Task score", round2(m.Score.TaskScore)},
			[2]any{"Attendance rate", round2(m.Score.AttendanceRate)},
			[2]any{"Training score", round2(m.Score.TrainingScore)},
			[2]any{"Achievements", m.Score.AchievementCount},
		)
	}
	for i, r := range rows {
		row := i + 2
		f.SetCellValue(SheetSummary, cell("A", row), r[0])
		f.SetCellValue(SheetSummary, cell("B", row), r[1])
	}
}

func writeAttendance(f *excelize.File, h attendance.History, loc *time.Location, headerStyle int) {
	headers := []string{"Date", "Status", "Check in", "Check out", "Minutes", "Late", "Late checkout", "Missed checkout"}
	writeHeader(f, SheetAttendance, headers, headerStyle)

	for i, d := range h.Days {
		row := i + 2
		f.SetCellValue(SheetAttendance, cell("A", row), d.Date.String())
		f.SetCellValue(SheetAttendance, cell("B", row), string(d.Status))
		f.SetCellValue(SheetAttendance, cell("C", row), clock(d.CheckInTime, loc))
		f.SetCellValue(SheetAttendance, cell("D", row), clock(d.CheckOutTime, loc))
		if d.TotalWorkMinutes != nil {
			f.SetCellValue(SheetAttendance, cell("E", row), *d.TotalWorkMinutes)
		}
		f.SetCellValue(SheetAttendance, cell("F", row), yesNo(d.IsLate))
		f.SetCellValue(SheetAttendance, cell("G", row), yesNo(d.IsLateCheckout))
		f.SetCellValue(SheetAttendance, cell("H", row), yesNo(d.MissedCheckout))
	}
}

func writeReports(f *excelize.File, t reports.Timeline, headerStyle int) {
	headers := []string{"Date", "Status", "Achievements", "Challenges", "Completed tasks", "Plans for tomorrow"}
	writeHeader(f, SheetReports, headers, headerStyle)
	f.SetColWidth(SheetReports, "C", "F", 40)

	for i, d := range t.Reports {
		row := i + 2
		f.SetCellValue(SheetReports, cell("A", row), d.Date.String())
		f.SetCellValue(SheetReports, cell("B", row), string(d.Status))
		f.SetCellValue(SheetReports, cell("C", row), deref(d.Achievements))
		f.SetCellValue(SheetReports, cell("D", row), deref(d.Challenges))
		f.SetCellValue(SheetReports, cell("E", row), deref(d.CompletedTasks))
		f.SetCellValue(SheetReports, cell("F", row), deref(d.PlansForTomorrow))
	}
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	last := colName(len(headers) - 1)
	f.SetCellStyle(sheet, "A1", cell(last, 1), style)
	f.SetColWidth(sheet, "A", last, 14)
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// Helper functions

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func clock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format("15:04:05")
}

func round2(f float64) float64 {
	return generic.Round2(decimal.NewFromFloat(f))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
