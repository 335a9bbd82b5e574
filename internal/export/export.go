// Package export renders attendance data into .xlsx workbooks.
package export

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/attendance-bot/internal/domain/reports"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	ErrNoData       = errors.New("no attendance data for the selected period")
	ErrInvalidRange = errors.New("start month must not be after end month")
)

// Workbook is a rendered file ready to be downloaded or sent.
type Workbook struct {
	Name string
	Data []byte
}

const reportsSheet = "Reports"

var reportHeader = []any{
	"Month", "Meeting Type", "Meeting count", "Overall", "Overall average", "Deaf Total", "Deaf Average",
}

// Reports renders the monthly reports as two rows per month.
func Reports(reps []reports.Monthly) (Workbook, error) {
	if len(reps) == 0 {
		return Workbook{}, ErrNoData
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Attendance Reports"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return Workbook{}, err
	}
	if err := writeReports(f, sheet, reps); err != nil {
		return Workbook{}, err
	}
	return finish(f, "AttendanceReports.xlsx")
}

func writeReports(f *excelize.File, sheet string, reps []reports.Monthly) error {
	if err := f.SetSheetRow(sheet, "A1", &reportHeader); err != nil {
		return err
	}
	if err := boldRow(f, sheet, 1, len(reportHeader)); err != nil {
		return err
	}
	row := 2
	for _, r := range reps {
		for _, line := range []struct {
			label string
			s     reports.Summary
		}{
			{"Midweek", r.Midweek},
			{"Weekend", r.Weekend},
		} {
			vals := []any{r.MonthYear, line.label, line.s.Count, line.s.Total, line.s.Average, line.s.DeafTotal, line.s.DeafAverage}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &vals); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth(sheet, "A", "G", 16)
}

func boldRow(f *excelize.File, sheet string, row, cols int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), end, style)
}

func finish(f *excelize.File, name string) (Workbook, error) {
	if sheets := f.GetSheetList(); len(sheets) > 0 {
		if idx, err := f.GetSheetIndex(sheets[0]); err == nil {
			f.SetActiveSheet(idx)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return Workbook{}, err
	}
	return Workbook{Name: name, Data: buf.Bytes()}, nil
}
