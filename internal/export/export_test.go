package export

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/attendance-bot/internal/domain/attendance"
	"github.com/Spok95/attendance-bot/internal/domain/attendance/attendancetest"
	"github.com/Spok95/attendance-bot/internal/domain/reports"
)

func open(t *testing.T, wb Workbook) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(wb.Data))
	if err != nil {
		t.Fatalf("open workbook %s: %v", wb.Name, err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, axis)
	if err != nil {
		t.Fatalf("get %s!%s: %v", sheet, axis, err)
	}
	return v
}

func fixture() []attendance.Record {
	return []attendance.Record{
		attendancetest.MustRecord("12_31_2025", attendance.Midweek, 1, 20),
		attendancetest.MustRecord("01_04_2026", attendance.Weekend, 4, 60),
		attendancetest.MustRecord("01_07_2026", attendance.Midweek, 2, 30),
		attendancetest.MustRecord("01_11_2026", attendance.Weekend, 3, 70),
		attendancetest.MustRecord("03_04_2026", attendance.Midweek, 5, 25),
	}
}

func TestReportsWorkbook(t *testing.T) {
	wb, err := Reports(reports.FromRecords(fixture()))
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	if wb.Name != "AttendanceReports.xlsx" {
		t.Fatalf("unexpected name %q", wb.Name)
	}
	f := open(t, wb)
	rows, err := f.GetRows("Attendance Reports")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	// header + 3 months * 2 rows
	if len(rows) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(rows))
	}
	want := []string{"January 2026", "Weekend", "2", "137", "69", "7", "4"}
	if !reflect.DeepEqual(rows[4], want) {
		t.Fatalf("expected %v, got %v", want, rows[4])
	}

	if _, err := Reports(nil); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestYearWorkbook(t *testing.T) {
	wb, err := Year(fixture(), 2026)
	if err != nil {
		t.Fatalf("year: %v", err)
	}
	if wb.Name != "attendance_report_2026.xlsx" {
		t.Fatalf("unexpected name %q", wb.Name)
	}
	f := open(t, wb)
	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{"Year 2026", "Reports"}) {
		t.Fatalf("unexpected sheets %v", got)
	}
	rows, _ := f.GetRows("Year 2026")
	if len(rows) != 5 {
		t.Fatalf("expected header + 4 records, got %d rows", len(rows))
	}
	if rows[1][0] != "01_07_2026" || rows[1][1] != "Midweek" {
		t.Fatalf("unexpected first record row %v", rows[1])
	}

	if _, err := Year(fixture(), 2019); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestParseRange(t *testing.T) {
	rg, err := ParseRange("December", "2025", "January", "2026")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if !rg.Contains(2025, time.December) || !rg.Contains(2026, time.January) || rg.Contains(2026, time.February) {
		t.Fatalf("unexpected containment for %+v", rg)
	}
	if rg.FileName() != "attendance_report_December_2025_to_January_2026.xlsx" {
		t.Fatalf("unexpected file name %q", rg.FileName())
	}

	if _, err := ParseRange("March", "2026", "January", "2026"); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := ParseRange("", "2026", "January", "2026"); !errors.Is(err, attendance.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestRangeBounds(t *testing.T) {
	cases := []struct {
		rg       Range
		from, to string
	}{
		{YearRange(2026), "2026-01-01", "2027-01-01"},
		{MonthRange(2026, time.December), "2026-12-01", "2027-01-01"},
		{Range{StartMonth: time.November, StartYear: 2025, EndMonth: time.February, EndYear: 2026}, "2025-11-01", "2026-03-01"},
	}
	for _, c := range cases {
		from, to := c.rg.Bounds()
		if from.Format(time.DateOnly) != c.from || to.Format(time.DateOnly) != c.to {
			t.Fatalf("%+v: expected [%s, %s), got [%s, %s)", c.rg, c.from, c.to, from.Format(time.DateOnly), to.Format(time.DateOnly))
		}
	}
}

func TestRangeWorkbook(t *testing.T) {
	rg, _ := ParseRange("December", "2025", "January", "2026")
	wb, err := RangeWorkbook(fixture(), rg)
	if err != nil {
		t.Fatalf("range workbook: %v", err)
	}
	f := open(t, wb)
	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{"Year 2025", "Year 2026", "Reports"}) {
		t.Fatalf("unexpected sheets %v", got)
	}

	if v := cell(t, f, "Year 2025", "A1"); v != "Month: December" {
		t.Fatalf("unexpected header %q", v)
	}
	if v := cell(t, f, "Year 2025", "C2"); v != "12_31_2025" {
		t.Fatalf("unexpected record date %q", v)
	}
	// January: header, three records, blank separator.
	if v := cell(t, f, "Year 2026", "A1"); v != "Month: January" {
		t.Fatalf("unexpected header %q", v)
	}
	if v := cell(t, f, "Year 2026", "B2"); v != "Midweek" {
		t.Fatalf("expected midweek first, got %q", v)
	}
	if v := cell(t, f, "Year 2026", "A6"); v != "" {
		t.Fatalf("expected no March data in range, got %q", v)
	}

	empty, _ := ParseRange("June", "2024", "July", "2024")
	if _, err := RangeWorkbook(fixture(), empty); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestWeeks(t *testing.T) {
	months := attendance.GroupByMonth(attendance.Filter{Year: 2026, Month: time.January}.Apply(fixture()))
	weeks := Weeks(months[0])
	if len(weeks) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(weeks))
	}
	// Sunday Jan 4 belongs to the week starting Monday Dec 29.
	if got := weeks[0].Start.Format("2006-01-02"); got != "2025-12-29" {
		t.Fatalf("unexpected first week start %s", got)
	}
	if len(weeks[0].Weekend) != 1 || len(weeks[0].Midweek) != 0 {
		t.Fatalf("unexpected first week %+v", weeks[0])
	}
	if len(weeks[1].Midweek) != 1 || len(weeks[1].Weekend) != 1 {
		t.Fatalf("unexpected second week %+v", weeks[1])
	}
}

func TestMonthWorkbookMergesBlocks(t *testing.T) {
	wb, err := MonthWorkbook(fixture(), 2026, time.January)
	if err != nil {
		t.Fatalf("month workbook: %v", err)
	}
	if wb.Name != "attendance_January_2026.xlsx" {
		t.Fatalf("unexpected name %q", wb.Name)
	}
	f := open(t, wb)
	sheet := "January 2026"

	merged, err := f.GetMergeCells(sheet)
	if err != nil {
		t.Fatalf("merge cells: %v", err)
	}
	got := map[string]string{}
	for _, mc := range merged {
		got[mc.GetStartAxis()] = mc.GetEndAxis()
	}
	for start, end := range map[string]string{"A1": "I1", "A2": "A3", "B2": "E2", "F2": "I2"} {
		if got[start] != end {
			t.Fatalf("expected merge %s:%s, got %v", start, end, got)
		}
	}

	if v := cell(t, f, sheet, "A4"); v != "Week 1" {
		t.Fatalf("unexpected week label %q", v)
	}
	if v := cell(t, f, sheet, "F4"); v != "January 04, 2026" {
		t.Fatalf("unexpected weekend date %q", v)
	}
	if v := cell(t, f, sheet, "B5"); v != "January 07, 2026" {
		t.Fatalf("unexpected midweek date %q", v)
	}
	if v := cell(t, f, sheet, "A6"); v != "Total" {
		t.Fatalf("expected totals row, got %q", v)
	}
	if v := cell(t, f, sheet, "I6"); v != "137" {
		t.Fatalf("expected weekend total 137, got %q", v)
	}

	if _, err := MonthWorkbook(fixture(), 2026, time.February); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestWriteMeetingReportsSheetErrors(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	rec := attendancetest.MustRecord("01_07_2026", attendance.Midweek, 2, 30)

	if err := writeMeeting(f, "Sheet1", "B", 4, rec); err != nil {
		t.Fatalf("write: %v", err)
	}
	err := writeMeeting(f, "January 2026", "B", 4, rec)
	var missing excelize.ErrSheetNotExist
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrSheetNotExist, got %v", err)
	}
}
