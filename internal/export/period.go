package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/attendance-bot/internal/domain/attendance"
	"github.com/Spok95/attendance-bot/internal/domain/reports"
)

var recordHeader = []any{"Date", "Meeting Type", "Deaf", "Hearing", "Total"}

// Year renders every record of one year plus a Reports sheet.
func Year(records []attendance.Record, year int) (Workbook, error) {
	months := attendance.GroupByMonth(attendance.Filter{Year: year}.Apply(records))
	if len(months) == 0 {
		return Workbook{}, ErrNoData
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := fmt.Sprintf("Year %d", year)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return Workbook{}, err
	}
	if err := f.SetSheetRow(sheet, "A1", &recordHeader); err != nil {
		return Workbook{}, err
	}
	if err := boldRow(f, sheet, 1, len(recordHeader)); err != nil {
		return Workbook{}, err
	}
	row := 2
	for _, m := range months {
		for _, r := range m.Records() {
			vals := []any{r.DateKey, string(r.MeetingType), r.Deaf, r.Hearing, r.Total}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &vals); err != nil {
				return Workbook{}, err
			}
			row++
		}
	}

	if _, err := f.NewSheet(reportsSheet); err != nil {
		return Workbook{}, err
	}
	if err := writeReports(f, reportsSheet, reports.Compute(months)); err != nil {
		return Workbook{}, err
	}
	return finish(f, fmt.Sprintf("attendance_report_%d.xlsx", year))
}

// Range is an inclusive span of calendar months.
type Range struct {
	StartMonth time.Month
	StartYear  int
	EndMonth   time.Month
	EndYear    int
}

// YearRange spans January through December of year.
func YearRange(year int) Range {
	return Range{StartMonth: time.January, StartYear: year, EndMonth: time.December, EndYear: year}
}

func MonthRange(year int, month time.Month) Range {
	return Range{StartMonth: month, StartYear: year, EndMonth: month, EndYear: year}
}

func ParseRange(startMonth, startYear, endMonth, endYear string) (Range, error) {
	sm, ok1 := attendance.ParseMonth(startMonth)
	em, ok2 := attendance.ParseMonth(endMonth)
	sy, err1 := strconv.Atoi(strings.TrimSpace(startYear))
	ey, err2 := strconv.Atoi(strings.TrimSpace(endYear))
	if !ok1 || !ok2 || err1 != nil || err2 != nil {
		return Range{}, fmt.Errorf("%w: please select start and end month/year", attendance.ErrInvalidDate)
	}
	rg := Range{StartMonth: sm, StartYear: sy, EndMonth: em, EndYear: ey}
	if rg.index(sy, sm) > rg.index(ey, em) {
		return Range{}, ErrInvalidRange
	}
	return rg, nil
}

func (Range) index(year int, month time.Month) int { return year*12 + int(month) - 1 }

func (rg Range) Contains(year int, month time.Month) bool {
	i := rg.index(year, month)
	return i >= rg.index(rg.StartYear, rg.StartMonth) && i <= rg.index(rg.EndYear, rg.EndMonth)
}

// Bounds returns the first day of the range and the first day after it,
// as UTC midnights matching parsed date keys.
func (rg Range) Bounds() (from, toExclusive time.Time) {
	from = time.Date(rg.StartYear, rg.StartMonth, 1, 0, 0, 0, 0, time.UTC)
	toExclusive = time.Date(rg.EndYear, rg.EndMonth+1, 1, 0, 0, 0, 0, time.UTC)
	return from, toExclusive
}

func (rg Range) FileName() string {
	return fmt.Sprintf("attendance_report_%s_%d_to_%s_%d.xlsx", rg.StartMonth, rg.StartYear, rg.EndMonth, rg.EndYear)
}

// RangeWorkbook renders one sheet per year; each month gets a header row,
// its records and a blank separator row. A Reports sheet closes the file.
func RangeWorkbook(records []attendance.Record, rg Range) (Workbook, error) {
	var months []attendance.Month
	for _, m := range attendance.GroupByMonth(records) {
		if m.Year != 0 && rg.Contains(m.Year, m.Month) {
			months = append(months, m)
		}
	}
	if len(months) == 0 {
		return Workbook{}, ErrNoData
	}

	byYear := map[int][]attendance.Month{}
	var years []int
	for _, m := range months {
		if _, ok := byYear[m.Year]; !ok {
			years = append(years, m.Year)
		}
		byYear[m.Year] = append(byYear[m.Year], m)
	}
	sort.Ints(years)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, y := range years {
		sheet := fmt.Sprintf("Year %d", y)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return Workbook{}, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return Workbook{}, err
		}

		row := 1
		for _, m := range byYear[y] {
			header := []any{"Month: " + m.Month.String(), "Meeting Type", "Date", "Hearing", "Deaf", "Total"}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &header); err != nil {
				return Workbook{}, err
			}
			if err := boldRow(f, sheet, row, len(header)); err != nil {
				return Workbook{}, err
			}
			row++
			for _, r := range m.Records() {
				vals := []any{"", string(r.MeetingType), r.DateKey, r.Hearing, r.Deaf, r.Total}
				if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &vals); err != nil {
					return Workbook{}, err
				}
				row++
			}
			row++
		}
	}

	if _, err := f.NewSheet(reportsSheet); err != nil {
		return Workbook{}, err
	}
	if err := writeReports(f, reportsSheet, reports.Compute(months)); err != nil {
		return Workbook{}, err
	}
	return finish(f, rg.FileName())
}
