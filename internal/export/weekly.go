package export

import (
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/attendance-bot/internal/domain/attendance"
)

// Week pairs the meetings of one Monday–Sunday week.
type Week struct {
	Start   time.Time
	Midweek []attendance.Record
	Weekend []attendance.Record
}

func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// Weeks splits a month's records into calendar weeks, earliest first.
func Weeks(m attendance.Month) []Week {
	var weeks []Week
	index := map[time.Time]int{}
	add := func(r attendance.Record) {
		if r.Date.IsZero() {
			d, err := attendance.ParseKey(r.DateKey)
			if err != nil {
				return
			}
			r.Date = d
		}
		start := weekStart(r.Date)
		i, ok := index[start]
		if !ok {
			i = len(weeks)
			index[start] = i
			weeks = append(weeks, Week{Start: start})
		}
		if r.MeetingType == attendance.Midweek {
			weeks[i].Midweek = append(weeks[i].Midweek, r)
		} else {
			weeks[i].Weekend = append(weeks[i].Weekend, r)
		}
	}
	// Records() is midweek-then-weekend, so weeks are sorted afterwards.
	for _, r := range m.Records() {
		add(r)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Start.Before(weeks[j].Start) })
	return weeks
}

// MonthWorkbook renders one month as a per-week grid: a Week column, then a
// merged Midweek block and a merged Weekend block of Date/Deaf/Hearing/Total.
func MonthWorkbook(records []attendance.Record, year int, month time.Month) (Workbook, error) {
	months := attendance.GroupByMonth(attendance.Filter{Year: year, Month: month}.Apply(records))
	if len(months) == 0 {
		return Workbook{}, ErrNoData
	}
	m := months[0]

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := m.Label()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return Workbook{}, err
	}

	head, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return Workbook{}, err
	}
	centered, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return Workbook{}, err
	}

	merges := [][2]string{{"A1", "I1"}, {"A2", "A3"}, {"B2", "E2"}, {"F2", "I2"}}
	titles := [][2]string{
		{"A1", "Attendance – " + m.Label()},
		{"A2", "Week"},
		{"B2", "Midweek"},
		{"F2", "Weekend"},
	}
	for _, t := range titles {
		if err := f.SetCellValue(sheet, t[0], t[1]); err != nil {
			return Workbook{}, err
		}
	}
	sub := []any{"Date", "Deaf", "Hearing", "Total", "Date", "Deaf", "Hearing", "Total"}
	if err := f.SetSheetRow(sheet, "B3", &sub); err != nil {
		return Workbook{}, err
	}
	for _, mc := range merges {
		if err := f.MergeCell(sheet, mc[0], mc[1]); err != nil {
			return Workbook{}, err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "I3", head); err != nil {
		return Workbook{}, err
	}

	row := 4
	for n, w := range Weeks(m) {
		span := max(len(w.Midweek), len(w.Weekend), 1)
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("Week %d", n+1)); err != nil {
			return Workbook{}, err
		}
		if span > 1 {
			if err := f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row+span-1)); err != nil {
				return Workbook{}, err
			}
		}
		for i := 0; i < span; i++ {
			if i < len(w.Midweek) {
				if err := writeMeeting(f, sheet, "B", row+i, w.Midweek[i]); err != nil {
					return Workbook{}, err
				}
			}
			if i < len(w.Weekend) {
				if err := writeMeeting(f, sheet, "F", row+i, w.Weekend[i]); err != nil {
					return Workbook{}, err
				}
			}
		}
		row += span
	}

	mwTotal, weTotal := m.Totals()
	mwDeaf, weDeaf := m.DeafTotals()
	totals := []any{"Total", "", mwDeaf, mwTotal - mwDeaf, mwTotal, "", weDeaf, weTotal - weDeaf, weTotal}
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &totals); err != nil {
		return Workbook{}, err
	}
	if err := f.SetCellStyle(sheet, "A4", fmt.Sprintf("I%d", row-1), centered); err != nil {
		return Workbook{}, err
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("I%d", row), head); err != nil {
		return Workbook{}, err
	}
	if err := f.SetColWidth(sheet, "A", "I", 14); err != nil {
		return Workbook{}, err
	}

	return finish(f, fmt.Sprintf("attendance_%s_%d.xlsx", month, year))
}

func writeMeeting(f *excelize.File, sheet, col string, row int, r attendance.Record) error {
	vals := []any{attendance.Written(r.Date), r.Deaf, r.Hearing, r.Total}
	if err := f.SetSheetRow(sheet, fmt.Sprintf("%s%d", col, row), &vals); err != nil {
		return fmt.Errorf("write %s: %w", r.DateKey, err)
	}
	return nil
}
