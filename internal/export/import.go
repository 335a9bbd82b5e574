package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/attendance-bot/internal/domain/attendance"
)

// RowError describes a skipped spreadsheet row.
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %s", e.Row, e.Reason) }

// ParseRecords reads the first sheet of a workbook laid out like the Year
// export: a header row with Date, Meeting Type, Deaf and Hearing columns in
// any order. Total is recomputed and never trusted.
func ParseRecords(data []byte) ([]attendance.Record, []RowError, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrNoData
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, ErrNoData
	}

	col := map[string]int{}
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, need := range []string{"date", "meeting type", "deaf", "hearing"} {
		if _, ok := col[need]; !ok {
			return nil, nil, fmt.Errorf("missing column %q in header", need)
		}
	}
	get := func(row []string, name string) string {
		i := col[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		out  []attendance.Record
		errs []RowError
	)
	for i, row := range rows[1:] {
		n := i + 2
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		d, err := attendance.ParseKey(get(row, "date"))
		if err != nil {
			errs = append(errs, RowError{Row: n, Reason: "bad date"})
			continue
		}
		mt, err := attendance.ParseMeetingType(get(row, "meeting type"))
		if err != nil {
			errs = append(errs, RowError{Row: n, Reason: "bad meeting type"})
			continue
		}
		deaf, err1 := strconv.Atoi(get(row, "deaf"))
		hearing, err2 := strconv.Atoi(get(row, "hearing"))
		if err1 != nil || err2 != nil {
			errs = append(errs, RowError{Row: n, Reason: "counts must be whole numbers"})
			continue
		}
		rec, err := attendance.NewRecord(d, mt, deaf, hearing)
		if err != nil {
			errs = append(errs, RowError{Row: n, Reason: err.Error()})
			continue
		}
		out = append(out, rec)
	}
	return out, errs, nil
}
