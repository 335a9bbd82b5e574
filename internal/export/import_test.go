package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseRecordsRoundTripsYearExport(t *testing.T) {
	wb, err := Year(fixture(), 2026)
	if err != nil {
		t.Fatalf("year: %v", err)
	}
	recs, rowErrs, err := ParseRecords(wb.Data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors %v", rowErrs)
	}
	if len(recs) != 4 {
		t.Fatalf("expected 4 records, got %d", len(recs))
	}
	if recs[0].DateKey != "01_07_2026" || recs[0].Total != 32 {
		t.Fatalf("unexpected first record %+v", recs[0])
	}
}

func TestParseRecordsReportsBadRows(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"Hearing", "Deaf", "Date", "Meeting Type"},
		{40, 2, "October 21, 2026", "Midweek"},
		{40, 2, "not a date", "Midweek"},
		{40, -1, "10_25_2026", "Weekend"},
		{40, 2, "10_25_2026", "Monthly"},
		{},
		{"x", 2, "10_25_2026", "Weekend"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := r
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	recs, rowErrs, err := ParseRecords(buf.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs) != 1 || recs[0].DateKey != "10_21_2026" || recs[0].Total != 42 {
		t.Fatalf("unexpected records %+v", recs)
	}
	if len(rowErrs) != 4 {
		t.Fatalf("expected 4 row errors, got %v", rowErrs)
	}
	if rowErrs[0].Row != 3 {
		t.Fatalf("expected first error on row 3, got %d", rowErrs[0].Row)
	}
}

func TestParseRecordsMissingColumn(t *testing.T) {
	f := excelize.NewFile()
	header := []any{"Date", "Deaf"}
	_ = f.SetSheetRow("Sheet1", "A1", &header)
	row := []any{"10_21_2026", 1}
	_ = f.SetSheetRow("Sheet1", "A2", &row)
	var buf bytes.Buffer
	_ = f.Write(&buf)

	if _, _, err := ParseRecords(buf.Bytes()); err == nil {
		t.Fatal("expected missing column error")
	}
}
