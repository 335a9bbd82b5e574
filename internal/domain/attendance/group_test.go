package attendance_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/Spok95/attendance-bot/internal/domain/attendance"
	"github.com/Spok95/attendance-bot/internal/domain/attendance/attendancetest"
)

func sampleRecords() []attendance.Record {
	return []attendance.Record{
		attendancetest.MustRecord("01_07_2026", attendance.Midweek, 2, 30),
		attendancetest.MustRecord("12_31_2025", attendance.Midweek, 1, 20),
		attendancetest.MustRecord("01_04_2026", attendance.Weekend, 4, 60),
		attendancetest.MustRecord("01_11_2026", attendance.Weekend, 3, 70),
		attendancetest.MustRecord("12_28_2025", attendance.Weekend, 5, 55),
	}
}

func TestGroupByMonthOrdersChronologically(t *testing.T) {
	months := attendance.GroupByMonth(sampleRecords())
	if len(months) != 2 {
		t.Fatalf("expected 2 months, got %d", len(months))
	}
	if months[0].Label() != "December 2025" || months[1].Label() != "January 2026" {
		t.Fatalf("unexpected order %q, %q", months[0].Label(), months[1].Label())
	}

	jan := months[1]
	if len(jan.Midweek) != 1 || len(jan.Weekend) != 2 {
		t.Fatalf("unexpected split %d/%d", len(jan.Midweek), len(jan.Weekend))
	}
	if jan.Weekend[0].DateKey != "01_04_2026" {
		t.Fatalf("expected weekend records sorted by date, got %s first", jan.Weekend[0].DateKey)
	}

	mw, we := jan.Totals()
	if mw != 32 || we != 137 {
		t.Fatalf("unexpected totals %d/%d", mw, we)
	}
	dmw, dwe := jan.DeafTotals()
	if dmw != 2 || dwe != 7 {
		t.Fatalf("unexpected deaf totals %d/%d", dmw, dwe)
	}
}

func TestGroupByMonthUnknownDates(t *testing.T) {
	bad := attendance.Record{DateKey: "garbage", MeetingType: attendance.Weekend, Total: 3}
	months := attendance.GroupByMonth([]attendance.Record{bad})
	if len(months) != 1 || months[0].Label() != attendance.UnknownDate {
		t.Fatalf("expected one Unknown Date bucket, got %+v", months)
	}
}

func TestFilterAndPeriods(t *testing.T) {
	f, err := attendance.ParseFilter("January", "2026")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	got := f.Apply(sampleRecords())
	if len(got) != 3 {
		t.Fatalf("expected 3 January 2026 records, got %d", len(got))
	}

	f, _ = attendance.ParseFilter("", "2025")
	if n := len(f.Apply(sampleRecords())); n != 2 {
		t.Fatalf("expected 2 records in 2025, got %d", n)
	}

	if _, err := attendance.ParseFilter("Smarch", ""); err == nil {
		t.Fatal("expected error for bad month")
	}

	months, years := attendance.Periods(sampleRecords())
	if !reflect.DeepEqual(months, []string{"January", "December"}) {
		t.Fatalf("unexpected months %v", months)
	}
	if !reflect.DeepEqual(years, []int{2025, 2026}) {
		t.Fatalf("unexpected years %v", years)
	}
}

func TestMonthRecords(t *testing.T) {
	m := attendance.Month{Year: 2026, Month: time.January}
	if len(m.Records()) != 0 {
		t.Fatal("expected empty records")
	}
}
