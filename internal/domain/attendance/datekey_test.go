package attendance

import (
	"errors"
	"testing"
	"time"
)

func TestParseKeyAcceptsBothForms(t *testing.T) {
	want := time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"11_02_2024", "November 02, 2024", "November 2, 2024", "2024-11-02", "  11_02_2024 "} {
		got, err := ParseKey(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parse %q: expected %v, got %v", in, want, got)
		}
	}
}

func TestParseKeyRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "13_01_2024", "yesterday", "2024/11/02"} {
		if _, err := ParseKey(in); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("parse %q: expected ErrInvalidDate, got %v", in, err)
		}
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in   string
		want time.Month
		ok   bool
	}{
		{"October", time.October, true},
		{"oct", time.October, true},
		{"10", time.October, true},
		{"01", time.January, true},
		{"0", 0, false},
		{"Smarch", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseMonth(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("ParseMonth(%q): expected %v/%v, got %v/%v", tt.in, tt.want, tt.ok, got, ok)
		}
	}
}

func TestParseMonthYear(t *testing.T) {
	m, y, err := ParseMonthYear("March 2025")
	if err != nil || m != time.March || y != 2025 {
		t.Fatalf("unexpected result %v %d %v", m, y, err)
	}
	if _, _, err := ParseMonthYear("March"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestNewRecordKeepsTotal(t *testing.T) {
	r, err := NewRecord(time.Date(2026, 10, 21, 15, 0, 0, 0, time.UTC), Midweek, 4, 38)
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	if r.Total != 42 || r.DateKey != "10_21_2026" {
		t.Fatalf("unexpected record %+v", r)
	}
	if _, err := NewRecord(time.Now(), Midweek, -1, 3); !errors.Is(err, ErrNegativeCount) {
		t.Fatalf("expected ErrNegativeCount, got %v", err)
	}
	if _, err := NewRecord(time.Now(), "Monthly", 1, 3); !errors.Is(err, ErrInvalidMeetingType) {
		t.Fatalf("expected ErrInvalidMeetingType, got %v", err)
	}

	edited := r.WithCounts(-5, 10)
	if edited.Deaf != 0 || edited.Total != 10 {
		t.Fatalf("expected clamped counts, got %+v", edited)
	}
}
