package attendance

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// KeyLayout is the canonical storage key, e.g. 10_21_2026.
	KeyLayout = "01_02_2006"
	// WrittenLayout is the display form, e.g. October 21, 2026.
	WrittenLayout = "January 02, 2006"

	UnknownDate = "Unknown Date"
)

var inputLayouts = []string{
	KeyLayout,
	WrittenLayout,
	"January 2, 2006",
	"2006-01-02",
}

func Key(t time.Time) string     { return t.Format(KeyLayout) }
func Written(t time.Time) string { return t.Format(WrittenLayout) }

// ParseKey accepts both the underscore key and the written form.
func ParseKey(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func NormalizeKey(s string) (string, error) {
	t, err := ParseKey(s)
	if err != nil {
		return "", err
	}
	return Key(t), nil
}

func MonthLabel(year int, month time.Month) string {
	if year == 0 || month < time.January || month > time.December {
		return UnknownDate
	}
	return fmt.Sprintf("%s %d", month, year)
}

// ParseMonth accepts a month name ("October", "oct") or number ("10").
func ParseMonth(s string) (time.Month, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(name, s) || (len(s) >= 3 && strings.EqualFold(name[:3], s)) {
			return m, true
		}
	}
	return 0, false
}

// ParseMonthYear parses "October 2026".
func ParseMonthYear(s string) (time.Month, int, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	m, ok := ParseMonth(fields[0])
	if !ok {
		return 0, 0, fmt.Errorf("%w: month %q", ErrInvalidDate, fields[0])
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil || y < 1 {
		return 0, 0, fmt.Errorf("%w: year %q", ErrInvalidDate, fields[1])
	}
	return m, y, nil
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
