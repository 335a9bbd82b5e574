package attendance

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Month is one calendar month of records split by meeting type.
type Month struct {
	Year    int
	Month   time.Month
	Midweek []Record
	Weekend []Record
}

func (m Month) Label() string { return MonthLabel(m.Year, m.Month) }

func (m Month) Records() []Record {
	out := make([]Record, 0, len(m.Midweek)+len(m.Weekend))
	out = append(out, m.Midweek...)
	return append(out, m.Weekend...)
}

// Totals returns the summed Total per meeting type.
func (m Month) Totals() (midweek, weekend int) {
	return sumTotal(m.Midweek), sumTotal(m.Weekend)
}

// DeafTotals returns the summed Deaf count per meeting type.
func (m Month) DeafTotals() (midweek, weekend int) {
	return sumDeaf(m.Midweek), sumDeaf(m.Weekend)
}

func sumTotal(rs []Record) int {
	n := 0
	for _, r := range rs {
		n += r.Total
	}
	return n
}

func sumDeaf(rs []Record) int {
	n := 0
	for _, r := range rs {
		n += r.Deaf
	}
	return n
}

// recordDate falls back to the key when the stored date is missing.
func recordDate(r Record) (time.Time, bool) {
	if !r.Date.IsZero() {
		return r.Date, true
	}
	t, err := ParseKey(r.DateKey)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// GroupByMonth buckets records by calendar month, oldest month first.
// Records with unreadable dates land in a trailing month with Year 0.
func GroupByMonth(records []Record) []Month {
	type ym struct {
		y int
		m time.Month
	}
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, _ := recordDate(sorted[i])
		dj, _ := recordDate(sorted[j])
		return di.Before(dj)
	})

	byKey := map[ym]*Month{}
	var order []ym
	var unknown *Month
	for _, r := range sorted {
		d, ok := recordDate(r)
		var bucket *Month
		if !ok {
			if unknown == nil {
				unknown = &Month{}
			}
			bucket = unknown
		} else {
			k := ym{d.Year(), d.Month()}
			bucket = byKey[k]
			if bucket == nil {
				bucket = &Month{Year: k.y, Month: k.m}
				byKey[k] = bucket
				order = append(order, k)
			}
		}
		if r.MeetingType == Midweek {
			bucket.Midweek = append(bucket.Midweek, r)
		} else {
			bucket.Weekend = append(bucket.Weekend, r)
		}
	}

	out := make([]Month, 0, len(order)+1)
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	if unknown != nil {
		out = append(out, *unknown)
	}
	return out
}

// Filter narrows records to a month and/or year; zero values match anything.
type Filter struct {
	Month time.Month
	Year  int
}

func ParseFilter(month, year string) (Filter, error) {
	var f Filter
	if strings.TrimSpace(month) != "" {
		m, ok := ParseMonth(month)
		if !ok {
			return f, fmt.Errorf("%w: month %q", ErrInvalidDate, month)
		}
		f.Month = m
	}
	if strings.TrimSpace(year) != "" {
		y, err := strconv.Atoi(strings.TrimSpace(year))
		if err != nil || y < 1 {
			return f, fmt.Errorf("%w: year %q", ErrInvalidDate, year)
		}
		f.Year = y
	}
	return f, nil
}

func (f Filter) Match(r Record) bool {
	d, ok := recordDate(r)
	if !ok {
		return f.Month == 0 && f.Year == 0
	}
	if f.Month != 0 && d.Month() != f.Month {
		return false
	}
	if f.Year != 0 && d.Year() != f.Year {
		return false
	}
	return true
}

func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Periods lists distinct month names (calendar order) and years (ascending)
// present in records, for filter pickers.
func Periods(records []Record) (months []string, years []int) {
	seenM := map[time.Month]bool{}
	seenY := map[int]bool{}
	for _, r := range records {
		d, ok := recordDate(r)
		if !ok {
			continue
		}
		seenM[d.Month()] = true
		seenY[d.Year()] = true
	}
	for m := time.January; m <= time.December; m++ {
		if seenM[m] {
			months = append(months, m.String())
		}
	}
	for y := range seenY {
		years = append(years, y)
	}
	sort.Ints(years)
	return months, years
}
