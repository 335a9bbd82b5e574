package reports

import (
	"math"

	"github.com/Spok95/attendance-bot/internal/domain/attendance"
)

// Average is total/count rounded to the nearest whole attendee; 0 when count is 0.
func Average(count, total int) int {
	if count <= 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(count)))
}

func summarize(rs []attendance.Record) Summary {
	s := Summary{Count: len(rs)}
	for _, r := range rs {
		s.Total += r.Total
		s.DeafTotal += r.Deaf
	}
	s.Average = Average(s.Count, s.Total)
	s.DeafAverage = Average(s.Count, s.DeafTotal)
	return s
}

// Compute builds one report per grouped month. Months without a readable
// date are skipped since they have no month_year to key on.
func Compute(months []attendance.Month) []Monthly {
	out := make([]Monthly, 0, len(months))
	for _, m := range months {
		if m.Year == 0 {
			continue
		}
		out = append(out, Monthly{
			MonthYear: m.Label(),
			Year:      m.Year,
			Month:     m.Month,
			Midweek:   summarize(m.Midweek),
			Weekend:   summarize(m.Weekend),
		})
	}
	return out
}

// FromRecords groups and computes in one step.
func FromRecords(records []attendance.Record) []Monthly {
	return Compute(attendance.GroupByMonth(records))
}
