package reports

import "time"

// Summary aggregates one meeting type within a month.
type Summary struct {
	Count       int `json:"count"`
	Total       int `json:"total"`
	Average     int `json:"average"`
	DeafTotal   int `json:"deaf_total"`
	DeafAverage int `json:"deaf_average"`
}

// Monthly is the denormalized row stored in the report table.
type Monthly struct {
	MonthYear string     `json:"month_year"`
	Year      int        `json:"year"`
	Month     time.Month `json:"month"`
	Midweek   Summary    `json:"midweek"`
	Weekend   Summary    `json:"weekend"`
}

type Outcome string

const (
	Inserted  Outcome = "inserted"
	Updated   Outcome = "updated"
	Unchanged Outcome = "unchanged"
)

// Result is what Sync did for one month.
type Result struct {
	MonthYear string  `json:"month_year"`
	Outcome   Outcome `json:"outcome"`
}

func (r Result) Message() string {
	switch r.Outcome {
	case Inserted:
		return "Inserting report for " + r.MonthYear
	case Updated:
		return "Updating report for " + r.MonthYear
	default:
		return "Nothing change report for " + r.MonthYear
	}
}
