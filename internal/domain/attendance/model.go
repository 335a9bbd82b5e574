package attendance

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type MeetingType string

const (
	Midweek MeetingType = "Midweek"
	Weekend MeetingType = "Weekend"
)

var (
	ErrNotFound           = errors.New("attendance record not found")
	ErrInvalidDate        = errors.New("invalid meeting date")
	ErrNegativeCount      = errors.New("attendance counts must be non-negative")
	ErrInvalidMeetingType = errors.New("invalid meeting type")
)

func ParseMeetingType(s string) (MeetingType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "midweek", "midweek meeting":
		return Midweek, nil
	case "weekend", "weekend meeting":
		return Weekend, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMeetingType, s)
}

// Record is one meeting's attendance. Total is always Deaf + Hearing.
type Record struct {
	DateKey     string      `json:"date_mm_dd_yyyy"`
	Date        time.Time   `json:"meeting_date"`
	MeetingType MeetingType `json:"meeting_type"`
	Deaf        int         `json:"deaf"`
	Hearing     int         `json:"hearing"`
	Total       int         `json:"total"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func NewRecord(date time.Time, mt MeetingType, deaf, hearing int) (Record, error) {
	if deaf < 0 || hearing < 0 {
		return Record{}, ErrNegativeCount
	}
	if mt != Midweek && mt != Weekend {
		return Record{}, fmt.Errorf("%w: %q", ErrInvalidMeetingType, mt)
	}
	d := civilDate(date)
	return Record{
		DateKey:     Key(d),
		Date:        d,
		MeetingType: mt,
		Deaf:        deaf,
		Hearing:     hearing,
		Total:       deaf + hearing,
	}, nil
}

// WithCounts returns a copy with new counts; negative input clamps to zero.
func (r Record) WithCounts(deaf, hearing int) Record {
	r.Deaf = max(deaf, 0)
	r.Hearing = max(hearing, 0)
	r.Total = r.Deaf + r.Hearing
	return r
}

type Outcome string

const (
	Inserted  Outcome = "inserted"
	Updated   Outcome = "updated"
	Unchanged Outcome = "unchanged"
	Deleted   Outcome = "deleted"
)

// Message is the user-facing line shown after a save attempt.
func (o Outcome) Message() string {
	switch o {
	case Inserted:
		return "New attendance record inserted successfully."
	case Updated:
		return "Attendance updated successfully."
	case Unchanged:
		return "No changes detected. Submission aborted."
	case Deleted:
		return "Attendance record deleted successfully."
	}
	return ""
}
