package attendance

import (
	"fmt"
	"strings"
	"time"
)

// Schedule holds the weekdays the two meetings are anchored to.
type Schedule struct {
	Midweek time.Weekday
	Weekend time.Weekday
}

func DefaultSchedule() Schedule {
	return Schedule{Midweek: time.Wednesday, Weekend: time.Sunday}
}

func NewSchedule(midweek, weekend string) (Schedule, error) {
	mw, err := ParseWeekday(midweek)
	if err != nil {
		return Schedule{}, err
	}
	we, err := ParseWeekday(weekend)
	if err != nil {
		return Schedule{}, err
	}
	if mw == we {
		return Schedule{}, fmt.Errorf("midweek and weekend meetings share weekday %s", mw)
	}
	return Schedule{Midweek: mw, Weekend: we}, nil
}

func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.TrimSpace(s)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) || (len(s) >= 3 && strings.EqualFold(d.String()[:3], s)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

type Meeting struct {
	Type MeetingType
	Date time.Time
}

func (m Meeting) Key() string { return Key(m.Date) }

// Title renders e.g. "Midweek Meeting – October 21, 2026".
func (m Meeting) Title() string {
	return fmt.Sprintf("%s Meeting – %s", m.Type, Written(m.Date))
}

// Next returns the meeting a user standing on now's calendar day is recording:
// today if today is an anchor day, otherwise the sooner of the two anchors.
func (s Schedule) Next(now time.Time) Meeting {
	today := civilDate(now)
	wd := today.Weekday()
	switch wd {
	case s.Midweek:
		return Meeting{Type: Midweek, Date: today}
	case s.Weekend:
		return Meeting{Type: Weekend, Date: today}
	}

	toMidweek := daysUntil(wd, s.Midweek)
	toWeekend := daysUntil(wd, s.Weekend)
	if toMidweek <= toWeekend {
		return Meeting{Type: Midweek, Date: today.AddDate(0, 0, toMidweek)}
	}
	return Meeting{Type: Weekend, Date: today.AddDate(0, 0, toWeekend)}
}

func daysUntil(from, target time.Weekday) int {
	n := (int(target) - int(from) + 7) % 7
	if n == 0 {
		return 7
	}
	return n
}
