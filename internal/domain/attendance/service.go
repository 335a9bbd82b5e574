package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Store is the persistence the service needs; *Repo satisfies it.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	List(ctx context.Context) ([]Record, error)
	ListBetween(ctx context.Context, from, toExclusive time.Time) ([]Record, error)
	Insert(ctx context.Context, rec Record) error
	Update(ctx context.Context, rec Record) error
	Delete(ctx context.Context, key string) error
}

type Service struct {
	store    Store
	schedule Schedule
	loc      *time.Location
	now      func() time.Time
}

func NewService(store Store, schedule Schedule, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, schedule: schedule, loc: loc, now: time.Now}
}

// SetClock replaces the wall clock, mainly for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) Schedule() Schedule { return s.schedule }

// Meeting resolves the meeting being recorded. An empty override means today.
func (s *Service) Meeting(override string) (Meeting, error) {
	if strings.TrimSpace(override) == "" {
		return s.schedule.Next(s.now().In(s.loc)), nil
	}
	d, err := ParseKey(override)
	if err != nil {
		return Meeting{}, err
	}
	return s.schedule.Next(d), nil
}

// Current returns the meeting and its stored record, which is nil when
// nothing has been saved for that date yet.
func (s *Service) Current(ctx context.Context, override string) (Meeting, *Record, error) {
	m, err := s.Meeting(override)
	if err != nil {
		return Meeting{}, nil, err
	}
	rec, err := s.store.Get(ctx, m.Key())
	if err != nil {
		return m, nil, fmt.Errorf("check existing attendance: %w", err)
	}
	return m, rec, nil
}

type SaveInput struct {
	Date    string
	Deaf    int
	Hearing int
}

// Save inserts or updates the record for the resolved meeting. Identical
// counts are reported as Unchanged without touching the store.
func (s *Service) Save(ctx context.Context, in SaveInput) (Outcome, Record, error) {
	m, existing, err := s.Current(ctx, in.Date)
	if err != nil {
		return "", Record{}, err
	}
	rec, err := NewRecord(m.Date, m.Type, in.Deaf, in.Hearing)
	if err != nil {
		return "", Record{}, err
	}

	if existing != nil {
		if existing.Deaf == rec.Deaf && existing.Hearing == rec.Hearing {
			return Unchanged, *existing, nil
		}
		if err := s.store.Update(ctx, rec); err != nil {
			return "", Record{}, fmt.Errorf("update attendance: %w", err)
		}
		return Updated, rec, nil
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		return "", Record{}, fmt.Errorf("insert attendance: %w", err)
	}
	return Inserted, rec, nil
}

// Update is the inline table edit: counts for an existing key.
func (s *Service) Update(ctx context.Context, key string, deaf, hearing int) (Record, error) {
	k, err := NormalizeKey(key)
	if err != nil {
		return Record{}, err
	}
	existing, err := s.store.Get(ctx, k)
	if err != nil {
		return Record{}, err
	}
	if existing == nil {
		return Record{}, ErrNotFound
	}
	rec := existing.WithCounts(deaf, hearing)
	if err := s.store.Update(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, key string) error {
	k, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, k)
}

func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.store.List(ctx)
}

// ListBetween returns records dated in [from, toExclusive).
func (s *Service) ListBetween(ctx context.Context, from, toExclusive time.Time) ([]Record, error) {
	if !from.Before(toExclusive) {
		return nil, nil
	}
	return s.store.ListBetween(ctx, from, toExclusive)
}

// ImportSummary counts what Import did.
type ImportSummary struct {
	Inserted  int
	Updated   int
	Unchanged int
}

// Import upserts already-validated records, keyed by date.
func (s *Service) Import(ctx context.Context, records []Record) (ImportSummary, error) {
	var sum ImportSummary
	for _, rec := range records {
		existing, err := s.store.Get(ctx, rec.DateKey)
		if err != nil {
			return sum, fmt.Errorf("check %s: %w", rec.DateKey, err)
		}
		switch {
		case existing == nil:
			if err := s.store.Insert(ctx, rec); err != nil {
				return sum, fmt.Errorf("insert %s: %w", rec.DateKey, err)
			}
			sum.Inserted++
		case existing.Deaf == rec.Deaf && existing.Hearing == rec.Hearing && existing.MeetingType == rec.MeetingType:
			sum.Unchanged++
		default:
			if err := s.store.Update(ctx, rec); err != nil {
				return sum, fmt.Errorf("update %s: %w", rec.DateKey, err)
			}
			sum.Updated++
		}
	}
	return sum, nil
}
