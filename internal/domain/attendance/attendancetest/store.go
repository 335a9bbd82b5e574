// Package attendancetest provides an in-memory attendance store for tests.
package attendancetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Spok95/attendance-bot/internal/domain/attendance"
)

type Store struct {
	mu      sync.Mutex
	records map[string]attendance.Record

	// Err, when set, is returned by every call.
	Err error

	Inserts int
	Updates int
}

func NewStore(records ...attendance.Record) *Store {
	s := &Store{records: map[string]attendance.Record{}}
	for _, r := range records {
		s.records[r.DateKey] = r
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (*attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	r, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *Store) List(_ context.Context) ([]attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]attendance.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) ListBetween(ctx context.Context, from, toExclusive time.Time) ([]attendance.Record, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []attendance.Record
	for _, r := range all {
		if !r.Date.Before(from) && r.Date.Before(toExclusive) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) Insert(_ context.Context, rec attendance.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.records[rec.DateKey] = rec
	s.Inserts++
	return nil
}

func (s *Store) Update(_ context.Context, rec attendance.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.records[rec.DateKey]; !ok {
		return attendance.ErrNotFound
	}
	s.records[rec.DateKey] = rec
	s.Updates++
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.records[key]; !ok {
		return attendance.ErrNotFound
	}
	delete(s.records, key)
	return nil
}

// MustRecord builds a record from a date key and panics on bad input.
func MustRecord(key string, mt attendance.MeetingType, deaf, hearing int) attendance.Record {
	d, err := attendance.ParseKey(key)
	if err != nil {
		panic(err)
	}
	r, err := attendance.NewRecord(d, mt, deaf, hearing)
	if err != nil {
		panic(err)
	}
	return r
}
