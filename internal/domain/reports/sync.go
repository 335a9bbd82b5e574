package reports

import (
	"context"
	"fmt"
	"log/slog"
)

type Store interface {
	List(ctx context.Context) ([]Monthly, error)
	// Insert must accept a month another sync inserted after List ran.
	Insert(ctx context.Context, m Monthly) error
	Update(ctx context.Context, m Monthly) error
}

// Syncer upserts computed reports, writing only rows whose numbers moved.
type Syncer struct {
	store Store
	log   *slog.Logger
}

func NewSyncer(store Store, log *slog.Logger) *Syncer {
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{store: store, log: log}
}

func (s *Syncer) Sync(ctx context.Context, computed []Monthly) ([]Result, error) {
	existing, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch reports: %w", err)
	}
	byKey := make(map[string]Monthly, len(existing))
	for _, m := range existing {
		byKey[m.MonthYear] = m
	}

	results := make([]Result, 0, len(computed))
	for _, m := range computed {
		res := Result{MonthYear: m.MonthYear}
		old, ok := byKey[m.MonthYear]
		switch {
		case !ok:
			if err := s.store.Insert(ctx, m); err != nil {
				return results, fmt.Errorf("insert report %s: %w", m.MonthYear, err)
			}
			res.Outcome = Inserted
		case old.Midweek != m.Midweek || old.Weekend != m.Weekend:
			if err := s.store.Update(ctx, m); err != nil {
				return results, fmt.Errorf("update report %s: %w", m.MonthYear, err)
			}
			res.Outcome = Updated
		default:
			res.Outcome = Unchanged
		}
		s.log.Debug(res.Message())
		results = append(results, res)
	}
	return results, nil
}
