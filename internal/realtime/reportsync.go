package realtime

import (
	"context"
	"log/slog"

	"github.com/Spok95/attendance-bot/internal/domain/reports"
)

type ReportSyncer interface {
	Sync(ctx context.Context, computed []reports.Monthly) ([]reports.Result, error)
}

// SyncReports recomputes and upserts monthly reports for every published
// set until ctx is done. onResult may be nil.
func SyncReports(ctx context.Context, hub *Hub, syncer ReportSyncer, log *slog.Logger, onResult func(reports.Result)) {
	_, sets, cancel := hub.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case set, ok := <-sets:
			if !ok {
				return
			}
			results, err := syncer.Sync(ctx, reports.FromRecords(set))
			if err != nil {
				log.Error("error processing reports", "err", err)
			}
			for _, r := range results {
				if onResult != nil {
					onResult(r)
				}
			}
		}
	}
}
