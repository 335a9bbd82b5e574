package realtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/attendance-bot/internal/domain/attendance"
)

// Channel is the pg_notify channel raised by the attendance trigger.
const Channel = "attendance_changes"

type Fetcher interface {
	List(ctx context.Context) ([]attendance.Record, error)
}

type Listener struct {
	pool     *pgxpool.Pool
	fetch    Fetcher
	hub      *Hub
	log      *slog.Logger
	onNotify func()
}

func NewListener(pool *pgxpool.Pool, fetch Fetcher, hub *Hub, log *slog.Logger) *Listener {
	return &Listener{pool: pool, fetch: fetch, hub: hub, log: log}
}

// OnNotify sets a hook called for every received notification.
func (l *Listener) OnNotify(fn func()) { l.onNotify = fn }

// Run holds one pooled connection in LISTEN until ctx is done. Every
// notification triggers a full re-fetch that is published to the hub.
func (l *Listener) Run(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen conn: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{Channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	l.log.Info("listening for attendance changes", "channel", Channel)

	Refresh(ctx, l.fetch, l.hub, l.log)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		l.log.Debug("change received", "channel", n.Channel, "op", n.Payload)
		if l.onNotify != nil {
			l.onNotify()
		}
		Refresh(ctx, l.fetch, l.hub, l.log)
	}
}

// Refresh fetches every record and publishes the set. Fetch errors are
// logged and the previous set stays current.
func Refresh(ctx context.Context, fetch Fetcher, hub *Hub, log *slog.Logger) {
	set, err := fetch.List(ctx)
	if err != nil {
		log.Error("error fetching updated attendance data", "err", err)
		return
	}
	hub.Publish(set)
}
