package realtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Spok95/attendance-bot/internal/domain/attendance"
	"github.com/Spok95/attendance-bot/internal/domain/attendance/attendancetest"
	"github.com/Spok95/attendance-bot/internal/domain/reports"
)

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func set(keys ...string) []attendance.Record {
	out := make([]attendance.Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, attendancetest.MustRecord(k, attendance.Midweek, 1, 1))
	}
	return out
}

func recv(t *testing.T, ch <-chan []attendance.Record) []attendance.Record {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for set")
		return nil
	}
}

func TestHubLatestWins(t *testing.T) {
	h := NewHub()
	_, ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish(set("10_21_2026"))
	h.Publish(set("10_21_2026", "10_25_2026"))

	got := recv(t, ch)
	if len(got) != 2 {
		t.Fatalf("expected the newest set of 2, got %d", len(got))
	}
	select {
	case extra := <-ch:
		t.Fatalf("expected no stale set, got %v", extra)
	default:
	}
}

func TestHubSeedsLateSubscribers(t *testing.T) {
	h := NewHub()
	h.Publish(set("10_21_2026"))

	_, ch, cancel := h.Subscribe()
	if got := recv(t, ch); len(got) != 1 {
		t.Fatalf("expected seeded set, got %v", got)
	}
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after cancel")
	}
}

type fetcher struct {
	records []attendance.Record
	err     error
}

func (f fetcher) List(context.Context) ([]attendance.Record, error) { return f.records, f.err }

func TestRefresh(t *testing.T) {
	h := NewHub()
	Refresh(context.Background(), fetcher{records: set("10_21_2026")}, h, quietLog())
	Refresh(context.Background(), fetcher{err: errors.New("down")}, h, quietLog())

	// a failed fetch publishes nothing, so a new subscriber still sees the first set
	_, ch, cancel := h.Subscribe()
	defer cancel()
	if got := recv(t, ch); len(got) != 1 {
		t.Fatalf("expected previous set to stay current, got %v", got)
	}
}

type syncer struct {
	mu    sync.Mutex
	calls [][]reports.Monthly
}

func (s *syncer) Sync(_ context.Context, m []reports.Monthly) ([]reports.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, m)
	out := make([]reports.Result, 0, len(m))
	for _, r := range m {
		out = append(out, reports.Result{MonthYear: r.MonthYear, Outcome: reports.Inserted})
	}
	return out, nil
}

func TestSyncReportsOnPublish(t *testing.T) {
	h := NewHub()
	s := &syncer{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan reports.Result, 4)
	// published before the subscriber exists; the hub seeds it on Subscribe
	h.Publish(set("10_21_2026"))
	go SyncReports(ctx, h, s, quietLog(), func(r reports.Result) { results <- r })

	select {
	case r := <-results:
		if r.MonthYear != "October 2026" {
			t.Fatalf("unexpected result %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for report sync")
	}
}

func TestWSHandlerPushesSets(t *testing.T) {
	h := NewHub()
	h.Publish(set("10_21_2026"))

	srv := httptest.NewServer(NewWSHandler(h, quietLog(), nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "attendance" || len(msg.Records) != 1 || msg.Records[0].DateKey != "10_21_2026" {
		t.Fatalf("unexpected message %+v", msg)
	}

	h.Publish(set("10_21_2026", "10_25_2026"))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(msg.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(msg.Records))
	}
}

func TestWSHandlerRejectsForeignOrigin(t *testing.T) {
	srv := httptest.NewServer(NewWSHandler(NewHub(), quietLog(), []string{"https://attendance.example"}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"https://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Fatal("expected handshake to fail for foreign origin")
	}
}
