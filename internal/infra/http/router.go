package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Spok95/attendance-bot/internal/domain/attendance"
	"github.com/Spok95/attendance-bot/internal/domain/reports"
	"github.com/Spok95/attendance-bot/internal/infra/metrics"
)

// ReportSyncer upserts computed monthly reports; *reports.Syncer satisfies it.
type ReportSyncer interface {
	Sync(ctx context.Context, computed []reports.Monthly) ([]reports.Result, error)
}

type Deps struct {
	Log        *slog.Logger
	Attendance *attendance.Service
	Reports    ReportSyncer
	Metrics    *metrics.Metrics
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
	// Realtime serves /ws/attendance; nil leaves the route out.
	Realtime       http.Handler
	AllowedOrigins []string
}

type handlers struct {
	Deps
	pages *pages
}

func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	h := &handlers{Deps: d, pages: mustPages()}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if d.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	// Pages
	mux.HandleFunc("GET /{$}", h.formPage)
	mux.HandleFunc("POST /{$}", h.formSubmit)
	mux.HandleFunc("GET /table", h.tablePage)
	mux.HandleFunc("POST /table/{key}", h.tableUpdate)
	mux.HandleFunc("POST /table/{key}/delete", h.tableDelete)
	mux.HandleFunc("GET /download", h.downloadPage)

	// JSON API
	mux.HandleFunc("GET /api/meeting", h.getMeeting)
	mux.HandleFunc("PUT /api/meeting", h.saveMeeting)
	mux.HandleFunc("GET /api/attendance", h.listAttendance)
	mux.HandleFunc("PATCH /api/attendance/{key}", h.updateAttendance)
	mux.HandleFunc("DELETE /api/attendance/{key}", h.deleteAttendance)
	mux.HandleFunc("GET /api/reports", h.listReports)

	// Downloads
	mux.HandleFunc("GET /export/reports", h.exportReports)
	mux.HandleFunc("GET /export/year", h.exportYear)
	mux.HandleFunc("GET /export/year/{year}", h.exportYear)
	mux.HandleFunc("GET /export/range", h.exportRange)
	mux.HandleFunc("GET /export/month", h.exportMonth)
	mux.HandleFunc("GET /export/month/{year}/{month}", h.exportMonth)

	if d.Realtime != nil {
		mux.Handle("GET /ws/attendance", d.Realtime)
	}

	return Cors(d.AllowedOrigins)(Instrument(d.Metrics, mux))
}
