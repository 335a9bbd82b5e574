package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Saves         *prometheus.CounterVec
	ReportSyncs   *prometheus.CounterVec
	Exports       *prometheus.CounterVec
	Notifications prometheus.Counter
	WSClients     prometheus.Gauge
	HTTPDuration  *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Saves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "saves_total",
			Help:      "Attendance save attempts by outcome.",
		}, []string{"outcome"}),
		ReportSyncs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "report_syncs_total",
			Help:      "Monthly report upserts by outcome.",
		}, []string{"outcome"}),
		Exports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "exports_total",
			Help:      "Generated spreadsheet exports by kind.",
		}, []string{"kind"}),
		Notifications: f.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "change_notifications_total",
			Help:      "Change notifications received from postgres.",
		}),
		WSClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "attendance",
			Name:      "websocket_clients",
			Help:      "Connected websocket subscribers.",
		}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendance",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "code"}),
	}
}
