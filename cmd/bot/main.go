package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Spok95/attendance-bot/internal/bot"
	"github.com/Spok95/attendance-bot/internal/config"
	"github.com/Spok95/attendance-bot/internal/dialog"
	"github.com/Spok95/attendance-bot/internal/domain/attendance"
	"github.com/Spok95/attendance-bot/internal/domain/reports"
	"github.com/Spok95/attendance-bot/internal/domain/users"
	"github.com/Spok95/attendance-bot/internal/infra/db"
	httpx "github.com/Spok95/attendance-bot/internal/infra/http"
	"github.com/Spok95/attendance-bot/internal/infra/logger"
	"github.com/Spok95/attendance-bot/internal/infra/metrics"
	"github.com/Spok95/attendance-bot/internal/realtime"
)

func main() {
	defaultPath := os.Getenv("APP_CONFIG")
	if defaultPath == "" {
		defaultPath = "config/example.yaml"
	}
	configPath := flag.String("config", defaultPath, "path to the yaml config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := db.Migrate(cfg.Postgres.DSN, log); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Error("bad timezone", "tz", cfg.App.Timezone, "err", err)
		return
	}
	schedule, err := attendance.NewSchedule(cfg.Schedule.Midweek, cfg.Schedule.Weekend)
	if err != nil {
		log.Error("bad schedule", "err", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN, db.Options{
		MaxConns: cfg.Postgres.MaxConns,
		MinConns: cfg.Postgres.MinConns,
	})
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	m := metrics.New(prometheus.DefaultRegisterer)

	attendanceRepo := attendance.NewRepo(pool)
	svc := attendance.NewService(attendanceRepo, schedule, loc)
	syncer := reports.NewSyncer(reports.NewRepo(pool), log)

	// Realtime: LISTEN -> hub -> websocket clients and report sync
	hub := realtime.NewHub()
	listener := realtime.NewListener(pool, attendanceRepo, hub, log)
	listener.OnNotify(m.Notifications.Inc)
	go func() {
		if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("change listener stopped", "err", err)
		}
	}()
	go realtime.SyncReports(ctx, hub, syncer, log, func(r reports.Result) {
		m.ReportSyncs.WithLabelValues(string(r.Outcome)).Inc()
		log.Info(r.Message())
	})

	deps := httpx.Deps{
		Log:            log,
		Attendance:     svc,
		Reports:        syncer,
		Metrics:        m,
		Realtime:       realtime.NewWSHandler(hub, log, cfg.HTTP.AllowedOrigins).WithGauge(m.WSClients),
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}
	if cfg.Metrics.Enabled {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	srv := httpx.New(cfg.HTTP.Addr, httpx.NewRouter(deps))
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	if cfg.Telegram.Token != "" {
		startBot(ctx, log, cfg, pool, svc, syncer, m)
	} else {
		log.Info("telegram token not set, bot disabled")
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}

func startBot(ctx context.Context, log *slog.Logger, cfg config.Config, pool *pgxpool.Pool,
	svc *attendance.Service, syncer *reports.Syncer, m *metrics.Metrics) {

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return
	}
	log.Info("telegram authorized", "username", api.Self.UserName)

	b := bot.New(api, log,
		users.NewRepo(pool), dialog.NewRepo(pool),
		cfg.Telegram.AdminChatID, svc, syncer, m)
	go func() {
		if err := b.Run(ctx, cfg.Telegram.Timeout); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("bot stopped", "err", err)
		}
	}()
}
