package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dentaldesk/frontdesk/internal/allocation"
	"github.com/dentaldesk/frontdesk/internal/api"
	"github.com/dentaldesk/frontdesk/internal/availability"
	"github.com/dentaldesk/frontdesk/internal/config"
	"github.com/dentaldesk/frontdesk/internal/db"
	"github.com/dentaldesk/frontdesk/internal/notify"
	"github.com/dentaldesk/frontdesk/internal/redisclient"
	"github.com/dentaldesk/frontdesk/internal/reminder"
	"github.com/dentaldesk/frontdesk/internal/roster"
	"github.com/dentaldesk/frontdesk/internal/session"
	"github.com/dentaldesk/frontdesk/internal/store"
)

const version = "0.1.0"

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Str("service", "server").Logger()
	log.Info().Msg("front desk server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	log.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("store", cfg.StoreBackend).
		Msg("configured")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ros := roster.Default()

	var pgPool *pgxpool.Pool
	var st store.Store
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connection error")
		}
		defer pgPool.Close()
		log.Info().Msg("connected to Postgres")
		st = store.NewPgStore(pgPool)

		// Staff profile overrides live next to the schedule.
		profiles, err := store.LoadProfiles(rootCtx, pgPool)
		if err != nil {
			log.Fatal().Err(err).Msg("load staff profiles")
		}
		ros.ApplyProfiles(rosterProfiles(profiles))
	case config.StoreFile:
		st = store.NewFileStore(cfg.SchedulePath, log)
	case config.StoreMemory:
		st = store.NewMemoryStore()
	}

	notifiers := notify.Fanout{notify.NewLogNotifier(log)}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection error")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing redis")
			}
		}()
		log.Info().Msg("connected to Redis")
		notifiers = append(notifiers, notify.NewRedisNotifier(rdb))
	}

	res := availability.NewResolver(ros)
	srv := &api.Server{
		Ros:      ros,
		Resolver: res,
		Alloc:    allocation.NewEngine(ros, res),
		Reminder: reminder.NewEngine(notifiers, cfg.ReminderLead, cfg.AutoSnooze, log),
		Session:  session.New(st, cfg.AutoSave),
		Notifier: notifiers,
		Log:      log,
		Now:      time.Now,
	}

	httpSrv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.NewRouter(api.RouterConfig{
			Server:  srv,
			PgPool:  pgPool,
			Redis:   rdb,
			Env:     cfg.Env,
			Version: version,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", httpSrv.Addr).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	// Unsaved session edits would be lost on exit.
	if err := srv.Session.Flush(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("flush pending edits")
	}
}

func rosterProfiles(records []store.ProfileRecord) []roster.Profile {
	out := make([]roster.Profile, 0, len(records))
	for _, rec := range records {
		out = append(out, roster.Profile{
			Name:       rec.Name,
			Department: rec.Department,
			Status:     rec.Status,
			WeeklyOff:  rec.WeeklyOff,
		})
	}
	return out
}
