package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dentaldesk/frontdesk/internal/config"
	"github.com/dentaldesk/frontdesk/internal/db"
	"github.com/dentaldesk/frontdesk/internal/notify"
	"github.com/dentaldesk/frontdesk/internal/redisclient"
	"github.com/dentaldesk/frontdesk/internal/reminder"
	"github.com/dentaldesk/frontdesk/internal/store"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Str("service", "reminder-worker").Logger()
	log.Info().Msg("reminder worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	log.Info().
		Str("env", cfg.Env).
		Dur("interval", cfg.WorkerInterval).
		Dur("lead", cfg.ReminderLead).
		Msg("configured")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st store.Store
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connection error")
		}
		defer pgPool.Close()
		log.Info().Msg("connected to Postgres")
		st = store.NewPgStore(pgPool)
	case config.StoreFile:
		st = store.NewFileStore(cfg.SchedulePath, log)
	case config.StoreMemory:
		log.Fatal().Msg("the memory store cannot be shared with a separate worker process")
	}

	notifiers := notify.Fanout{notify.NewLogNotifier(log)}
	if cfg.RedisAddr != "" {
		rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
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

	eng := reminder.NewEngine(notifiers, cfg.ReminderLead, cfg.AutoSnooze, log)
	state := reminder.NewState()

	// Run once at startup
	runOnce(rootCtx, st, eng, state, log)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping reminder worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, st, eng, state, log)
		}
	}
}

func runOnce(ctx context.Context, st store.Store, eng *reminder.Engine, state *reminder.State, log zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	tbl, meta, err := st.Load(runCtx)
	if err != nil {
		log.Error().Err(err).Msg("load schedule")
		return
	}
	dirty := tbl.EnsureIDs()

	// Pick up snoozes and dismissals persisted by the dashboard since the
	// last sweep.
	now := time.Now()
	state.Load(tbl, now)

	changed := eng.Sweep(runCtx, tbl, state, now)
	eng.SweepTransitions(runCtx, tbl, state, now)

	if dirty || len(changed) > 0 {
		if err := st.Save(runCtx, tbl, meta); err != nil {
			log.Error().Err(err).Msg("save schedule")
			return
		}
	}
	log.Info().
		Int("reminders", len(changed)).
		Dur("took", time.Since(start)).
		Msg("sweep complete")
}
