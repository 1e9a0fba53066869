package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type RouterConfig struct {
	Server  *Server
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	s := cfg.Server

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(s.Log))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Schedule endpoints
	r.Get("/schedule", getScheduleHandler(s))
	r.Put("/schedule", saveScheduleHandler(s))
	r.Delete("/schedule", clearScheduleHandler(s))
	r.Post("/schedule/rows", addRowHandler(s))
	r.Delete("/schedule/rows/{id}", deleteRowHandler(s))
	r.Post("/schedule/rows/{id}/status", changeStatusHandler(s))

	// Allocation and availability
	r.Get("/allocation/preview", allocationPreviewHandler(s))
	r.Get("/availability", availabilityHandler(s))
	r.Get("/staff/status", staffStatusHandler(s))

	// Time blocks
	r.Get("/blocks", listBlocksHandler(s))
	r.Post("/blocks", addBlockHandler(s))
	r.Delete("/blocks", deleteBlockHandler(s))

	// Reminders
	r.Post("/reminders/{id}/snooze", snoozeReminderHandler(s))
	r.Post("/reminders/{id}/dismiss", dismissReminderHandler(s))

	return r
}
