package server

import (
	"net/http"

	"github.com/cloo-solutions/hrdesk/internal/api/handlers"
	"github.com/cloo-solutions/hrdesk/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
	QueryHandler    *handlers.QueryHandler
	HealthHandler   *handlers.HealthHandler
	MaxBodyBytes    int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = 32 * 1024 * 1024
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.HealthHandler.Health)

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", cfg.DocumentHandler.Upload)
		r.Get("/", cfg.DocumentHandler.List)
		r.Get("/{id}", cfg.DocumentHandler.Get)
		r.Delete("/{id}", cfg.DocumentHandler.Delete)
	})

	r.Post("/query", cfg.QueryHandler.Query)

	return r
}
