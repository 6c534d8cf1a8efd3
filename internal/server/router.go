package server

import (
	"net/http"

	"github.com/cloo-solutions/docqa/internal/api"
	"github.com/cloo-solutions/docqa/internal/api/handlers"
	"github.com/cloo-solutions/docqa/internal/api/middleware"
	"github.com/cloo-solutions/docqa/internal/logging"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Logger        *zap.Logger
	AuthValidator middleware.AuthValidator
	// MaxBodyBytes bounds document uploads; zero means DefaultMaxBodyBytes.
	MaxBodyBytes    int64
	DocumentHandler *handlers.DocumentHandler
	AskHandler      *handlers.AskHandler
}

// NewRouter wires the HTTP API. Routes other than /health require a bearer
// token when AuthValidator is set.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes == 0 {
		maxBodyBytes = middleware.DefaultMaxBodyBytes
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Sentry)
	r.Use(middleware.AccessLog(logging.OrNop(cfg.Logger)))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if cfg.AuthValidator != nil {
			r.Use(middleware.APIKeyAuth(cfg.AuthValidator))
		}

		r.Route("/documents", func(r chi.Router) {
			r.Use(middleware.MaxBodyBytes(maxBodyBytes))
			r.Post("/", cfg.DocumentHandler.Ingest)
			r.Post("/raw", cfg.DocumentHandler.IngestRaw)
			r.Get("/", cfg.DocumentHandler.List)
			r.Get("/{fileName}", cfg.DocumentHandler.Get)
			r.Get("/{fileName}/source", cfg.DocumentHandler.Source)
		})

		r.With(middleware.MaxBodyBytes(middleware.MaxAskBodyBytes)).Post("/ask", cfg.AskHandler.Ask)
	})

	return r
}
