package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"locshare/internal/observability"
)

// RouterConfig holds the collaborators served over HTTP.
type RouterConfig struct {
	People    PeopleService
	Hub       *Hub             // nil disables /v1/ws
	Health    HealthFunc       // nil means always healthy
	UpdatedAt func() time.Time // optional, reported by /healthz
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware)

	r.Get("/healthz", healthHandler(cfg.Health, cfg.UpdatedAt))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		NewHandler(cfg.People).Register(v1)
		if cfg.Hub != nil {
			v1.Get("/ws", cfg.Hub.HandleWS)
		}
	})

	return r
}

// LoggingMiddleware logs each request with slog and records its latency
// under the matched route pattern.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		slog.Debug("request",
			slog.String("method", r.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("duration", duration),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		observability.HTTPRequestDuration.WithLabelValues(
			r.Method,
			route,
			fmt.Sprintf("%d", status),
		).Observe(duration.Seconds())
	})
}
