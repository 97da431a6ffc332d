// Package server configures and runs the HTTP server.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bistrohunter/bistrohunter/internal/auth"
	"github.com/bistrohunter/bistrohunter/internal/catalog"
	"github.com/bistrohunter/bistrohunter/internal/config"
	"github.com/bistrohunter/bistrohunter/internal/handler"
	"github.com/bistrohunter/bistrohunter/internal/middleware"
	"github.com/bistrohunter/bistrohunter/internal/search"
)

// New creates a configured *http.Server with all routes and middleware wired.
// ks may be nil when auth is disabled.
func New(cfg config.Config, svc *search.Service, reg *catalog.Registry, ks *auth.KeyStore, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	rl := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Middleware stack applied to the search routes.
	// Order (outermost → innermost): RequestID → Recover → Metrics → Logging → [Auth] → RateLimit
	// Logging runs before Auth so rejected requests still get a log line.
	stack := []middleware.Middleware{
		middleware.RequestID(),
		middleware.Recover(logger),
		middleware.Metrics(),
		middleware.Logging(logger),
	}
	if cfg.Auth.Enabled {
		stack = append(stack, middleware.Auth(ks))
	}
	stack = append(stack, middleware.RateLimit(rl))

	protected := func(h http.Handler) http.Handler {
		return middleware.Chain(h, stack...)
	}

	// Health, docs, and metrics — no auth required.
	mux.HandleFunc("GET /health", handler.Health())
	mux.HandleFunc("GET /health/ready", handler.Ready(reg))
	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI())
	mux.HandleFunc("GET /docs", handler.SwaggerUI())
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /version", handler.VersionInfo())
	mux.HandleFunc("GET /{$}", handler.Welcome())

	// Search endpoints.
	mux.Handle("GET /restaurantes/{city}", protected(handler.RestaurantsByCity(svc, logger)))
	mux.Handle("GET /api/getRestaurants", protected(handler.GetRestaurants(svc, logger)))
	mux.Handle("POST /procesar-variables", protected(handler.ProcesarVariables(svc, logger)))

	return &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

// Shutdown gracefully shuts down the server with the given context.
func Shutdown(ctx context.Context, srv *http.Server, logger *slog.Logger) {
	logger.Info("shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
}
