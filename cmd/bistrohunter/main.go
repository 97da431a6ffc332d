package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bistrohunter/bistrohunter/internal/auth"
	"github.com/bistrohunter/bistrohunter/internal/cache"
	"github.com/bistrohunter/bistrohunter/internal/catalog"
	"github.com/bistrohunter/bistrohunter/internal/config"
	"github.com/bistrohunter/bistrohunter/internal/geocode"
	"github.com/bistrohunter/bistrohunter/internal/logging"
	"github.com/bistrohunter/bistrohunter/internal/observability"
	"github.com/bistrohunter/bistrohunter/internal/search"
	"github.com/bistrohunter/bistrohunter/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional, env vars work without it)")
	flag.Parse()

	// Load configuration: defaults -> YAML file -> env vars.
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	// Set up structured logger.
	logger := newLogger(cfg.Log)

	// Register catalog sources; the first one is primary.
	reg := catalog.NewRegistry()
	for _, s := range cfg.Catalog {
		switch s.Type {
		case "airtable":
			reg.Register(catalog.NewAirtable(s.Name, s.URL, s.BaseID, s.Table, s.View, s.Token, s.Timeout))
			logger.Info("catalog source registered", "name", s.Name, "type", s.Type, "base_id", s.BaseID)
		case "sqlite":
			src, err := catalog.OpenSQLite(s.Name, s.Path)
			if err != nil {
				logger.Error("failed to open sqlite catalog", "name", s.Name, "path", s.Path, "err", err)
				os.Exit(1)
			}
			reg.Register(src)
			logger.Info("catalog source registered", "name", s.Name, "type", s.Type, "path", s.Path)
		default:
			logger.Error("unknown catalog source type", "name", s.Name, "type", s.Type)
			os.Exit(1)
		}
	}

	store := newStore(cfg.Cache, logger)
	defer func() { _ = store.Close() }()

	geocoder := geocode.NewGoogle(cfg.Geocode.URL, cfg.Geocode.APIKey, cfg.Geocode.Country, cfg.Geocode.Timeout)

	svc := search.New(geocoder, reg, store, search.Options{
		InitialRadiusKm: cfg.Search.InitialRadiusKm,
		MaxRadiusKm:     cfg.Search.MaxRadiusKm,
		RadiusStepKm:    cfg.Search.RadiusStepKm,
		MaxResults:      cfg.Search.MaxResults,
	}, logger)

	// Load API keys only when auth is enabled.
	var ks *auth.KeyStore
	if cfg.Auth.Enabled {
		ks, err = auth.NewKeyStore(cfg.Auth.KeysFile)
		if err != nil {
			logger.Error("failed to load API keys", "err", err)
			os.Exit(1)
		}
		logger.Info("api keys loaded", "count", ks.Count())
	}

	// Create and start HTTP server.
	srv := server.New(cfg, svc, reg, ks, logger)

	// Optional OpenTelemetry tracing: wrap handler so all requests are traced.
	var tp *observability.TracerProvider
	if cfg.Observability.OTelEnabled {
		var errOTel error
		tp, errOTel = observability.NewTracerProvider(context.Background(), cfg.Observability.OTelEndpoint, cfg.Observability.OTelServiceName)
		if errOTel != nil {
			logger.Error("otel tracer provider failed", "err", errOTel)
			os.Exit(1)
		}
		srv.Handler = observability.HTTPHandler(srv.Handler, cfg.Observability.OTelServiceName)
		logger.Info("opentelemetry tracing enabled", "endpoint", cfg.Observability.OTelEndpoint)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "addr", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err.Error() != "http: Server closed" {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if tp != nil {
		_ = tp.Shutdown(ctx)
	}
	server.Shutdown(ctx, srv, logger)
	logger.Info("server stopped")
}

// newStore builds the lookup cache for the configured backend.
func newStore(cfg config.Cache, logger *slog.Logger) cache.Store {
	switch cfg.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Info("cache enabled", "backend", "redis", "addr", cfg.Redis.Addr, "ttl", cfg.TTL)
		return cache.NewRedis(rdb, cfg.TTL)
	case "none":
		logger.Info("cache disabled")
		return cache.Nop{}
	default:
		logger.Info("cache enabled", "backend", "memory", "ttl", cfg.TTL, "max_entries", cfg.MaxEntries)
		return cache.NewMemory(cfg.TTL, cache.WithMaxEntries(cfg.MaxEntries))
	}
}

func newLogger(cfg config.Log) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Use cloud-friendly logger (GCP severity, optional resource) when configured.
	if cfg.CloudFormat != "" {
		return logging.NewLogger(os.Stdout, level, cfg.Format, cfg.CloudFormat)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
