// Package config handles loading and validating application configuration.
//
// Configuration is loaded from a YAML file with environment variable
// overrides. Environment variables use the BISTROHUNTER_ prefix
// (e.g., BISTROHUNTER_PORT).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration.
type Config struct {
	Server        Server        `yaml:"server"`
	Catalog       []Source      `yaml:"catalog"`
	Geocode       Geocode       `yaml:"geocode"`
	Search        Search        `yaml:"search"`
	Cache         Cache         `yaml:"cache"`
	Auth          Auth          `yaml:"auth"`
	RateLimit     RateLimit     `yaml:"ratelimit"`
	Log           Log           `yaml:"log"`
	Observability Observability `yaml:"observability"`
}

// Server configures the HTTP listener.
type Server struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Source configures a single restaurant catalog source.
type Source struct {
	Name    string        `yaml:"name"`
	Type    string        `yaml:"type"` // "airtable" or "sqlite"
	Timeout time.Duration `yaml:"timeout"`

	// Airtable settings.
	BaseID string `yaml:"base_id"`
	Table  string `yaml:"table"`
	View   string `yaml:"view"`
	Token  string `yaml:"token"`
	URL    string `yaml:"url"`

	// SQLite settings.
	Path string `yaml:"path"`
}

// Geocode configures the Google Maps Geocoding client.
type Geocode struct {
	APIKey  string        `yaml:"api_key"`
	Country string        `yaml:"country"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Search tunes the expanding-radius city search.
type Search struct {
	InitialRadiusKm float64 `yaml:"initial_radius_km"`
	MaxRadiusKm     float64 `yaml:"max_radius_km"`
	RadiusStepKm    float64 `yaml:"radius_step_km"`
	MaxResults      int     `yaml:"max_results"`
}

// Cache configures the lookup cache in front of the upstreams.
type Cache struct {
	Backend    string        `yaml:"backend"` // "memory", "redis", or "none"
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      Redis         `yaml:"redis"`
}

// Redis configures the Redis cache backend.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Auth configures optional API key authentication.
type Auth struct {
	Enabled  bool   `yaml:"enabled"`
	KeysFile string `yaml:"keys_file"`
}

// RateLimit configures the token bucket rate limiter.
type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Log configures structured logging.
type Log struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	CloudFormat string `yaml:"cloud_format"` // "", "gcp", or "gcp_with_resource"
}

// Observability configures optional OpenTelemetry tracing.
type Observability struct {
	OTelEnabled     bool   `yaml:"otel_enabled"`
	OTelEndpoint    string `yaml:"otel_endpoint"`
	OTelServiceName string `yaml:"otel_service_name"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Server: Server{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Catalog: []Source{
			{
				Name:    "airtable",
				Type:    "airtable",
				Table:   "Restaurantes DB",
				View:    "viw6z7g5ZZs3mpy3S",
				URL:     "https://api.airtable.com/v0",
				Timeout: 10 * time.Second,
			},
		},
		Geocode: Geocode{
			Country: "ES",
			URL:     "https://maps.googleapis.com/maps/api/geocode/json",
			Timeout: 10 * time.Second,
		},
		Search: Search{
			InitialRadiusKm: 0.5,
			MaxRadiusKm:     2.0,
			RadiusStepKm:    0.5,
			MaxResults:      10,
		},
		Cache: Cache{
			Backend:    "memory",
			TTL:        30 * time.Minute,
			MaxEntries: 10000,
			Redis: Redis{
				Addr: "localhost:6379",
			},
		},
		Auth: Auth{
			Enabled:  false,
			KeysFile: "./keys.txt",
		},
		RateLimit: RateLimit{
			RequestsPerSecond: 10,
			Burst:             20,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Observability: Observability{
			OTelEndpoint:    "http://localhost:4318",
			OTelServiceName: "bistrohunter",
		},
	}
}

// Load reads configuration from the given YAML file path, then applies
// environment variable overrides. If path is empty, only defaults and
// environment variables are used.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides reads BISTROHUNTER_* environment variables and overrides
// the corresponding config values. Secrets (Airtable PAT, Maps API key) are
// expected to arrive this way rather than in the YAML file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BISTROHUNTER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("BISTROHUNTER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("BISTROHUNTER_AIRTABLE_PAT"); v != "" {
		for i := range cfg.Catalog {
			if cfg.Catalog[i].Type == "airtable" {
				cfg.Catalog[i].Token = strings.TrimSpace(v)
			}
		}
	}
	if v := os.Getenv("BISTROHUNTER_AIRTABLE_BASE_ID"); v != "" {
		for i := range cfg.Catalog {
			if cfg.Catalog[i].Type == "airtable" {
				cfg.Catalog[i].BaseID = strings.TrimSpace(v)
			}
		}
	}
	if v := os.Getenv("BISTROHUNTER_GOOGLE_MAPS_API_KEY"); v != "" {
		cfg.Geocode.APIKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("BISTROHUNTER_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("BISTROHUNTER_REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("BISTROHUNTER_AUTH_KEYS_FILE"); v != "" {
		cfg.Auth.KeysFile = v
	}
	if v := os.Getenv("BISTROHUNTER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("BISTROHUNTER_LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("BISTROHUNTER_RATELIMIT_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.RequestsPerSecond = rps
		}
	}
	if v := os.Getenv("BISTROHUNTER_RATELIMIT_BURST"); v != "" {
		if burst, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.Burst = burst
		}
	}
}

// validate checks that the configuration is internally consistent.
func validate(cfg Config) error {
	var errs []error

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port))
	}
	if len(cfg.Catalog) == 0 {
		errs = append(errs, errors.New("at least one catalog source must be configured"))
	}
	for i, s := range cfg.Catalog {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("catalog[%d].name is required", i))
		}
		switch s.Type {
		case "airtable":
			if s.Table == "" {
				errs = append(errs, fmt.Errorf("catalog[%d].table is required for airtable sources", i))
			}
		case "sqlite":
			if s.Path == "" {
				errs = append(errs, fmt.Errorf("catalog[%d].path is required for sqlite sources", i))
			}
		default:
			errs = append(errs, fmt.Errorf("catalog[%d].type must be airtable or sqlite, got %q", i, s.Type))
		}
	}
	if cfg.Geocode.URL == "" {
		errs = append(errs, errors.New("geocode.url is required"))
	}
	if cfg.Search.InitialRadiusKm <= 0 || cfg.Search.MaxRadiusKm < cfg.Search.InitialRadiusKm {
		errs = append(errs, errors.New("search radii must be positive and max_radius_km >= initial_radius_km"))
	}
	if cfg.Search.RadiusStepKm <= 0 {
		errs = append(errs, errors.New("search.radius_step_km must be positive"))
	}
	if cfg.Search.MaxResults < 1 {
		errs = append(errs, errors.New("search.max_results must be at least 1"))
	}

	validCaches := map[string]bool{"memory": true, "redis": true, "none": true}
	if !validCaches[cfg.Cache.Backend] {
		errs = append(errs, fmt.Errorf("cache.backend must be memory, redis, or none; got %q", cfg.Cache.Backend))
	}
	if cfg.Cache.Backend == "redis" && cfg.Cache.Redis.Addr == "" {
		errs = append(errs, errors.New("cache.redis.addr is required when cache.backend is redis"))
	}
	if cfg.Cache.Backend != "none" && cfg.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive"))
	}

	if cfg.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("ratelimit.requests_per_second must be positive"))
	}
	if cfg.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("ratelimit.burst must be at least 1"))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", cfg.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Log.Format] {
		errs = append(errs, fmt.Errorf("log.format must be json or text; got %q", cfg.Log.Format))
	}
	validCloudFormats := map[string]bool{"": true, "gcp": true, "gcp_with_resource": true}
	if !validCloudFormats[cfg.Log.CloudFormat] {
		errs = append(errs, fmt.Errorf("log.cloud_format must be empty, gcp, or gcp_with_resource; got %q", cfg.Log.CloudFormat))
	}

	if cfg.Observability.OTelEnabled && cfg.Observability.OTelEndpoint == "" {
		errs = append(errs, errors.New("observability.otel_endpoint is required when otel_enabled is true"))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address as "host:port".
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
