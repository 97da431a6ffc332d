package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bistrohunter/bistrohunter/internal/catalog"
	"github.com/bistrohunter/bistrohunter/internal/middleware"
	"github.com/bistrohunter/bistrohunter/internal/version"
)

// Welcome greets callers at the root endpoint.
//
//	GET /
func Welcome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"mensaje": "Bienvenido a BistroHunter",
		})
	}
}

// Health handles liveness checks. It always returns 200 if the server is running.
// Response includes "version" so you can see which build is running.
//
//	GET /health
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": version.Version,
		})
	}
}

// Ready handles readiness checks. It returns 200 only if all catalog
// sources answer their health probe.
//
//	GET /health/ready
func Ready(reg *catalog.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		for _, src := range reg.All() {
			if err := src.Health(r.Context()); err != nil {
				middleware.SourceHealth.WithLabelValues(src.Name()).Set(0)
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"status":  "unavailable",
					"source":  src.Name(),
					"error":   err.Error(),
					"version": version.Version,
				})
				return
			}
			middleware.SourceHealth.WithLabelValues(src.Name()).Set(1)
		}

		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ready",
			"version": version.Version,
		})
	}
}

// VersionInfo handles version info. Returns JSON with version and optional commit.
//
//	GET /version
func VersionInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		out := map[string]string{"version": version.Version}
		if version.Commit != "" {
			out["commit"] = version.Commit
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
