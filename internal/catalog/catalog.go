// Package catalog defines the interface for restaurant data sources
// and provides a registry for managing multiple sources.
//
// Each source adapter translates a bounding-box query with optional
// filters into its native protocol (Airtable REST formulas, SQL).
package catalog

import (
	"errors"
	"fmt"
	"sync"

	"context"

	"github.com/bistrohunter/bistrohunter/internal/geo"
)

// ErrSourceNotFound is returned when a requested source doesn't exist.
var ErrSourceNotFound = errors.New("catalog source not found")

// Restaurant is a single restaurant record. Wire field names follow the
// public API schema; Lat/Lng/Score are internal ranking inputs.
type Restaurant struct {
	ID           string  `json:"id"`
	Titulo       string  `json:"titulo"`
	Estrellas    float64 `json:"estrellas"`
	RangoPrecios string  `json:"rango_de_precios"`
	URLMaps      string  `json:"url_maps"`
	Descripcion  string  `json:"descripcion,omitempty"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Score        float64 `json:"score"`
}

// Point returns the restaurant's location.
func (r Restaurant) Point() geo.Point {
	return geo.Point{Lat: r.Lat, Lng: r.Lng}
}

// Query describes one bounding-box search against a source. Sources
// return at most MaxResults records ordered by score descending.
type Query struct {
	Box         geo.BoundingBox
	PriceRanges []string
	Cuisines    []string
	Diet        string
	Dishes      []string
	MaxResults  int
}

// Source represents a restaurant data provider.
type Source interface {
	// Search returns the restaurants inside the query's bounding box
	// that match its filters.
	Search(ctx context.Context, q Query) ([]Restaurant, error)

	// Health checks whether the source is reachable and operational.
	Health(ctx context.Context) error

	// Name returns the source's identifier.
	Name() string
}

// Registry manages multiple named sources and routes queries to the
// appropriate one.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
	primary string // default source name
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Source),
	}
}

// Register adds a source to the registry. The first registered source
// becomes the primary (default) source.
func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sources[s.Name()] = s
	if r.primary == "" {
		r.primary = s.Name()
	}
}

// Get returns a source by name. If name is empty, the primary source is returned.
func (r *Registry) Get(name string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.primary
	}
	s, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, name)
	}
	return s, nil
}

// Primary returns the default source.
func (r *Registry) Primary() (Source, error) {
	return r.Get("")
}

// All returns all registered sources.
func (r *Registry) All() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		result = append(result, s)
	}
	return result
}
