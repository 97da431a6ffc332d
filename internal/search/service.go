// Package search implements restaurant lookup: it geocodes the
// requested location, fans out bounding-box queries to the catalog, and
// ranks the merged results.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/bistrohunter/bistrohunter/internal/cache"
	"github.com/bistrohunter/bistrohunter/internal/catalog"
	"github.com/bistrohunter/bistrohunter/internal/geo"
	"github.com/bistrohunter/bistrohunter/internal/geocode"
)

// zoneRadiusKm is the fixed search radius around a zone or an explicit
// coordinate pair.
const zoneRadiusKm = 2.0

// Params describes one lookup. City is required; Zones and Coordinates
// narrow the search area, the remaining fields filter results.
type Params struct {
	City        string
	Zones       []string
	Coordinates *geo.Point
	PriceRanges []string
	Cuisines    []string
	Diet        string
	Dishes      []string
}

// Options tunes the expanding-radius city search.
type Options struct {
	InitialRadiusKm float64
	MaxRadiusKm     float64
	RadiusStepKm    float64
	MaxResults      int
}

// Service coordinates the geocoder, catalog sources, and cache.
type Service struct {
	geocoder geocode.Geocoder
	sources  *catalog.Registry
	store    cache.Store
	opts     Options
	logger   *slog.Logger
}

// New creates a Service.
func New(geocoder geocode.Geocoder, sources *catalog.Registry, store cache.Store, opts Options, logger *slog.Logger) *Service {
	return &Service{
		geocoder: geocoder,
		sources:  sources,
		store:    store,
		opts:     opts,
		logger:   logger,
	}
}

// Find runs one lookup. An unresolvable city or zone set surfaces as
// geocode.ErrNotFound; an empty (but successful) search returns an
// empty slice so callers decide between 404 and a friendly message.
func (s *Service) Find(ctx context.Context, p Params) ([]catalog.Restaurant, error) {
	key := cacheKey(p)
	if data, ok := s.store.Get(ctx, key); ok {
		var cached []catalog.Restaurant
		if err := json.Unmarshal(data, &cached); err == nil {
			s.logger.Debug("search cache hit", "key", key)
			return cached, nil
		}
		// A corrupt entry falls through to a fresh lookup.
	}

	src, err := s.sources.Primary()
	if err != nil {
		return nil, fmt.Errorf("no catalog source: %w", err)
	}

	var results []catalog.Restaurant
	switch {
	case p.Coordinates != nil:
		results, err = s.findAround(ctx, src, p, *p.Coordinates)
	case len(p.Zones) > 0:
		results, err = s.findByZones(ctx, src, p)
	default:
		results, err = s.findByCity(ctx, src, p)
	}
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(results); err == nil {
		if err := s.store.Set(ctx, key, data); err != nil {
			s.logger.Warn("search cache set failed", "key", key, "err", err)
		}
	}
	return results, nil
}

// findAround searches a fixed 2 km box around an explicit point.
func (s *Service) findAround(ctx context.Context, src catalog.Source, p Params, center geo.Point) ([]catalog.Restaurant, error) {
	q := s.query(p, geo.BoxAround(center, zoneRadiusKm), s.opts.MaxResults)
	results, err := src.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search around point: %w", err)
	}
	return capResults(results, s.opts.MaxResults), nil
}

// findByZones geocodes each zone and merges the per-zone results.
// Zones the geocoder cannot resolve are skipped; if every zone is
// unresolvable the whole lookup is a not-found.
func (s *Service) findByZones(ctx context.Context, src catalog.Source, p Params) ([]catalog.Restaurant, error) {
	var (
		merged   []catalog.Restaurant
		seen     = make(map[string]struct{})
		resolved int
	)

	for _, zone := range p.Zones {
		center, err := s.geocoder.ZoneCenter(ctx, zone, p.City)
		if err != nil {
			if errors.Is(err, geocode.ErrNotFound) {
				s.logger.Warn("zone not found, skipping", "zone", zone, "city", p.City)
				continue
			}
			return nil, fmt.Errorf("geocode zone %q: %w", zone, err)
		}
		resolved++

		q := s.query(p, geo.BoxAround(center, zoneRadiusKm), s.opts.MaxResults)
		results, err := src.Search(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("search zone %q: %w", zone, err)
		}
		merged = mergeResults(merged, results, seen)
	}

	if resolved == 0 {
		return nil, fmt.Errorf("%w: no zone of %q resolved in %s", geocode.ErrNotFound, strings.Join(p.Zones, ","), p.City)
	}
	return capResults(merged, s.opts.MaxResults*len(p.Zones)), nil
}

// findByCity geocodes the city and widens the search box step by step
// until enough results accumulate, then sorts them by proximity to the
// city center.
func (s *Service) findByCity(ctx context.Context, src catalog.Source, p Params) ([]catalog.Restaurant, error) {
	center, err := s.geocoder.CityCenter(ctx, p.City)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			return nil, fmt.Errorf("%w: city %q", geocode.ErrNotFound, p.City)
		}
		return nil, fmt.Errorf("geocode city %q: %w", p.City, err)
	}

	var (
		merged []catalog.Restaurant
		seen   = make(map[string]struct{})
	)
	for radius := s.opts.InitialRadiusKm; radius <= s.opts.MaxRadiusKm; radius += s.opts.RadiusStepKm {
		q := s.query(p, geo.BoxAround(center, radius), s.opts.MaxResults)
		results, err := src.Search(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("search city %q: %w", p.City, err)
		}
		merged = mergeResults(merged, results, seen)
		if len(merged) >= s.opts.MaxResults {
			break
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return geo.Haversine(center, merged[i].Point()) < geo.Haversine(center, merged[j].Point())
	})
	return capResults(merged, s.opts.MaxResults), nil
}

func (s *Service) query(p Params, box geo.BoundingBox, max int) catalog.Query {
	return catalog.Query{
		Box:         box,
		PriceRanges: p.PriceRanges,
		Cuisines:    p.Cuisines,
		Diet:        p.Diet,
		Dishes:      p.Dishes,
		MaxResults:  max,
	}
}

// mergeResults appends unseen records to merged, keyed by record ID.
func mergeResults(merged, results []catalog.Restaurant, seen map[string]struct{}) []catalog.Restaurant {
	for _, r := range results {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		merged = append(merged, r)
	}
	return merged
}

func capResults(results []catalog.Restaurant, max int) []catalog.Restaurant {
	if len(results) > max {
		return results[:max]
	}
	return results
}

// cacheKey normalizes Params into a stable cache key. City and filters
// are lowercased so "Madrid" and "madrid" share an entry.
func cacheKey(p Params) string {
	var b strings.Builder
	b.WriteString("search:")
	b.WriteString(norm(p.City))
	b.WriteString("|z=")
	b.WriteString(normList(p.Zones))
	if p.Coordinates != nil {
		fmt.Fprintf(&b, "|xy=%.5f,%.5f", p.Coordinates.Lat, p.Coordinates.Lng)
	}
	b.WriteString("|p=")
	b.WriteString(normList(p.PriceRanges))
	b.WriteString("|c=")
	b.WriteString(normList(p.Cuisines))
	b.WriteString("|d=")
	b.WriteString(norm(p.Diet))
	b.WriteString("|f=")
	b.WriteString(normList(p.Dishes))
	return b.String()
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normList(values []string) string {
	normed := make([]string, 0, len(values))
	for _, v := range values {
		normed = append(normed, norm(v))
	}
	return strings.Join(normed, ",")
}
