package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/bistrohunter/bistrohunter/internal/cache"
	"github.com/bistrohunter/bistrohunter/internal/catalog"
	"github.com/bistrohunter/bistrohunter/internal/geo"
	"github.com/bistrohunter/bistrohunter/internal/geocode"
	"github.com/bistrohunter/bistrohunter/internal/search"
)

// discardLogger returns a logger that writes to /dev/null.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubGeocoder resolves every city and zone to a fixed point.
type stubGeocoder struct {
	pt  geo.Point
	err error
}

func (g *stubGeocoder) CityCenter(context.Context, string) (geo.Point, error) {
	return g.pt, g.err
}

func (g *stubGeocoder) ZoneCenter(context.Context, string, string) (geo.Point, error) {
	return g.pt, g.err
}

// stubSource implements catalog.Source for testing.
type stubSource struct {
	results   []catalog.Restaurant
	err       error
	healthErr error
}

func (s *stubSource) Name() string                 { return "stub" }
func (s *stubSource) Health(context.Context) error { return s.healthErr }

func (s *stubSource) Search(context.Context, catalog.Query) ([]catalog.Restaurant, error) {
	return s.results, s.err
}

func newTestRegistry(src catalog.Source) *catalog.Registry {
	reg := catalog.NewRegistry()
	reg.Register(src)
	return reg
}

// newTestService wires a search service over stubs with no cache.
func newTestService(g geocode.Geocoder, src catalog.Source) *search.Service {
	opts := search.Options{InitialRadiusKm: 0.5, MaxRadiusKm: 2.0, RadiusStepKm: 0.5, MaxResults: 10}
	return search.New(g, newTestRegistry(src), cache.Nop{}, opts, discardLogger())
}

func sampleRestaurants() []catalog.Restaurant {
	return []catalog.Restaurant{
		{
			ID:           "rec1",
			Titulo:       "Casa Lucio",
			Estrellas:    4.6,
			RangoPrecios: "$$$",
			URLMaps:      "https://maps.google.com/?cid=1",
			Lat:          40.4129,
			Lng:          -3.7091,
		},
		{
			ID:           "rec2",
			Titulo:       "Taberna El Sur",
			Estrellas:    4.3,
			RangoPrecios: "$$",
			URLMaps:      "https://maps.google.com/?cid=2",
			Lat:          40.4121,
			Lng:          -3.7005,
		},
	}
}
