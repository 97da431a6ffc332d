// Package geocode resolves city and zone names to coordinates through
// the Google Maps Geocoding API.
package geocode

import (
	"context"
	"errors"

	"github.com/bistrohunter/bistrohunter/internal/geo"
)

// ErrNotFound is returned when the geocoder cannot resolve the address.
var ErrNotFound = errors.New("location not found")

// Geocoder resolves place names to a center point.
type Geocoder interface {
	// CityCenter resolves a city name.
	CityCenter(ctx context.Context, city string) (geo.Point, error)

	// ZoneCenter resolves a named zone within a city (e.g. "Malasaña, Madrid").
	ZoneCenter(ctx context.Context, zone, city string) (geo.Point, error)
}
