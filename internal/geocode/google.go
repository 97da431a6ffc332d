package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bistrohunter/bistrohunter/internal/geo"
)

// Google implements Geocoder against the Google Maps Geocoding API.
// Results are scoped to a single country component so that ambiguous
// city names resolve consistently.
type Google struct {
	baseURL string
	apiKey  string
	country string
	client  *http.Client
	tracer  trace.Tracer
}

// NewGoogle creates a Google geocoder. country is an ISO 3166-1 code
// used as a components filter (e.g. "ES").
func NewGoogle(baseURL, apiKey, country string, timeout time.Duration) *Google {
	return &Google{
		baseURL: baseURL,
		apiKey:  apiKey,
		country: country,
		client:  &http.Client{Timeout: timeout},
		tracer:  otel.GetTracerProvider().Tracer("geocode"),
	}
}

// googleResponse is the subset of the Geocoding API response we read.
type googleResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// CityCenter resolves a city name to its center point.
func (g *Google) CityCenter(ctx context.Context, city string) (geo.Point, error) {
	return g.lookup(ctx, city)
}

// ZoneCenter resolves a zone within a city, mirroring the address form
// the upstream expects ("zona <zone>, <city>").
func (g *Google) ZoneCenter(ctx context.Context, zone, city string) (geo.Point, error) {
	return g.lookup(ctx, fmt.Sprintf("zona %s, %s", zone, city))
}

func (g *Google) lookup(ctx context.Context, address string) (geo.Point, error) {
	ctx, span := g.tracer.Start(ctx, "geocode.lookup")
	defer span.End()
	span.SetAttributes(attribute.String("geocode.address", address))

	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.apiKey)
	if g.country != "" {
		params.Set("components", "country:"+g.country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		span.RecordError(err)
		return geo.Point{}, fmt.Errorf("create geocode request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return geo.Point{}, fmt.Errorf("geocode request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("geocode: status %d: %s", resp.StatusCode, string(body))
		span.RecordError(err)
		return geo.Point{}, err
	}

	var data googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		span.RecordError(err)
		return geo.Point{}, fmt.Errorf("decode geocode response: %w", err)
	}

	span.SetAttributes(attribute.String("geocode.status", data.Status))
	switch {
	case data.Status == "ZERO_RESULTS":
		return geo.Point{}, fmt.Errorf("%w: %s", ErrNotFound, address)
	case data.Status != "OK":
		return geo.Point{}, fmt.Errorf("geocode: upstream status %s", data.Status)
	case len(data.Results) == 0:
		return geo.Point{}, fmt.Errorf("%w: %s", ErrNotFound, address)
	}

	loc := data.Results[0].Geometry.Location
	span.SetAttributes(
		attribute.Float64("geocode.lat", loc.Lat),
		attribute.Float64("geocode.lng", loc.Lng),
	)
	return geo.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}
