// Package handler implements the HTTP handlers for the restaurant API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/bistrohunter/bistrohunter/internal/apierror"
	"github.com/bistrohunter/bistrohunter/internal/catalog"
	"github.com/bistrohunter/bistrohunter/internal/geo"
	"github.com/bistrohunter/bistrohunter/internal/geocode"
	"github.com/bistrohunter/bistrohunter/internal/search"
)

// listing is the wire form of a restaurant in the city endpoint.
type listing struct {
	Titulo       string  `json:"titulo"`
	Estrellas    float64 `json:"estrellas"`
	RangoPrecios string  `json:"rango_de_precios"`
	URLMaps      string  `json:"url_maps"`
}

type resultsResponse struct {
	Resultados []listing `json:"resultados"`
}

// RestaurantsByCity returns the top restaurants for a city.
//
//	GET /restaurantes/{city}
func RestaurantsByCity(svc *search.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		city := strings.TrimSpace(r.PathValue("city"))
		if city == "" {
			apierror.Write(w, apierror.InvalidParam("city", "city must not be empty"))
			return
		}

		results, err := svc.Find(r.Context(), search.Params{City: city})
		if err != nil {
			writeSearchError(w, logger, city, err)
			return
		}
		if len(results) == 0 {
			apierror.Write(w, apierror.NotFound(fmt.Sprintf("No se encontraron restaurantes en %s.", city)))
			return
		}

		writeJSON(w, logger, resultsResponse{Resultados: listings(results)})
	}
}

// GetRestaurants is the filterable query variant of the city lookup.
// It echoes the received variables back alongside the results.
//
//	GET /api/getRestaurants?city=...&zona=...&coordenadas=lat,lon&price_range=...&cocina=...&diet=...&dish=...
func GetRestaurants(svc *search.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		vars := variables{
			City:        strings.TrimSpace(q.Get("city")),
			Zona:        strings.TrimSpace(q.Get("zona")),
			Coordenadas: strings.TrimSpace(q.Get("coordenadas")),
			PriceRange:  strings.TrimSpace(q.Get("price_range")),
			Cocina:      strings.TrimSpace(q.Get("cocina")),
			Diet:        strings.TrimSpace(q.Get("diet")),
			Dish:        strings.TrimSpace(q.Get("dish")),
		}

		params, apiErr := vars.searchParams()
		if apiErr != nil {
			apierror.Write(w, apiErr)
			return
		}

		results, err := svc.Find(r.Context(), params)
		if err != nil {
			writeSearchError(w, logger, vars.City, err)
			return
		}

		writeJSON(w, logger, struct {
			Resultados []listing `json:"resultados"`
			Variables  variables `json:"variables"`
		}{
			Resultados: listings(results),
			Variables:  vars,
		})
	}
}

// variables is the echo object shared by the query and agent endpoints.
type variables struct {
	City        string `json:"city"`
	Zona        string `json:"zona,omitempty"`
	Coordenadas string `json:"coordenadas,omitempty"`
	PriceRange  string `json:"price_range,omitempty"`
	Cocina      string `json:"cocina,omitempty"`
	Diet        string `json:"diet,omitempty"`
	Dish        string `json:"dish,omitempty"`
	Fecha       string `json:"fecha,omitempty"`
	DiaSemana   string `json:"dia_semana,omitempty"`
}

// searchParams validates the variables and converts them to search
// parameters. The returned error is ready to write.
func (v variables) searchParams() (search.Params, *apierror.Error) {
	if v.City == "" {
		return search.Params{}, apierror.InvalidParam("city", "city is required")
	}

	p := search.Params{
		City:        v.City,
		Zones:       splitList(v.Zona),
		PriceRanges: splitList(v.PriceRange),
		Cuisines:    splitList(v.Cocina),
		Diet:        v.Diet,
		Dishes:      splitList(v.Dish),
	}

	if v.Coordenadas != "" {
		pt, err := parseCoordinates(v.Coordenadas)
		if err != nil {
			return search.Params{}, apierror.InvalidParam("coordenadas", err.Error())
		}
		p.Coordinates = &pt
	}
	return p, nil
}

// parseCoordinates parses a "lat,lon" pair.
func parseCoordinates(s string) (geo.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.Point{}, fmt.Errorf("coordenadas must be \"lat,lon\", got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid latitude %q", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid longitude %q", parts[1])
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return geo.Point{}, fmt.Errorf("coordinates %q out of range", s)
	}
	return geo.Point{Lat: lat, Lng: lng}, nil
}

// splitList splits a comma-separated parameter, dropping blanks.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func listings(results []catalog.Restaurant) []listing {
	out := make([]listing, 0, len(results))
	for _, r := range results {
		out = append(out, listing{
			Titulo:       r.Titulo,
			Estrellas:    r.Estrellas,
			RangoPrecios: r.RangoPrecios,
			URLMaps:      r.URLMaps,
		})
	}
	return out
}

// writeSearchError maps search failures to API errors: an unresolvable
// location is a 404, anything else is an upstream failure.
func writeSearchError(w http.ResponseWriter, logger *slog.Logger, city string, err error) {
	if errors.Is(err, geocode.ErrNotFound) {
		apierror.Write(w, apierror.NotFound(fmt.Sprintf("No se encontraron restaurantes en %s.", city)))
		return
	}
	logger.Error("search failed", "city", city, "err", err)
	apierror.Write(w, apierror.Upstream("catalog"))
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "err", err)
	}
}
