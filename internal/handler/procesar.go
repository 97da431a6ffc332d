package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bistrohunter/bistrohunter/internal/apierror"
	"github.com/bistrohunter/bistrohunter/internal/search"
)

// diasSemana maps time.Weekday to the Spanish day name used in the
// variables echo.
var diasSemana = [...]string{
	time.Sunday:    "domingo",
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
}

// procesarRequest is the agent-facing request body.
type procesarRequest struct {
	City        string `json:"city"`
	Date        string `json:"date"`
	PriceRange  string `json:"price_range"`
	Cocina      string `json:"cocina"`
	Diet        string `json:"diet"`
	Dish        string `json:"dish"`
	Zona        string `json:"zona"`
	Coordenadas string `json:"coordenadas"`
}

// ProcesarVariables resolves a set of agent-provided variables into a
// restaurant search. Unlike the query endpoints it never returns 404:
// an empty result is a 200 with a message, so the calling agent can
// relay it verbatim.
//
//	POST /procesar-variables
func ProcesarVariables(svc *search.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req procesarRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierror.Write(w, apierror.InvalidRequest("Invalid JSON in request body: "+err.Error()))
			return
		}

		vars := variables{
			City:        strings.TrimSpace(req.City),
			Zona:        strings.TrimSpace(req.Zona),
			Coordenadas: strings.TrimSpace(req.Coordenadas),
			PriceRange:  strings.TrimSpace(req.PriceRange),
			Cocina:      strings.TrimSpace(req.Cocina),
			Diet:        strings.TrimSpace(req.Diet),
			Dish:        strings.TrimSpace(req.Dish),
		}

		if d := strings.TrimSpace(req.Date); d != "" {
			day, err := time.Parse("2006-01-02", d)
			if err != nil {
				apierror.Write(w, apierror.InvalidParam("date", fmt.Sprintf("date must be YYYY-MM-DD, got %q", d)))
				return
			}
			vars.Fecha = d
			vars.DiaSemana = diasSemana[day.Weekday()]
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

		if len(results) == 0 {
			writeJSON(w, logger, struct {
				Mensaje   string    `json:"mensaje"`
				Variables variables `json:"variables"`
			}{
				Mensaje:   "No se encontraron restaurantes con los filtros aplicados.",
				Variables: vars,
			})
			return
		}

		writeJSON(w, logger, struct {
			Resultados []listing `json:"resultados"`
			Variables  variables `json:"variables"`
			APICall    string    `json:"api_call"`
		}{
			Resultados: listings(results),
			Variables:  vars,
			APICall:    vars.apiCall(),
		})
	}
}

// apiCall renders the equivalent GET request for the resolved variables.
func (v variables) apiCall() string {
	q := url.Values{}
	q.Set("city", v.City)
	if v.Zona != "" {
		q.Set("zona", v.Zona)
	}
	if v.Coordenadas != "" {
		q.Set("coordenadas", v.Coordenadas)
	}
	if v.PriceRange != "" {
		q.Set("price_range", v.PriceRange)
	}
	if v.Cocina != "" {
		q.Set("cocina", v.Cocina)
	}
	if v.Diet != "" {
		q.Set("diet", v.Diet)
	}
	if v.Dish != "" {
		q.Set("dish", v.Dish)
	}
	return "GET /api/getRestaurants?" + q.Encode()
}
