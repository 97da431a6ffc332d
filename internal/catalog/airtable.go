package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Airtable column names. The location columns are flattened lookup
// fields, hence the slash in the name.
const (
	fieldPriceRange = "price_range"
	fieldCategories = "categories_string"
	fieldReviews    = "google_reviews"
	fieldLat        = "location/lat"
	fieldLng        = "location/lng"
	fieldScore      = "NBH2"
)

// Airtable implements Source against the Airtable REST API. Filters are
// compiled into a filterByFormula expression and records are requested
// pre-sorted by score so the result cap keeps the best ones.
type Airtable struct {
	name    string
	baseURL string
	baseID  string
	table   string
	view    string
	token   string
	client  *http.Client
	tracer  trace.Tracer
}

// NewAirtable creates an Airtable source adapter.
func NewAirtable(name, baseURL, baseID, table, view, token string, timeout time.Duration) *Airtable {
	return &Airtable{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		baseID:  baseID,
		table:   table,
		view:    view,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		tracer:  otel.GetTracerProvider().Tracer("catalog"),
	}
}

// Name returns the source identifier.
func (a *Airtable) Name() string { return a.name }

// recordsURL is the table endpoint.
func (a *Airtable) recordsURL() string {
	return a.baseURL + "/" + a.baseID + "/" + url.PathEscape(a.table)
}

// Health checks the table is reachable by fetching a single record.
func (a *Airtable) Health(ctx context.Context) error {
	params := url.Values{}
	params.Set("maxRecords", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.recordsURL()+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("airtable health check: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("airtable health check: status %d", resp.StatusCode)
	}
	return nil
}

// airtableRecord mirrors one element of the records array.
type airtableRecord struct {
	ID     string `json:"id"`
	Fields struct {
		Title      string     `json:"title"`
		Stars      float64    `json:"stars"`
		PriceRange stringList `json:"price_range"`
		URL        string     `json:"url"`
		Message    string     `json:"bh_message"`
		Lat        float64    `json:"location/lat"`
		Lng        float64    `json:"location/lng"`
		Score      float64    `json:"NBH2"`
	} `json:"fields"`
}

type airtableResponse struct {
	Records []airtableRecord `json:"records"`
}

// stringList accepts either a JSON string or an array of strings, since
// Airtable multi-select columns serialize as arrays.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = stringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = stringList(many)
	return nil
}

// Search executes one filterByFormula query.
func (a *Airtable) Search(ctx context.Context, q Query) ([]Restaurant, error) {
	ctx, span := a.tracer.Start(ctx, "airtable.search")
	defer span.End()

	formula := buildFormula(q)
	span.SetAttributes(attribute.String("airtable.formula", formula))

	params := url.Values{}
	params.Set("filterByFormula", formula)
	params.Set("sort[0][field]", fieldScore)
	params.Set("sort[0][direction]", "desc")
	params.Set("maxRecords", strconv.Itoa(q.MaxResults))
	if a.view != "" {
		params.Set("view", a.view)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.recordsURL()+"?"+params.Encode(), nil)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("airtable search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("airtable search: status %d: %s", resp.StatusCode, string(body))
		span.RecordError(err)
		return nil, err
	}

	var data airtableResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("decode airtable response: %w", err)
	}

	restaurants := make([]Restaurant, 0, len(data.Records))
	for _, rec := range data.Records {
		restaurants = append(restaurants, Restaurant{
			ID:           rec.ID,
			Titulo:       rec.Fields.Title,
			Estrellas:    rec.Fields.Stars,
			RangoPrecios: strings.Join(rec.Fields.PriceRange, ", "),
			URLMaps:      rec.Fields.URL,
			Descripcion:  rec.Fields.Message,
			Lat:          rec.Fields.Lat,
			Lng:          rec.Fields.Lng,
			Score:        rec.Fields.Score,
		})
	}
	span.SetAttributes(attribute.Int("airtable.records", len(restaurants)))
	return restaurants, nil
}

// buildFormula compiles a Query into an Airtable filterByFormula
// expression: AND of the bounding box limits and any active filters;
// multi-valued filters become OR groups.
func buildFormula(q Query) string {
	var parts []string

	if len(q.PriceRanges) > 0 {
		conditions := make([]string, 0, len(q.PriceRanges))
		for _, p := range q.PriceRanges {
			conditions = append(conditions,
				fmt.Sprintf("FIND('%s', ARRAYJOIN({%s}, ', ')) > 0", escapeFormula(p), fieldPriceRange))
		}
		parts = append(parts, orGroup(conditions))
	}

	if len(q.Cuisines) > 0 {
		conditions := make([]string, 0, len(q.Cuisines))
		for _, c := range q.Cuisines {
			conditions = append(conditions,
				fmt.Sprintf("SEARCH('%s', {%s}) > 0", escapeFormula(c), fieldCategories))
		}
		parts = append(parts, orGroup(conditions))
	}

	if q.Diet != "" {
		parts = append(parts,
			fmt.Sprintf("SEARCH('%s', {%s}) > 0", escapeFormula(q.Diet), fieldCategories))
	}

	if len(q.Dishes) > 0 {
		conditions := make([]string, 0, len(q.Dishes))
		for _, d := range q.Dishes {
			conditions = append(conditions,
				fmt.Sprintf("SEARCH('%s', {%s}) > 0", escapeFormula(d), fieldReviews))
		}
		parts = append(parts, orGroup(conditions))
	}

	parts = append(parts,
		fmt.Sprintf("{%s} >= %s", fieldLat, formatCoord(q.Box.LatMin)),
		fmt.Sprintf("{%s} <= %s", fieldLat, formatCoord(q.Box.LatMax)),
		fmt.Sprintf("{%s} >= %s", fieldLng, formatCoord(q.Box.LngMin)),
		fmt.Sprintf("{%s} <= %s", fieldLng, formatCoord(q.Box.LngMax)),
	)

	return "AND(" + strings.Join(parts, ", ") + ")"
}

func orGroup(conditions []string) string {
	if len(conditions) == 1 {
		return conditions[0]
	}
	return "OR(" + strings.Join(conditions, ", ") + ")"
}

// escapeFormula guards the single-quoted string literals in a formula.
func escapeFormula(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
