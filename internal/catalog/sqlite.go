package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // DB driver
)

// Schema creates the restaurants table for a local catalog.
const Schema = `
CREATE TABLE IF NOT EXISTS restaurants (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	stars       REAL NOT NULL DEFAULT 0,
	price_range TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	lat         REAL NOT NULL,
	lng         REAL NOT NULL,
	score       REAL NOT NULL DEFAULT 0,
	categories  TEXT NOT NULL DEFAULT '',
	reviews     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_restaurants_location ON restaurants (lat, lng);
`

// SQLite implements Source against a local SQLite database. Useful for
// development and for deployments that mirror the Airtable base into a
// file.
type SQLite struct {
	name string
	db   *sql.DB
}

// OpenSQLite opens the database at path, ensures the schema exists, and
// returns a source backed by it.
func OpenSQLite(name, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLite{name: name, db: db}, nil
}

// NewSQLite wraps an existing database handle (used by tests).
func NewSQLite(name string, db *sql.DB) *SQLite {
	return &SQLite{name: name, db: db}
}

// Name returns the source identifier.
func (s *SQLite) Name() string { return s.name }

// Health pings the database.
func (s *SQLite) Health(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite health check: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Search translates a Query into a bounded SELECT. Textual filters use
// case-insensitive substring matching, mirroring the formula the
// Airtable source compiles.
func (s *SQLite) Search(ctx context.Context, q Query) ([]Restaurant, error) {
	var (
		where = []string{"lat >= ? AND lat <= ? AND lng >= ? AND lng <= ?"}
		args  = []any{q.Box.LatMin, q.Box.LatMax, q.Box.LngMin, q.Box.LngMax}
	)

	if len(q.PriceRanges) > 0 {
		clause, clauseArgs := likeAny("price_range", q.PriceRanges)
		where = append(where, clause)
		args = append(args, clauseArgs...)
	}
	if len(q.Cuisines) > 0 {
		clause, clauseArgs := likeAny("categories", q.Cuisines)
		where = append(where, clause)
		args = append(args, clauseArgs...)
	}
	if q.Diet != "" {
		clause, clauseArgs := likeAny("categories", []string{q.Diet})
		where = append(where, clause)
		args = append(args, clauseArgs...)
	}
	if len(q.Dishes) > 0 {
		clause, clauseArgs := likeAny("reviews", q.Dishes)
		where = append(where, clause)
		args = append(args, clauseArgs...)
	}

	query := fmt.Sprintf(`
		SELECT id, title, stars, price_range, url, description, lat, lng, score
		FROM restaurants
		WHERE %s
		ORDER BY score DESC
		LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, q.MaxResults)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var restaurants []Restaurant
	for rows.Next() {
		var r Restaurant
		if err := rows.Scan(&r.ID, &r.Titulo, &r.Estrellas, &r.RangoPrecios, &r.URLMaps, &r.Descripcion, &r.Lat, &r.Lng, &r.Score); err != nil {
			return nil, fmt.Errorf("scan restaurant row: %w", err)
		}
		restaurants = append(restaurants, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restaurant rows: %w", err)
	}
	return restaurants, nil
}

// likeAny builds an OR group of case-insensitive LIKE conditions.
func likeAny(column string, values []string) (string, []any) {
	conditions := make([]string, 0, len(values))
	args := make([]any, 0, len(values))
	for _, v := range values {
		conditions = append(conditions, fmt.Sprintf("lower(%s) LIKE ?", column))
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(v))+"%")
	}
	if len(conditions) == 1 {
		return conditions[0], args
	}
	return "(" + strings.Join(conditions, " OR ") + ")", args
}
