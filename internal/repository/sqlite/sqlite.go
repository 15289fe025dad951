// Package sqlite stores observations in an embedded SQLite file.
//
// Every operation checks a connection out of the database/sql pool and
// returns it before the call completes, so nothing is held between the
// insert and update steps of a submission.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/smartcity/weather-predictor/internal/domain"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// busyTimeoutMillis lets the engine wait out a concurrent writer's lock
const busyTimeoutMillis = 5000

const createTable = `
	CREATE TABLE IF NOT EXISTS weather (
		date TEXT,
		precipitation REAL,
		temp_max REAL,
		temp_min REAL,
		wind REAL,
		weather TEXT
	)
`

// Repository implements domain.ObservationStore on SQLite
type Repository struct {
	db *sql.DB
}

// NewRepository wraps an already opened database
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Open opens (creating if needed) the database file at path
func Open(path string) (*Repository, error) {
	db, err := openDB("sqlite", dsn(path))
	if err != nil {
		return nil, domain.NewStorageError("connect", err)
	}
	return NewRepository(db), nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)", path, sep, busyTimeoutMillis)
}

// EnsureSchema creates the weather table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	return r.exec(ctx, "ensure schema", createTable)
}

// Insert persists one observation row
func (r *Repository) Insert(ctx context.Context, obs domain.Observation) error {
	query := `INSERT INTO weather (date, precipitation, temp_max, temp_min, wind, weather) VALUES (?, ?, ?, ?, ?, ?)`

	return r.exec(ctx, "insert observation", query,
		obs.Date, obs.Precipitation, obs.TempMax, obs.TempMin, obs.Wind, obs.Weather,
	)
}

// UpdateWeather relabels every row matching the reading exactly
func (r *Repository) UpdateWeather(ctx context.Context, reading domain.Reading, label string) (int64, error) {
	query := `UPDATE weather SET weather = ?
		WHERE date = ? AND precipitation = ? AND temp_max = ? AND temp_min = ? AND wind = ?`

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return 0, domain.NewStorageError("update weather", err)
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, query,
		label, reading.Date, reading.Precipitation, reading.TempMax, reading.TempMin, reading.Wind,
	)
	if err != nil {
		return 0, domain.NewStorageError("update weather", fmt.Errorf("sqlite: %w", err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, domain.NewStorageError("update weather", fmt.Errorf("sqlite: %w", err))
	}
	return n, nil
}

// ListAll returns every row in insertion order
func (r *Repository) ListAll(ctx context.Context) ([]domain.Observation, error) {
	query := `SELECT date, precipitation, temp_max, temp_min, wind, weather FROM weather ORDER BY rowid`

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, domain.NewStorageError("list observations", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.NewStorageError("list observations", fmt.Errorf("sqlite: %w", err))
	}
	defer rows.Close()

	results := []domain.Observation{}
	for rows.Next() {
		var o domain.Observation
		if err := rows.Scan(&o.Date, &o.Precipitation, &o.TempMax, &o.TempMin, &o.Wind, &o.Weather); err != nil {
			return nil, domain.NewStorageError("list observations", fmt.Errorf("sqlite: failed to scan row: %w", err))
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list observations", fmt.Errorf("sqlite: %w", err))
	}

	return results, nil
}

// Health checks that the file can be reached
func (r *Repository) Health(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: health check failed: %w", err)
	}
	return nil
}

// Close closes the database handle
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) exec(ctx context.Context, op, query string, args ...any) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return domain.NewStorageError(op, err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, query, args...); err != nil {
		return domain.NewStorageError(op, fmt.Errorf("sqlite: %w", err))
	}
	return nil
}
