package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartcity/weather-predictor/internal/domain"
)

// Postgres REAL is a 4-byte float; DOUBLE PRECISION keeps the float64 inputs
// exact so that UpdateWeather can match them again.
const createTable = `
	CREATE TABLE IF NOT EXISTS weather (
		date          TEXT,
		precipitation DOUBLE PRECISION,
		temp_max      DOUBLE PRECISION,
		temp_min      DOUBLE PRECISION,
		wind          DOUBLE PRECISION,
		weather       TEXT
	)
`

// PostgresRepository implements domain.ObservationStore
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Open connects a pool to the given DSN
func Open(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, domain.NewStorageError("connect", err)
	}
	return NewPostgresRepository(pool), nil
}

// EnsureSchema creates the weather table if it does not exist
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return domain.NewStorageError("ensure schema", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, createTable); err != nil {
		return domain.NewStorageError("ensure schema", err)
	}
	return nil
}

// Insert persists one observation row
func (r *PostgresRepository) Insert(ctx context.Context, obs domain.Observation) error {
	query := `
		INSERT INTO weather (date, precipitation, temp_max, temp_min, wind, weather)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return domain.NewStorageError("insert observation", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, query,
		obs.Date, obs.Precipitation, obs.TempMax, obs.TempMin, obs.Wind, obs.Weather,
	)
	if err != nil {
		return domain.NewStorageError("insert observation", fmt.Errorf("postgres: %w", err))
	}

	return nil
}

// UpdateWeather relabels every row matching the reading exactly
func (r *PostgresRepository) UpdateWeather(ctx context.Context, reading domain.Reading, label string) (int64, error) {
	query := `
		UPDATE weather SET weather = $1
		WHERE date = $2 AND precipitation = $3 AND temp_max = $4 AND temp_min = $5 AND wind = $6
	`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, domain.NewStorageError("update weather", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query,
		label, reading.Date, reading.Precipitation, reading.TempMax, reading.TempMin, reading.Wind,
	)
	if err != nil {
		return 0, domain.NewStorageError("update weather", fmt.Errorf("postgres: %w", err))
	}

	return tag.RowsAffected(), nil
}

// ListAll returns every row in physical table order.
// Postgres has no implicit row number, so an updated row may move within that order.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]domain.Observation, error) {
	query := `
		SELECT date, precipitation, temp_max, temp_min, wind, weather
		FROM weather
	`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, domain.NewStorageError("list observations", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, domain.NewStorageError("list observations", fmt.Errorf("postgres: %w", err))
	}
	defer rows.Close()

	results := []domain.Observation{}
	for rows.Next() {
		var o domain.Observation
		err := rows.Scan(&o.Date, &o.Precipitation, &o.TempMax, &o.TempMin, &o.Wind, &o.Weather)
		if err != nil {
			return nil, domain.NewStorageError("list observations", fmt.Errorf("postgres: failed to scan row: %w", err))
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list observations", fmt.Errorf("postgres: %w", err))
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

// Close closes the pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
