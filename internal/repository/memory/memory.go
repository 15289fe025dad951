package memory

import (
	"context"
	"sync"

	"github.com/smartcity/weather-predictor/internal/domain"
)

// Repository implements domain.ObservationStore in process memory for demo mode and tests.
// Contents are lost when the process exits.
type Repository struct {
	mu   sync.RWMutex
	rows []domain.Observation
}

// NewRepository creates an empty in-memory repository
func NewRepository() *Repository {
	return &Repository{}
}

// EnsureSchema is a no-op; the slice is the table
func (r *Repository) EnsureSchema(ctx context.Context) error {
	return nil
}

// Insert appends a row
func (r *Repository) Insert(ctx context.Context, obs domain.Observation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows = append(r.rows, obs)
	return nil
}

// UpdateWeather relabels every row whose reading equals the given one
func (r *Repository) UpdateWeather(ctx context.Context, reading domain.Reading, label string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for i := range r.rows {
		if r.rows[i].Reading() == reading {
			r.rows[i].Weather = label
			n++
		}
	}
	return n, nil
}

// ListAll returns a copy of all rows in insertion order
func (r *Repository) ListAll(ctx context.Context) ([]domain.Observation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Observation, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

// Health always returns nil in memory mode
func (r *Repository) Health(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (r *Repository) Close() error {
	return nil
}
