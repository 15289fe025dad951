package domain

import (
	"context"
)

// SchemaManager creates the observation table if it is missing.
// Implementations must be idempotent.
type SchemaManager interface {
	EnsureSchema(ctx context.Context) error
}

// ObservationStore defines the interface for observation persistence
// This follows the Dependency Inversion Principle - domain defines the interface
type ObservationStore interface {
	SchemaManager

	// Insert appends one row. Duplicates are allowed.
	Insert(ctx context.Context, obs Observation) error

	// UpdateWeather sets the label on every row whose five non-label columns
	// equal the reading and returns how many rows changed. Zero is not an error.
	UpdateWeather(ctx context.Context, reading Reading, label string) (int64, error)

	// ListAll returns all rows in insertion order
	ListAll(ctx context.Context) ([]Observation, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error

	// Close releases the underlying handle
	Close() error
}

// Classifier predicts a weather label from a single feature vector
type Classifier interface {
	Predict(ctx context.Context, features Features) (string, error)
}
