// Package storetest holds the behaviour every domain.ObservationStore must share.
// Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/weather-predictor/internal/domain"
)

// Factory returns an empty store with its schema in place
type Factory func(t *testing.T) domain.ObservationStore

// Option adjusts the suite for a backend's documented limits
type Option func(*suite)

type suite struct {
	unorderedAfterUpdate bool
}

// UnorderedAfterUpdate accepts any listing order once rows have been updated.
// Postgres lists in physical order and rewrites updated rows elsewhere.
func UnorderedAfterUpdate() Option {
	return func(s *suite) { s.unorderedAfterUpdate = true }
}

func (s *suite) assertListedAfterUpdate(t *testing.T, want, got []domain.Observation) {
	t.Helper()
	if s.unorderedAfterUpdate {
		assert.ElementsMatch(t, want, got)
		return
	}
	assert.Equal(t, want, got)
}

// Run executes the contract suite against stores built by newStore
func Run(t *testing.T, newStore Factory, opts ...Option) {
	s := &suite{}
	for _, opt := range opts {
		opt(s)
	}

	t.Run("EnsureSchemaIsIdempotent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.EnsureSchema(ctx))
		require.NoError(t, store.EnsureSchema(ctx))

		rows, err := store.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("InsertListRoundTrip", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		want := []domain.Observation{
			{Date: "2023-01-01", Precipitation: 0, TempMax: 10, TempMin: 2, Wind: 3, Weather: domain.SentinelLabel},
			{Date: "2023-01-02", Precipitation: 0.01, TempMax: 12.345678, TempMin: -3.75, Wind: 4.56, Weather: "rain"},
			{Date: "", Precipitation: 1.23, TempMax: -0.5, TempMin: -10.99, Wind: 0.1, Weather: "snow"},
		}
		for _, obs := range want {
			require.NoError(t, store.Insert(ctx, obs))
		}

		got, err := store.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("UpdateWeatherResolvesMatchingRow", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		target := domain.Reading{Date: "2023-01-01", Precipitation: 0, TempMax: 10, TempMin: 2, Wind: 3}
		other := domain.Reading{Date: "2023-01-02", Precipitation: 5.5, TempMax: 8, TempMin: 1, Wind: 6}
		require.NoError(t, store.Insert(ctx, other.WithLabel("rain")))
		require.NoError(t, store.Insert(ctx, target.WithLabel(domain.SentinelLabel)))

		n, err := store.UpdateWeather(ctx, target, "sun")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		got, err := store.ListAll(ctx)
		require.NoError(t, err)
		s.assertListedAfterUpdate(t, []domain.Observation{other.WithLabel("rain"), target.WithLabel("sun")}, got)
	})

	t.Run("UpdateWeatherNoMatchIsNoop", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		existing := domain.Reading{Date: "2023-01-01", Precipitation: 0.1, TempMax: 10, TempMin: 2, Wind: 3}
		require.NoError(t, store.Insert(ctx, existing.WithLabel(domain.SentinelLabel)))
		before, err := store.ListAll(ctx)
		require.NoError(t, err)

		misses := []domain.Reading{
			{Date: "2023-01-02", Precipitation: 0.1, TempMax: 10, TempMin: 2, Wind: 3},
			{Date: "2023-01-01", Precipitation: 0.1000001, TempMax: 10, TempMin: 2, Wind: 3},
			{Date: "2023-01-01", Precipitation: 0.1, TempMax: 10, TempMin: 2, Wind: 3.5},
		}
		for _, miss := range misses {
			n, err := store.UpdateWeather(ctx, miss, "sun")
			require.NoError(t, err)
			assert.Equal(t, int64(0), n)
		}

		after, err := store.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("UpdateWeatherUpdatesAllDuplicates", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		dup := domain.Reading{Date: "2023-03-03", Precipitation: 2.25, TempMax: 7.5, TempMin: 1.25, Wind: 2}
		other := domain.Reading{Date: "2023-03-04", Precipitation: 2.25, TempMax: 7.5, TempMin: 1.25, Wind: 2}
		for i := 0; i < 3; i++ {
			require.NoError(t, store.Insert(ctx, dup.WithLabel(domain.SentinelLabel)))
		}
		require.NoError(t, store.Insert(ctx, other.WithLabel(domain.SentinelLabel)))

		n, err := store.UpdateWeather(ctx, dup, "drizzle")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		got, err := store.ListAll(ctx)
		require.NoError(t, err)
		s.assertListedAfterUpdate(t, []domain.Observation{
			dup.WithLabel("drizzle"),
			dup.WithLabel("drizzle"),
			dup.WithLabel("drizzle"),
			other.WithLabel(domain.SentinelLabel),
		}, got)
	})

	t.Run("HealthOnOpenStore", func(t *testing.T) {
		store := newStore(t)
		assert.NoError(t, store.Health(context.Background()))
	})
}
