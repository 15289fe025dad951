package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartcity/weather-predictor/internal/domain"
	"github.com/smartcity/weather-predictor/internal/observability"
)

// PredictionService records observations and resolves their weather label.
//
// A submission is insert (label "Unknown") -> predict -> update. The stored
// row is found again for the update by its five input values; there is no
// row id, so identical submissions are relabelled together.
type PredictionService struct {
	store      ObservationStore
	classifier Classifier
	logger     *slog.Logger
	metrics    *observability.Metrics

	// submissions run one at a time so value matching cannot pick up another
	// in-flight submission's row from this process
	mu sync.Mutex
}

// NewPredictionService creates a new prediction service
func NewPredictionService(
	store ObservationStore,
	classifier Classifier,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *PredictionService {
	return &PredictionService{
		store:      store,
		classifier: classifier,
		logger:     logger,
		metrics:    metrics,
	}
}

// SubmitObservation stores the reading, predicts its weather and back-fills the label.
//
// A reading with a NaN or infinite measurement is refused with
// domain.ErrInvalidReading before anything is stored. A *domain.StorageError
// from the insert means nothing was stored and no prediction was attempted.
// A *domain.PredictionError, or a *domain.StorageError from the update, leaves
// the row stored with the "Unknown" label.
func (s *PredictionService) SubmitObservation(ctx context.Context, reading domain.Reading) (domain.SubmissionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.With("submission_id", uuid.NewString(), "date", reading.Date)

	if err := reading.CheckFinite(); err != nil {
		log.Warn("observation rejected", "error", err)
		s.metrics.SubmissionsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
		return domain.SubmissionResult{}, err
	}

	if err := s.store.Insert(ctx, reading.WithLabel(domain.SentinelLabel)); err != nil {
		log.Error("failed to record observation", "error", err)
		s.metrics.SubmissionsTotal.WithLabelValues(observability.OutcomeStorageError).Inc()
		return domain.SubmissionResult{}, asStorageError("insert observation", err)
	}
	log.Debug("observation recorded", "status", domain.StatusRecorded)

	start := time.Now()
	label, err := s.classifier.Predict(ctx, reading.Features())
	s.metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Warn("prediction failed, observation left unresolved", "error", err)
		s.metrics.SubmissionsTotal.WithLabelValues(observability.OutcomePredictionError).Inc()
		var predErr *domain.PredictionError
		if !errors.As(err, &predErr) {
			err = &domain.PredictionError{Err: err}
		}
		return domain.SubmissionResult{}, err
	}

	n, err := s.store.UpdateWeather(ctx, reading, label)
	if err != nil {
		log.Error("failed to store prediction, observation left unresolved", "weather", label, "error", err)
		s.metrics.SubmissionsTotal.WithLabelValues(observability.OutcomeUpdateError).Inc()
		return domain.SubmissionResult{}, asStorageError("update weather", err)
	}
	s.metrics.UpdatedRows.Observe(float64(n))

	switch {
	case n == 0:
		// the table was reset between insert and update
		log.Warn("no stored row matched the prediction", "weather", label)
	case n > 1:
		log.Info("prediction applied to duplicate observations", "weather", label, "rows", n)
	}

	log.Info("observation resolved", "weather", label, "status", domain.StatusResolved)
	s.metrics.SubmissionsTotal.WithLabelValues(observability.OutcomeResolved).Inc()

	return domain.SubmissionResult{
		Weather:     label,
		Observation: reading.WithLabel(label),
	}, nil
}

// ListObservations returns every stored observation in insertion order
func (s *PredictionService) ListObservations(ctx context.Context) ([]domain.Observation, error) {
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, asStorageError("list observations", err)
	}
	return rows, nil
}

// Health reports storage connectivity
func (s *PredictionService) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}

func asStorageError(op string, err error) error {
	var storageErr *domain.StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	return domain.NewStorageError(op, err)
}
