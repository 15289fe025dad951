package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/smartcity/weather-predictor/internal/domain"
)

// RemoteClassifier delegates predictions to an HTTP model server
type RemoteClassifier struct {
	serviceURL string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

type remotePredictRequest struct {
	Features [][]float64 `json:"features"`
}

type remotePredictResponse struct {
	Predictions []string `json:"predictions"`
}

// NewRemoteClassifier creates a client for the model server at serviceURL
func NewRemoteClassifier(serviceURL string, timeout time.Duration) *RemoteClassifier {
	return &RemoteClassifier{
		serviceURL: serviceURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "ml-service",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// ConnectRemote creates a RemoteClassifier and verifies the server is up.
// An unreachable server is a *domain.ModelLoadError, like a missing artifact.
func ConnectRemote(ctx context.Context, serviceURL string, timeout time.Duration) (*RemoteClassifier, error) {
	c := NewRemoteClassifier(serviceURL, timeout)
	if err := c.Health(ctx); err != nil {
		return nil, &domain.ModelLoadError{Path: serviceURL, Err: err}
	}
	return c, nil
}

// Predict calls the model server with a single-sample batch
func (b *RemoteClassifier) Predict(ctx context.Context, features domain.Features) (string, error) {
	body, err := json.Marshal(remotePredictRequest{Features: [][]float64{features.Slice()}})
	if err != nil {
		return "", &domain.PredictionError{Err: fmt.Errorf("ml_service: failed to marshal request: %w", err)}
	}

	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.post(ctx, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &domain.PredictionError{Err: fmt.Errorf("ml_service: circuit breaker open: %w", err)}
		}
		return "", &domain.PredictionError{Err: err}
	}

	prediction := result.(remotePredictResponse)
	if len(prediction.Predictions) != 1 {
		return "", &domain.PredictionError{
			Err: fmt.Errorf("ml_service: expected 1 prediction, got %d", len(prediction.Predictions)),
		}
	}
	return prediction.Predictions[0], nil
}

func (b *RemoteClassifier) post(ctx context.Context, body []byte) (remotePredictResponse, error) {
	url := fmt.Sprintf("%s/predict", b.serviceURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return remotePredictResponse{}, fmt.Errorf("ml_service: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return remotePredictResponse{}, fmt.Errorf("ml_service: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return remotePredictResponse{}, fmt.Errorf("ml_service: predict returned status %d", resp.StatusCode)
	}

	var prediction remotePredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return remotePredictResponse{}, fmt.Errorf("ml_service: failed to decode response: %w", err)
	}
	return prediction, nil
}

// Health checks ML service connectivity
func (b *RemoteClassifier) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", b.serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("ml_service: failed to create health request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ml_service: health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ml_service: health check returned status %d", resp.StatusCode)
	}

	return nil
}
