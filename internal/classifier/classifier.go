package classifier

import (
	"context"
	"fmt"
	"math"

	"github.com/smartcity/weather-predictor/internal/domain"
)

// FileClassifier serves predictions from a model artifact loaded once at startup.
// It is immutable after Load and safe for concurrent use.
type FileClassifier struct {
	path  string
	kind  string
	model model
}

// Path returns the artifact location the model was loaded from
func (c *FileClassifier) Path() string { return c.path }

// Kind returns the artifact kind (linear or svc)
func (c *FileClassifier) Kind() string { return c.kind }

// Predict classifies a single reading. The sample width is fixed by
// domain.Features, so only the values need checking.
func (c *FileClassifier) Predict(ctx context.Context, features domain.Features) (string, error) {
	for i, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", &domain.PredictionError{
				Err: fmt.Errorf("feature %s is not finite: %v", domain.FeatureNames[i], v),
			}
		}
	}
	return c.model.predict(vector(features)), nil
}
