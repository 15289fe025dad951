package service

import (
	"github.com/smartcity/weather-predictor/internal/domain"
)

// ObservationStore is re-exported from domain for convenience
type ObservationStore = domain.ObservationStore

// Classifier is re-exported from domain for convenience
type Classifier = domain.Classifier
