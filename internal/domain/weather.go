package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidReading marks a reading that cannot be stored or classified
var ErrInvalidReading = errors.New("invalid reading")

// SentinelLabel is written at insert time, before the prediction resolves
const SentinelLabel = "Unknown"

// FeatureCount is the number of numeric features the classifier consumes
const FeatureCount = 4

// FeatureNames lists the classifier inputs in the order they appear in Features.
// Model artifacts that declare their feature names must use exactly this order.
var FeatureNames = [FeatureCount]string{"precipitation", "temp_max", "temp_min", "wind"}

// Features is the ordered vector [precipitation, temp_max, temp_min, wind]
type Features [FeatureCount]float64

// Slice returns the features as a single sample row
func (f Features) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, f[:])
	return out
}

// Reading holds the five caller-supplied fields of an observation
type Reading struct {
	Date          string  `json:"date"`
	Precipitation float64 `json:"precipitation"`
	TempMax       float64 `json:"temp_max"`
	TempMin       float64 `json:"temp_min"`
	Wind          float64 `json:"wind"`
}

// Features builds the classifier input for this reading.
// The order is a strict contract: swapping two measurements changes predictions silently.
func (r Reading) Features() Features {
	return Features{r.Precipitation, r.TempMax, r.TempMin, r.Wind}
}

// CheckFinite rejects NaN and infinite measurements. Such values cannot be
// stored faithfully by every backend or encoded as JSON when listed.
func (r Reading) CheckFinite() error {
	for i, v := range r.Features() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite: %v", ErrInvalidReading, FeatureNames[i], v)
		}
	}
	return nil
}

// WithLabel attaches a weather label, producing a storable observation
func (r Reading) WithLabel(label string) Observation {
	return Observation{
		Date:          r.Date,
		Precipitation: r.Precipitation,
		TempMax:       r.TempMax,
		TempMin:       r.TempMin,
		Wind:          r.Wind,
		Weather:       label,
	}
}

// Observation is one persisted weather record
type Observation struct {
	Date          string  `json:"date"`
	Precipitation float64 `json:"precipitation"`
	TempMax       float64 `json:"temp_max"`
	TempMin       float64 `json:"temp_min"`
	Wind          float64 `json:"wind"`
	Weather       string  `json:"weather"`
}

// Reading returns the non-label part of the observation
func (o Observation) Reading() Reading {
	return Reading{
		Date:          o.Date,
		Precipitation: o.Precipitation,
		TempMax:       o.TempMax,
		TempMin:       o.TempMin,
		Wind:          o.Wind,
	}
}

// Status reports where the record sits in the pipeline lifecycle
func (o Observation) Status() Status {
	if o.Weather == SentinelLabel {
		return StatusRecorded
	}
	return StatusResolved
}

// Status is the lifecycle state of a stored observation
type Status string

const (
	StatusRecorded Status = "RECORDED"
	StatusResolved Status = "RESOLVED"
)

// SubmissionResult is returned to the caller after a successful submission
type SubmissionResult struct {
	Weather     string      `json:"weather"`
	Observation Observation `json:"observation"`
}
