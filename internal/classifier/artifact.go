package classifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/smartcity/weather-predictor/internal/domain"
)

var validate = validator.New()

const (
	kindLinear = "linear"
	kindSVC    = "svc"
)

// Artifact is the serialized form of a trained model
type Artifact struct {
	Kind         string    `json:"kind" validate:"required,oneof=linear svc"`
	Classes      []string  `json:"classes" validate:"min=2,dive,required"`
	FeatureNames []string  `json:"feature_names,omitempty" validate:"omitempty,len=4"`
	Scaler       *Scaler   `json:"scaler,omitempty" validate:"omitempty"`
	Intercept    []float64 `json:"intercept" validate:"required"`

	// linear
	Coef [][]float64 `json:"coef,omitempty" validate:"omitempty,dive,len=4"`

	// svc
	Kernel         string      `json:"kernel,omitempty" validate:"omitempty,oneof=linear rbf poly sigmoid"`
	Gamma          float64     `json:"gamma,omitempty" validate:"gte=0"`
	Coef0          float64     `json:"coef0,omitempty"`
	Degree         *int        `json:"degree,omitempty" validate:"omitempty,gte=0"`
	SupportVectors [][]float64 `json:"support_vectors,omitempty" validate:"omitempty,dive,len=4"`
	NSupport       []int       `json:"n_support,omitempty" validate:"omitempty,dive,gte=0"`
	DualCoef       [][]float64 `json:"dual_coef,omitempty"`
}

// Scaler standardizes features before they reach the model
type Scaler struct {
	Mean  []float64 `json:"mean" validate:"len=4"`
	Scale []float64 `json:"scale" validate:"len=4,dive,ne=0"`
}

// Load reads and validates a model artifact, returning a ready classifier.
// Any failure is a *domain.ModelLoadError.
func Load(path string) (*FileClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ModelLoadError{Path: path, Err: err}
	}

	art, err := decodeArtifact(data)
	if err != nil {
		return nil, &domain.ModelLoadError{Path: path, Err: err}
	}

	m, err := art.build()
	if err != nil {
		return nil, &domain.ModelLoadError{Path: path, Err: err}
	}

	return &FileClassifier{path: path, kind: art.Kind, model: m}, nil
}

func decodeArtifact(data []byte) (*Artifact, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var art Artifact
	if err := dec.Decode(&art); err != nil {
		return nil, fmt.Errorf("malformed artifact: %w", err)
	}
	if err := validate.Struct(&art); err != nil {
		return nil, fmt.Errorf("invalid artifact: %w", err)
	}
	if err := art.checkFeatureNames(); err != nil {
		return nil, err
	}
	if err := art.checkClasses(); err != nil {
		return nil, err
	}
	return &art, nil
}

func (a *Artifact) checkFeatureNames() error {
	if len(a.FeatureNames) == 0 {
		return nil
	}
	for i, name := range a.FeatureNames {
		if name != domain.FeatureNames[i] {
			return fmt.Errorf("feature order mismatch: artifact has %v, expected %v", a.FeatureNames, domain.FeatureNames)
		}
	}
	return nil
}

func (a *Artifact) checkClasses() error {
	seen := make(map[string]struct{}, len(a.Classes))
	for _, c := range a.Classes {
		if _, ok := seen[c]; ok {
			return fmt.Errorf("duplicate class %q", c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

func (a *Artifact) build() (model, error) {
	var sc *scaler
	if a.Scaler != nil {
		sc = &scaler{}
		copy(sc.mean[:], a.Scaler.Mean)
		copy(sc.scale[:], a.Scaler.Scale)
	}

	switch a.Kind {
	case kindLinear:
		return a.buildLinear(sc)
	case kindSVC:
		return a.buildSVC(sc)
	default:
		return nil, fmt.Errorf("unknown model kind %q", a.Kind)
	}
}

func (a *Artifact) buildLinear(sc *scaler) (model, error) {
	k := len(a.Classes)
	rows := len(a.Coef)

	switch {
	case rows == 0:
		return nil, errors.New("linear model has no coefficients")
	case rows != k && !(k == 2 && rows == 1):
		return nil, fmt.Errorf("linear model has %d coefficient rows for %d classes", rows, k)
	case len(a.Intercept) != rows:
		return nil, fmt.Errorf("linear model has %d intercepts for %d coefficient rows", len(a.Intercept), rows)
	}

	m := &linearModel{
		classes:   append([]string(nil), a.Classes...),
		coef:      make([][domain.FeatureCount]float64, rows),
		intercept: append([]float64(nil), a.Intercept...),
		scaler:    sc,
	}
	for i, row := range a.Coef {
		copy(m.coef[i][:], row)
	}
	return m, nil
}

func (a *Artifact) buildSVC(sc *scaler) (model, error) {
	k := len(a.Classes)
	n := len(a.SupportVectors)

	if a.Kernel == "" {
		return nil, errors.New("svc model has no kernel")
	}
	if n == 0 {
		return nil, errors.New("svc model has no support vectors")
	}
	if len(a.NSupport) != k {
		return nil, fmt.Errorf("svc model has n_support for %d classes, expected %d", len(a.NSupport), k)
	}
	total := 0
	for _, c := range a.NSupport {
		total += c
	}
	if total != n {
		return nil, fmt.Errorf("svc n_support sums to %d but there are %d support vectors", total, n)
	}
	if len(a.DualCoef) != k-1 {
		return nil, fmt.Errorf("svc model has %d dual_coef rows, expected %d", len(a.DualCoef), k-1)
	}
	for i, row := range a.DualCoef {
		if len(row) != n {
			return nil, fmt.Errorf("svc dual_coef row %d has %d entries, expected %d", i, len(row), n)
		}
	}
	if pairs := k * (k - 1) / 2; len(a.Intercept) != pairs {
		return nil, fmt.Errorf("svc model has %d intercepts, expected %d", len(a.Intercept), pairs)
	}
	if a.Kernel != "linear" && a.Gamma <= 0 {
		return nil, fmt.Errorf("svc %s kernel needs a positive gamma", a.Kernel)
	}

	degree := 0
	if a.Kernel == "poly" {
		if a.Degree == nil {
			return nil, errors.New("svc poly kernel needs a degree")
		}
		degree = *a.Degree
	}

	m := &svcModel{
		classes:   append([]string(nil), a.Classes...),
		kernel:    newKernel(a.Kernel, a.Gamma, a.Coef0, degree),
		sv:        make([][domain.FeatureCount]float64, n),
		nSupport:  append([]int(nil), a.NSupport...),
		dualCoef:  a.DualCoef,
		intercept: append([]float64(nil), a.Intercept...),
		scaler:    sc,
	}
	for i, row := range a.SupportVectors {
		copy(m.sv[i][:], row)
	}
	return m, nil
}
