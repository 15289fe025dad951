package classifier

import (
	"math"

	"github.com/smartcity/weather-predictor/internal/domain"
)

type vector = [domain.FeatureCount]float64

// model maps one standardized-or-raw sample to a class label
type model interface {
	predict(x vector) string
}

type scaler struct {
	mean  vector
	scale vector
}

func (s *scaler) apply(x vector) vector {
	if s == nil {
		return x
	}
	var out vector
	for i := range x {
		out[i] = (x[i] - s.mean[i]) / s.scale[i]
	}
	return out
}

type linearModel struct {
	classes   []string
	coef      []vector
	intercept []float64
	scaler    *scaler
}

func (m *linearModel) predict(x vector) string {
	x = m.scaler.apply(x)

	if len(m.coef) == 1 {
		if dot(m.coef[0], x)+m.intercept[0] > 0 {
			return m.classes[1]
		}
		return m.classes[0]
	}

	best, bestScore := 0, math.Inf(-1)
	for i, w := range m.coef {
		if score := dot(w, x) + m.intercept[i]; score > bestScore {
			best, bestScore = i, score
		}
	}
	return m.classes[best]
}

type svcModel struct {
	classes   []string
	kernel    kernelFunc
	sv        []vector
	nSupport  []int
	dualCoef  [][]float64
	intercept []float64
	scaler    *scaler
}

func (m *svcModel) predict(x vector) string {
	x = m.scaler.apply(x)

	kv := make([]float64, len(m.sv))
	for i, sv := range m.sv {
		kv[i] = m.kernel(sv, x)
	}

	k := len(m.classes)
	start := make([]int, k)
	for i := 1; i < k; i++ {
		start[i] = start[i-1] + m.nSupport[i-1]
	}

	votes := make([]int, k)
	p := 0
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			sum := m.intercept[p]
			for t := start[i]; t < start[i]+m.nSupport[i]; t++ {
				sum += m.dualCoef[j-1][t] * kv[t]
			}
			for t := start[j]; t < start[j]+m.nSupport[j]; t++ {
				sum += m.dualCoef[i][t] * kv[t]
			}
			if sum > 0 {
				votes[i]++
			} else {
				votes[j]++
			}
			p++
		}
	}

	best := 0
	for i := 1; i < k; i++ {
		if votes[i] > votes[best] {
			best = i
		}
	}
	return m.classes[best]
}

type kernelFunc func(a, b vector) float64

func newKernel(name string, gamma, coef0 float64, degree int) kernelFunc {
	switch name {
	case "rbf":
		return func(a, b vector) float64 {
			var d float64
			for i := range a {
				diff := a[i] - b[i]
				d += diff * diff
			}
			return math.Exp(-gamma * d)
		}
	case "poly":
		return func(a, b vector) float64 {
			return math.Pow(gamma*dot(a, b)+coef0, float64(degree))
		}
	case "sigmoid":
		return func(a, b vector) float64 {
			return math.Tanh(gamma*dot(a, b) + coef0)
		}
	default:
		return dot
	}
}

func dot(a, b vector) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
