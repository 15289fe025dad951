package classifier

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/weather-predictor/internal/domain"
)

// rain when it is wet, sun otherwise
const binaryLinear = `{
	"kind": "linear",
	"classes": ["rain", "sun"],
	"feature_names": ["precipitation", "temp_max", "temp_min", "wind"],
	"coef": [[-1.0, 0.5, 0.0, 0.0]],
	"intercept": [-1.0]
}`

// One support vector per class; each class owns a corner of the feature space.
const threeClassRBF = `{
	"kind": "svc",
	"classes": ["drizzle", "rain", "snow"],
	"kernel": "rbf",
	"gamma": 0.01,
	"support_vectors": [[0, 0, 0, 0], [10, 0, 0, 0], [0, 10, 0, 0]],
	"n_support": [1, 1, 1],
	"dual_coef": [[1, -1, -1], [1, 1, -1]],
	"intercept": [0, 0, 0]
}`

func writeArtifact(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func loadArtifact(t *testing.T, body string) *FileClassifier {
	t.Helper()
	c, err := Load(writeArtifact(t, body))
	require.NoError(t, err)
	return c
}

func TestLoad_BinaryLinear(t *testing.T) {
	c := loadArtifact(t, binaryLinear)
	ctx := context.Background()

	assert.Equal(t, "linear", c.Kind())

	label, err := c.Predict(ctx, domain.Features{0.0, 10.0, 2.0, 3.0})
	require.NoError(t, err)
	assert.Equal(t, "sun", label)

	label, err = c.Predict(ctx, domain.Features{10.0, 5.0, 2.0, 3.0})
	require.NoError(t, err)
	assert.Equal(t, "rain", label)
}

func TestPredict_FeatureOrderMatters(t *testing.T) {
	c := loadArtifact(t, binaryLinear)
	ctx := context.Background()

	r := domain.Reading{Precipitation: 0, TempMax: 10, TempMin: 2, Wind: 3}
	label, err := c.Predict(ctx, r.Features())
	require.NoError(t, err)
	assert.Equal(t, "sun", label)

	// precipitation and temp_max swapped
	label, err = c.Predict(ctx, domain.Features{10, 0, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "rain", label)
}

func TestLoad_MultiClassLinearArgmax(t *testing.T) {
	c := loadArtifact(t, `{
		"kind": "linear",
		"classes": ["drizzle", "rain", "snow", "sun"],
		"coef": [
			[0, 0, 0, 0],
			[1, 0, 0, 0],
			[0, -1, 0, 0],
			[0, 1, 0, 0]
		],
		"intercept": [0.5, 0, 0, 0]
	}`)
	ctx := context.Background()

	cases := []struct {
		name     string
		features domain.Features
		want     string
	}{
		{"wet", domain.Features{20, 5, 0, 0}, "rain"},
		{"freezing", domain.Features{0, -10, -15, 0}, "snow"},
		{"warm", domain.Features{0, 25, 12, 0}, "sun"},
		{"flat", domain.Features{0, 0, 0, 0}, "drizzle"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			label, err := c.Predict(ctx, tc.features)
			require.NoError(t, err)
			assert.Equal(t, tc.want, label)
		})
	}
}

func TestLinear_TieGoesToLowestIndex(t *testing.T) {
	c := loadArtifact(t, `{
		"kind": "linear",
		"classes": ["fog", "sun", "rain"],
		"coef": [[0, 0, 0, 0], [0, 0, 0, 0], [0, 0, 0, 0]],
		"intercept": [1, 1, 1]
	}`)

	label, err := c.Predict(context.Background(), domain.Features{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, "fog", label)
}

func TestLinear_Scaler(t *testing.T) {
	c := loadArtifact(t, `{
		"kind": "linear",
		"classes": ["dry", "wet"],
		"scaler": {"mean": [5, 0, 0, 0], "scale": [2, 1, 1, 1]},
		"coef": [[1, 0, 0, 0]],
		"intercept": [0]
	}`)
	ctx := context.Background()

	label, err := c.Predict(ctx, domain.Features{4, 100, 100, 100})
	require.NoError(t, err)
	assert.Equal(t, "dry", label)

	label, err = c.Predict(ctx, domain.Features{6, -100, -100, -100})
	require.NoError(t, err)
	assert.Equal(t, "wet", label)
}

func TestSVC_OneVsOneVoting(t *testing.T) {
	c := loadArtifact(t, threeClassRBF)
	ctx := context.Background()

	assert.Equal(t, "svc", c.Kind())

	cases := []struct {
		name     string
		features domain.Features
		want     string
	}{
		{"near origin", domain.Features{0.5, 0.5, 0, 0}, "drizzle"},
		{"near precipitation corner", domain.Features{9, 0, 0, 0}, "rain"},
		{"near temp_max corner", domain.Features{0, 9, 0, 0}, "snow"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			label, err := c.Predict(ctx, tc.features)
			require.NoError(t, err)
			assert.Equal(t, tc.want, label)
		})
	}
}

func TestSVC_LinearKernelBinary(t *testing.T) {
	c := loadArtifact(t, `{
		"kind": "svc",
		"classes": ["sun", "rain"],
		"kernel": "linear",
		"support_vectors": [[0, 1, 0, 0], [1, 0, 0, 0]],
		"n_support": [1, 1],
		"dual_coef": [[1, -1]],
		"intercept": [0]
	}`)
	ctx := context.Background()

	label, err := c.Predict(ctx, domain.Features{0, 10, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "sun", label)

	label, err = c.Predict(ctx, domain.Features{10, 0, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "rain", label)
}

func TestKernels(t *testing.T) {
	a := vector{1, 2, 0, 0}
	b := vector{3, 1, 0, 0}

	assert.InDelta(t, 5.0, newKernel("linear", 0, 0, 3)(a, b), 1e-12)
	assert.InDelta(t, math.Exp(-0.5*5), newKernel("rbf", 0.5, 0, 3)(a, b), 1e-12)
	assert.InDelta(t, math.Pow(0.5*5+1, 2), newKernel("poly", 0.5, 1, 2)(a, b), 1e-12)
	assert.InDelta(t, math.Tanh(0.5*5-1), newKernel("sigmoid", 0.5, -1, 3)(a, b), 1e-12)
}

func TestSVC_PolyDegreeZeroIsConstantKernel(t *testing.T) {
	artifact := func(intercept string) string {
		return `{
			"kind": "svc",
			"classes": ["a", "b"],
			"kernel": "poly",
			"gamma": 1,
			"coef0": 1,
			"degree": 0,
			"support_vectors": [[0, 0, 0, 0], [9, 9, 9, 9]],
			"n_support": [1, 1],
			"dual_coef": [[1, -1]],
			"intercept": [` + intercept + `]
		}`
	}
	ctx := context.Background()

	// K == 1 everywhere, so only the intercept decides
	for intercept, want := range map[string]string{"0.5": "a", "-0.5": "b"} {
		c := loadArtifact(t, artifact(intercept))
		for _, f := range []domain.Features{{0, 0, 0, 0}, {9, 9, 9, 9}, {-3, 40, 2, 7}} {
			label, err := c.Predict(ctx, f)
			require.NoError(t, err)
			assert.Equal(t, want, label)
		}
	}
}

func TestPredict_NonFiniteFeature(t *testing.T) {
	c := loadArtifact(t, binaryLinear)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := c.Predict(context.Background(), domain.Features{0, v, 2, 3})

		var predErr *domain.PredictionError
		require.ErrorAs(t, err, &predErr)
		assert.Contains(t, err.Error(), "temp_max")
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"malformed json", `{"kind": "linear",`, "malformed artifact"},
		{"unknown field", `{"kind": "linear", "classes": ["a", "b"], "coef": [[1,0,0,0]], "intercept": [0], "extra": 1}`, "malformed artifact"},
		{"unknown kind", `{"kind": "tree", "classes": ["a", "b"], "intercept": [0]}`, "invalid artifact"},
		{"single class", `{"kind": "linear", "classes": ["a"], "coef": [[1,0,0,0]], "intercept": [0]}`, "invalid artifact"},
		{"duplicate class", `{"kind": "linear", "classes": ["a", "a"], "coef": [[1,0,0,0]], "intercept": [0]}`, "duplicate class"},
		{"wrong coef width", `{"kind": "linear", "classes": ["a", "b"], "coef": [[1,0,0]], "intercept": [0]}`, "invalid artifact"},
		{"reordered features", `{"kind": "linear", "classes": ["a", "b"], "feature_names": ["temp_max", "precipitation", "temp_min", "wind"], "coef": [[1,0,0,0]], "intercept": [0]}`, "feature order mismatch"},
		{"zero scale", `{"kind": "linear", "classes": ["a", "b"], "scaler": {"mean": [0,0,0,0], "scale": [1,0,1,1]}, "coef": [[1,0,0,0]], "intercept": [0]}`, "invalid artifact"},
		{"coef rows vs classes", `{"kind": "linear", "classes": ["a", "b", "c"], "coef": [[1,0,0,0]], "intercept": [0]}`, "coefficient rows"},
		{"intercept count", `{"kind": "linear", "classes": ["a", "b"], "coef": [[1,0,0,0]], "intercept": [0, 1]}`, "intercepts"},
		{"svc support mismatch", `{"kind": "svc", "classes": ["a", "b"], "kernel": "linear", "support_vectors": [[0,0,0,0]], "n_support": [1, 1], "dual_coef": [[1]], "intercept": [0]}`, "n_support sums"},
		{"svc dual coef width", `{"kind": "svc", "classes": ["a", "b"], "kernel": "linear", "support_vectors": [[0,0,0,0],[1,1,1,1]], "n_support": [1, 1], "dual_coef": [[1]], "intercept": [0]}`, "dual_coef row"},
		{"svc missing gamma", `{"kind": "svc", "classes": ["a", "b"], "kernel": "rbf", "support_vectors": [[0,0,0,0],[1,1,1,1]], "n_support": [1, 1], "dual_coef": [[1, -1]], "intercept": [0]}`, "positive gamma"},
		{"svc poly without degree", `{"kind": "svc", "classes": ["a", "b"], "kernel": "poly", "gamma": 1, "support_vectors": [[0,0,0,0],[1,1,1,1]], "n_support": [1, 1], "dual_coef": [[1, -1]], "intercept": [0]}`, "needs a degree"},
		{"svc negative degree", `{"kind": "svc", "classes": ["a", "b"], "kernel": "poly", "gamma": 1, "degree": -1, "support_vectors": [[0,0,0,0],[1,1,1,1]], "n_support": [1, 1], "dual_coef": [[1, -1]], "intercept": [0]}`, "invalid artifact"},
		{"svc pair intercepts", `{"kind": "svc", "classes": ["a", "b", "c"], "kernel": "linear", "support_vectors": [[0,0,0,0],[1,1,1,1],[2,2,2,2]], "n_support": [1, 1, 1], "dual_coef": [[1,1,1],[1,1,1]], "intercept": [0]}`, "expected 3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeArtifact(t, tc.body)
			_, err := Load(path)

			var loadErr *domain.ModelLoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, path, loadErr.Path)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	_, err := Load(path)

	var loadErr *domain.ModelLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_BundledModel(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "model.json"))
	require.NoError(t, err)
	ctx := context.Background()

	label, err := c.Predict(ctx, domain.Features{0.0, 10.0, 2.0, 3.0})
	require.NoError(t, err)
	assert.Equal(t, "sun", label)

	label, err = c.Predict(ctx, domain.Features{30.0, 8.0, 4.0, 5.0})
	require.NoError(t, err)
	assert.Equal(t, "rain", label)
}
