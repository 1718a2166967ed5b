package ml

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
)

// linearDataset generates y = 3·x0 − 2·x1 + 5 with the given noise scale.
func linearDataset(n int, noise float64, seed int64) (x [][]float64, y []float64) {
	rng := rand.New(rand.NewSource(seed))
	x = make([][]float64, n)
	y = make([]float64, n)
	for i := range x {
		a := rng.Float64() * 10
		b := rng.Float64() * 10
		x[i] = []float64{a, b}
		y[i] = 3*a - 2*b + 5 + noise*rng.NormFloat64()
	}
	return x, y
}

// bandDataset generates samples whose class is a threshold band over x0.
func bandDataset(n int) (x [][]float64, y []float64) {
	rng := rand.New(rand.NewSource(7))
	x = make([][]float64, n)
	y = make([]float64, n)
	for i := range x {
		v := rng.Float64() * 30
		x[i] = []float64{v, rng.Float64()}
		switch {
		case v < 10:
			y[i] = 0
		case v < 20:
			y[i] = 1
		default:
			y[i] = 2
		}
	}
	return x, y
}

func TestLinearRegression_RecoversCoefficients(t *testing.T) {
	x, y := linearDataset(60, 0, 1)

	model := NewLinearRegression()
	require.NoError(t, model.Fit(x, y))

	assert.InDelta(t, 3.0, model.coef[0], 1e-6)
	assert.InDelta(t, -2.0, model.coef[1], 1e-6)
	assert.InDelta(t, 5.0, model.intercept, 1e-6)
	assert.InDelta(t, 3*4.0-2*7.0+5, model.Predict([]float64{4, 7}), 1e-6)
}

func TestLinearRegression_RoundTripParams(t *testing.T) {
	x, y := linearDataset(40, 0.1, 2)

	model := NewLinearRegression()
	require.NoError(t, model.Fit(x, y))

	params, err := model.Params()
	require.NoError(t, err)

	loaded, err := LoadLinear(params)
	require.NoError(t, err)

	probe := []float64{2.5, 8.1}
	assert.Equal(t, model.Predict(probe), loaded.Predict(probe))
}

func TestRandomForest_Deterministic(t *testing.T) {
	x, y := linearDataset(50, 1, 3)

	a := NewRandomForest()
	require.NoError(t, a.Fit(x, y))
	b := NewRandomForest()
	require.NoError(t, b.Fit(x, y))

	probe := []float64{5, 5}
	assert.Equal(t, a.Predict(probe), b.Predict(probe))
}

func TestRandomForest_FitsTrainingData(t *testing.T) {
	x, y := linearDataset(80, 0.5, 4)

	model := NewRandomForest()
	require.NoError(t, model.Fit(x, y))

	predicted := make([]float64, len(x))
	for i := range x {
		predicted[i] = model.Predict(x[i])
	}
	assert.Greater(t, RSquared(predicted, y), 0.8)
}

func TestGradientBoost_FitsTrainingData(t *testing.T) {
	x, y := linearDataset(80, 0.5, 5)

	model := NewGradientBoost()
	require.NoError(t, model.Fit(x, y))

	predicted := make([]float64, len(x))
	for i := range x {
		predicted[i] = model.Predict(x[i])
	}
	assert.Greater(t, RSquared(predicted, y), 0.8)
}

func TestGradientBoost_RoundTripParams(t *testing.T) {
	x, y := linearDataset(50, 1, 6)

	model := NewGradientBoost()
	require.NoError(t, model.Fit(x, y))

	params, err := model.Params()
	require.NoError(t, err)
	loaded, err := LoadBoost(params)
	require.NoError(t, err)

	probe := []float64{3, 9}
	assert.Equal(t, model.Predict(probe), loaded.Predict(probe))
}

func TestLogisticRegression_SeparableClasses(t *testing.T) {
	x, y := bandDataset(120)

	model := NewLogisticRegression()
	require.NoError(t, model.Fit(x, y))

	predicted := make([]float64, len(x))
	for i := range x {
		predicted[i] = model.Predict(x[i])
	}
	assert.Greater(t, Accuracy(predicted, y), 0.9)
}

func TestOneVsRest_ForestClassifier(t *testing.T) {
	x, y := bandDataset(120)

	model := NewOneVsRest(func() driven.Candidate { return NewRandomForest() })
	require.NoError(t, model.Fit(x, y))

	predicted := make([]float64, len(x))
	for i := range x {
		predicted[i] = model.Predict(x[i])
	}
	assert.Greater(t, Accuracy(predicted, y), 0.9)

	// Round-trip through params keeps predictions identical.
	params, err := model.Params()
	require.NoError(t, err)
	loader, err := LoaderFor(domain.TargetClassification, "forest")
	require.NoError(t, err)
	loaded, err := loader(params)
	require.NoError(t, err)
	for i := range x[:10] {
		assert.Equal(t, model.Predict(x[i]), loaded.Predict(x[i]))
	}
}

func TestCrossValidate_LinearWinsOnLinearData(t *testing.T) {
	// The generating process is exactly linear, so the parametric candidate
	// must beat both tree ensembles, and its recorded metric must exceed
	// every other candidate's.
	x, y := linearDataset(90, 0.01, 11)

	var scores []domain.Metrics
	var names []string
	for _, spec := range CandidatesFor(domain.TargetRegression) {
		m, err := CrossValidate(spec, x, y, 5, domain.TargetRegression)
		require.NoError(t, err)
		scores = append(scores, m)
		names = append(names, spec.Algorithm)
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if Better(scores[i], scores[best]) {
			best = i
		}
	}
	require.Equal(t, "linear", names[best])
	for i, m := range scores {
		if i == best {
			continue
		}
		assert.Greater(t, scores[best].Primary, m.Primary)
	}
}

func TestCrossValidate_Deterministic(t *testing.T) {
	x, y := linearDataset(60, 1, 12)
	spec := CandidatesFor(domain.TargetRegression)[1] // forest

	a, err := CrossValidate(spec, x, y, 5, domain.TargetRegression)
	require.NoError(t, err)
	b, err := CrossValidate(spec, x, y, 5, domain.TargetRegression)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBetter_TieBreaksOnRMSE(t *testing.T) {
	a := domain.Metrics{Primary: 0.9, RMSE: 1.0}
	b := domain.Metrics{Primary: 0.9, RMSE: 2.0}
	assert.True(t, Better(a, b))
	assert.False(t, Better(b, a))

	c := domain.Metrics{Primary: 0.95, RMSE: 5.0}
	assert.True(t, Better(c, a))
}

func TestMetrics(t *testing.T) {
	predicted := []float64{1, 2, 3}
	observed := []float64{1, 2, 3}
	assert.Equal(t, 1.0, RSquared(predicted, observed))
	assert.Equal(t, 0.0, RMSE(predicted, observed))
	assert.Equal(t, 1.0, Accuracy(predicted, observed))

	assert.InDelta(t, 0.6666, Accuracy([]float64{1, 2, 0}, observed), 1e-3)
}
