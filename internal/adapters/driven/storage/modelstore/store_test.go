package modelstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

func sampleArtifact(name string) *domain.ModelArtifact {
	return &domain.ModelArtifact{
		Name:      name,
		Target:    domain.TargetRegression,
		Algorithm: "linear",
		Features:  []string{"cases", "cases_ma7", "cases_growth"},
		Params:    json.RawMessage(`{"coefficients":[1.5,-0.2,0.7],"intercept":3.1}`),
		Metrics:   domain.Metrics{Primary: 0.93, RMSE: 12.4},
		Candidates: []domain.CandidateScore{
			{Algorithm: "linear", Metrics: domain.Metrics{Primary: 0.93, RMSE: 12.4}, Selected: true},
			{Algorithm: "forest", Metrics: domain.Metrics{Primary: 0.88, RMSE: 15.0}},
		},
		Samples:   120,
		TrainedAt: time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC),
		RunID:     "run-123",
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	want := sampleArtifact("epidemic_forecast")
	require.NoError(t, store.SaveArtifact(ctx, want))

	got, err := store.LoadArtifact(ctx, "epidemic_forecast")
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Target, got.Target)
	assert.Equal(t, want.Algorithm, got.Algorithm)
	assert.Equal(t, want.Features, got.Features)
	assert.JSONEq(t, string(want.Params), string(got.Params))
	assert.Equal(t, want.Metrics, got.Metrics)
	assert.Equal(t, want.Candidates, got.Candidates)
	assert.Equal(t, want.Samples, got.Samples)
	assert.True(t, want.TrainedAt.Equal(got.TrainedAt))
	assert.Equal(t, want.RunID, got.RunID)
}

func TestSaveArtifact_SplitsParamsFromMetadata(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, store.SaveArtifact(context.Background(), sampleArtifact("market_close")))

	params, err := os.ReadFile(filepath.Join(dir, "market_close_params.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"coefficients":[1.5,-0.2,0.7],"intercept":3.1}`, string(params))

	meta, err := os.ReadFile(filepath.Join(dir, "market_close_meta.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(meta), "coefficients")
	assert.Contains(t, string(meta), `"algorithm": "linear"`)
}

func TestSaveArtifact_ReplacesPrior(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.SaveArtifact(ctx, sampleArtifact("weather_class")))

	updated := sampleArtifact("weather_class")
	updated.Algorithm = "forest"
	updated.Params = json.RawMessage(`{"trees":[]}`)
	require.NoError(t, store.SaveArtifact(ctx, updated))

	got, err := store.LoadArtifact(ctx, "weather_class")
	require.NoError(t, err)
	assert.Equal(t, "forest", got.Algorithm)
	assert.JSONEq(t, `{"trees":[]}`, string(got.Params))
}

func TestLoadArtifact_Missing(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.LoadArtifact(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func TestListArtifacts_SortedByName(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"weather_class", "epidemic_forecast", "market_close"} {
		require.NoError(t, store.SaveArtifact(ctx, sampleArtifact(name)))
	}

	artifacts, err := store.ListArtifacts(ctx)
	require.NoError(t, err)
	require.Len(t, artifacts, 3)
	assert.Equal(t, "epidemic_forecast", artifacts[0].Name)
	assert.Equal(t, "market_close", artifacts[1].Name)
	assert.Equal(t, "weather_class", artifacts[2].Name)
}

func TestSaveArtifact_RejectsPathTraversal(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	artifact := sampleArtifact("../escape")
	err = store.SaveArtifact(context.Background(), artifact)
	assert.True(t, domain.IsPersistenceError(err))
}
