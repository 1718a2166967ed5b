package registry

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantica-labs/pulse/internal/adapters/driven/storage/modelstore"
	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
)

// constPredictor always returns its value, tagging which artifact it was
// published with.
type constPredictor struct {
	value float64
}

func (p constPredictor) Predict([]float64) float64 { return p.value }

func linearArtifact(name string, coef []float64, intercept float64) *domain.ModelArtifact {
	params, _ := json.Marshal(map[string]any{"coef": coef, "intercept": intercept})
	return &domain.ModelArtifact{
		Name:      name,
		Target:    domain.TargetRegression,
		Algorithm: "linear",
		Features:  []string{"x0", "x1"},
		Params:    params,
		TrainedAt: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestPublishGet(t *testing.T) {
	reg := New()
	ctx := context.Background()

	artifact := linearArtifact("epidemic_forecast", []float64{1, 2}, 0.5)
	require.NoError(t, reg.Publish(ctx, driven.Entry{Artifact: artifact, Predictor: constPredictor{1}}))

	entry, err := reg.Get(ctx, "epidemic_forecast")
	require.NoError(t, err)
	assert.Equal(t, "epidemic_forecast", entry.Artifact.Name)
	assert.Equal(t, 1.0, entry.Predictor.Predict(nil))

	_, err = reg.Get(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func TestPublish_RejectsIncompleteEntries(t *testing.T) {
	reg := New()
	ctx := context.Background()

	err := reg.Publish(ctx, driven.Entry{Predictor: constPredictor{}})
	assert.Error(t, err)

	err = reg.Publish(ctx, driven.Entry{Artifact: linearArtifact("m", nil, 0)})
	assert.Error(t, err)
}

func TestList_SortedByName(t *testing.T) {
	reg := New()
	ctx := context.Background()

	for _, name := range []string{"weather_class", "epidemic_forecast", "market_close"} {
		entry := driven.Entry{Artifact: linearArtifact(name, []float64{1, 1}, 0), Predictor: constPredictor{}}
		require.NoError(t, reg.Publish(ctx, entry))
	}

	entries, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "epidemic_forecast", entries[0].Artifact.Name)
	assert.Equal(t, "market_close", entries[1].Artifact.Name)
	assert.Equal(t, "weather_class", entries[2].Artifact.Name)
}

// Readers racing a publisher must always observe a predictor that matches the
// artifact it was published with.
func TestPublish_AtomicUnderConcurrentReads(t *testing.T) {
	reg := New()
	ctx := context.Background()

	publish := func(version float64) {
		artifact := linearArtifact("model", []float64{version}, version)
		artifact.Samples = int(version)
		entry := driven.Entry{Artifact: artifact, Predictor: constPredictor{value: version}}
		require.NoError(t, reg.Publish(ctx, entry))
	}
	publish(1)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				entry, err := reg.Get(ctx, "model")
				if err != nil {
					t.Error(err)
					return
				}
				if got := entry.Predictor.Predict(nil); got != float64(entry.Artifact.Samples) {
					t.Errorf("predictor version %v does not match artifact version %d", got, entry.Artifact.Samples)
					return
				}
			}
		}()
	}

	for v := 2; v <= 50; v++ {
		publish(float64(v))
	}
	close(stop)
	wg.Wait()
}

func TestHydrate_LoadsPersistedArtifacts(t *testing.T) {
	ctx := context.Background()
	store, err := modelstore.New(t.TempDir())
	require.NoError(t, err)

	// y = 2*x0 + 3*x1 + 1
	require.NoError(t, store.SaveArtifact(ctx, linearArtifact("market_close", []float64{2, 3}, 1)))

	reg := New()
	require.NoError(t, reg.Hydrate(ctx, store))

	entry, err := reg.Get(ctx, "market_close")
	require.NoError(t, err)
	assert.InDelta(t, 2*4+3*5+1, entry.Predictor.Predict([]float64{4, 5}), 1e-9)
}

func TestHydrate_SkipsCorruptParams(t *testing.T) {
	ctx := context.Background()
	store, err := modelstore.New(t.TempDir())
	require.NoError(t, err)

	good := linearArtifact("good", []float64{1}, 0)
	bad := linearArtifact("bad", nil, 0)
	bad.Params = json.RawMessage(`{not json`)
	require.NoError(t, store.SaveArtifact(ctx, good))
	require.NoError(t, store.SaveArtifact(ctx, bad))

	reg := New()
	require.NoError(t, reg.Hydrate(ctx, store))

	_, err = reg.Get(ctx, "good")
	assert.NoError(t, err)
	_, err = reg.Get(ctx, "bad")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}
