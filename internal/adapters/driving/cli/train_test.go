package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

func TestTrainCmd_Use(t *testing.T) {
	assert.Equal(t, "train", trainCmd.Use)
}

func TestTrainCmd_PrintsTrainResult(t *testing.T) {
	trainer := &mockTrainer{result: &domain.TrainResult{
		RunID:         "train-1",
		Status:        domain.StatusSuccess,
		ModelsTrained: 2,
		PerModel: map[string]domain.Metrics{
			"epidemic_forecast": {Primary: 12.5, RMSE: 12.5},
		},
		Skipped: map[string]string{"market_close": "insufficient data"},
	}}
	cleanup := swapServices(&mockPipelineRunner{}, trainer, &mockPredictionService{}, &mockInsightReporter{})
	defer cleanup()

	out, err := execute(t, "train")

	assert.NoError(t, err)
	assert.Equal(t, 1, trainer.calls)
	assert.Contains(t, out, `"models_trained": 2`)
	assert.Contains(t, out, `"epidemic_forecast"`)
	assert.Contains(t, out, `"market_close": "insufficient data"`)
}

func TestTrainCmd_PropagatesError(t *testing.T) {
	trainer := &mockTrainer{err: errors.New("loading snapshot: corrupt descriptor")}
	cleanup := swapServices(&mockPipelineRunner{}, trainer, &mockPredictionService{}, &mockInsightReporter{})
	defer cleanup()

	_, err := execute(t, "train")

	assert.ErrorContains(t, err, "corrupt descriptor")
}
