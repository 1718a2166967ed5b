package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

func TestPredictCmd_Use(t *testing.T) {
	assert.Equal(t, "predict <model> <feature>=<value> [<feature>=<value>...]", predictCmd.Use)
}

func TestPredictCmd_ParsesModelAndFeatures(t *testing.T) {
	svc := &mockPredictionService{result: &domain.PredictionResult{
		Value:        51234.7,
		Algorithm:    "linear_regression",
		FeaturesUsed: []string{"cases", "deaths"},
	}}
	cleanup := swapServices(&mockPipelineRunner{}, &mockTrainer{}, svc, &mockInsightReporter{})
	defer cleanup()

	out, err := execute(t, "predict", "epidemic_forecast", "cases=52000", "deaths=1200")

	assert.NoError(t, err)
	assert.Equal(t, "epidemic_forecast", svc.model)
	assert.Equal(t, map[string]float64{"cases": 52000, "deaths": 1200}, svc.features)
	assert.Contains(t, out, `"prediction": 51234.7`)
	assert.Contains(t, out, `"algorithm_id": "linear_regression"`)
}

func TestPredictCmd_RejectsMalformedFeature(t *testing.T) {
	cleanup := swapServices(&mockPipelineRunner{}, &mockTrainer{}, &mockPredictionService{}, &mockInsightReporter{})
	defer cleanup()

	_, err := execute(t, "predict", "epidemic_forecast", "cases")

	assert.ErrorContains(t, err, "expected <feature>=<value>")
}

func TestPredictCmd_RejectsNonNumericValue(t *testing.T) {
	cleanup := swapServices(&mockPipelineRunner{}, &mockTrainer{}, &mockPredictionService{}, &mockInsightReporter{})
	defer cleanup()

	_, err := execute(t, "predict", "epidemic_forecast", "cases=lots")

	assert.ErrorContains(t, err, "is not a number")
}

func TestPredictCmd_SurfacesFeatureMismatch(t *testing.T) {
	svc := &mockPredictionService{err: &domain.FeatureMismatchError{
		Model:   "epidemic_forecast",
		Missing: []string{"recovered"},
	}}
	cleanup := swapServices(&mockPipelineRunner{}, &mockTrainer{}, svc, &mockInsightReporter{})
	defer cleanup()

	_, err := execute(t, "predict", "epidemic_forecast", "cases=1")

	assert.ErrorContains(t, err, "recovered")
}
