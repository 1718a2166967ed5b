package cli

import (
	"context"

	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driving"
)

// mockPipelineRunner implements driving.PipelineRunner for testing.
type mockPipelineRunner struct {
	result *domain.RunResult
	err    error
	calls  int
}

func (m *mockPipelineRunner) RunETL(_ context.Context) (*domain.RunResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockPipelineRunner) Phase() domain.RunPhase {
	return domain.PhaseIdle
}

// mockTrainer implements driving.Trainer for testing.
type mockTrainer struct {
	result *domain.TrainResult
	err    error
	calls  int
}

func (m *mockTrainer) TrainModels(_ context.Context) (*domain.TrainResult, error) {
	m.calls++
	return m.result, m.err
}

// mockPredictionService implements driving.PredictionService for testing.
type mockPredictionService struct {
	result   *domain.PredictionResult
	err      error
	model    string
	features map[string]float64
}

func (m *mockPredictionService) Predict(_ context.Context, model string, features map[string]float64) (*domain.PredictionResult, error) {
	m.model = model
	m.features = features
	return m.result, m.err
}

// mockInsightReporter implements driving.InsightReporter for testing.
type mockInsightReporter struct {
	insights *domain.InsightReport
	trends   *domain.TrendReport
	err      error
	source   string
	days     int
}

func (m *mockInsightReporter) Insights(_ context.Context) (*domain.InsightReport, error) {
	return m.insights, m.err
}

func (m *mockInsightReporter) Trends(_ context.Context, source string, windowDays int) (*domain.TrendReport, error) {
	m.source = source
	m.days = windowDays
	return m.trends, m.err
}

var (
	_ driving.PipelineRunner    = (*mockPipelineRunner)(nil)
	_ driving.Trainer           = (*mockTrainer)(nil)
	_ driving.PredictionService = (*mockPredictionService)(nil)
	_ driving.InsightReporter   = (*mockInsightReporter)(nil)
)

// swapServices replaces every package-level service so PersistentPreRunE
// skips bootstrap. Returns a cleanup restoring the originals.
func swapServices(runner driving.PipelineRunner, trainer driving.Trainer, predictor driving.PredictionService, reporter driving.InsightReporter) func() {
	oldRunner, oldTrainer := pipelineRunner, modelTrainer
	oldPredictor, oldReporter := predictionService, insightReporter
	pipelineRunner = runner
	modelTrainer = trainer
	predictionService = predictor
	insightReporter = reporter
	return func() {
		pipelineRunner = oldRunner
		modelTrainer = oldTrainer
		predictionService = oldPredictor
		insightReporter = oldReporter
	}
}
