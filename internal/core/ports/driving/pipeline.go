package driving

import (
	"context"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

// PipelineRunner executes ETL runs and exposes the run state machine.
type PipelineRunner interface {
	// RunETL collects from all configured sources, transforms and persists
	// snapshots. Partial source failure degrades the affected sources only;
	// the run still reports StatusSuccess. Only persistence failures fail
	// the whole run.
	RunETL(ctx context.Context) (*domain.RunResult, error)

	// Phase returns the current run phase.
	Phase() domain.RunPhase
}

// Trainer trains and selects models for every configured target.
type Trainer interface {
	// TrainModels trains each target's candidate set, selects winners and
	// publishes them. Targets with insufficient data are skipped and
	// reported; other targets proceed independently.
	TrainModels(ctx context.Context) (*domain.TrainResult, error)
}

// PredictionService serves point predictions against published artifacts.
type PredictionService interface {
	// Predict validates the feature map against the artifact's recorded
	// feature list and evaluates the model. Fails with
	// *domain.FeatureMismatchError on missing or unexpected keys; the
	// request has no side effects.
	Predict(ctx context.Context, model string, features map[string]float64) (*domain.PredictionResult, error)
}

// InsightReporter aggregates dataset freshness, model metrics and trends.
type InsightReporter interface {
	// Insights summarises every source snapshot and published model, with
	// rule-based recommendations.
	Insights(ctx context.Context) (*domain.InsightReport, error)

	// Trends fits per-metric trend directions for one source over a
	// lookback window of days.
	Trends(ctx context.Context, source string, windowDays int) (*domain.TrendReport, error)
}
