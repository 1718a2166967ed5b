package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
	"github.com/quantica-labs/pulse/internal/core/ports/driving"
	"github.com/quantica-labs/pulse/internal/logger"
	"github.com/quantica-labs/pulse/internal/ml"
)

// Ensure Trainer implements the interface.
var _ driving.Trainer = (*Trainer)(nil)

// TargetSpec describes one prediction target: which source feeds it, what it
// predicts and how far ahead.
type TargetSpec struct {
	// Name is the model's registry key.
	Name string

	// Source is the snapshot the training frame is loaded from.
	Source string

	// Kind selects regression or classification.
	Kind domain.TargetKind

	// Column is the processed column the target is derived from.
	Column string

	// Horizon is how many rows ahead the target is shifted.
	Horizon int
}

// Temperature band cut points in Celsius.
const (
	bandColdMax = 0.0
	bandCoolMax = 15.0
	bandWarmMax = 25.0
)

// temperatureBands are the classification labels, in band order.
var temperatureBands = []string{"Cold", "Cool", "Warm", "Hot"}

// temperatureBand maps a temperature to its band index.
func temperatureBand(celsius float64) float64 {
	switch {
	case celsius < bandColdMax:
		return 0
	case celsius < bandCoolMax:
		return 1
	case celsius < bandWarmMax:
		return 2
	default:
		return 3
	}
}

// DefaultTargets returns the standard target set.
func DefaultTargets() []TargetSpec {
	return []TargetSpec{
		{Name: "epidemic_forecast", Source: "epidemic", Kind: domain.TargetRegression, Column: "cases", Horizon: 1},
		{Name: "market_close", Source: "market", Kind: domain.TargetRegression, Column: "close", Horizon: 1},
		{Name: "weather_class", Source: "weather", Kind: domain.TargetClassification, Column: "temperature", Horizon: 1},
	}
}

// TrainerConfig tunes training.
type TrainerConfig struct {
	// MinSamples is the minimum training set size per target.
	MinSamples int

	// Folds is the cross-validation fold count.
	Folds int
}

// DefaultTrainerConfig returns the standard training settings.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{MinSamples: 10, Folds: 5}
}

// Trainer trains each target's candidate set, selects the winner and
// publishes it. Targets fail independently: a skipped target never blocks
// the others, and its previously published model keeps serving.
type Trainer struct {
	snapshots driven.SnapshotStore
	models    driven.ModelStore
	registry  driven.ModelRegistry
	runs      driven.RunStore
	targets   []TargetSpec
	cfg       TrainerConfig

	now func() time.Time
}

// NewTrainer creates a trainer over the given stores and registry.
func NewTrainer(snapshots driven.SnapshotStore, models driven.ModelStore, registry driven.ModelRegistry, runs driven.RunStore, targets []TargetSpec, cfg TrainerConfig) *Trainer {
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = DefaultTrainerConfig().MinSamples
	}
	if cfg.Folds < 2 {
		cfg.Folds = DefaultTrainerConfig().Folds
	}
	if len(targets) == 0 {
		targets = DefaultTargets()
	}
	return &Trainer{
		snapshots: snapshots,
		models:    models,
		registry:  registry,
		runs:      runs,
		targets:   targets,
		cfg:       cfg,
		now:       time.Now,
	}
}

// TrainModels trains every configured target. The run is recorded in the
// ledger at start and completion, like an ETL run.
func (t *Trainer) TrainModels(ctx context.Context) (*domain.TrainResult, error) {
	result := &domain.TrainResult{
		RunID:    uuid.NewString(),
		Status:   domain.StatusSuccess,
		PerModel: make(map[string]domain.Metrics),
		Skipped:  make(map[string]string),
	}
	record := domain.RunRecord{
		ID:        result.RunID,
		StartedAt: t.now().UTC(),
		Phase:     domain.PhaseTraining,
		Status:    domain.StatusSuccess,
	}
	t.recordRun(ctx, record)
	logger.Stage("training")

	for _, target := range t.targets {
		if err := ctx.Err(); err != nil {
			return nil, t.failRun(ctx, record, err)
		}
		artifact, err := t.trainTarget(ctx, target, result.RunID)
		if err != nil {
			var ide *domain.InsufficientDataError
			switch {
			case errors.As(err, &ide), errors.Is(err, domain.ErrSnapshotNotFound):
				logger.Warn("skipping %s: %v", target.Name, err)
				result.Skipped[target.Name] = err.Error()
				continue
			default:
				return nil, t.failRun(ctx, record, fmt.Errorf("training %s: %w", target.Name, err))
			}
		}
		result.PerModel[target.Name] = artifact.Metrics
		result.ModelsTrained++
		record.TotalRecords += artifact.Samples
	}

	if len(result.Skipped) == 0 {
		result.Skipped = nil
	}
	record.Phase = domain.PhaseIdle
	record.FinishedAt = t.now().UTC()
	t.recordRun(ctx, record)
	logger.Info("trained %d models, skipped %d", result.ModelsTrained, len(result.Skipped))
	return result, nil
}

func (t *Trainer) recordRun(ctx context.Context, record domain.RunRecord) {
	if err := t.runs.RecordRun(ctx, record); err != nil {
		logger.Warn("run ledger unavailable: %v", err)
	}
}

// failRun finalizes the ledger entry for an aborted training run.
func (t *Trainer) failRun(ctx context.Context, record domain.RunRecord, err error) error {
	record.Phase = domain.PhaseFailed
	record.Status = domain.StatusFailed
	record.FinishedAt = t.now().UTC()
	record.Error = err.Error()
	t.recordRun(ctx, record)
	return err
}

// trainTarget runs the full selection for one target: build the training
// set, cross-validate every candidate concurrently, re-fit the winner and
// publish it atomically.
func (t *Trainer) trainTarget(ctx context.Context, target TargetSpec, runID string) (*domain.ModelArtifact, error) {
	frame, err := t.snapshots.LoadProcessed(ctx, target.Source)
	if err != nil {
		return nil, err
	}

	x, y, err := buildTrainingSet(frame, target)
	if err != nil {
		return nil, err
	}
	if len(y) < t.cfg.MinSamples {
		return nil, &domain.InsufficientDataError{Target: target.Name, Samples: len(y), Minimum: t.cfg.MinSamples}
	}

	// 1. Cross-validate candidates concurrently. Each spec builds fresh
	// instances per fold, so candidates share nothing.
	specs := ml.CandidatesFor(target.Kind)
	scores := make([]domain.CandidateScore, len(specs))
	errs := make([]error, len(specs))
	var wg sync.WaitGroup
	for i, spec := range specs {
		wg.Add(1)
		go func(i int, spec ml.Spec) {
			defer wg.Done()
			metrics, err := ml.CrossValidate(spec, x, y, t.cfg.Folds, target.Kind)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", spec.Algorithm, err)
				return
			}
			scores[i] = domain.CandidateScore{Algorithm: spec.Algorithm, Metrics: metrics}
			logger.Debug("%s/%s: primary=%.4f rmse=%.4f", target.Name, spec.Algorithm, metrics.Primary, metrics.RMSE)
		}(i, spec)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// 2. Select the winner: highest primary metric, ties by lower RMSE.
	winner := 0
	for i := 1; i < len(scores); i++ {
		if ml.Better(scores[i].Metrics, scores[winner].Metrics) {
			winner = i
		}
	}
	scores[winner].Selected = true

	// 3. Re-fit the winner on the full training set.
	candidate := specs[winner].New()
	if err := candidate.Fit(x, y); err != nil {
		return nil, fmt.Errorf("refit %s: %w", specs[winner].Algorithm, err)
	}
	params, err := candidate.Params()
	if err != nil {
		return nil, fmt.Errorf("serializing %s: %w", specs[winner].Algorithm, err)
	}

	artifact := &domain.ModelArtifact{
		Name:       target.Name,
		Target:     target.Kind,
		Algorithm:  specs[winner].Algorithm,
		Features:   append([]string(nil), frame.Columns...),
		Params:     params,
		Metrics:    scores[winner].Metrics,
		Candidates: scores,
		Samples:    len(y),
		TrainedAt:  t.now().UTC(),
		RunID:      runID,
	}
	if target.Kind == domain.TargetClassification {
		artifact.Labels = append([]string(nil), temperatureBands...)
	}

	// 4. Persist, then swap the registry pointer. Writes are atomic; the
	// old model serves until the new one is durable.
	if err := t.models.SaveArtifact(ctx, artifact); err != nil {
		return nil, err
	}
	if err := t.registry.Publish(ctx, driven.Entry{Artifact: artifact, Predictor: candidate}); err != nil {
		return nil, err
	}
	logger.Info("%s: selected %s (primary=%.4f, %d samples)", target.Name, artifact.Algorithm, artifact.Metrics.Primary, artifact.Samples)
	return artifact, nil
}

// buildTrainingSet derives X and y from a processed frame. Row i predicts
// the target column at row i+horizon; trailing rows without a future value
// are dropped. Classification targets map the future value to its band.
func buildTrainingSet(frame *domain.Frame, target TargetSpec) (x [][]float64, y []float64, err error) {
	col, err := frame.Column(target.Column)
	if err != nil {
		return nil, nil, fmt.Errorf("target %s: %w", target.Name, err)
	}
	horizon := target.Horizon
	if horizon <= 0 {
		horizon = 1
	}
	n := frame.NumRows() - horizon
	if n < 0 {
		n = 0
	}

	x = make([][]float64, 0, n)
	y = make([]float64, 0, n)
	for i := 0; i < n; i++ {
		x = append(x, append([]float64(nil), frame.Rows[i]...))
		future := col[i+horizon]
		if target.Kind == domain.TargetClassification {
			future = temperatureBand(future)
		}
		y = append(y, future)
	}
	return x, y, nil
}
