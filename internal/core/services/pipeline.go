package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
	"github.com/quantica-labs/pulse/internal/core/ports/driving"
	"github.com/quantica-labs/pulse/internal/logger"
	"github.com/quantica-labs/pulse/internal/transform"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineRunner = (*Pipeline)(nil)

// PipelineConfig tunes one ETL run.
type PipelineConfig struct {
	// MaxConcurrentFetches bounds the collection fan-out.
	// Zero means one worker per connector.
	MaxConcurrentFetches int

	// FetchTimeout bounds each connector call.
	FetchTimeout time.Duration

	// RunDeadline bounds the collection stage. On expiry in-flight fetches
	// are cancelled and their sources marked degraded; sources already
	// collected are still transformed and persisted. Zero means no deadline.
	RunDeadline time.Duration

	// Transform controls normalization and feature derivation.
	Transform transform.Config
}

// DefaultPipelineConfig returns the standard run settings.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		FetchTimeout: 30 * time.Second,
		RunDeadline:  5 * time.Minute,
		Transform:    transform.DefaultConfig(),
	}
}

// Pipeline orchestrates ETL runs: concurrent collection, per-source
// transform, atomic persistence and the durable run ledger. A single run is
// active at a time.
type Pipeline struct {
	connectors []driven.Connector
	snapshots  driven.SnapshotStore
	runs       driven.RunStore
	cfg        PipelineConfig

	mu      sync.Mutex
	running bool
	phase   domain.RunPhase

	now func() time.Time
}

// NewPipeline creates a pipeline over the given connectors and stores.
func NewPipeline(connectors []driven.Connector, snapshots driven.SnapshotStore, runs driven.RunStore, cfg PipelineConfig) *Pipeline {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultPipelineConfig().FetchTimeout
	}
	if cfg.MaxConcurrentFetches <= 0 {
		cfg.MaxConcurrentFetches = len(connectors)
	}
	return &Pipeline{
		connectors: connectors,
		snapshots:  snapshots,
		runs:       runs,
		cfg:        cfg,
		phase:      domain.PhaseIdle,
		now:        time.Now,
	}
}

// Phase returns the current run phase.
func (p *Pipeline) Phase() domain.RunPhase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

func (p *Pipeline) setPhase(phase domain.RunPhase) {
	p.mu.Lock()
	p.phase = phase
	p.mu.Unlock()
	logger.Stage(string(phase))
}

// sourceOutput is one connector's collected batch.
type sourceOutput struct {
	connector driven.Connector
	fetch     driven.FetchOutput
	err       error
}

// RunETL collects from every connector, transforms and persists snapshots.
// A failing or degraded source never fails the run; only persistence
// failures do. The run is recorded in the ledger at start and completion.
func (p *Pipeline) RunETL(ctx context.Context) (*domain.RunResult, error) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil, domain.ErrRunInProgress
	}
	p.running = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.phase = domain.PhaseIdle
		p.mu.Unlock()
	}()

	// The deadline covers collection only. Transform and persistence keep
	// running under the caller's context so sources collected before expiry
	// still reach durable storage.
	collectCtx := ctx
	if p.cfg.RunDeadline > 0 {
		var cancel context.CancelFunc
		collectCtx, cancel = context.WithTimeout(ctx, p.cfg.RunDeadline)
		defer cancel()
	}

	runID := uuid.NewString()
	startedAt := p.now().UTC()
	record := domain.RunRecord{
		ID:        runID,
		StartedAt: startedAt,
		Phase:     domain.PhaseCollecting,
		Status:    domain.StatusSuccess,
	}
	if err := p.runs.RecordRun(ctx, record); err != nil {
		logger.Warn("run ledger unavailable: %v", err)
	}
	logger.Info("run %s: collecting from %d sources", runID, len(p.connectors))

	// 1. Collection fan-out, bounded by MaxConcurrentFetches.
	p.setPhase(domain.PhaseCollecting)
	outputs := p.collect(collectCtx)

	result := &domain.RunResult{
		RunID:     runID,
		Status:    domain.StatusSuccess,
		PerSource: make(map[string]int),
	}
	degraded := make(map[string]bool)

	// 2. Transform and persist each collected source independently.
	for _, out := range outputs {
		name := out.connector.Name()
		if out.err != nil {
			logger.Error("source %s failed: %v", name, out.err)
			degraded[name] = true
			continue
		}
		if out.fetch.Degraded {
			degraded[name] = true
		}

		p.setPhase(domain.PhaseTransforming)
		res, err := transform.Transform(out.fetch.Records, p.cfg.Transform)
		if err != nil {
			logger.Error("source %s transform failed: %v", name, err)
			degraded[name] = true
			continue
		}

		p.setPhase(domain.PhasePersisting)
		snap := domain.DatasetSnapshot{
			Source:         name,
			Kind:           out.connector.Kind(),
			CollectedAt:    p.now().UTC(),
			Degraded:       out.fetch.Degraded,
			DroppedRecords: out.fetch.Dropped + res.Dropped,
		}
		if err := p.snapshots.SaveSnapshot(ctx, snap, res.Raw, res.Processed); err != nil {
			return p.failRun(ctx, record, result, fmt.Errorf("persisting %s: %w", name, err))
		}

		result.PerSource[name] = res.Processed.NumRows()
		result.TotalRecords += res.Processed.NumRows()
		logger.Info("source %s: %d rows persisted (%d dropped)", name, res.Processed.NumRows(), snap.DroppedRecords)
	}

	for name := range degraded {
		result.DegradedSources = append(result.DegradedSources, name)
	}
	sort.Strings(result.DegradedSources)

	record.Phase = domain.PhaseIdle
	record.FinishedAt = p.now().UTC()
	record.TotalRecords = result.TotalRecords
	record.PerSource = result.PerSource
	record.DegradedSources = result.DegradedSources
	if err := p.runs.RecordRun(ctx, record); err != nil {
		logger.Warn("run ledger unavailable: %v", err)
	}
	logger.Info("run %s: %d records, %d degraded sources", runID, result.TotalRecords, len(result.DegradedSources))
	return result, nil
}

// collect fetches every source through a bounded worker pool. Fetch errors
// are carried in the outputs, never returned.
func (p *Pipeline) collect(ctx context.Context) []sourceOutput {
	outputs := make([]sourceOutput, len(p.connectors))
	sem := make(chan struct{}, p.cfg.MaxConcurrentFetches)
	var wg sync.WaitGroup

	for i, conn := range p.connectors {
		wg.Add(1)
		go func(i int, conn driven.Connector) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.FetchTimeout)
			defer cancel()

			out, err := conn.Fetch(fetchCtx)
			outputs[i] = sourceOutput{connector: conn, fetch: out, err: err}
		}(i, conn)
	}
	wg.Wait()
	return outputs
}

// failRun records the failure and finalizes the result. Prior snapshots stay
// untouched; only the failing source's write was aborted mid-flight.
func (p *Pipeline) failRun(ctx context.Context, record domain.RunRecord, result *domain.RunResult, err error) (*domain.RunResult, error) {
	p.setPhase(domain.PhaseFailed)
	result.Status = domain.StatusFailed
	result.Error = err.Error()

	record.Phase = domain.PhaseFailed
	record.Status = domain.StatusFailed
	record.FinishedAt = p.now().UTC()
	record.TotalRecords = result.TotalRecords
	record.PerSource = result.PerSource
	record.Error = err.Error()
	if recErr := p.runs.RecordRun(ctx, record); recErr != nil {
		logger.Warn("run ledger unavailable: %v", recErr)
	}
	return result, err
}
