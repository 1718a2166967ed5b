package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
	"github.com/quantica-labs/pulse/internal/core/ports/driving"
)

// Ensure InsightService implements the interface.
var _ driving.InsightReporter = (*InsightService)(nil)

// InsightConfig tunes reporting.
type InsightConfig struct {
	// Freshness is how old a snapshot may be before re-collection is
	// recommended.
	Freshness time.Duration

	// MinSamples mirrors the trainer's minimum; models trained within 25%
	// above it get a near-minimum warning.
	MinSamples int

	// StableSlopeRatio is the |slope| / max(|mean|, 1) threshold below
	// which a trend counts as stable.
	StableSlopeRatio float64
}

// DefaultInsightConfig returns the standard reporting settings.
func DefaultInsightConfig() InsightConfig {
	return InsightConfig{
		Freshness:        24 * time.Hour,
		MinSamples:       DefaultTrainerConfig().MinSamples,
		StableSlopeRatio: 1e-3,
	}
}

// InsightService aggregates snapshot freshness, model metrics and per-metric
// trends into operator-facing reports.
type InsightService struct {
	snapshots driven.SnapshotStore
	registry  driven.ModelRegistry
	cfg       InsightConfig

	now func() time.Time
}

// NewInsightService creates an insight service over the stores.
func NewInsightService(snapshots driven.SnapshotStore, registry driven.ModelRegistry, cfg InsightConfig) *InsightService {
	def := DefaultInsightConfig()
	if cfg.Freshness <= 0 {
		cfg.Freshness = def.Freshness
	}
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = def.MinSamples
	}
	if cfg.StableSlopeRatio <= 0 {
		cfg.StableSlopeRatio = def.StableSlopeRatio
	}
	return &InsightService{snapshots: snapshots, registry: registry, cfg: cfg, now: time.Now}
}

// Insights summarises every source snapshot and published model, with
// rule-based recommendations.
func (s *InsightService) Insights(ctx context.Context) (*domain.InsightReport, error) {
	report := &domain.InsightReport{GeneratedAt: s.now().UTC()}

	snaps, err := s.snapshots.ListSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	for _, snap := range snaps {
		report.Sources = append(report.Sources, domain.SourceSummary{
			Source:         snap.Source,
			Kind:           snap.Kind,
			RecordCount:    snap.RecordCount,
			CollectedAt:    snap.CollectedAt,
			Degraded:       snap.Degraded,
			DroppedRecords: snap.DroppedRecords,
		})
		if snap.Degraded {
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("%s: collected via fallback, configure or check the upstream source", snap.Source))
		}
		if report.GeneratedAt.Sub(snap.CollectedAt) > s.cfg.Freshness {
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("re-run collection for %s: snapshot older than %s", snap.Source, s.cfg.Freshness))
		}
	}

	entries, err := s.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	nearMinimum := int(float64(s.cfg.MinSamples) * 1.25)
	for _, entry := range entries {
		a := entry.Artifact
		report.Models = append(report.Models, domain.ModelSummary{
			Name:      a.Name,
			Target:    a.Target,
			Algorithm: a.Algorithm,
			Primary:   a.Metrics.Primary,
			Samples:   a.Samples,
			TrainedAt: a.TrainedAt,
		})
		if a.Samples <= nearMinimum {
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("%s: training set near minimum (%d samples), collect more data", a.Name, a.Samples))
		}
	}

	return report, nil
}

// Trends fits per-metric trend directions for one source. The window is
// anchored at the latest row's timestamp, not the wall clock, so reports on
// a fixed snapshot are reproducible.
func (s *InsightService) Trends(ctx context.Context, source string, windowDays int) (*domain.TrendReport, error) {
	frame, err := s.snapshots.LoadProcessed(ctx, source)
	if err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		windowDays = 30
	}

	start := 0
	if n := frame.NumRows(); n > 0 {
		cutoff := frame.Timestamps[n-1].Add(-time.Duration(windowDays) * 24 * time.Hour)
		for start < n && frame.Timestamps[start].Before(cutoff) {
			start++
		}
	}

	report := &domain.TrendReport{
		Source:          source,
		WindowDays:      windowDays,
		RecordsAnalyzed: frame.NumRows() - start,
		PerMetric:       make(map[string]domain.MetricTrend),
	}
	for idx, name := range frame.Columns {
		values := make([]float64, 0, report.RecordsAnalyzed)
		for i := start; i < frame.NumRows(); i++ {
			values = append(values, frame.Rows[i][idx])
		}
		if len(values) == 0 {
			continue
		}
		report.PerMetric[name] = fitTrend(values, s.cfg.StableSlopeRatio)
	}
	return report, nil
}

// fitTrend computes a least-squares slope over the row index and classifies
// its direction.
func fitTrend(values []float64, stableRatio float64) domain.MetricTrend {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumXX float64
	minV, maxV := values[0], values[0]
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	mean := sumY / n

	var slope float64
	if denom := n*sumXX - sumX*sumX; denom != 0 {
		slope = (n*sumXY - sumX*sumY) / denom
	}

	direction := domain.TrendStable
	if math.Abs(slope)/math.Max(math.Abs(mean), 1) >= stableRatio {
		if slope > 0 {
			direction = domain.TrendIncreasing
		} else {
			direction = domain.TrendDecreasing
		}
	}

	return domain.MetricTrend{
		Direction:    direction,
		CurrentValue: values[len(values)-1],
		AverageValue: mean,
		Magnitude:    math.Abs(slope),
		MinValue:     minV,
		MaxValue:     maxV,
	}
}
