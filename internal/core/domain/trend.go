package domain

import "time"

// TrendDirection classifies the sign and magnitude of a metric's slope over
// a lookback window.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// MetricTrend is the fitted trend for one metric column.
type MetricTrend struct {
	Direction    TrendDirection `json:"direction"`
	CurrentValue float64        `json:"current_value"`
	AverageValue float64        `json:"average_value"`
	Magnitude    float64        `json:"magnitude"`
	MinValue     float64        `json:"min_value"`
	MaxValue     float64        `json:"max_value"`
}

// TrendReport covers all numeric columns of one source over a window.
type TrendReport struct {
	Source          string                 `json:"source"`
	WindowDays      int                    `json:"analysis_period_days"`
	RecordsAnalyzed int                    `json:"total_records_analyzed"`
	PerMetric       map[string]MetricTrend `json:"per_metric"`
}

// SourceSummary is the per-source slice of an insight report.
type SourceSummary struct {
	Source         string     `json:"source"`
	Kind           SourceKind `json:"kind"`
	RecordCount    int        `json:"record_count"`
	CollectedAt    time.Time  `json:"collected_at"`
	Degraded       bool       `json:"degraded"`
	DroppedRecords int        `json:"dropped_records"`
}

// ModelSummary is the per-model slice of an insight report.
type ModelSummary struct {
	Name      string     `json:"name"`
	Target    TargetKind `json:"target"`
	Algorithm string     `json:"algorithm_id"`
	Primary   float64    `json:"primary_metric"`
	Samples   int        `json:"samples"`
	TrainedAt time.Time  `json:"trained_at"`
}

// InsightReport aggregates dataset freshness, model metrics and rule-based
// recommendations.
type InsightReport struct {
	GeneratedAt     time.Time       `json:"generated_at"`
	Sources         []SourceSummary `json:"per_source_summary"`
	Models          []ModelSummary  `json:"per_model_summary"`
	Recommendations []string        `json:"recommendations"`
}
