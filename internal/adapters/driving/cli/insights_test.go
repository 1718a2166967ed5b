package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

func TestInsightsCmd_Use(t *testing.T) {
	assert.Equal(t, "insights", insightsCmd.Use)
}

func TestInsightsCmd_PrintsReport(t *testing.T) {
	reporter := &mockInsightReporter{insights: &domain.InsightReport{
		GeneratedAt: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		Sources: []domain.SourceSummary{
			{Source: "epidemic", Kind: domain.KindEpidemic, RecordCount: 90},
		},
		Models: []domain.ModelSummary{
			{Name: "epidemic_forecast", Algorithm: "linear_regression"},
		},
		Recommendations: []string{"weather: collected via fallback synthetic data"},
	}}
	cleanup := swapServices(&mockPipelineRunner{}, &mockTrainer{}, &mockPredictionService{}, reporter)
	defer cleanup()

	out, err := execute(t, "insights")

	assert.NoError(t, err)
	assert.Contains(t, out, `"source": "epidemic"`)
	assert.Contains(t, out, `"record_count": 90`)
	assert.Contains(t, out, `"epidemic_forecast"`)
	assert.Contains(t, out, "collected via fallback")
}

func TestTrendsCmd_Use(t *testing.T) {
	assert.Equal(t, "trends <source>", trendsCmd.Use)
}

func TestTrendsCmd_PassesSourceAndWindow(t *testing.T) {
	reporter := &mockInsightReporter{trends: &domain.TrendReport{
		Source:          "weather",
		WindowDays:      7,
		RecordsAnalyzed: 56,
		PerMetric: map[string]domain.MetricTrend{
			"temperature": {Direction: domain.TrendIncreasing, CurrentValue: 21.5},
		},
	}}
	cleanup := swapServices(&mockPipelineRunner{}, &mockTrainer{}, &mockPredictionService{}, reporter)
	defer cleanup()

	out, err := execute(t, "trends", "weather", "--days", "7")

	assert.NoError(t, err)
	assert.Equal(t, "weather", reporter.source)
	assert.Equal(t, 7, reporter.days)
	assert.Contains(t, out, `"direction": "increasing"`)
	assert.Contains(t, out, `"total_records_analyzed": 56`)
}

func TestTrendsCmd_RequiresSource(t *testing.T) {
	cleanup := swapServices(&mockPipelineRunner{}, &mockTrainer{}, &mockPredictionService{}, &mockInsightReporter{})
	defer cleanup()

	_, err := execute(t, "trends")

	assert.Error(t, err)
}
