package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestEtlCmd_Use(t *testing.T) {
	assert.Equal(t, "etl", etlCmd.Use)
}

func TestEtlCmd_Short(t *testing.T) {
	assert.Equal(t, "Collect from all sources, transform and persist snapshots", etlCmd.Short)
}

func TestEtlCmd_PrintsRunResult(t *testing.T) {
	runner := &mockPipelineRunner{result: &domain.RunResult{
		RunID:           "run-1",
		Status:          domain.StatusSuccess,
		TotalRecords:    120,
		PerSource:       map[string]int{"epidemic": 120},
		DegradedSources: []string{"weather"},
	}}
	cleanup := swapServices(runner, &mockTrainer{}, &mockPredictionService{}, &mockInsightReporter{})
	defer cleanup()

	out, err := execute(t, "etl")

	assert.NoError(t, err)
	assert.Equal(t, 1, runner.calls)
	assert.Contains(t, out, `"run_id": "run-1"`)
	assert.Contains(t, out, `"status": "success"`)
	assert.Contains(t, out, `"weather"`)
}

func TestEtlCmd_FailedRunStillPrintsResult(t *testing.T) {
	runner := &mockPipelineRunner{
		result: &domain.RunResult{RunID: "run-2", Status: domain.StatusFailed, Error: "disk full"},
		err:    errors.New("persisting snapshot: disk full"),
	}
	cleanup := swapServices(runner, &mockTrainer{}, &mockPredictionService{}, &mockInsightReporter{})
	defer cleanup()

	out, err := execute(t, "etl")

	assert.Error(t, err)
	assert.Contains(t, out, `"status": "failed"`)
}
