package domain

import "time"

// RunPhase is the pipeline run state machine:
// Idle → Collecting → Transforming → Persisting → Training → Idle, with
// Failed reachable from any stage on unrecoverable error. A failed run leaves
// the last successfully persisted snapshot and artifact untouched.
type RunPhase string

const (
	PhaseIdle         RunPhase = "idle"
	PhaseCollecting   RunPhase = "collecting"
	PhaseTransforming RunPhase = "transforming"
	PhasePersisting   RunPhase = "persisting"
	PhaseTraining     RunPhase = "training"
	PhaseFailed       RunPhase = "failed"
)

// RunStatus is the outcome of a pipeline run.
type RunStatus string

const (
	// StatusSuccess means the run completed; some sources may be degraded.
	StatusSuccess RunStatus = "success"

	// StatusFailed means the run hit an unrecoverable error.
	StatusFailed RunStatus = "failed"
)

// RunResult summarises one ETL run.
type RunResult struct {
	RunID           string         `json:"run_id"`
	Status          RunStatus      `json:"status"`
	TotalRecords    int            `json:"total_records"`
	PerSource       map[string]int `json:"per_source_record_counts"`
	DegradedSources []string       `json:"degraded_sources"`
	Error           string         `json:"error,omitempty"`
}

// TrainResult summarises one training run.
type TrainResult struct {
	RunID         string             `json:"run_id"`
	Status        RunStatus          `json:"status"`
	ModelsTrained int                `json:"models_trained"`
	PerModel      map[string]Metrics `json:"per_model_metrics"`

	// Skipped maps target name to the reason training was aborted for it
	// (e.g. insufficient samples). Other targets proceed independently.
	Skipped map[string]string `json:"skipped,omitempty"`
}

// RunRecord is the durable ledger entry for one pipeline run.
type RunRecord struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      time.Time
	Phase           RunPhase
	Status          RunStatus
	TotalRecords    int
	PerSource       map[string]int
	DegradedSources []string
	Error           string
}
