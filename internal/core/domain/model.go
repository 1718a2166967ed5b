package domain

import (
	"encoding/json"
	"time"
)

// TargetKind classifies what a model predicts.
type TargetKind string

const (
	// TargetRegression predicts a continuous value.
	TargetRegression TargetKind = "regression"

	// TargetClassification predicts a class label.
	TargetClassification TargetKind = "classification"
)

// Metrics holds evaluation scores for one candidate.
// Primary is R² for regression and accuracy for classification; RMSE is the
// secondary tie-break metric (lower wins).
type Metrics struct {
	Primary float64 `json:"primary"`
	RMSE    float64 `json:"rmse"`
}

// CandidateScore records one candidate's cross-validated scores.
// Every candidate's score is kept for auditability even though only the
// winner's parameters are persisted.
type CandidateScore struct {
	Algorithm string  `json:"algorithm"`
	Metrics   Metrics `json:"metrics"`
	Selected  bool    `json:"selected"`
}

// ModelArtifact is a trained, selected model with its feature contract.
// Artifacts are immutable once published and superseded entirely by the next
// successful training run.
type ModelArtifact struct {
	// Name is the model's registry key (e.g. "epidemic_forecast").
	Name string `json:"name"`

	// Target is the prediction task kind.
	Target TargetKind `json:"target"`

	// Algorithm is the winning candidate's identifier.
	Algorithm string `json:"algorithm"`

	// Features is the exact ordered feature list the model consumes.
	// Prediction requests must supply precisely these keys.
	Features []string `json:"features"`

	// Labels is the ordered class name list for classification targets.
	Labels []string `json:"labels,omitempty"`

	// Params is the winner's serialized parameters.
	Params json.RawMessage `json:"params"`

	// Metrics are the winner's cross-validated scores.
	Metrics Metrics `json:"metrics"`

	// Candidates records the scores of every candidate that was tried.
	Candidates []CandidateScore `json:"candidates"`

	// Samples is the training sample count.
	Samples int `json:"samples"`

	// TrainedAt is when training completed.
	TrainedAt time.Time `json:"trained_at"`

	// RunID links the artifact to the pipeline run that produced it.
	RunID string `json:"run_id"`
}

// PredictionRequest asks a named model for a point prediction.
type PredictionRequest struct {
	Model    string             `json:"model"`
	Features map[string]float64 `json:"features"`
}

// PredictionResult is the answer to a PredictionRequest. Ephemeral, never
// persisted.
type PredictionResult struct {
	// Value is the predicted number. For classification it is the class index.
	Value float64 `json:"prediction"`

	// Label is the class name for classification targets, empty otherwise.
	Label string `json:"label,omitempty"`

	// Algorithm is the serving artifact's algorithm identifier.
	Algorithm string `json:"algorithm_id"`

	// FeaturesUsed is the artifact's ordered feature list.
	FeaturesUsed []string `json:"features_used"`

	// Timestamp is when the prediction was computed.
	Timestamp time.Time `json:"timestamp"`
}
