package driven

import "encoding/json"

// Candidate is a trainable algorithm. The trainer iterates a fixed candidate
// set per target through this one contract, keeping selection and publishing
// algorithm-agnostic. Every candidate for a target consumes the identical
// ordered feature matrix.
type Candidate interface {
	// Name returns the algorithm identifier (e.g. "linear", "forest").
	Name() string

	// Fit trains on the feature matrix x (rows are samples in feature
	// order) and targets y. For classification, y holds class indices.
	Fit(x [][]float64, y []float64) error

	// Predict evaluates one feature vector.
	Predict(features []float64) float64

	// Params serializes the fitted parameters for persistence.
	Params() (json.RawMessage, error)
}

// CandidateLoader reconstructs a predictor from persisted parameters.
// Implementations are looked up by algorithm identifier when the registry
// hydrates from the model store.
type CandidateLoader func(params json.RawMessage) (Predictor, error)
