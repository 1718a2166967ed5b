package driven

import (
	"context"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

// Predictor evaluates a fitted model on one feature vector.
// The vector is in the artifact's recorded feature order.
type Predictor interface {
	// Predict returns the point prediction. For classification models the
	// value is the class index into the artifact's label list.
	Predict(features []float64) float64
}

// Entry is one published registry slot: the artifact plus its loaded
// predictor. Entries are immutable; publishing replaces the whole entry.
type Entry struct {
	Artifact  *domain.ModelArtifact
	Predictor Predictor
}

// ModelRegistry holds the currently served artifact per model name.
// Publish is an atomic swap: concurrent readers observe either the old or
// the new entry in full, never a partial one. The registry exclusively owns
// the published entries; the prediction service holds only a read reference.
type ModelRegistry interface {
	// Publish replaces the entry for the artifact's name.
	Publish(ctx context.Context, entry Entry) error

	// Get returns the current entry for a model name.
	// Returns domain.ErrModelNotFound if nothing is published.
	Get(ctx context.Context, name string) (Entry, error)

	// List returns the current entries for all published models.
	List(ctx context.Context) ([]Entry, error)
}
