package services

import (
	"context"
	"sort"
	"time"

	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
	"github.com/quantica-labs/pulse/internal/core/ports/driving"
)

// Ensure PredictionService implements the interface.
var _ driving.PredictionService = (*PredictionService)(nil)

// PredictionService serves point predictions from the registry. Requests are
// validated against the artifact's recorded feature contract; a request that
// does not match it exactly is rejected before the model is evaluated.
type PredictionService struct {
	registry driven.ModelRegistry

	now func() time.Time
}

// NewPredictionService creates a prediction service over the registry.
func NewPredictionService(registry driven.ModelRegistry) *PredictionService {
	return &PredictionService{registry: registry, now: time.Now}
}

// Predict evaluates the named model on the feature map.
func (s *PredictionService) Predict(ctx context.Context, model string, features map[string]float64) (*domain.PredictionResult, error) {
	entry, err := s.registry.Get(ctx, model)
	if err != nil {
		return nil, err
	}
	artifact := entry.Artifact

	if err := validateFeatures(artifact, features); err != nil {
		return nil, err
	}

	vector := make([]float64, len(artifact.Features))
	for i, name := range artifact.Features {
		vector[i] = features[name]
	}
	value := entry.Predictor.Predict(vector)

	result := &domain.PredictionResult{
		Value:        value,
		Algorithm:    artifact.Algorithm,
		FeaturesUsed: append([]string(nil), artifact.Features...),
		Timestamp:    s.now().UTC(),
	}
	if artifact.Target == domain.TargetClassification && len(artifact.Labels) > 0 {
		idx := int(value)
		if idx < 0 {
			idx = 0
		}
		if idx >= len(artifact.Labels) {
			idx = len(artifact.Labels) - 1
		}
		result.Label = artifact.Labels[idx]
	}
	return result, nil
}

// validateFeatures checks the request against the artifact's feature list.
// Both missing and unexpected names are reported in one error so the caller
// can fix the request in a single round trip.
func validateFeatures(artifact *domain.ModelArtifact, features map[string]float64) error {
	required := make(map[string]bool, len(artifact.Features))
	for _, name := range artifact.Features {
		required[name] = true
	}

	var missing, unexpected []string
	for _, name := range artifact.Features {
		if _, ok := features[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range features {
		if !required[name] {
			unexpected = append(unexpected, name)
		}
	}
	if len(missing) == 0 && len(unexpected) == 0 {
		return nil
	}
	sort.Strings(unexpected)
	return &domain.FeatureMismatchError{Model: artifact.Name, Missing: missing, Unexpected: unexpected}
}
