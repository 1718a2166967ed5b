package ml

import (
	"encoding/json"
	"fmt"

	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
)

// Spec names a candidate algorithm and constructs fresh, unfitted instances
// of it. Cross-validation needs a new instance per fold.
type Spec struct {
	Algorithm string
	New       func() driven.Candidate
}

// CandidatesFor returns the fixed candidate set for a target kind: one
// linear/parametric model, one tree ensemble and one boosted-tree model.
func CandidatesFor(target domain.TargetKind) []Spec {
	switch target {
	case domain.TargetClassification:
		return []Spec{
			{Algorithm: "logistic", New: func() driven.Candidate { return NewLogisticRegression() }},
			{Algorithm: "forest", New: func() driven.Candidate {
				return NewOneVsRest(func() driven.Candidate { return NewRandomForest() })
			}},
			{Algorithm: "boost", New: func() driven.Candidate {
				return NewOneVsRest(func() driven.Candidate { return NewGradientBoost() })
			}},
		}
	default:
		return []Spec{
			{Algorithm: "linear", New: func() driven.Candidate { return NewLinearRegression() }},
			{Algorithm: "forest", New: func() driven.Candidate { return NewRandomForest() }},
			{Algorithm: "boost", New: func() driven.Candidate { return NewGradientBoost() }},
		}
	}
}

// LoaderFor returns the parameter loader matching a persisted artifact's
// target kind and algorithm identifier, used when the registry hydrates
// from the model store.
func LoaderFor(target domain.TargetKind, algorithm string) (driven.CandidateLoader, error) {
	if target == domain.TargetClassification {
		switch algorithm {
		case "logistic":
			return LoadLogistic, nil
		case "forest":
			return func(p json.RawMessage) (driven.Predictor, error) { return loadOneVsRest(p, LoadForest) }, nil
		case "boost":
			return func(p json.RawMessage) (driven.Predictor, error) { return loadOneVsRest(p, LoadBoost) }, nil
		}
		return nil, fmt.Errorf("no classification loader for algorithm %q", algorithm)
	}

	switch algorithm {
	case "linear":
		return LoadLinear, nil
	case "forest":
		return LoadForest, nil
	case "boost":
		return LoadBoost, nil
	}
	return nil, fmt.Errorf("no regression loader for algorithm %q", algorithm)
}
