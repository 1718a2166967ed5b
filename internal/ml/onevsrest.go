package ml

import (
	"encoding/json"
	"fmt"

	"github.com/quantica-labs/pulse/internal/core/ports/driven"
)

var _ driven.Candidate = (*OneVsRest)(nil)

// OneVsRest lifts a regression candidate into a classifier: one scorer per
// class is fitted to a 0/1 indicator target, and prediction takes the argmax
// score. This is how the tree-ensemble and boosted candidates handle
// classification targets while keeping one regression tree implementation.
type OneVsRest struct {
	name    string
	newBase func() driven.Candidate
	classes int
	scorers []driven.Candidate
}

// NewOneVsRest wraps a regression candidate constructor. The wrapper's
// algorithm identifier matches the base candidate's.
func NewOneVsRest(newBase func() driven.Candidate) *OneVsRest {
	return &OneVsRest{name: newBase().Name(), newBase: newBase}
}

// Name returns the base algorithm identifier.
func (m *OneVsRest) Name() string { return m.name }

// Fit trains one indicator scorer per class.
func (m *OneVsRest) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("%s: %d samples, %d targets", m.name, len(x), len(y))
	}
	m.classes = 0
	for _, v := range y {
		if int(v)+1 > m.classes {
			m.classes = int(v) + 1
		}
	}
	if m.classes < 2 {
		m.classes = 2
	}

	m.scorers = make([]driven.Candidate, m.classes)
	indicator := make([]float64, len(y))
	for k := 0; k < m.classes; k++ {
		for i, v := range y {
			if int(v) == k {
				indicator[i] = 1
			} else {
				indicator[i] = 0
			}
		}
		scorer := m.newBase()
		if err := scorer.Fit(x, indicator); err != nil {
			return fmt.Errorf("%s class %d: %w", m.name, k, err)
		}
		m.scorers[k] = scorer
	}
	return nil
}

// Predict returns the class index with the highest scorer output.
func (m *OneVsRest) Predict(features []float64) float64 {
	if len(m.scorers) == 0 {
		return 0
	}
	best, bestScore := 0, m.scorers[0].Predict(features)
	for k := 1; k < len(m.scorers); k++ {
		if score := m.scorers[k].Predict(features); score > bestScore {
			best, bestScore = k, score
		}
	}
	return float64(best)
}

type oneVsRestParams struct {
	Base    string            `json:"base"`
	Classes int               `json:"classes"`
	Scorers []json.RawMessage `json:"scorers"`
}

// Params serializes every per-class scorer.
func (m *OneVsRest) Params() (json.RawMessage, error) {
	scorers := make([]json.RawMessage, len(m.scorers))
	for k, s := range m.scorers {
		p, err := s.Params()
		if err != nil {
			return nil, err
		}
		scorers[k] = p
	}
	return json.Marshal(oneVsRestParams{Base: m.name, Classes: m.classes, Scorers: scorers})
}

// loadOneVsRest reconstructs a one-vs-rest classifier using the base
// algorithm's loader for each scorer.
func loadOneVsRest(params json.RawMessage, loadBase driven.CandidateLoader) (driven.Predictor, error) {
	var p oneVsRestParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("one-vs-rest params: %w", err)
	}
	scorers := make([]driven.Predictor, len(p.Scorers))
	for k, raw := range p.Scorers {
		s, err := loadBase(raw)
		if err != nil {
			return nil, fmt.Errorf("one-vs-rest class %d: %w", k, err)
		}
		scorers[k] = s
	}
	return &ovrPredictor{scorers: scorers}, nil
}

// ovrPredictor is the inference-only form of a loaded OneVsRest model.
type ovrPredictor struct {
	scorers []driven.Predictor
}

func (m *ovrPredictor) Predict(features []float64) float64 {
	if len(m.scorers) == 0 {
		return 0
	}
	best, bestScore := 0, m.scorers[0].Predict(features)
	for k := 1; k < len(m.scorers); k++ {
		if score := m.scorers[k].Predict(features); score > bestScore {
			best, bestScore = k, score
		}
	}
	return float64(best)
}
