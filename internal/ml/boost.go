package ml

import (
	"encoding/json"
	"fmt"

	"github.com/quantica-labs/pulse/internal/core/ports/driven"
)

const (
	boostRounds   = 50
	boostMaxDepth = 3
	boostMinLeaf  = 2
	boostShrink   = 0.1
)

var _ driven.Candidate = (*GradientBoost)(nil)

// GradientBoost fits shallow regression trees to residuals under squared
// loss with shrinkage. Prediction is the initial mean plus the shrunken sum
// of tree outputs.
type GradientBoost struct {
	init  float64
	trees []*treeNode
}

// NewGradientBoost returns an unfitted boosted-trees candidate.
func NewGradientBoost() *GradientBoost {
	return &GradientBoost{}
}

// Name returns the algorithm identifier.
func (m *GradientBoost) Name() string { return "boost" }

// Fit runs the boosting rounds.
func (m *GradientBoost) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("boost: %d samples, %d targets", len(x), len(y))
	}

	n := len(x)
	var sum float64
	for _, v := range y {
		sum += v
	}
	m.init = sum / float64(n)

	residual := make([]float64, n)
	current := make([]float64, n)
	for i := range current {
		current[i] = m.init
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	m.trees = m.trees[:0]
	for round := 0; round < boostRounds; round++ {
		for i := range residual {
			residual[i] = y[i] - current[i]
		}
		tree := buildTree(x, residual, idx, 0, treeOptions{
			maxDepth: boostMaxDepth,
			minLeaf:  boostMinLeaf,
		})
		m.trees = append(m.trees, tree)
		for i := range current {
			current[i] += boostShrink * tree.predict(x[i])
		}
	}
	return nil
}

// Predict evaluates the boosted ensemble.
func (m *GradientBoost) Predict(features []float64) float64 {
	v := m.init
	for _, t := range m.trees {
		v += boostShrink * t.predict(features)
	}
	return v
}

type boostParams struct {
	Init  float64     `json:"init"`
	Trees []*treeNode `json:"trees"`
}

// Params serializes the fitted ensemble.
func (m *GradientBoost) Params() (json.RawMessage, error) {
	return json.Marshal(boostParams{Init: m.init, Trees: m.trees})
}

// LoadBoost reconstructs a boosted predictor from persisted parameters.
func LoadBoost(params json.RawMessage) (driven.Predictor, error) {
	var p boostParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("boost params: %w", err)
	}
	return &GradientBoost{init: p.Init, trees: p.Trees}, nil
}
