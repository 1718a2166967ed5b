package ml

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/quantica-labs/pulse/internal/core/ports/driven"
)

const (
	forestTrees    = 30
	forestMaxDepth = 8
	forestMinLeaf  = 2
	forestFeatFrac = 0.6
	forestSeed     = 17
)

var _ driven.Candidate = (*RandomForest)(nil)

// RandomForest is a bootstrap-aggregated ensemble of regression trees with
// per-split feature subsetting. Sampling is seeded, so a fit is
// reproducible.
type RandomForest struct {
	trees []*treeNode
}

// NewRandomForest returns an unfitted forest candidate.
func NewRandomForest() *RandomForest {
	return &RandomForest{}
}

// Name returns the algorithm identifier.
func (m *RandomForest) Name() string { return "forest" }

// Fit grows the ensemble on bootstrap samples.
func (m *RandomForest) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("forest: %d samples, %d targets", len(x), len(y))
	}
	rng := rand.New(rand.NewSource(forestSeed))
	m.trees = make([]*treeNode, forestTrees)

	n := len(x)
	for t := range m.trees {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		m.trees[t] = buildTree(x, y, idx, 0, treeOptions{
			maxDepth:    forestMaxDepth,
			minLeaf:     forestMinLeaf,
			featureFrac: forestFeatFrac,
			rng:         rng,
		})
	}
	return nil
}

// Predict averages the trees' outputs.
func (m *RandomForest) Predict(features []float64) float64 {
	if len(m.trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range m.trees {
		sum += t.predict(features)
	}
	return sum / float64(len(m.trees))
}

type forestParams struct {
	Trees []*treeNode `json:"trees"`
}

// Params serializes the fitted ensemble.
func (m *RandomForest) Params() (json.RawMessage, error) {
	return json.Marshal(forestParams{Trees: m.trees})
}

// LoadForest reconstructs a forest predictor from persisted parameters.
func LoadForest(params json.RawMessage) (driven.Predictor, error) {
	var p forestParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("forest params: %w", err)
	}
	return &RandomForest{trees: p.Trees}, nil
}
