package ml

import (
	"math"
	"math/rand"
	"sort"
)

// treeNode is one node of a CART regression tree. Leaves carry the mean
// target of their samples; internal nodes split on feature <= threshold.
// The struct is JSON-serializable so fitted ensembles can be persisted.
type treeNode struct {
	Leaf      bool      `json:"leaf"`
	Value     float64   `json:"value,omitempty"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

// treeOptions controls tree growth.
type treeOptions struct {
	maxDepth    int
	minLeaf     int
	featureFrac float64    // fraction of features considered per split; 1 = all
	rng         *rand.Rand // nil disables feature subsetting
}

// buildTree grows a regression tree on the samples selected by idx,
// splitting greedily by variance reduction.
func buildTree(x [][]float64, y []float64, idx []int, depth int, opts treeOptions) *treeNode {
	if len(idx) == 0 {
		return &treeNode{Leaf: true}
	}
	mean := meanAt(y, idx)
	if depth >= opts.maxDepth || len(idx) < 2*opts.minLeaf || pureAt(y, idx) {
		return &treeNode{Leaf: true, Value: mean}
	}

	feature, threshold, ok := bestSplit(x, y, idx, opts)
	if !ok {
		return &treeNode{Leaf: true, Value: mean}
	}

	var left, right []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < opts.minLeaf || len(right) < opts.minLeaf {
		return &treeNode{Leaf: true, Value: mean}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(x, y, left, depth+1, opts),
		Right:     buildTree(x, y, right, depth+1, opts),
	}
}

// bestSplit scans candidate features for the threshold minimising weighted
// child variance. Thresholds are midpoints between consecutive distinct
// sorted values.
func bestSplit(x [][]float64, y []float64, idx []int, opts treeOptions) (feature int, threshold float64, ok bool) {
	numFeatures := len(x[idx[0]])
	features := candidateFeatures(numFeatures, opts)

	best := math.Inf(1)
	values := make([]float64, len(idx))
	for _, f := range features {
		for i, sample := range idx {
			values[i] = x[sample][f]
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)

		for i := 1; i < len(sorted); i++ {
			if sorted[i] == sorted[i-1] {
				continue
			}
			t := (sorted[i] + sorted[i-1]) / 2
			score := splitScore(x, y, idx, f, t)
			if score < best {
				best = score
				feature = f
				threshold = t
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// splitScore returns the summed squared error of both children.
func splitScore(x [][]float64, y []float64, idx []int, feature int, threshold float64) float64 {
	var lSum, lSq, rSum, rSq float64
	var lN, rN int
	for _, i := range idx {
		v := y[i]
		if x[i][feature] <= threshold {
			lSum += v
			lSq += v * v
			lN++
		} else {
			rSum += v
			rSq += v * v
			rN++
		}
	}
	score := 0.0
	if lN > 0 {
		score += lSq - lSum*lSum/float64(lN)
	}
	if rN > 0 {
		score += rSq - rSum*rSum/float64(rN)
	}
	return score
}

// candidateFeatures returns the feature indices to scan: all of them, or a
// deterministic random subset when featureFrac < 1 and an rng is provided.
func candidateFeatures(numFeatures int, opts treeOptions) []int {
	all := make([]int, numFeatures)
	for i := range all {
		all[i] = i
	}
	if opts.rng == nil || opts.featureFrac >= 1 {
		return all
	}
	k := int(math.Ceil(opts.featureFrac * float64(numFeatures)))
	if k < 1 {
		k = 1
	}
	opts.rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	subset := all[:k]
	sort.Ints(subset)
	return subset
}

// predict walks the tree for one feature vector.
func (n *treeNode) predict(features []float64) float64 {
	if n == nil {
		return 0
	}
	if n.Leaf {
		return n.Value
	}
	if n.Feature < len(features) && features[n.Feature] <= n.Threshold {
		return n.Left.predict(features)
	}
	return n.Right.predict(features)
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func pureAt(y []float64, idx []int) bool {
	first := y[idx[0]]
	for _, i := range idx[1:] {
		if y[i] != first {
			return false
		}
	}
	return true
}
