package ml

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/quantica-labs/pulse/internal/core/ports/driven"
)

const (
	logisticEpochs = 300
	logisticRate   = 0.5
)

var _ driven.Candidate = (*LogisticRegression)(nil)

// LogisticRegression is a multinomial (softmax) classifier fitted by
// full-batch gradient descent on standardized features. Targets are class
// indices; Predict returns the argmax class index.
type LogisticRegression struct {
	classes int
	means   []float64
	stds    []float64
	weights [][]float64 // [class][feature+1], last entry is the bias
}

// NewLogisticRegression returns an unfitted logistic candidate.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{}
}

// Name returns the algorithm identifier.
func (m *LogisticRegression) Name() string { return "logistic" }

// Fit standardizes the features then runs gradient descent. The class count
// is one past the largest index seen in y.
func (m *LogisticRegression) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("logistic: %d samples, %d targets", len(x), len(y))
	}

	n := len(x)
	d := len(x[0])
	m.classes = 0
	for _, v := range y {
		if int(v)+1 > m.classes {
			m.classes = int(v) + 1
		}
	}
	if m.classes < 2 {
		m.classes = 2
	}

	m.means, m.stds = standardStats(x)
	scaled := make([][]float64, n)
	for i, sample := range x {
		scaled[i] = m.standardize(sample)
	}

	m.weights = make([][]float64, m.classes)
	for k := range m.weights {
		m.weights[k] = make([]float64, d+1)
	}

	probs := make([]float64, m.classes)
	grad := make([][]float64, m.classes)
	for k := range grad {
		grad[k] = make([]float64, d+1)
	}

	for epoch := 0; epoch < logisticEpochs; epoch++ {
		for k := range grad {
			for j := range grad[k] {
				grad[k][j] = 0
			}
		}
		for i, sample := range scaled {
			m.softmax(sample, probs)
			for k := 0; k < m.classes; k++ {
				delta := probs[k]
				if int(y[i]) == k {
					delta--
				}
				for j := 0; j < d; j++ {
					grad[k][j] += delta * sample[j]
				}
				grad[k][d] += delta
			}
		}
		step := logisticRate / float64(n)
		for k := range m.weights {
			for j := range m.weights[k] {
				m.weights[k][j] -= step * grad[k][j]
			}
		}
	}
	return nil
}

// Predict returns the most probable class index.
func (m *LogisticRegression) Predict(features []float64) float64 {
	scaled := m.standardize(features)
	probs := make([]float64, m.classes)
	m.softmax(scaled, probs)

	best := 0
	for k := 1; k < m.classes; k++ {
		if probs[k] > probs[best] {
			best = k
		}
	}
	return float64(best)
}

// softmax fills probs with class probabilities for one standardized sample.
func (m *LogisticRegression) softmax(sample []float64, probs []float64) {
	maxScore := math.Inf(-1)
	for k, w := range m.weights {
		score := w[len(w)-1]
		for j := 0; j < len(w)-1 && j < len(sample); j++ {
			score += w[j] * sample[j]
		}
		probs[k] = score
		if score > maxScore {
			maxScore = score
		}
	}
	var sum float64
	for k := range probs {
		probs[k] = math.Exp(probs[k] - maxScore)
		sum += probs[k]
	}
	for k := range probs {
		probs[k] /= sum
	}
}

func (m *LogisticRegression) standardize(features []float64) []float64 {
	out := make([]float64, len(features))
	for j, v := range features {
		if j < len(m.means) {
			out[j] = (v - m.means[j]) / m.stds[j]
		} else {
			out[j] = v
		}
	}
	return out
}

// standardStats computes per-feature mean and deviation; zero deviations
// become 1 so constant columns pass through unchanged.
func standardStats(x [][]float64) (means, stds []float64) {
	n := float64(len(x))
	d := len(x[0])
	means = make([]float64, d)
	stds = make([]float64, d)
	for _, sample := range x {
		for j, v := range sample {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= n
	}
	for _, sample := range x {
		for j, v := range sample {
			dv := v - means[j]
			stds[j] += dv * dv
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / n)
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	return means, stds
}

type logisticParams struct {
	Classes int         `json:"classes"`
	Means   []float64   `json:"means"`
	Stds    []float64   `json:"stds"`
	Weights [][]float64 `json:"weights"`
}

// Params serializes the fitted classifier.
func (m *LogisticRegression) Params() (json.RawMessage, error) {
	return json.Marshal(logisticParams{
		Classes: m.classes, Means: m.means, Stds: m.stds, Weights: m.weights,
	})
}

// LoadLogistic reconstructs a logistic predictor from persisted parameters.
func LoadLogistic(params json.RawMessage) (driven.Predictor, error) {
	var p logisticParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("logistic params: %w", err)
	}
	return &LogisticRegression{
		classes: p.Classes, means: p.Means, stds: p.Stds, weights: p.Weights,
	}, nil
}
