package ml

import (
	"fmt"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

// CrossValidate scores a candidate spec with k-fold cross-validation.
// Fold assignment is deterministic (round-robin by row), so repeated runs on
// the same snapshot score identically. The primary metric is R² for
// regression and accuracy for classification; RMSE is always filled as the
// secondary tie-break.
func CrossValidate(spec Spec, x [][]float64, y []float64, k int, target domain.TargetKind) (domain.Metrics, error) {
	n := len(x)
	if n != len(y) {
		return domain.Metrics{}, fmt.Errorf("crossval: %d samples, %d targets", n, len(y))
	}
	if k < 2 {
		k = 2
	}
	if k > n {
		k = n
	}

	predicted := make([]float64, n)
	for fold := 0; fold < k; fold++ {
		var trainX [][]float64
		var trainY []float64
		var testIdx []int
		for i := 0; i < n; i++ {
			if i%k == fold {
				testIdx = append(testIdx, i)
			} else {
				trainX = append(trainX, x[i])
				trainY = append(trainY, y[i])
			}
		}
		if len(trainX) == 0 || len(testIdx) == 0 {
			continue
		}

		candidate := spec.New()
		if err := candidate.Fit(trainX, trainY); err != nil {
			return domain.Metrics{}, fmt.Errorf("fold %d: %w", fold, err)
		}
		for _, i := range testIdx {
			predicted[i] = candidate.Predict(x[i])
		}
	}

	m := domain.Metrics{RMSE: RMSE(predicted, y)}
	if target == domain.TargetClassification {
		m.Primary = Accuracy(predicted, y)
	} else {
		m.Primary = RSquared(predicted, y)
	}
	return m, nil
}

// Better reports whether metrics a beat metrics b: higher primary score
// wins, ties broken by lower RMSE.
func Better(a, b domain.Metrics) bool {
	if a.Primary != b.Primary {
		return a.Primary > b.Primary
	}
	return a.RMSE < b.RMSE
}
