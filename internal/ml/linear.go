package ml

import (
	"encoding/json"
	"fmt"

	"github.com/quantica-labs/pulse/internal/core/ports/driven"
)

// ridge is a tiny regularisation term keeping the normal equations solvable
// when features are collinear (constant columns are common in small
// calendar-feature datasets).
const ridge = 1e-8

// Ensure the candidate contract is satisfied.
var _ driven.Candidate = (*LinearRegression)(nil)

// LinearRegression fits ordinary least squares via the normal equations.
type LinearRegression struct {
	coef      []float64
	intercept float64
}

// NewLinearRegression returns an unfitted OLS candidate.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Name returns the algorithm identifier.
func (m *LinearRegression) Name() string { return "linear" }

// Fit solves (XᵀX + λI)w = Xᵀy with an intercept column appended.
func (m *LinearRegression) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("linear: %d samples, %d targets", len(x), len(y))
	}
	d := len(x[0]) + 1 // +1 intercept

	// Normal matrix and right-hand side.
	xtx := make([][]float64, d)
	for i := range xtx {
		xtx[i] = make([]float64, d)
	}
	xty := make([]float64, d)

	row := make([]float64, d)
	for i, sample := range x {
		copy(row, sample)
		row[d-1] = 1
		for a := 0; a < d; a++ {
			xty[a] += row[a] * y[i]
			for b := 0; b < d; b++ {
				xtx[a][b] += row[a] * row[b]
			}
		}
	}
	for a := 0; a < d; a++ {
		xtx[a][a] += ridge
	}

	w, err := solve(xtx, xty)
	if err != nil {
		return fmt.Errorf("linear: %w", err)
	}
	m.coef = w[:d-1]
	m.intercept = w[d-1]
	return nil
}

// Predict evaluates the fitted hyperplane.
func (m *LinearRegression) Predict(features []float64) float64 {
	v := m.intercept
	for i, c := range m.coef {
		if i < len(features) {
			v += c * features[i]
		}
	}
	return v
}

type linearParams struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// Params serializes the fitted coefficients.
func (m *LinearRegression) Params() (json.RawMessage, error) {
	return json.Marshal(linearParams{Coef: m.coef, Intercept: m.intercept})
}

// LoadLinear reconstructs an OLS predictor from persisted parameters.
func LoadLinear(params json.RawMessage) (driven.Predictor, error) {
	var p linearParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("linear params: %w", err)
	}
	return &LinearRegression{coef: p.Coef, intercept: p.Intercept}, nil
}

// solve performs Gaussian elimination with partial pivoting on a·w = b.
// a and b are modified in place.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		// Pivot: largest absolute value in the column.
		pivot := col
		for r := col + 1; r < n; r++ {
			if abs(a[r][col]) > abs(a[pivot][col]) {
				pivot = r
			}
		}
		if abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular matrix at column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < n; r++ {
			factor := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}

	w := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		v := b[r]
		for c := r + 1; c < n; c++ {
			v -= a[r][c] * w[c]
		}
		w[r] = v / a[r][r]
	}
	return w, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
