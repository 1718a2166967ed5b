package ml

import "math"

// RSquared computes the coefficient of determination of predictions against
// observed values. A constant target with zero residuals scores 1; a
// constant target with any residual scores 0.
func RSquared(predicted, observed []float64) float64 {
	if len(observed) == 0 {
		return 0
	}
	var mean float64
	for _, y := range observed {
		mean += y
	}
	mean /= float64(len(observed))

	var ssRes, ssTot float64
	for i, y := range observed {
		d := y - predicted[i]
		ssRes += d * d
		t := y - mean
		ssTot += t * t
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// RMSE computes the root-mean-squared-error of predictions.
func RMSE(predicted, observed []float64) float64 {
	if len(observed) == 0 {
		return 0
	}
	var sq float64
	for i, y := range observed {
		d := y - predicted[i]
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(observed)))
}

// Accuracy computes the fraction of predictions matching the observed class
// index exactly.
func Accuracy(predicted, observed []float64) float64 {
	if len(observed) == 0 {
		return 0
	}
	var hits int
	for i, y := range observed {
		if predicted[i] == y {
			hits++
		}
	}
	return float64(hits) / float64(len(observed))
}
