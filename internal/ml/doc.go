// Package ml implements the candidate learning algorithms the trainer
// selects between: ordinary least squares, multinomial logistic regression,
// bootstrap-aggregated regression trees and gradient-boosted trees, plus
// k-fold cross-validation and the evaluation metrics.
//
// Everything operates on plain float64 slices and is fully deterministic:
// stochastic steps (bootstrap sampling, feature subsetting) draw from a
// fixed-seed generator, so repeated training runs on the same snapshot
// produce identical artifacts.
package ml
