// Package domain contains the core business entities for the pulse pipeline:
// source records, dataset snapshots, model artifacts, prediction types and the
// pipeline run state machine. It has no dependencies on adapters or services.
package domain
