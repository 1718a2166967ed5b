package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrModelNotFound indicates no artifact is published under the name.
	ErrModelNotFound = errors.New("model not found")

	// ErrSnapshotNotFound indicates no snapshot exists for the source.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrUnsupportedKind indicates an unknown source kind.
	ErrUnsupportedKind = errors.New("unsupported source kind")

	// ErrNoAPIKey indicates a key-gated source has no configured credential.
	// Connectors fall back to their synthetic generator and mark the
	// snapshot degraded.
	ErrNoAPIKey = errors.New("api key not configured")

	// ErrRunInProgress indicates a pipeline run is already active.
	ErrRunInProgress = errors.New("pipeline run in progress")
)

// ConnectionError indicates a source was unreachable (network or auth
// failure) after the retry budget was exhausted.
type ConnectionError struct {
	Source string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: connection failed: %v", e.Source, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// RateLimitError indicates a source rejected a call for exceeding its rate
// limit.
type RateLimitError struct {
	Source     string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited, retry after %s", e.Source, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limited", e.Source)
}

// ValidationError indicates a malformed upstream record. The record is
// dropped and counted; it never fails the run.
type ValidationError struct {
	Source string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid record: %s", e.Source, e.Reason)
}

// InsufficientDataError indicates a training set is below the configured
// minimum. Training is aborted for that target only.
type InsufficientDataError struct {
	Target  string
	Samples int
	Minimum int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: %d samples, need at least %d", e.Target, e.Samples, e.Minimum)
}

// FeatureMismatchError indicates a prediction request's feature map does not
// match the artifact's recorded feature list. Missing names are required by
// the artifact but absent from the request; Unexpected names are present in
// the request but unknown to the artifact (rejected to catch schema drift).
type FeatureMismatchError struct {
	Model      string
	Missing    []string
	Unexpected []string
}

func (e *FeatureMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing features: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected features: "+strings.Join(e.Unexpected, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Model, strings.Join(parts, "; "))
}

// PersistenceError indicates a snapshot or artifact write failed. This is
// fatal to the run; prior durable state is preserved unchanged.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsConnectionError checks if the error indicates an unreachable source.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var re *RateLimitError
	return errors.As(err, &re)
}

// IsInsufficientData checks if the error is an aborted-training signal.
func IsInsufficientData(err error) bool {
	var ie *InsufficientDataError
	return errors.As(err, &ie)
}

// IsFeatureMismatch checks if the error is a prediction schema mismatch.
func IsFeatureMismatch(err error) bool {
	var fe *FeatureMismatchError
	return errors.As(err, &fe)
}

// IsPersistenceError checks if the error is a fatal storage failure.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
