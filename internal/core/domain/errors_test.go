package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates_MatchWrappedErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
	}{
		{"connection", &ConnectionError{Source: "epidemic", Err: errors.New("refused")}, IsConnectionError},
		{"rate limit", &RateLimitError{Source: "market"}, IsRateLimited},
		{"insufficient data", &InsufficientDataError{Target: "epidemic_forecast", Samples: 3, Minimum: 10}, IsInsufficientData},
		{"feature mismatch", &FeatureMismatchError{Model: "weather_class", Missing: []string{"humidity"}}, IsFeatureMismatch},
		{"persistence", &PersistenceError{Path: "/tmp/x.csv", Err: errors.New("disk full")}, IsPersistenceError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.predicate(tt.err))
			assert.True(t, tt.predicate(fmt.Errorf("run failed: %w", tt.err)))
			assert.False(t, tt.predicate(errors.New("unrelated")))
			assert.False(t, tt.predicate(nil))
		})
	}
}

func TestErrorPredicates_DoNotCrossMatch(t *testing.T) {
	perr := &PersistenceError{Path: "snapshot.csv", Err: errors.New("rename failed")}

	assert.True(t, IsPersistenceError(perr))
	assert.False(t, IsConnectionError(perr))
	assert.False(t, IsRateLimited(perr))
}
