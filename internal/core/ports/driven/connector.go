package driven

import (
	"context"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

// Connector fetches raw records from one upstream source.
// Each source kind (epidemic, weather, market) implements this interface.
type Connector interface {
	// Name returns the configured source name (snapshot key).
	Name() string

	// Kind returns the source's schema family.
	Kind() domain.SourceKind

	// Fetch retrieves records from the source. If credentials are absent or
	// the remote call fails after the retry budget is exhausted, the
	// connector degrades to its deterministic synthetic generator and sets
	// Degraded on the output. This never happens silently: the flag is
	// propagated to the DatasetSnapshot and to insight reporting.
	//
	// An error is returned only when even the fallback cannot produce
	// records (e.g. the context was cancelled).
	Fetch(ctx context.Context) (FetchOutput, error)
}

// FetchOutput is the result of one connector fetch.
type FetchOutput struct {
	// Records are the fetched observations, oldest first.
	Records []domain.RawRecord

	// Degraded is true when the synthetic fallback produced the records.
	Degraded bool

	// Dropped counts malformed upstream records discarded during parsing.
	Dropped int
}
