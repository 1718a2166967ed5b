package driven

import (
	"context"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

// SnapshotStore persists raw and processed dataset snapshots.
// The store exclusively owns snapshot files: one raw tabular file and one
// processed tabular file per source, each with a header row, written via
// write-to-temp-then-rename so readers never observe a partial snapshot.
type SnapshotStore interface {
	// SaveSnapshot durably writes both frames and the snapshot descriptor,
	// replacing any prior snapshot for the source atomically. A returned
	// error is a *domain.PersistenceError and fails the run.
	SaveSnapshot(ctx context.Context, snap domain.DatasetSnapshot, raw, processed *domain.Frame) error

	// LoadSnapshot returns the snapshot descriptor for a source.
	// Returns domain.ErrSnapshotNotFound if none exists.
	LoadSnapshot(ctx context.Context, source string) (*domain.DatasetSnapshot, error)

	// LoadProcessed reads back the processed frame for a source.
	LoadProcessed(ctx context.Context, source string) (*domain.Frame, error)

	// ListSnapshots returns every source's snapshot descriptor.
	ListSnapshots(ctx context.Context) ([]domain.DatasetSnapshot, error)
}

// ModelStore persists model artifacts: one serialized parameter file plus one
// metadata file per model name, written atomically.
type ModelStore interface {
	// SaveArtifact durably writes the artifact, replacing any prior one.
	SaveArtifact(ctx context.Context, artifact *domain.ModelArtifact) error

	// LoadArtifact reads back the artifact for a model name.
	// Returns domain.ErrModelNotFound if none exists.
	LoadArtifact(ctx context.Context, name string) (*domain.ModelArtifact, error)

	// ListArtifacts returns every persisted artifact.
	ListArtifacts(ctx context.Context) ([]*domain.ModelArtifact, error)
}

// RunStore is the durable ledger of pipeline runs.
type RunStore interface {
	// RecordRun appends or updates a run record.
	RecordRun(ctx context.Context, rec domain.RunRecord) error

	// LastRun returns the most recent run record, or nil if none exist.
	LastRun(ctx context.Context) (*domain.RunRecord, error)

	// ListRuns returns up to limit run records, newest first.
	ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
