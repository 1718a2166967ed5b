package domain

import "time"

// DatasetSnapshot describes one persisted batch of records for a source.
// Snapshots are replaced wholesale on each pipeline run: the prior snapshot
// is retained until the new one is durably written, then swapped atomically.
type DatasetSnapshot struct {
	// Source is the source name this snapshot belongs to.
	Source string `json:"source"`

	// Kind is the source's schema family.
	Kind SourceKind `json:"kind"`

	// CollectedAt is when collection for this snapshot completed.
	CollectedAt time.Time `json:"collected_at"`

	// RecordCount is the number of processed rows persisted.
	RecordCount int `json:"record_count"`

	// RawPath and ProcessedPath locate the persisted tabular files.
	RawPath       string `json:"raw_path"`
	ProcessedPath string `json:"processed_path"`

	// Columns is the exact ordered column list of the processed file.
	// This is the feature contract for models trained on this snapshot.
	Columns []string `json:"columns"`

	// Degraded is true when the source was collected via a fallback or
	// synthetic path, or partially failed. Never set silently.
	Degraded bool `json:"degraded"`

	// DroppedRecords counts malformed upstream records discarded during
	// collection and normalization.
	DroppedRecords int `json:"dropped_records"`
}
