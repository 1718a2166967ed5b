package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
)

// mockConnector returns a canned fetch output, optionally blocking until
// released to exercise concurrency paths.
type mockConnector struct {
	name    string
	kind    domain.SourceKind
	out     driven.FetchOutput
	err     error
	release chan struct{}
}

func (c *mockConnector) Name() string            { return c.name }
func (c *mockConnector) Kind() domain.SourceKind { return c.kind }

func (c *mockConnector) Fetch(ctx context.Context) (driven.FetchOutput, error) {
	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return driven.FetchOutput{}, &domain.ConnectionError{Source: c.name, Err: ctx.Err()}
		}
	}
	return c.out, c.err
}

// memSnapshotStore is an in-memory driven.SnapshotStore.
type memSnapshotStore struct {
	mu        sync.Mutex
	snaps     map[string]domain.DatasetSnapshot
	processed map[string]*domain.Frame
	failSave  bool
}

func newMemSnapshotStore() *memSnapshotStore {
	return &memSnapshotStore{
		snaps:     make(map[string]domain.DatasetSnapshot),
		processed: make(map[string]*domain.Frame),
	}
}

func (s *memSnapshotStore) SaveSnapshot(ctx context.Context, snap domain.DatasetSnapshot, raw, processed *domain.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return &domain.PersistenceError{Path: snap.Source, Err: fmt.Errorf("disk full")}
	}
	snap.RecordCount = processed.NumRows()
	snap.Columns = append([]string(nil), processed.Columns...)
	s.snaps[snap.Source] = snap
	s.processed[snap.Source] = processed.Clone()
	return nil
}

func (s *memSnapshotStore) LoadSnapshot(ctx context.Context, source string) (*domain.DatasetSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[source]
	if !ok {
		return nil, fmt.Errorf("source %q: %w", source, domain.ErrSnapshotNotFound)
	}
	return &snap, nil
}

func (s *memSnapshotStore) LoadProcessed(ctx context.Context, source string) (*domain.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame, ok := s.processed[source]
	if !ok {
		return nil, fmt.Errorf("source %q: %w", source, domain.ErrSnapshotNotFound)
	}
	return frame.Clone(), nil
}

func (s *memSnapshotStore) ListSnapshots(ctx context.Context) ([]domain.DatasetSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.DatasetSnapshot
	for _, snap := range s.snaps {
		out = append(out, snap)
	}
	return out, nil
}

// memModelStore is an in-memory driven.ModelStore.
type memModelStore struct {
	mu        sync.Mutex
	artifacts map[string]*domain.ModelArtifact
}

func newMemModelStore() *memModelStore {
	return &memModelStore{artifacts: make(map[string]*domain.ModelArtifact)}
}

func (s *memModelStore) SaveArtifact(ctx context.Context, artifact *domain.ModelArtifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[artifact.Name] = artifact
	return nil
}

func (s *memModelStore) LoadArtifact(ctx context.Context, name string) (*domain.ModelArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	artifact, ok := s.artifacts[name]
	if !ok {
		return nil, fmt.Errorf("model %q: %w", name, domain.ErrModelNotFound)
	}
	return artifact, nil
}

func (s *memModelStore) ListArtifacts(ctx context.Context) ([]*domain.ModelArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.ModelArtifact
	for _, artifact := range s.artifacts {
		out = append(out, artifact)
	}
	return out, nil
}

// memRegistry is an in-memory driven.ModelRegistry.
type memRegistry struct {
	mu      sync.Mutex
	entries map[string]driven.Entry
}

func newMemRegistry() *memRegistry {
	return &memRegistry{entries: make(map[string]driven.Entry)}
}

func (r *memRegistry) Publish(ctx context.Context, entry driven.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.Artifact.Name] = entry
	return nil
}

func (r *memRegistry) Get(ctx context.Context, name string) (driven.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[name]
	if !ok {
		return driven.Entry{}, fmt.Errorf("model %q: %w", name, domain.ErrModelNotFound)
	}
	return entry, nil
}

func (r *memRegistry) List(ctx context.Context) ([]driven.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []driven.Entry
	for _, entry := range r.entries {
		out = append(out, entry)
	}
	return out, nil
}

// memRunStore is an in-memory driven.RunStore keyed by run ID.
type memRunStore struct {
	mu      sync.Mutex
	records map[string]domain.RunRecord
	order   []string
}

func newMemRunStore() *memRunStore {
	return &memRunStore{records: make(map[string]domain.RunRecord)}
}

func (s *memRunStore) RecordRun(ctx context.Context, rec domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; !ok {
		s.order = append(s.order, rec.ID)
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *memRunStore) LastRun(ctx context.Context) (*domain.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return nil, nil
	}
	rec := s.records[s.order[len(s.order)-1]]
	return &rec, nil
}

func (s *memRunStore) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.RunRecord
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[s.order[i]])
	}
	return out, nil
}

// constPredictor always returns a fixed value.
type constPredictor struct {
	value float64
}

func (p constPredictor) Predict([]float64) float64 { return p.value }

var (
	_ driven.Connector     = (*mockConnector)(nil)
	_ driven.SnapshotStore = (*memSnapshotStore)(nil)
	_ driven.ModelStore    = (*memModelStore)(nil)
	_ driven.ModelRegistry = (*memRegistry)(nil)
	_ driven.RunStore      = (*memRunStore)(nil)
)
