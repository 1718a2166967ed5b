// Package registry holds the in-memory serving registry of trained models.
// Publishing swaps the whole entry under a write lock, so concurrent
// prediction requests always observe a complete artifact with its matching
// predictor. On startup the registry hydrates from the durable model store.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
	"github.com/quantica-labs/pulse/internal/logger"
	"github.com/quantica-labs/pulse/internal/ml"
)

// Registry implements driven.ModelRegistry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]driven.Entry
}

var _ driven.ModelRegistry = (*Registry)(nil)

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]driven.Entry)}
}

// Hydrate loads every artifact from the store and publishes it. Artifacts
// whose parameters no longer decode are skipped with a warning; a stale model
// must not prevent the rest from serving.
func (r *Registry) Hydrate(ctx context.Context, store driven.ModelStore) error {
	artifacts, err := store.ListArtifacts(ctx)
	if err != nil {
		return fmt.Errorf("listing artifacts: %w", err)
	}
	for _, artifact := range artifacts {
		predictor, err := LoadPredictor(artifact)
		if err != nil {
			logger.Warn("skipping artifact %s: %v", artifact.Name, err)
			continue
		}
		if err := r.Publish(ctx, driven.Entry{Artifact: artifact, Predictor: predictor}); err != nil {
			return err
		}
		logger.Debug("hydrated model %s (%s)", artifact.Name, artifact.Algorithm)
	}
	return nil
}

// Publish replaces the entry for the artifact's name.
func (r *Registry) Publish(ctx context.Context, entry driven.Entry) error {
	if entry.Artifact == nil || entry.Artifact.Name == "" {
		return fmt.Errorf("registry: entry has no artifact name")
	}
	if entry.Predictor == nil {
		return fmt.Errorf("registry: entry for %s has no predictor", entry.Artifact.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.Artifact.Name] = entry
	return nil
}

// Get returns the current entry for a model name.
func (r *Registry) Get(ctx context.Context, name string) (driven.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	if !ok {
		return driven.Entry{}, fmt.Errorf("model %q: %w", name, domain.ErrModelNotFound)
	}
	return entry, nil
}

// List returns the current entries for all published models, sorted by name.
func (r *Registry) List(ctx context.Context) ([]driven.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]driven.Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Artifact.Name < entries[j].Artifact.Name
	})
	return entries, nil
}

// LoadPredictor decodes an artifact's parameters into a serving predictor.
func LoadPredictor(artifact *domain.ModelArtifact) (driven.Predictor, error) {
	loader, err := ml.LoaderFor(artifact.Target, artifact.Algorithm)
	if err != nil {
		return nil, err
	}
	predictor, err := loader(artifact.Params)
	if err != nil {
		return nil, fmt.Errorf("decoding %s params: %w", artifact.Name, err)
	}
	return predictor, nil
}
