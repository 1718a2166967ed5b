// Package modelstore persists model artifacts on the local filesystem. Each
// model owns two files in the models directory:
//
//	<name>_params.json  the winning candidate's serialized parameters
//	<name>_meta.json    everything else in the artifact
//
// The split mirrors how artifacts are consumed: the registry needs metadata
// for listing and validation, while parameters are only decoded when a
// predictor is hydrated. Both files are written temp-then-rename; metadata
// last, so a readable metadata file always points at complete parameters.
package modelstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
	"github.com/quantica-labs/pulse/internal/logger"
)

const (
	paramsSuffix = "_params.json"
	metaSuffix   = "_meta.json"
)

// Store implements driven.ModelStore on the local filesystem.
type Store struct {
	dir string
}

var _ driven.ModelStore = (*Store)(nil)

// New creates a Store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &domain.PersistenceError{Path: dir, Err: err}
	}
	return &Store{dir: dir}, nil
}

// metaFile is the artifact without its parameter blob.
type metaFile struct {
	domain.ModelArtifact
	Params json.RawMessage `json:"params,omitempty"`
}

// SaveArtifact writes the artifact, replacing any prior one for its name.
func (s *Store) SaveArtifact(ctx context.Context, artifact *domain.ModelArtifact) error {
	if err := validName(artifact.Name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &domain.PersistenceError{Path: s.dir, Err: err}
	}

	if err := s.writeAtomic(s.paramsPath(artifact.Name), artifact.Params); err != nil {
		return err
	}

	meta := metaFile{ModelArtifact: *artifact}
	meta.ModelArtifact.Params = nil
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return &domain.PersistenceError{Path: s.metaPath(artifact.Name), Err: err}
	}
	if err := s.writeAtomic(s.metaPath(artifact.Name), data); err != nil {
		return err
	}
	logger.Debug("artifact saved: %s (%s, %s)", artifact.Name, artifact.Target, artifact.Algorithm)
	return nil
}

// LoadArtifact reads back the artifact for a model name.
func (s *Store) LoadArtifact(ctx context.Context, name string) (*domain.ModelArtifact, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.metaPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("model %q: %w", name, domain.ErrModelNotFound)
	}
	if err != nil {
		return nil, &domain.PersistenceError{Path: s.metaPath(name), Err: err}
	}

	var artifact domain.ModelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, &domain.PersistenceError{Path: s.metaPath(name), Err: err}
	}
	params, err := os.ReadFile(s.paramsPath(name))
	if err != nil {
		return nil, &domain.PersistenceError{Path: s.paramsPath(name), Err: err}
	}
	artifact.Params = params
	return &artifact, nil
}

// ListArtifacts returns every persisted artifact, sorted by name.
func (s *Store) ListArtifacts(ctx context.Context) ([]*domain.ModelArtifact, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &domain.PersistenceError{Path: s.dir, Err: err}
	}
	var artifacts []*domain.ModelArtifact
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, metaSuffix) {
			continue
		}
		artifact, err := s.LoadArtifact(ctx, strings.TrimSuffix(name, metaSuffix))
		if err != nil {
			logger.Warn("skipping unreadable artifact %s: %v", name, err)
			continue
		}
		artifacts = append(artifacts, artifact)
	}
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Name < artifacts[j].Name })
	return artifacts, nil
}

func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return &domain.PersistenceError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &domain.PersistenceError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &domain.PersistenceError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &domain.PersistenceError{Path: path, Err: err}
	}
	return nil
}

func (s *Store) paramsPath(name string) string {
	return filepath.Join(s.dir, name+paramsSuffix)
}

func (s *Store) metaPath(name string) string {
	return filepath.Join(s.dir, name+metaSuffix)
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return &domain.PersistenceError{Path: name, Err: fmt.Errorf("invalid model name")}
	}
	return nil
}
