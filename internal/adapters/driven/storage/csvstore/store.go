// Package csvstore persists dataset snapshots as CSV files with a JSON
// descriptor sidecar. Each source owns three files in the data directory:
//
//	raw_<source>.csv       fetched records, header row first
//	processed_<source>.csv normalized and feature-engineered rows
//	snapshot_<source>.json descriptor with the feature contract
//
// Every write lands in a temp file in the same directory and is renamed into
// place, so a crashed run leaves the prior snapshot untouched.
package csvstore

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
	"github.com/quantica-labs/pulse/internal/logger"
)

const (
	timestampColumn = "timestamp"
	snapshotPrefix  = "snapshot_"
)

// Store implements driven.SnapshotStore on the local filesystem.
type Store struct {
	dir string
}

var _ driven.SnapshotStore = (*Store)(nil)

// New creates a Store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &domain.PersistenceError{Path: dir, Err: err}
	}
	return &Store{dir: dir}, nil
}

// SaveSnapshot writes both frames and the descriptor for snap.Source. The
// descriptor is written last so a readable descriptor always points at
// complete tabular files.
func (s *Store) SaveSnapshot(ctx context.Context, snap domain.DatasetSnapshot, raw, processed *domain.Frame) error {
	if err := validSource(snap.Source); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &domain.PersistenceError{Path: s.dir, Err: err}
	}

	rawPath := s.rawPath(snap.Source)
	processedPath := s.processedPath(snap.Source)
	if err := s.writeFrame(rawPath, raw); err != nil {
		return err
	}
	if err := s.writeFrame(processedPath, processed); err != nil {
		return err
	}

	snap.RawPath = rawPath
	snap.ProcessedPath = processedPath
	snap.Columns = append([]string(nil), processed.Columns...)
	snap.RecordCount = processed.NumRows()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return &domain.PersistenceError{Path: s.snapshotPath(snap.Source), Err: err}
	}
	if err := s.writeAtomic(s.snapshotPath(snap.Source), data); err != nil {
		return err
	}
	logger.Debug("snapshot saved: %s (%d rows, %d columns)", snap.Source, snap.RecordCount, len(snap.Columns))
	return nil
}

// LoadSnapshot reads the descriptor for a source.
func (s *Store) LoadSnapshot(ctx context.Context, source string) (*domain.DatasetSnapshot, error) {
	if err := validSource(source); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.snapshotPath(source))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("source %q: %w", source, domain.ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, &domain.PersistenceError{Path: s.snapshotPath(source), Err: err}
	}
	var snap domain.DatasetSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &domain.PersistenceError{Path: s.snapshotPath(source), Err: err}
	}
	return &snap, nil
}

// LoadProcessed reads back the processed frame for a source.
func (s *Store) LoadProcessed(ctx context.Context, source string) (*domain.Frame, error) {
	if err := validSource(source); err != nil {
		return nil, err
	}
	return s.readFrame(s.processedPath(source), source)
}

// ListSnapshots returns every source's descriptor, sorted by source name.
func (s *Store) ListSnapshots(ctx context.Context) ([]domain.DatasetSnapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &domain.PersistenceError{Path: s.dir, Err: err}
	}
	var snaps []domain.DatasetSnapshot
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		source := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), ".json")
		snap, err := s.LoadSnapshot(ctx, source)
		if err != nil {
			logger.Warn("skipping unreadable snapshot %s: %v", name, err)
			continue
		}
		snaps = append(snaps, *snap)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Source < snaps[j].Source })
	return snaps, nil
}

func (s *Store) writeFrame(path string, frame *domain.Frame) error {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := append([]string{timestampColumn}, frame.Columns...)
	if err := w.Write(header); err != nil {
		return &domain.PersistenceError{Path: path, Err: err}
	}
	record := make([]string, len(header))
	for i, row := range frame.Rows {
		record[0] = frame.Timestamps[i].UTC().Format(time.RFC3339)
		for j, v := range row {
			record[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return &domain.PersistenceError{Path: path, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &domain.PersistenceError{Path: path, Err: err}
	}
	return s.writeAtomic(path, []byte(sb.String()))
}

func (s *Store) readFrame(path, source string) (*domain.Frame, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("source %q: %w", source, domain.ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, &domain.PersistenceError{Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, &domain.PersistenceError{Path: path, Err: err}
	}
	if len(records) == 0 || len(records[0]) < 1 || records[0][0] != timestampColumn {
		return nil, &domain.PersistenceError{Path: path, Err: fmt.Errorf("missing header row")}
	}

	frame := domain.NewFrame(records[0][1:])
	for _, record := range records[1:] {
		ts, err := time.Parse(time.RFC3339, record[0])
		if err != nil {
			return nil, &domain.PersistenceError{Path: path, Err: fmt.Errorf("row timestamp %q: %w", record[0], err)}
		}
		values := make([]float64, len(record)-1)
		for j, cell := range record[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, &domain.PersistenceError{Path: path, Err: fmt.Errorf("cell %q: %w", cell, err)}
			}
			values[j] = v
		}
		if err := frame.AppendRow(ts, values); err != nil {
			return nil, &domain.PersistenceError{Path: path, Err: err}
		}
	}
	return frame, nil
}

// writeAtomic writes data to a temp file in the target directory, then
// renames it into place.
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

func (s *Store) rawPath(source string) string {
	return filepath.Join(s.dir, "raw_"+source+".csv")
}

func (s *Store) processedPath(source string) string {
	return filepath.Join(s.dir, "processed_"+source+".csv")
}

func (s *Store) snapshotPath(source string) string {
	return filepath.Join(s.dir, snapshotPrefix+source+".json")
}

func validSource(source string) error {
	if source == "" || strings.ContainsAny(source, `/\`) || source != filepath.Base(source) {
		return &domain.PersistenceError{Path: source, Err: fmt.Errorf("invalid source name")}
	}
	return nil
}
