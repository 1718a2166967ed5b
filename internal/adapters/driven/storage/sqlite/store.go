package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/quantica-labs/pulse/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/core/ports/driven"
)

// Store is the SQLite-backed run ledger.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.RunStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.pulse/data/runs.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pulse", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "runs.db")

	// WAL mode for better concurrency between the pipeline and listings.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_runs.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// RecordRun appends or updates a run record. Phases of an in-flight run
// update the same row keyed by run ID.
func (s *Store) RecordRun(ctx context.Context, rec domain.RunRecord) error {
	degraded := strings.Join(rec.DegradedSources, ",")

	var perSource string
	if len(rec.PerSource) > 0 {
		encoded, err := json.Marshal(rec.PerSource)
		if err != nil {
			return fmt.Errorf("encoding per-source counts: %w", err)
		}
		perSource = string(encoded)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, phase, status, total_records, per_source, degraded_sources, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			phase = excluded.phase,
			status = excluded.status,
			total_records = excluded.total_records,
			per_source = excluded.per_source,
			degraded_sources = excluded.degraded_sources,
			error = excluded.error
	`, rec.ID, rec.StartedAt.UTC(), nullTime(rec.FinishedAt), string(rec.Phase), string(rec.Status),
		rec.TotalRecords, nullString(perSource), nullString(degraded), nullString(rec.Error))

	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// LastRun returns the most recent run record, or nil if none exist.
func (s *Store) LastRun(ctx context.Context) (*domain.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, phase, status, total_records, per_source, degraded_sources, error
		FROM runs ORDER BY started_at DESC LIMIT 1
	`)

	rec, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRuns returns up to limit run records, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, phase, status, total_records, per_source, degraded_sources, error
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var recs []domain.RunRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return recs, nil
}

// scanRun scans one run row via the given Scan function.
func scanRun(scan func(dest ...any) error) (*domain.RunRecord, error) {
	var rec domain.RunRecord
	var phase, status string
	var finishedAt sql.NullTime
	var perSource, degraded, errMsg sql.NullString

	if err := scan(&rec.ID, &rec.StartedAt, &finishedAt, &phase, &status,
		&rec.TotalRecords, &perSource, &degraded, &errMsg); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	rec.Phase = domain.RunPhase(phase)
	rec.Status = domain.RunStatus(status)
	if finishedAt.Valid {
		rec.FinishedAt = finishedAt.Time
	}
	if perSource.Valid && perSource.String != "" {
		if err := json.Unmarshal([]byte(perSource.String), &rec.PerSource); err != nil {
			return nil, fmt.Errorf("decoding per-source counts: %w", err)
		}
	}
	if degraded.Valid && degraded.String != "" {
		rec.DegradedSources = strings.Split(degraded.String, ",")
	}
	rec.Error = errMsg.String

	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
