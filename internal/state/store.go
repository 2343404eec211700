package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// BuildRecord describes one completed build of an output directory.
type BuildRecord struct {
	ID        int64
	OutputDir string
	BuildHash string
	Outcome   string
	PostCount int
	Pages     int
	Duration  time.Duration
	Timestamp time.Time
}

// Store persists build records in a SQLite database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// DefaultPath returns the database location used when none is configured.
func DefaultPath() string {
	return filepath.Join(".blogbuilder", "state.db")
}

// Open opens (creating if necessary) the build-state database at dbPath.
// Use ":memory:" for an ephemeral store.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		output_dir TEXT NOT NULL,
		build_hash TEXT NOT NULL,
		outcome TEXT NOT NULL,
		post_count INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_output ON builds(output_dir, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordBuild appends a build record.
func (s *Store) RecordBuild(ctx context.Context, rec BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (output_dir, build_hash, outcome, post_count, pages, duration_ms, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.OutputDir, rec.BuildHash, rec.Outcome, rec.PostCount, rec.Pages, rec.Duration.Milliseconds(), ts.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// LastBuild returns the most recent build record for outputDir, or nil when
// the directory has never been built.
func (s *Store) LastBuild(ctx context.Context, outputDir string) (*BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, output_dir, build_hash, outcome, post_count, pages, duration_ms, timestamp FROM builds WHERE output_dir = ? ORDER BY id DESC LIMIT 1",
		outputDir,
	)
	rec, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last build: %w", err)
	}
	return rec, nil
}

// History returns up to limit build records for outputDir, newest first.
func (s *Store) History(ctx context.Context, outputDir string, limit int) ([]BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, output_dir, build_hash, outcome, post_count, pages, duration_ms, timestamp FROM builds WHERE output_dir = ? ORDER BY id DESC LIMIT ?",
		outputDir, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query build history: %w", err)
	}
	defer rows.Close()

	var records []BuildRecord
	for rows.Next() {
		rec, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// CanSkip reports whether outputDir was last built successfully from inputs
// with the given fingerprint and the directory still exists on disk.
func (s *Store) CanSkip(ctx context.Context, outputDir, buildHash string) (bool, error) {
	last, err := s.LastBuild(ctx, outputDir)
	if err != nil || last == nil {
		return false, err
	}
	if last.Outcome != "success" || last.BuildHash != buildHash {
		return false, nil
	}
	if _, err := os.Stat(outputDir); err != nil {
		return false, nil
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBuild(row rowScanner) (*BuildRecord, error) {
	var rec BuildRecord
	var durationMS, ts int64
	if err := row.Scan(&rec.ID, &rec.OutputDir, &rec.BuildHash, &rec.Outcome, &rec.PostCount, &rec.Pages, &durationMS, &ts); err != nil {
		return nil, err
	}
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.Timestamp = time.Unix(ts, 0)
	return &rec, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
