// Package history keeps a build-history log in SQLite: one row per
// generation run with its source commit, entity counts and outcome.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Outcome of one build.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Record is one build-history row.
type Record struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Commit     string
	Services   int
	Methods    int
	Types      int
	Outcome    string
	Duration   time.Duration
	Error      string
}

// Store is a SQLite-backed build history.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and if needed initializes) the history database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		commit_hash TEXT NOT NULL,
		services INTEGER NOT NULL,
		methods INTEGER NOT NULL,
		types INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores one build record. A zero ID is assigned a fresh uuid.
func (s *Store) Append(ctx context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (id, started_at, finished_at, commit_hash, services, methods, types, outcome, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.StartedAt.Unix(), rec.FinishedAt.Unix(), rec.Commit,
		rec.Services, rec.Methods, rec.Types, rec.Outcome,
		rec.Duration.Milliseconds(), rec.Error,
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert build: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit builds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, commit_hash, services, methods, types, outcome, duration_ms, error
		 FROM builds ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var id string
		var startedUnix, finishedUnix, durationMS int64
		err := rows.Scan(&id, &startedUnix, &finishedUnix, &rec.Commit,
			&rec.Services, &rec.Methods, &rec.Types, &rec.Outcome, &durationMS, &rec.Error)
		if err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		rec.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse build id: %w", err)
		}
		rec.StartedAt = time.Unix(startedUnix, 0)
		rec.FinishedAt = time.Unix(finishedUnix, 0)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
