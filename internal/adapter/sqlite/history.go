// Package sqlite persists fetch history in a local SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vertextoedge/datafetch/internal/pathutil"
	"github.com/vertextoedge/datafetch/pkg/fetch"
)

// HistoryStore implements fetch.HistoryRecorder using SQLite
type HistoryStore struct {
	db *sql.DB
}

// Ensure HistoryStore implements fetch.HistoryRecorder
var _ fetch.HistoryRecorder = (*HistoryStore)(nil)

// Open opens a connection to the SQLite history database, creating the
// parent directory and schema as needed.
func Open(dbPath string) (*HistoryStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if _, err := pathutil.EnsureDir(dir); err != nil {
			return nil, err
		}
	}

	// Open database with WAL mode and busy timeout
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	store := &HistoryStore{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *HistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// migrate creates or updates the database schema
func (s *HistoryStore) migrate() error {
	schema := `CREATE TABLE IF NOT EXISTS fetch_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		cache_path TEXT NOT NULL,
		final_path TEXT NOT NULL,
		kept_cache BOOLEAN NOT NULL DEFAULT FALSE,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		fetched_at TIMESTAMP NOT NULL
	)`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	index := `CREATE INDEX IF NOT EXISTS idx_fetch_history_source
		ON fetch_history(source, fetched_at)`
	if _, err := s.db.Exec(index); err != nil {
		return err
	}
	return nil
}

// Record stores one completed fetch.
func (s *HistoryStore) Record(rec fetch.FetchRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO fetch_history
			(source, cache_path, final_path, kept_cache, duration_ms, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Source,
		rec.CachePath,
		rec.FinalPath,
		rec.KeptCache,
		rec.Duration.Milliseconds(),
		rec.FetchedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert fetch record: %w", err)
	}
	return nil
}

// Recent returns up to limit most recent fetch records, newest first.
func (s *HistoryStore) Recent(limit int) ([]fetch.FetchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT source, cache_path, final_path, kept_cache, duration_ms, fetched_at
		FROM fetch_history
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch history: %w", err)
	}
	defer rows.Close()

	var records []fetch.FetchRecord
	for rows.Next() {
		var rec fetch.FetchRecord
		var durationMs int64
		var fetchedAt string
		if err := rows.Scan(&rec.Source, &rec.CachePath, &rec.FinalPath,
			&rec.KeptCache, &durationMs, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fetch record: %w", err)
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, fetchedAt); err == nil {
			rec.FetchedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
