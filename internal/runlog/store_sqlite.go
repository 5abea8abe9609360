package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"todocontract/internal/storage"
)

// timestampFormat has fixed-width fractional seconds so started_at sorts as text
const timestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	storage storage.Storage
	db      *sql.DB
}

// NewSQLiteStore creates the probe_results table on st if needed.
// Closing the store closes st.
func NewSQLiteStore(st storage.Storage) (*SQLiteStore, error) {
	if st == nil || st.DB() == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	db := st.DB()

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS probe_results (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			scenario TEXT NOT NULL,
			passed INTEGER NOT NULL DEFAULT 0,
			failure TEXT,
			base_url TEXT,
			started_at DATETIME NOT NULL,
			duration_ns INTEGER DEFAULT 0
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create probe_results table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_probe_started_at ON probe_results(started_at)",
		"CREATE INDEX IF NOT EXISTS idx_probe_scenario ON probe_results(scenario)",
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			slog.Warn("failed to create index", "error", err)
		}
	}

	return &SQLiteStore{storage: st, db: db}, nil
}

// Open opens the SQLite file at path and returns a store over it
func Open(path string) (*SQLiteStore, error) {
	st, err := storage.New(storage.Config{Path: path})
	if err != nil {
		return nil, err
	}
	store, err := NewSQLiteStore(st)
	if err != nil {
		st.Close()
		return nil, err
	}
	return store, nil
}

// Record inserts results in one transaction. Existing ids are left untouched.
func (s *SQLiteStore) Record(ctx context.Context, results []Result) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO probe_results
		(id, run_id, scenario, passed, failure, base_url, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		passed := 0
		if r.Passed {
			passed = 1
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID,
			r.RunID,
			r.Scenario,
			passed,
			r.Failure,
			r.BaseURL,
			r.StartedAt.UTC().Format(timestampFormat),
			int64(r.Duration),
		); err != nil {
			return fmt.Errorf("failed to insert result %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}
	return nil
}

// Recent returns up to limit results, newest first. limit <= 0 uses a default of 20.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, run_id, scenario, passed, failure, base_url, started_at, duration_ns
		FROM probe_results ORDER BY started_at DESC, id ASC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query probe results: %w", err)
	}
	defer rows.Close()

	results := make([]Result, 0)
	for rows.Next() {
		var r Result
		var passed int
		var failure, baseURL sql.NullString
		var startedAt string
		var durationNs int64

		if err := rows.Scan(&r.ID, &r.RunID, &r.Scenario, &passed, &failure, &baseURL, &startedAt, &durationNs); err != nil {
			return nil, fmt.Errorf("failed to scan probe result row: %w", err)
		}

		r.Passed = passed == 1
		r.Failure = failure.String
		r.BaseURL = baseURL.String
		r.Duration = time.Duration(durationNs)
		r.StartedAt = parseTimestamp(startedAt, r.ID)

		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating probe result rows: %w", err)
	}
	return results, nil
}

// Close closes the underlying storage
func (s *SQLiteStore) Close() error {
	return s.storage.Close()
}

func parseTimestamp(ts, id string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		slog.Warn("failed to parse probe result timestamp", "id", id, "value", ts, "error", err)
		return time.Time{}
	}
	return t
}
