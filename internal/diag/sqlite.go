package diag

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	document       TEXT NOT NULL DEFAULT '',
	role           TEXT NOT NULL DEFAULT '',
	pages          INTEGER NOT NULL DEFAULT 0,
	batches        INTEGER NOT NULL DEFAULT 0,
	failed_batches INTEGER NOT NULL DEFAULT 0,
	events         INTEGER NOT NULL DEFAULT 0,
	started_at     TEXT NOT NULL,
	completed_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS failures (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	batch_index INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	raw_payload TEXT NOT NULL DEFAULT '',
	recorded_at TEXT NOT NULL
);
`

// SQLiteRecorder persists diagnostics to a local SQLite database so failed
// payloads survive the process and can be replayed against the parser.
type SQLiteRecorder struct {
	db *sqlx.DB
	mu sync.Mutex
}

func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteRecorder{db: db}, nil
}

func (r *SQLiteRecorder) Close() error { return r.db.Close() }

func (r *SQLiteRecorder) RecordFailure(ctx context.Context, f Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO failures (run_id, batch_index, kind, error, raw_payload, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.RunID, f.BatchIndex, f.Kind, f.Err, f.RawPayload, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		log.Printf("sof-diag sqlite failure insert failed: %v", err)
	}
}

func (r *SQLiteRecorder) RecordRun(ctx context.Context, s RunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, document, role, pages, batches, failed_batches, events, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.RunID, s.Document, s.Role, s.Pages, s.Batches, s.FailedBatches, s.Events,
		s.StartedAt.UTC().Format(time.RFC3339Nano), s.CompletedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		log.Printf("sof-diag sqlite run insert failed: %v", err)
	}
}

// Failures returns the recorded failures for a run, newest last.
func (r *SQLiteRecorder) Failures(ctx context.Context, runID string) ([]Failure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows, err := r.db.QueryxContext(ctx,
		`SELECT run_id, batch_index, kind, error, raw_payload FROM failures WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()
	var out []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.RunID, &f.BatchIndex, &f.Kind, &f.Err, &f.RawPayload); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
