package diag

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "diag.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	t.Cleanup(func() { rec.Close() })
	return rec
}

func TestSQLiteRecorderFailures(t *testing.T) {
	rec := newTestRecorder(t)
	ctx := context.Background()

	rec.RecordFailure(ctx, Failure{
		RunID:      "run-1",
		BatchIndex: 0,
		Kind:       "parse",
		Err:        "no repair stage produced valid JSON",
		RawPayload: "sorry, no events found",
	})
	rec.RecordFailure(ctx, Failure{
		RunID:      "run-1",
		BatchIndex: 2,
		Kind:       "transport/rate_limit",
		Err:        "status code: 429",
	})
	rec.RecordFailure(ctx, Failure{RunID: "run-2", BatchIndex: 0, Kind: "validation"})

	got, err := rec.Failures(ctx, "run-1")
	if err != nil {
		t.Fatalf("Failures: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 failures for run-1, got %d", len(got))
	}
	if got[0].Kind != "parse" || got[0].RawPayload != "sorry, no events found" {
		t.Fatalf("first failure: %+v", got[0])
	}
	if got[1].BatchIndex != 2 || got[1].Kind != "transport/rate_limit" {
		t.Fatalf("second failure: %+v", got[1])
	}
}

func TestSQLiteRecorderRunUpsert(t *testing.T) {
	rec := newTestRecorder(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Minute)
	rec.RecordRun(ctx, RunSummary{RunID: "run-1", Document: "sof.pdf", Pages: 5, Batches: 3, StartedAt: started, CompletedAt: time.Now()})
	rec.RecordRun(ctx, RunSummary{RunID: "run-1", Document: "sof.pdf", Pages: 5, Batches: 3, FailedBatches: 1, StartedAt: started, CompletedAt: time.Now()})

	var count, failed int
	if err := rec.db.Get(&count, `SELECT COUNT(*) FROM runs WHERE run_id = ?`, "run-1"); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if count != 1 {
		t.Fatalf("replay created duplicate rows: %d", count)
	}
	if err := rec.db.Get(&failed, `SELECT failed_batches FROM runs WHERE run_id = ?`, "run-1"); err != nil {
		t.Fatalf("read run: %v", err)
	}
	if failed != 1 {
		t.Fatalf("failed_batches = %d, want 1", failed)
	}
}

func TestSQLiteRecorderEmptyRun(t *testing.T) {
	rec := newTestRecorder(t)
	got, err := rec.Failures(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Failures: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no failures, got %+v", got)
	}
}
