// Package diag collects extraction diagnostics: per-batch failures with the
// offending raw payload, and per-run summaries. The core never touches the
// filesystem directly; callers inject whichever recorder they want.
package diag

import (
	"context"
	"log"
	"time"
)

// Failure is one failed batch attempt worth keeping for diagnosis.
type Failure struct {
	RunID      string
	BatchIndex int
	Kind       string
	Err        string
	RawPayload string
}

// RunSummary is the caller-visible account of one document run, including
// the degraded-result signal.
type RunSummary struct {
	RunID         string
	Document      string
	Role          string
	Pages         int
	Batches       int
	FailedBatches int
	Events        int
	StartedAt     time.Time
	CompletedAt   time.Time
}

// Recorder receives diagnostics. Implementations must tolerate being called
// from concurrent batch workers.
type Recorder interface {
	RecordFailure(ctx context.Context, f Failure)
	RecordRun(ctx context.Context, s RunSummary)
}

// NopRecorder drops everything.
type NopRecorder struct{}

func (NopRecorder) RecordFailure(context.Context, Failure) {}
func (NopRecorder) RecordRun(context.Context, RunSummary)  {}

// LogRecorder writes diagnostics to the standard logger. Raw payloads are
// truncated to keep log lines usable.
type LogRecorder struct{}

func (LogRecorder) RecordFailure(_ context.Context, f Failure) {
	raw := f.RawPayload
	if len(raw) > 2000 {
		raw = raw[:2000] + "...(truncated)"
	}
	log.Printf("sof-diag run=%s batch=%d kind=%s err=%s raw=%q", f.RunID, f.BatchIndex, f.Kind, f.Err, raw)
}

func (LogRecorder) RecordRun(_ context.Context, s RunSummary) {
	log.Printf("sof-diag run=%s document=%q batches=%d failed=%d events=%d elapsed=%s",
		s.RunID, s.Document, s.Batches, s.FailedBatches, s.Events,
		s.CompletedAt.Sub(s.StartedAt).Round(time.Millisecond))
}
