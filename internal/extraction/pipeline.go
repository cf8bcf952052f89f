package extraction

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/laytimelab/sof-extractor/internal/dates"
	"github.com/laytimelab/sof-extractor/internal/diag"
	"github.com/laytimelab/sof-extractor/internal/parser"
	"github.com/laytimelab/sof-extractor/internal/scheduler"
	"github.com/laytimelab/sof-extractor/internal/sof"
)

// Result is one document's extraction outcome. FailedBatches > 0 signals a
// degraded, best-effort event list; the caller decides whether that is
// acceptable.
type Result struct {
	RunID         string           `json:"run_id"`
	Document      string           `json:"document"`
	Role          sof.DocumentRole `json:"role"`
	Events        []sof.Event      `json:"events"`
	Batches       int              `json:"batches"`
	FailedBatches int              `json:"failed_batches"`
	StartedAt     time.Time        `json:"started_at"`
	CompletedAt   time.Time        `json:"completed_at"`
}

// Pipeline wires the extraction client, the resilient parser, the batch
// scheduler and the date normalizer into one document-level operation.
type Pipeline struct {
	client   Client
	recorder diag.Recorder
	opts     scheduler.Options
}

func NewPipeline(client Client, recorder diag.Recorder, opts scheduler.Options) *Pipeline {
	if recorder == nil {
		recorder = diag.NopRecorder{}
	}
	return &Pipeline{client: client, recorder: recorder, opts: opts}
}

// Run extracts the whole document. It never fails on a bad batch: transport,
// parse and validation failures all consume that batch's retry budget and, if
// exhausted, the batch contributes zero events. Only context cancellation
// aborts the run.
func (p *Pipeline) Run(ctx context.Context, doc sof.Document) (Result, error) {
	res := Result{
		RunID:     uuid.NewString(),
		Document:  doc.Name,
		Role:      doc.Role,
		StartedAt: time.Now(),
	}
	res.Batches = len(scheduler.Partition(doc.Pages, p.opts.BatchSize))

	sched, err := scheduler.Run(ctx, doc.Pages, p.opts, p.batchFn(doc, res.RunID))
	if err != nil {
		return res, err
	}

	res.Events = dates.Normalize(sched.Events)
	res.FailedBatches = sched.FailedBatches
	res.CompletedAt = time.Now()

	p.recorder.RecordRun(ctx, diag.RunSummary{
		RunID:         res.RunID,
		Document:      doc.Name,
		Role:          string(doc.Role),
		Pages:         len(doc.Pages),
		Batches:       res.Batches,
		FailedBatches: res.FailedBatches,
		Events:        len(res.Events),
		StartedAt:     res.StartedAt,
		CompletedAt:   res.CompletedAt,
	})
	if res.FailedBatches > 0 {
		log.Printf("sof-extract run=%s document=%q degraded failed_batches=%d/%d",
			res.RunID, doc.Name, res.FailedBatches, res.Batches)
	}
	return res, nil
}

// batchFn adapts one extraction call into the scheduler's contract: call the
// model, repair-parse the response, and stamp provenance. A prior failed
// attempt's events are discarded wholesale, never appended to.
func (p *Pipeline) batchFn(doc sof.Document, runID string) scheduler.BatchFn {
	return func(ctx context.Context, batch sof.Batch) ([]sof.Event, error) {
		raw, err := p.client.Extract(ctx, batch, doc)
		if err != nil {
			var te *TransportError
			if errors.As(err, &te) {
				p.recorder.RecordFailure(ctx, diag.Failure{
					RunID:      runID,
					BatchIndex: batch.Index,
					Kind:       "transport/" + string(classifyTransportError(te.Err)),
					Err:        err.Error(),
				})
			}
			return nil, err
		}

		events, err := parser.Parse(raw)
		if err != nil {
			kind := "parse"
			var ve *parser.ValidationError
			if errors.As(err, &ve) {
				kind = "validation"
			}
			// Keep the offending payload: repair-stage failures are only
			// diagnosable from the raw text.
			p.recorder.RecordFailure(ctx, diag.Failure{
				RunID:      runID,
				BatchIndex: batch.Index,
				Kind:       kind,
				Err:        err.Error(),
				RawPayload: raw,
			})
			return nil, err
		}

		sources := make([]sof.SourcePage, 0, len(batch.Pages))
		for _, pg := range batch.Pages {
			sources = append(sources, sof.SourcePage{Page: pg.Number, Role: doc.Role})
		}
		for i := range events {
			events[i].SourcePages = append([]sof.SourcePage(nil), sources...)
		}
		return events, nil
	}
}
