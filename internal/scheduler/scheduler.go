// Package scheduler partitions a document's pages into bounded batches, runs
// them concurrently against an extraction function, and merges results back
// into page order. Failed batches are replayed one at a time with exponential
// backoff so a burst of rate-limit errors never turns into a retry storm.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/laytimelab/sof-extractor/internal/sof"
)

// BatchFn performs one extraction call for a batch and returns its events.
// Any error marks the batch failed for this attempt; the scheduler owns all
// retry policy.
type BatchFn func(ctx context.Context, batch sof.Batch) ([]sof.Event, error)

// Options bound the scheduler's concurrency and retry behavior.
type Options struct {
	BatchSize      int
	MaxConcurrency int
	MaxRetries     int
	BaseDelay      time.Duration
}

// Result is the in-order merge of every successful batch plus a count of
// batches abandoned after exhausting retries. A nonzero FailedBatches means
// the event list is best-effort, not complete.
type Result struct {
	Events        []sof.Event
	FailedBatches int
}

type ticket struct {
	batch    sof.Batch
	attempts int
}

// Partition splits pages into contiguous batches of at most size pages; the
// last batch may be short. Concatenating the batches in index order
// reconstructs the original page order exactly.
func Partition(pages []sof.Page, size int) []sof.Batch {
	if size < 1 {
		size = 1
	}
	var batches []sof.Batch
	for start := 0; start < len(pages); start += size {
		end := start + size
		if end > len(pages) {
			end = len(pages)
		}
		batches = append(batches, sof.Batch{Index: len(batches), Pages: pages[start:end]})
	}
	return batches
}

// Parallelism is the number of concurrent extraction calls for the given
// limits: maxConcurrency is a page budget, so wider batches get fewer
// simultaneous calls, never fewer than one.
func Parallelism(maxConcurrency, batchSize int) int {
	if batchSize < 1 {
		batchSize = 1
	}
	p := maxConcurrency / batchSize
	if p < 1 {
		p = 1
	}
	return p
}

// Run extracts every batch and merges the results in batch order. Each
// batch's result lands in a write-once slot indexed by batch, so merge order
// is deterministic no matter which attempt succeeded. Run only returns an
// error when ctx is cancelled; individual batch failures degrade the result
// instead of aborting it.
func Run(ctx context.Context, pages []sof.Page, opts Options, extract BatchFn) (Result, error) {
	batches := Partition(pages, opts.BatchSize)
	slots := make([][]sof.Event, len(batches))
	filled := make([]bool, len(batches))

	failed := make(chan ticket, len(batches))
	retry := newRetrier(opts, extract)
	var retryWG sync.WaitGroup
	retryWG.Add(1)
	go func() {
		defer retryWG.Done()
		retry.drain(ctx, failed, slots, filled)
	}()

	parallelism := Parallelism(opts.MaxConcurrency, opts.BatchSize)
	for start := 0; start < len(batches); start += parallelism {
		end := start + parallelism
		if end > len(batches) {
			end = len(batches)
		}
		var waveWG sync.WaitGroup
		for _, b := range batches[start:end] {
			waveWG.Add(1)
			go func(b sof.Batch) {
				defer waveWG.Done()
				events, err := extract(ctx, b)
				if err != nil {
					log.Printf("sof-extract batch=%d attempt=1 failed err=%v", b.Index, err)
					failed <- ticket{batch: b, attempts: 1}
					return
				}
				slots[b.Index] = events
				filled[b.Index] = true
			}(b)
		}
		waveWG.Wait()
		if ctx.Err() != nil {
			break
		}
	}
	close(failed)
	retryWG.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{FailedBatches: retry.abandoned}
	for i := range slots {
		if filled[i] {
			res.Events = append(res.Events, slots[i]...)
		}
	}
	return res, nil
}
