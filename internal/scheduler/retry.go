package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/laytimelab/sof-extractor/internal/sof"
)

// retrier replays failed batches strictly one at a time. Serial replay is
// deliberate: the usual cause of a failed wave is a rate limit, and retrying
// the whole wave concurrently would reproduce the burst that tripped it.
type retrier struct {
	opts      Options
	extract   BatchFn
	abandoned int
}

func newRetrier(opts Options, extract BatchFn) *retrier {
	return &retrier{opts: opts, extract: extract}
}

func (r *retrier) drain(ctx context.Context, failed <-chan ticket, slots [][]sof.Event, filled []bool) {
	for t := range failed {
		r.replay(ctx, t, slots, filled)
	}
}

// replay retries one ticket until it succeeds or exceeds MaxRetries. A
// ticket's attempts start at 1 (the failed first pass); each retry waits
// BaseDelay * 2^(attempts-1) before re-invoking extract.
func (r *retrier) replay(ctx context.Context, t ticket, slots [][]sof.Event, filled []bool) {
	delays := backoff.NewExponentialBackOff()
	delays.InitialInterval = r.opts.BaseDelay
	delays.Multiplier = 2
	delays.RandomizationFactor = 0
	delays.MaxInterval = r.opts.BaseDelay << 30 // never cap below the computed delay

	for t.attempts <= r.opts.MaxRetries {
		if !sleep(ctx, delays.NextBackOff()) {
			r.abandoned++
			return
		}
		events, err := r.extract(ctx, t.batch)
		if err == nil {
			slots[t.batch.Index] = events
			filled[t.batch.Index] = true
			return
		}
		t.attempts++
		log.Printf("sof-extract batch=%d attempt=%d failed err=%v", t.batch.Index, t.attempts, err)
	}
	log.Printf("sof-extract batch=%d abandoned after %d attempts", t.batch.Index, t.attempts)
	r.abandoned++
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
