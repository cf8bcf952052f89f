// Package dates repairs the date fields of a merged event list: it infers the
// document's ambiguous date format, rewrites every date as YYYY-MM-DD, and
// fixes dates that OCR or the model dropped across batch boundaries. The
// whole package operates on the full merged list; running it per batch would
// lose the date context that legitimately spans batches.
package dates

import (
	"sort"
	"strconv"
	"time"

	"github.com/laytimelab/sof-extractor/internal/sof"
)

// Sort keys for events missing a date or time: both sort last.
const (
	noDateKey = "9999-99-99"
	noTimeKey = "9999"
)

// Normalize returns a corrected copy of events. It is pure and idempotent:
// normalizing an already-normalized list is a no-op.
func Normalize(events []sof.Event) []sof.Event {
	out := make([]sof.Event, len(events))
	copy(out, events)

	var raw []string
	for _, e := range out {
		if e.Date != nil {
			raw = append(raw, *e.Date)
		}
	}
	format := InferFormat(raw)

	for i := range out {
		if out[i].Date == nil {
			continue
		}
		if rebuilt, ok := rebuild(*out[i].Date, format); ok {
			out[i].Date = &rebuilt
		}
	}

	sortChronologically(out)
	propagateDates(out)
	rolloverMidnights(out)
	// Rollover can advance a date past its neighbours; a final sort keeps the
	// output canonical so a second pass is a no-op.
	sortChronologically(out)
	return out
}

func sortChronologically(events []sof.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		di, dj := dateKey(events[i]), dateKey(events[j])
		if di != dj {
			return di < dj
		}
		return timeKey(events[i]) < timeKey(events[j])
	})
}

func dateKey(e sof.Event) string {
	if e.Date == nil {
		return noDateKey
	}
	return *e.Date
}

func timeKey(e sof.Event) string {
	if t := e.EffectiveTime(); t != "" {
		return t
	}
	return noTimeKey
}

// propagateDates assigns each dateless event the most recently seen date in
// chronological order.
func propagateDates(events []sof.Event) {
	var last *string
	for i := range events {
		if events[i].Date != nil {
			last = events[i].Date
			continue
		}
		if last != nil {
			d := *last
			events[i].Date = &d
		}
	}
}

// rolloverMidnights advances the successor's date by one day when an adjacent
// same-date pair straddles midnight: the predecessor finishes late evening
// and the successor starts in the small hours, so the date change was simply
// not written down.
func rolloverMidnights(events []sof.Event) {
	for i := 1; i < len(events); i++ {
		prev, cur := &events[i-1], &events[i]
		if prev.Date == nil || cur.Date == nil || *prev.Date != *cur.Date {
			continue
		}
		prevMin, okPrev := minutes(prev.ClosingTime())
		curMin, okCur := minutes(cur.EffectiveTime())
		if !okPrev || !okCur {
			continue
		}
		if prevMin > 20*60 && curMin < 4*60 {
			if next, ok := nextDay(*cur.Date); ok {
				cur.Date = &next
			}
		}
	}
}

func minutes(hhmm string) (int, bool) {
	if len(hhmm) != 4 {
		return 0, false
	}
	h, err := strconv.Atoi(hhmm[:2])
	if err != nil || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(hhmm[2:])
	if err != nil || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func nextDay(date string) (string, bool) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, 0, 1).Format("2006-01-02"), true
}
