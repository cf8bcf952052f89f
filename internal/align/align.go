// Package align lines up two independently extracted event tables against
// the fixed canonical vocabulary for side-by-side laytime comparison.
package align

import (
	"context"
	"fmt"

	"github.com/laytimelab/sof-extractor/internal/sof"
)

// TableRow is one row of an event table as presented to the key finder.
// RowNum is 1-indexed and stable for the lifetime of the comparison.
type TableRow struct {
	Event  string `json:"event"`
	RowNum int    `json:"rowNum"`
}

// KeyFinder maps a table's rows onto the canonical vocabulary. A nil row
// number means the milestone does not appear in the table. Implementations
// return *AlignmentError when the underlying response is malformed.
type KeyFinder interface {
	FindKeys(ctx context.Context, table []TableRow) (map[sof.CanonicalKey]*int, error)
}

// AlignmentError means the key-finder response was malformed or missing its
// required structure. It is never retried: alignment runs once per document
// pair and a retry-and-hope policy is not justified for it.
type AlignmentError struct {
	Err error
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("alignment: %v", e.Err)
}

func (e *AlignmentError) Unwrap() error { return e.Err }

// Rows converts an event list into key-finder input, numbering rows from 1.
func Rows(events []sof.Event) []TableRow {
	rows := make([]TableRow, 0, len(events))
	for i, e := range events {
		rows = append(rows, TableRow{Event: e.Event, RowNum: i + 1})
	}
	return rows
}

// Align invokes the finder once per table and builds the comparison over the
// whole canonical vocabulary. Absence in either table yields a null row
// number, never an error; only a failed or malformed finder call aborts.
func Align(ctx context.Context, master, agent []TableRow, finder KeyFinder) (sof.Comparison, error) {
	masterKeys, err := finder.FindKeys(ctx, master)
	if err != nil {
		return nil, fmt.Errorf("master table: %w", err)
	}
	agentKeys, err := finder.FindKeys(ctx, agent)
	if err != nil {
		return nil, fmt.Errorf("agent table: %w", err)
	}

	cmp := make(sof.Comparison, len(sof.Vocabulary()))
	for _, key := range sof.Vocabulary() {
		cmp[key] = sof.ComparisonEntry{
			MasterSOFRowNum: masterKeys[key],
			AgentSOFRowNum:  agentKeys[key],
		}
	}
	return cmp, nil
}
