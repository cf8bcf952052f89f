// Package parser turns a raw, possibly malformed model response into a
// validated event list. Repair stages are ordered from cheapest to most
// aggressive; the first stage that yields parseable JSON wins.
package parser

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/laytimelab/sof-extractor/internal/sof"
)

// Parse runs the repair chain over raw and returns the validated events.
// Fails with *ParseError only after every stage is exhausted, or with
// *ValidationError when the payload parses but violates the event schema.
func Parse(raw string) ([]sof.Event, error) {
	payload, stageErr := parseStages(raw)
	if stageErr != nil {
		return nil, stageErr
	}
	return finalize(payload)
}

func parseStages(raw string) (string, error) {
	// Stage 1: the response is what we asked for.
	if json.Valid([]byte(raw)) && gjson.Get(raw, "data").IsArray() {
		return raw, nil
	}

	// Stage 2: strip wrapping, then the standard repair chain.
	clean := isolateObject(stripCodeFences(raw))
	repaired := clean
	for _, fix := range []func(string) string{
		removeTrailingCommas,
		quoteUnquotedKeys,
		closeUnterminatedStrings,
		insertMissingCommas,
		unquoteStringifiedLiterals,
	} {
		repaired = fix(repaired)
	}
	if json.Valid([]byte(repaired)) {
		return repaired, nil
	}

	// Stage 3: aggressive pass on top of stage 2's output.
	aggressive := insertObjectCommas(normalizeSingleQuotedKeys(repaired))
	aggressive = removeTrailingCommas(aggressive)
	if json.Valid([]byte(aggressive)) {
		return aggressive, nil
	}

	// Stage 4: salvage whatever balanced objects survive inside the data
	// array and rebuild a clean envelope from exactly those.
	if rebuilt, ok := rebuildFromObjects(clean); ok {
		return rebuilt, nil
	}

	return "", &ParseError{Stage: "stage 4", Err: errors.New("no repair stage produced valid JSON")}
}

// rebuildFromObjects locates the data array region and re-assembles an
// envelope out of the individually valid objects found there.
func rebuildFromObjects(clean string) (string, bool) {
	region := dataArrayRegion(clean)
	if region == "" {
		return "", false
	}
	var valid []string
	for _, obj := range extractBalancedObjects(region) {
		if json.Valid([]byte(obj)) {
			valid = append(valid, obj)
		}
	}
	if len(valid) == 0 {
		return "", false
	}
	rebuilt := `{"data":[` + strings.Join(valid, ",") + `]}`
	if !json.Valid([]byte(rebuilt)) {
		return "", false
	}
	return rebuilt, true
}

func dataArrayRegion(s string) string {
	if arr := gjson.Get(s, "data"); arr.Exists() && arr.IsArray() {
		return arr.Raw
	}
	idx := strings.Index(s, `"data"`)
	if idx < 0 {
		return ""
	}
	open := strings.Index(s[idx:], "[")
	if open < 0 {
		return ""
	}
	start := idx + open
	end := strings.LastIndex(s, "]")
	if end <= start {
		// Truncated array: take everything after the bracket and let the
		// brace matcher salvage complete objects.
		return s[start:]
	}
	return s[start : end+1]
}

func finalize(payload string) ([]sof.Event, error) {
	var doc any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, &ParseError{Stage: "decode", Err: err}
	}
	if err := eventSchema.Validate(doc); err != nil {
		return nil, &ValidationError{Err: err}
	}
	var list sof.EventList
	if err := json.Unmarshal([]byte(payload), &list); err != nil {
		return nil, &ParseError{Stage: "decode", Err: err}
	}
	events := list.Data
	for i := range events {
		promoteDegenerateRange(&events[i])
	}
	return events, nil
}

// promoteDegenerateRange lifts timeFrame.start into time when the model
// represented a single timestamp as a range with no end.
func promoteDegenerateRange(e *sof.Event) {
	if e.Time == nil && e.TimeFrame != nil && e.TimeFrame.Start != nil && e.TimeFrame.End == nil {
		t := *e.TimeFrame.Start
		e.Time = &t
	}
}
