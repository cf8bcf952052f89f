package parser

import "fmt"

// ParseError means every repair stage was exhausted without producing
// parseable JSON. It is retried at the batch level.
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed after %s: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError means the response parsed but violates the event schema.
// It is a hard batch failure, distinct from ParseError so callers can log the
// offending payload for diagnosis.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("event validation: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
