package pipeline

import (
	"errors"
	"fmt"
)

// Step names the stage of a merge that failed.
type Step string

const (
	StepValidate Step = "validate"
	StepFetch    Step = "fetch"
	StepParse    Step = "parse"
	StepPlan     Step = "plan"
	StepAssemble Step = "assemble"
	StepStore    Step = "store"
)

// StepError wraps a merge failure with the step it happened in and, where
// one document is to blame, its source URL.
type StepError struct {
	Step Step
	URL  string
	Err  error
}

func (e *StepError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("%s %s: %v", e.Step, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ValidationError rejects a request before any document is fetched.
type ValidationError struct {
	Index int // position of the offending descriptor, -1 for the request itself
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("document %d: %v", e.Index, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ParseError reports a fetched document whose page structure could not be
// read or rewritten.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LayoutError means the assembled output disagrees with the planned
// pagination. It indicates a defect, not bad input.
type LayoutError struct {
	Detail string
}

func (e *LayoutError) Error() string {
	return "layout mismatch: " + e.Detail
}

var errNoDocuments = errors.New("no documents")

// StepOf reports the step and source URL recorded on err, if any.
func StepOf(err error) (Step, string) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, se.URL
	}
	return "", ""
}

func stepErr(step Step, url string, err error) error {
	return &StepError{Step: step, URL: url, Err: err}
}
