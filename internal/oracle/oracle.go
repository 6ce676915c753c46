package oracle

import (
	"context"
	"time"
)

// Status tags how a correction attempt ended
type Status string

const (
	// StatusCorrected means the model returned a document in its content channel
	StatusCorrected Status = "corrected"

	// StatusReasoningFallback means content was empty and the reasoning channel was used
	StatusReasoningFallback Status = "reasoning_fallback"

	// StatusUnchanged means the model returned the input document as-is
	StatusUnchanged Status = "unchanged"

	// StatusFailed means the call failed and the input document is returned
	StatusFailed Status = "failed"

	// StatusTimeout means the call exceeded its deadline and the input document is returned
	StatusTimeout Status = "timeout"
)

// Request is everything the model needs to repair one document
type Request struct {
	// Document is the current candidate, in its source format
	Document string

	// Ruleset is the raw ruleset text
	Ruleset string

	// Diagnostics is the warning-filtered linter output
	Diagnostics string
}

// Correction is the outcome of a single oracle call.
//
// Document is always usable as the next candidate: on failure it is the
// request document verbatim and Err explains why.
type Correction struct {
	Document string
	Status   Status
	Err      error
	Duration time.Duration

	// Attempts counts HTTP calls including retries
	Attempts int

	// Raw is the unprocessed text the model returned, if any
	Raw string
}

// Degraded reports whether the correction fell back to the input document
// because of a failure.
func (c Correction) Degraded() bool {
	return c.Status == StatusFailed || c.Status == StatusTimeout
}

// Oracle proposes a corrected document for a failing lint run.
// Implementations never return errors; failures are tagged on the Correction.
type Oracle interface {
	Correct(ctx context.Context, req Request) Correction

	// Name identifies the backend (e.g. "openai", "anthropic")
	Name() string
}
