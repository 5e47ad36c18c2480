package domain

import "errors"

// Error kinds callers can match with errors.Is. Components wrap these with
// enough context to debug; the orchestrator and HTTP layer only ever branch
// on the kind.
var (
	// ErrInvalidInput covers bad file types and malformed session ids.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound covers missing source files and missing index artifacts.
	ErrNotFound = errors.New("not found")

	// ErrNoIndexAvailable is returned for queries issued before any
	// document has been ingested.
	ErrNoIndexAvailable = errors.New("no index available")

	// ErrGenerationFailed wraps generation collaborator errors and timeouts.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrInconsistentState signals that the document registry and the
	// persisted index disagree after a restart. It is surfaced, never
	// silently repaired.
	ErrInconsistentState = errors.New("inconsistent state")

	// ErrNotBuilt is returned by index operations that require a built or
	// loaded index.
	ErrNotBuilt = errors.New("index not built")

	// ErrEmptyInput is returned when an index build is attempted with zero
	// chunks.
	ErrEmptyInput = errors.New("empty input")
)
