package schema

import "errors"

// Engine-level failure taxonomy. All three are surfaced as typed, recoverable
// signals; the CLI layer maps them to messages and exit codes.
var (
	// ErrInvalidRecord marks malformed attribution input (non-positive line
	// count or start line below 1). Fatal: partial aggregates would mislead.
	ErrInvalidRecord = errors.New("invalid attribution record")

	// ErrInvalidWeight marks a malformed weight spec. Caught at configuration
	// time, before any record is processed.
	ErrInvalidWeight = errors.New("invalid weight configuration")

	// ErrEmptyInput signals a file with no attributable history. Not fatal:
	// callers render an empty ranking and exit zero.
	ErrEmptyInput = errors.New("no attribution records")
)
