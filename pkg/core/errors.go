package core

import "errors"

// Error taxonomy. Absence of a note on targeted updates is not an error:
// those operations return a nil note instead.
var (
	// ErrBadFormat marks an import snapshot that parsed but lacks the
	// expected note collection shape.
	ErrBadFormat = errors.New("snapshot missing note collection")

	// ErrParse marks input that is not well-formed serialized data.
	ErrParse = errors.New("malformed snapshot data")

	// ErrTimeout marks a bounded storage lookup that did not resolve in
	// time. Callers treat it as a soft cache miss, not a hard failure.
	ErrTimeout = errors.New("storage lookup timed out")
)
