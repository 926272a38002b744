package domain

import (
	"errors"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingSection indicates the profile lacks a required top-level section.
	ErrMissingSection = errors.New("missing required section")

	// ErrNothingToIndex indicates a profile has neither pre-authored chunks
	// nor any experience or project entries.
	ErrNothingToIndex = errors.New("nothing to index")

	// ErrEmptyContent indicates a chunk without text content.
	ErrEmptyContent = errors.New("empty chunk content")

	// Store Errors.

	// ErrStoreUnavailable indicates a store could not be reached.
	// Fatal to the whole run.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrVectorBatchFailed indicates a vector upsert batch was rejected.
	// Partial indexing is worse than none, so the migration stops.
	ErrVectorBatchFailed = errors.New("vector batch upsert failed")

	// ErrVectorStoreUnconfigured indicates no vector provider settings were found.
	ErrVectorStoreUnconfigured = errors.New("vector store not configured")

	// ErrUnsupportedProvider indicates an unknown store driver or vector provider.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrRateLimited indicates the vector service rejected a request for throughput.
	ErrRateLimited = errors.New("rate limited")
)

// ValidationError reports an input problem affecting a single unit of work.
// It wraps ErrInvalidInput, or a more specific sentinel when Err is set.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed")
	if e.Field != "" {
		b.WriteString(" for ")
		b.WriteString(e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the sentinel this validation error belongs to.
func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// Is reports ErrInvalidInput for every validation error, regardless of Err.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
