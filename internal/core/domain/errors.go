package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrExtraction marks an unreadable, encrypted or structurally corrupt
	// source document. Per-document, non-fatal at build level.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmptyBuild means no document in a build could be processed.
	ErrEmptyBuild = errors.New("no documents could be processed")

	// ErrEmptyQuery means the query contains no usable tokens.
	ErrEmptyQuery = errors.New("query has no usable tokens")

	// ErrGenerationUnavailable means the generation service is unreachable
	// or timed out. Surfaced to the caller, never retried inside the core.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	ErrInvalidInput = errors.New("invalid input")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
