package store

import (
	"errors"
	"fmt"
)

// Predefined errors for the store layer. Implementations wrap them with
// fmt.Errorf("...: %w", ...) so callers classify with errors.Is.
var (
	// ErrNotFound indicates that no feedback entry has the requested ID.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation indicates missing or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidStatus indicates a status outside pending, reviewed and
	// resolved. It is reported only for an existing entry.
	ErrInvalidStatus = fmt.Errorf("%w: invalid status", ErrValidation)

	// ErrStorage indicates the backing file could not be read or written.
	ErrStorage = errors.New("storage failure")
)
