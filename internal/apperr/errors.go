// Package apperr defines the error kinds shared across packages.
// Callers classify failures with errors.Is against these values.
package apperr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidReference = errors.New("invalid reference")
)

// IsPrecondition reports whether err is a recoverable rejection rather than
// a caller bug or an infrastructure failure.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadyExists)
}
