package apperrors

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrValidation marks input rejected before any I/O (unknown dialect, unsafe identifier).
	ErrValidation = errors.New("validation failed")

	// ErrConnection marks an unreachable target, rejected credentials or an exceeded connect timeout.
	ErrConnection = errors.New("connection failed")
)
