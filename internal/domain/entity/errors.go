package entity

import "errors"

var (
	// ErrNotFound is returned by repositories when an update or delete matched no row.
	// Lookups return (nil, nil) instead.
	ErrNotFound = errors.New("entity not found")

	// ErrValidationFailed matches every *ValidationError through errors.Is.
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError reports a rejected field. Its message is safe to show to
// clients, so it never includes the submitted value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
