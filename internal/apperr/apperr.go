// Package apperr classifies failures into the three kinds the API edge
// cares about: bad input, insufficient permission, and a broken collaborator.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrPermission = errors.New("permission denied")
	ErrDependency = errors.New("dependency error")
)

// Validation wraps a bad-input failure. Surfaced to the caller verbatim.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Permission wraps an insufficient-rank rejection.
func Permission(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermission, fmt.Sprintf(format, args...))
}

// Dependency wraps a failed call to an external store or service.
func Dependency(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDependency, op, err)
}
