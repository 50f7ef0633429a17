// Package errs defines the error kinds shared by the version-control core.
// Callers match them with errors.Is; packages wrap them with fmt.Errorf
// to add context.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an unknown file, version, branch or conflict id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState reports an operation disallowed in the current status,
	// such as deleting an active branch or the current version.
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation reports an operation whose position or length falls
	// outside the document bounds.
	ErrValidation = errors.New("validation failed")
)

// NotFound wraps ErrNotFound with a formatted message.
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// InvalidState wraps ErrInvalidState with a formatted message.
func InvalidState(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidState)...)
}

// Validation wraps ErrValidation with a formatted message.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}
