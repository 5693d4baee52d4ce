package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation references an unknown section or clip.
	ErrNotFound = errors.New("not found")

	// ErrLocked is returned when an operation would mutate a locked section or its clips.
	ErrLocked = errors.New("section is locked")

	// ErrReservedName is returned when a section name resolves to a reserved id.
	ErrReservedName = errors.New("reserved section name")
)

// ValidationError reports a malformed or insufficient payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
