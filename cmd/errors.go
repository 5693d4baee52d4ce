package cmd

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/cliptray/cliptray/internal/store"
)

// formatError turns library and I/O errors into a short message for the
// terminal. Joined errors are reported one line each.
func formatError(err error) string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		parts := joined.Unwrap()
		lines := make([]string, 0, len(parts))
		for _, e := range parts {
			lines = append(lines, formatError(e))
		}
		return strings.Join(lines, "\n")
	}

	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		return "Invalid input: " + verr.Error()
	case errors.Is(err, store.ErrReservedName):
		return "That name is reserved. Pick another section name."
	case errors.Is(err, store.ErrLocked):
		return "Locked: " + err.Error() + ". Unlock the section first (cliptray sections unlock <id>)."
	case errors.Is(err, store.ErrNotFound):
		return "Not found: " + err.Error()
	}

	raw := err.Error()
	lower := strings.ToLower(raw)

	if containsAny(lower, "address already in use", "bind:") {
		return "The ingestion port is already in use. Is another cliptray running? Change server.port in the config."
	}
	if containsAny(lower, "permission denied", "access is denied", "read-only file system") {
		return "Permission denied: " + raw
	}
	if containsAny(lower, "no space left", "disk full") {
		return "Disk full: " + raw
	}
	if containsAny(lower, "timeout", "timed out", "deadline exceeded") {
		return "Operation timed out. Please try again."
	}

	slog.Debug("unclassified error", "error", raw)
	return raw
}

// containsAny returns true if s contains any of the given substrings.
func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
