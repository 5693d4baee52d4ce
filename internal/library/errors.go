package library

import (
	"fmt"

	"github.com/cliptray/cliptray/internal/store"
)

func sectionNotFound(id string) error {
	return fmt.Errorf("section %q: %w", id, store.ErrNotFound)
}

func clipNotFound(id string) error {
	return fmt.Errorf("clip %q: %w", id, store.ErrNotFound)
}

func lockedClip(id, sectionID string) error {
	return fmt.Errorf("clip %q in section %q: %w", id, sectionID, store.ErrLocked)
}
