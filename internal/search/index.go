// Package search builds the clip search index and implements the list
// filters and sort modes used by every clip view.
package search

import (
	"strings"

	"github.com/cliptray/cliptray/internal/store"
)

// Index maps clip id to the lowercase text searched by free-text queries.
type Index map[string]string

// BuildIndex indexes title, text, notes and tags of every clip.
func BuildIndex(clips []store.Clip) Index {
	idx := make(Index, len(clips))
	for _, c := range clips {
		idx[c.ID] = indexEntry(c)
	}
	return idx
}

func indexEntry(c store.Clip) string {
	parts := []string{c.Title, c.Text, c.Notes, strings.Join(c.Tags, " ")}
	return strings.ToLower(strings.Join(parts, " "))
}
