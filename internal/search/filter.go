package search

import (
	"strings"

	"github.com/cliptray/cliptray/internal/normalize"
	"github.com/cliptray/cliptray/internal/store"
)

// Criteria selects clips for a view.
type Criteria struct {
	// SectionID limits results to one section; "" and "all" match everything.
	SectionID string
	// SearchText is a case-insensitive substring matched against the index.
	SearchText string
	// TagFilter is a comma-separated list; every tag must be present.
	TagFilter string
}

// Filter returns the clips matching c, preserving input order. Clips missing
// from idx are indexed on the fly.
func Filter(clips []store.Clip, idx Index, c Criteria) []store.Clip {
	query := strings.ToLower(strings.TrimSpace(c.SearchText))
	wanted := normalize.SplitTags(strings.ToLower(c.TagFilter))
	section := strings.TrimSpace(c.SectionID)

	out := make([]store.Clip, 0, len(clips))
	for _, clip := range clips {
		if section != "" && section != store.AllSectionsID && clip.SectionID != section {
			continue
		}
		if query != "" && !strings.Contains(entryFor(idx, clip), query) {
			continue
		}
		if len(wanted) > 0 && !hasAllTags(clip.Tags, wanted) {
			continue
		}
		out = append(out, clip)
	}
	return out
}

func entryFor(idx Index, c store.Clip) string {
	if e, ok := idx[c.ID]; ok {
		return e
	}
	return indexEntry(c)
}

// hasAllTags reports whether tags contains every lowercase tag in wanted.
func hasAllTags(tags, wanted []string) bool {
	have := make(map[string]bool, len(tags))
	for _, t := range tags {
		have[strings.ToLower(strings.TrimSpace(t))] = true
	}
	for _, w := range wanted {
		if !have[w] {
			return false
		}
	}
	return true
}
