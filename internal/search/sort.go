package search

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/cliptray/cliptray/internal/store"
)

// Sort modes.
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortTitle   = "title"
	SortDefault = "default"
)

// Sort returns a sorted copy of clips. Unknown modes behave like SortDefault.
// The default mode follows section.ClipOrder: listed clips first in listed
// order, the rest after them in their original relative order. A nil section
// leaves default order untouched.
func Sort(clips []store.Clip, mode string, section *store.Section) []store.Clip {
	out := append([]store.Clip(nil), clips...)

	switch mode {
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return Timestamp(out[i]) > Timestamp(out[j]) })
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool { return Timestamp(out[i]) < Timestamp(out[j]) })
	case SortTitle:
		col := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Title, out[j].Title) < 0
		})
	default:
		if section == nil || len(section.ClipOrder) == 0 {
			return out
		}
		rank := make(map[string]int, len(section.ClipOrder))
		for i, id := range section.ClipOrder {
			rank[id] = i
		}
		sort.SliceStable(out, func(i, j int) bool {
			ri, iListed := rank[out[i].ID]
			rj, jListed := rank[out[j].ID]
			switch {
			case iListed && jListed:
				return ri < rj
			case iListed:
				return true
			default:
				return false
			}
		})
	}
	return out
}

// Timestamp is the most specific time known for a clip:
// updatedAt, then capturedAt, then createdAt; 0 when none is set.
func Timestamp(c store.Clip) int64 {
	for _, ts := range []int64{c.UpdatedAt, c.CapturedAt, c.CreatedAt} {
		if ts > 0 {
			return ts
		}
	}
	return 0
}

// MoveBefore returns a copy of order with id moved immediately before
// beforeID, or to the end when beforeID is empty, equal to id, or absent.
func MoveBefore(order []string, id, beforeID string) []string {
	out := make([]string, 0, len(order)+1)
	for _, o := range order {
		if o != id {
			out = append(out, o)
		}
	}
	if beforeID == "" || beforeID == id {
		return append(out, id)
	}
	for i, o := range out {
		if o == beforeID {
			out = append(out[:i], append([]string{id}, out[i:]...)...)
			return out
		}
	}
	return append(out, id)
}
