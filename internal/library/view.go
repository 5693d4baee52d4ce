package library

import (
	"context"
	"sort"

	"github.com/cliptray/cliptray/internal/search"
	"github.com/cliptray/cliptray/internal/store"
	"github.com/cliptray/cliptray/pkg/protocol"
)

// Select adds id to the selection.
func (l *Library) Select(ctx context.Context, id string) {
	l.mu.Lock()
	l.selection[id] = true
	sel := l.selectionLocked()
	l.mu.Unlock()
	l.emit(ctx, protocol.EventStateChanged, map[string]any{"selection": sel})
}

// ToggleSelect flips id in the selection and reports whether it is now selected.
func (l *Library) ToggleSelect(ctx context.Context, id string) bool {
	l.mu.Lock()
	on := !l.selection[id]
	if on {
		l.selection[id] = true
	} else {
		delete(l.selection, id)
	}
	sel := l.selectionLocked()
	l.mu.Unlock()
	l.emit(ctx, protocol.EventStateChanged, map[string]any{"selection": sel})
	return on
}

// ClearSelection empties the selection.
func (l *Library) ClearSelection(ctx context.Context) {
	l.mu.Lock()
	clear(l.selection)
	l.mu.Unlock()
	l.emit(ctx, protocol.EventStateChanged, map[string]any{"selection": []string{}})
}

// Selection returns the selected clip ids, sorted.
func (l *Library) Selection() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selectionLocked()
}

func (l *Library) selectionLocked() []string {
	ids := make([]string, 0, len(l.selection))
	for id := range l.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetFilters sets the free-text search and the comma-separated tag filter.
func (l *Library) SetFilters(ctx context.Context, searchText, tagFilter string) {
	l.mu.Lock()
	l.searchText = searchText
	l.tagFilter = tagFilter
	l.mu.Unlock()
	l.emit(ctx, protocol.EventStateChanged, map[string]any{"searchText": searchText, "tagFilter": tagFilter})
}

// SetSortMode sets the list order (newest, oldest, title, default).
func (l *Library) SetSortMode(ctx context.Context, mode string) {
	switch mode {
	case search.SortNewest, search.SortOldest, search.SortTitle:
	default:
		mode = search.SortDefault
	}
	l.mu.Lock()
	l.sortMode = mode
	l.mu.Unlock()
	l.emit(ctx, protocol.EventStateChanged, map[string]any{"sortMode": mode})
}

// VisibleClips returns the clips of the active section that pass the
// current filters, in the current sort mode.
func (l *Library) VisibleClips() []store.Clip {
	l.mu.Lock()
	criteria := search.Criteria{
		SectionID:  l.sections.ActiveID(),
		SearchText: l.searchText,
		TagFilter:  l.tagFilter,
	}
	mode := l.sortMode
	idx := l.index
	l.mu.Unlock()

	return l.Query(criteria, mode, idx)
}

// Query filters and sorts clips without touching the view state. A nil idx
// uses the library's current index.
func (l *Library) Query(c search.Criteria, mode string, idx search.Index) []store.Clip {
	if idx == nil {
		l.mu.Lock()
		idx = l.index
		l.mu.Unlock()
	}
	clips := search.Filter(l.clips.List(), idx, c)

	var sec *store.Section
	if c.SectionID != "" && c.SectionID != store.AllSectionsID {
		sec, _ = l.sections.Get(c.SectionID)
	}
	return search.Sort(clips, mode, sec)
}
