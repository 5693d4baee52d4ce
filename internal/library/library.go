// Package library is the process-owned application state. It funnels every
// UI, CLI and ingestion mutation through the section and clip stores, keeps
// the derived search index and view state, mirrors saved clips and
// broadcasts change events.
package library

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cliptray/cliptray/internal/bus"
	"github.com/cliptray/cliptray/internal/search"
	"github.com/cliptray/cliptray/internal/store"
	"github.com/cliptray/cliptray/pkg/protocol"
)

// Mirror writes best-effort copies of clips into section export folders.
type Mirror interface {
	Write(ctx context.Context, clip store.Clip, sections []store.Section) (string, error)
	Remove(ctx context.Context, clip store.Clip, sections []store.Section) error
}

// Options configures a Library. Every field is optional.
type Options struct {
	Mirror        Mirror
	Bus           *bus.Bus
	MirrorTimeout time.Duration // default 10s
}

// Library owns the stores for the lifetime of the process. Construct one per
// process and share it between the ingestion server and the desktop shell.
type Library struct {
	sections store.SectionStore
	clips    store.ClipStore
	settings store.SettingsStore

	mirror        Mirror
	bus           *bus.Bus
	mirrorTimeout time.Duration
	now           func() time.Time

	mu         sync.Mutex
	index      search.Index
	selection  map[string]bool
	searchText string
	tagFilter  string
	sortMode   string
}

// New creates a library over loaded stores.
func New(stores *store.Stores, opts Options) *Library {
	l := &Library{
		sections:      stores.Sections,
		clips:         stores.Clips,
		settings:      stores.Settings,
		mirror:        opts.Mirror,
		bus:           opts.Bus,
		mirrorTimeout: opts.MirrorTimeout,
		now:           time.Now,
		selection:     make(map[string]bool),
		sortMode:      search.SortDefault,
	}
	if l.mirrorTimeout <= 0 {
		l.mirrorTimeout = 10 * time.Second
	}
	l.reindex()

	slog.Info("library loaded", "sections", len(l.sections.List()), "clips", l.clips.Count())
	return l
}

// Snapshot is the full state handed to the UI on load.
type Snapshot struct {
	Sections    []store.Section `json:"sections"`
	Clips       []store.Clip    `json:"clips"`
	ActiveTabID string          `json:"activeTabId"`
	Selection   []string        `json:"selection"`
	SearchText  string          `json:"searchText"`
	TagFilter   string          `json:"tagFilter"`
	SortMode    string          `json:"sortMode"`
}

// ListAll returns every section and clip plus the view state.
func (l *Library) ListAll() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Sections:    l.sections.List(),
		Clips:       l.clips.List(),
		ActiveTabID: l.sections.ActiveID(),
		Selection:   l.selectionLocked(),
		SearchText:  l.searchText,
		TagFilter:   l.tagFilter,
		SortMode:    l.sortMode,
	}
}

// Sections returns the sections in display order.
func (l *Library) Sections() []store.Section { return l.sections.List() }

// Clips returns every clip in insertion order.
func (l *Library) Clips() []store.Clip { return l.clips.List() }

// Section returns one section.
func (l *Library) Section(id string) (*store.Section, bool) { return l.sections.Get(id) }

// Clip returns one clip.
func (l *Library) Clip(id string) (*store.Clip, bool) { return l.clips.Get(id) }

// Counts returns the number of clips and sections.
func (l *Library) Counts() (clips, sections int) {
	return l.clips.Count(), len(l.sections.List())
}

// GetSettings returns the free-form UI settings.
func (l *Library) GetSettings() map[string]any { return l.settings.Get() }

// SaveSettings replaces the UI settings document.
func (l *Library) SaveSettings(ctx context.Context, settings map[string]any) error {
	if err := l.settings.Save(settings); err != nil {
		return err
	}
	l.emit(ctx, protocol.EventStateChanged, map[string]any{"settings": true})
	return nil
}

func (l *Library) reindex() {
	idx := search.BuildIndex(l.clips.List())
	l.mu.Lock()
	l.index = idx
	l.mu.Unlock()
}

func (l *Library) emit(ctx context.Context, name string, payload any) {
	if l.bus == nil {
		return
	}
	l.bus.Broadcast(bus.Event{Name: name, Payload: payload, Source: store.SourceFromContext(ctx)})
}

// mirrorClip writes the clip mirror; failures are logged only.
func (l *Library) mirrorClip(ctx context.Context, clip store.Clip) {
	if l.mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.mirrorTimeout)
	defer cancel()
	if _, err := l.mirror.Write(ctx, clip, l.sections.List()); err != nil {
		slog.Warn("export: mirror write failed", "clip", clip.ID, "section", clip.SectionID, "error", err)
	}
}

func (l *Library) unmirrorClip(ctx context.Context, clip store.Clip) {
	if l.mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.mirrorTimeout)
	defer cancel()
	if err := l.mirror.Remove(ctx, clip, l.sections.List()); err != nil {
		slog.Warn("export: mirror remove failed", "clip", clip.ID, "error", err)
	}
}
