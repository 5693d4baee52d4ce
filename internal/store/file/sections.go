package file

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cliptray/cliptray/internal/normalize"
	"github.com/cliptray/cliptray/internal/search"
	"github.com/cliptray/cliptray/internal/store"
)

// FileSectionStore implements store.SectionStore on top of tabs.json.
type FileSectionStore struct {
	path       string
	legacyPath string
	policy     normalize.ExportPolicy

	mu  sync.Mutex
	doc store.TabsDocument
}

// NewFileSectionStore loads the tabs document, falling back to the legacy
// sections array when the document has no tabs. An inbox section is seeded
// when nothing is found.
func NewFileSectionStore(path, legacyPath string, policy normalize.ExportPolicy) *FileSectionStore {
	s := &FileSectionStore{
		path:       path,
		legacyPath: legacyPath,
		policy:     policy,
	}
	s.load()
	return s
}

func (s *FileSectionStore) load() {
	var raws []any
	active := ""

	switch doc := ReadJSON[any](s.path, nil).(type) {
	case map[string]any:
		raws, _ = doc["tabs"].([]any)
		active, _ = doc["activeTabId"].(string)
	case []any:
		raws = doc
	}
	if len(raws) == 0 && s.legacyPath != "" {
		raws, _ = ReadJSON[any](s.legacyPath, nil).([]any)
		if len(raws) > 0 {
			slog.Info("sections: loaded legacy sections document", "path", s.legacyPath, "count", len(raws))
		}
	}

	tabs := normalize.Sections(raws)
	for i := range tabs {
		tabs[i].ExportPath = s.policy.NormalizeExportPath(tabs[i].ExportPath, tabs[i].Label)
	}

	seeded := false
	if len(tabs) == 0 {
		tabs = []store.Section{{
			ID:        store.InboxSectionID,
			Label:     "Inbox",
			Schema:    normalize.DefaultSchema(),
			ClipOrder: []string{},
		}}
		seeded = true
	}

	s.doc = store.TabsDocument{Tabs: tabs, ActiveTabID: active}
	if s.indexOf(active) < 0 && active != store.AllSectionsID {
		s.doc.ActiveTabID = tabs[0].ID
	}
	if seeded {
		s.saveLocked()
	}
}

// List returns a copy of all sections in display order.
func (s *FileSectionStore) List() []store.Section {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.Section, len(s.doc.Tabs))
	for i, t := range s.doc.Tabs {
		out[i] = cloneSection(t)
	}
	return out
}

// Get returns a copy of the section with the given id.
func (s *FileSectionStore) Get(id string) (*store.Section, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, false
	}
	c := cloneSection(s.doc.Tabs[i])
	return &c, true
}

// ActiveID returns the active tab id ("all" for the all-clips view).
func (s *FileSectionStore) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.ActiveTabID
}

// SetActive records the active tab.
func (s *FileSectionStore) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != store.AllSectionsID && s.indexOf(id) < 0 {
		return fmt.Errorf("section %q: %w", id, store.ErrNotFound)
	}
	s.doc.ActiveTabID = id
	s.saveLocked()
	return nil
}

// CreateSection appends a section whose id is the slug of name. Reserved
// slugs are rejected; a slug already in use gets a numeric suffix. This is
// the one operation whose persistence failure is reported to the caller.
func (s *FileSectionStore) CreateSection(name string) (*store.Section, error) {
	label := strings.TrimSpace(name)
	if label == "" {
		return nil, &store.ValidationError{Field: "name", Reason: "section name is required"}
	}
	base := normalize.Slugify(label)
	if err := store.CheckSectionID(base); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := base
	for n := 2; s.indexOf(id) >= 0; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}

	order := 0
	for _, t := range s.doc.Tabs {
		if t.Order >= order {
			order = t.Order + 1
		}
	}

	sec := store.Section{
		ID:        id,
		Label:     label,
		Order:     order,
		Schema:    normalize.DefaultSchema(),
		ClipOrder: []string{},
	}
	s.doc.Tabs = append(s.doc.Tabs, sec)
	if err := s.saveLocked(); err != nil {
		s.doc.Tabs = s.doc.Tabs[:len(s.doc.Tabs)-1]
		return nil, fmt.Errorf("persist section %q: %w", id, err)
	}

	slog.Info("section created", "id", id, "label", label)
	c := cloneSection(sec)
	return &c, nil
}

// RenameSection changes the display label; the id never changes. The new
// label is still checked against the reserved ids.
func (s *FileSectionStore) RenameSection(id, label string) (*store.Section, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, &store.ValidationError{Field: "name", Reason: "section name is required"}
	}
	if err := store.CheckSectionID(normalize.Slugify(label)); err != nil {
		return nil, err
	}
	return s.mutate(id, func(sec *store.Section) error {
		sec.Label = label
		return nil
	})
}

// SetLocked toggles the delete protection of a section and its clips.
func (s *FileSectionStore) SetLocked(id string, locked bool) (*store.Section, error) {
	return s.mutate(id, func(sec *store.Section) error {
		sec.Locked = locked
		return nil
	})
}

// SetColor sets the section color.
func (s *FileSectionStore) SetColor(id, color string) (*store.Section, error) {
	return s.mutate(id, func(sec *store.Section) error {
		sec.Color = strings.TrimSpace(color)
		return nil
	})
}

// SetIcon sets the section icon.
func (s *FileSectionStore) SetIcon(id, icon string) (*store.Section, error) {
	return s.mutate(id, func(sec *store.Section) error {
		sec.Icon = strings.TrimSpace(icon)
		return nil
	})
}

// SetExportPath assigns the mirror folder. Paths inside the data directory
// are redirected to the canonical export folder; "" disables mirroring.
func (s *FileSectionStore) SetExportPath(id, path string) (*store.Section, error) {
	return s.mutate(id, func(sec *store.Section) error {
		sec.ExportPath = s.policy.NormalizeExportPath(path, sec.Label)
		return nil
	})
}

// SetSchema sets the visible editor fields, clamped to the vocabulary.
func (s *FileSectionStore) SetSchema(id string, fields []string) (*store.Section, error) {
	return s.mutate(id, func(sec *store.Section) error {
		sec.Schema = normalize.Schema(fields)
		return nil
	})
}

// DeleteSection removes an unlocked section. Its clips are left in place.
func (s *FileSectionStore) DeleteSection(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("section %q: %w", id, store.ErrNotFound)
	}
	if s.doc.Tabs[i].Locked {
		return fmt.Errorf("section %q: %w", id, store.ErrLocked)
	}

	s.doc.Tabs = append(s.doc.Tabs[:i], s.doc.Tabs[i+1:]...)
	if s.doc.ActiveTabID == id {
		s.doc.ActiveTabID = ""
		if len(s.doc.Tabs) > 0 {
			s.doc.ActiveTabID = s.doc.Tabs[0].ID
		}
	}
	s.saveLocked()

	slog.Info("section deleted", "id", id)
	return nil
}

// ReorderSections moves sourceID in front of targetID and re-sequences order.
func (s *FileSectionStore) ReorderSections(sourceID, targetID string) ([]store.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(sourceID)
	if i < 0 {
		return nil, fmt.Errorf("section %q: %w", sourceID, store.ErrNotFound)
	}
	moved := s.doc.Tabs[i]
	rest := make([]store.Section, 0, len(s.doc.Tabs))
	rest = append(rest, s.doc.Tabs[:i]...)
	rest = append(rest, s.doc.Tabs[i+1:]...)

	at := len(rest)
	if targetID != sourceID {
		for j, t := range rest {
			if t.ID == targetID {
				at = j
				break
			}
		}
	} else {
		at = i
	}

	tabs := make([]store.Section, 0, len(s.doc.Tabs))
	tabs = append(tabs, rest[:at]...)
	tabs = append(tabs, moved)
	tabs = append(tabs, rest[at:]...)
	for j := range tabs {
		tabs[j].Order = j
	}
	s.doc.Tabs = tabs
	s.saveLocked()

	out := make([]store.Section, len(tabs))
	for j, t := range tabs {
		out[j] = cloneSection(t)
	}
	return out, nil
}

// ReorderClips moves clipID in front of beforeClipID within the section's
// manual order.
func (s *FileSectionStore) ReorderClips(sectionID, clipID, beforeClipID string, members []string) (*store.Section, error) {
	if strings.TrimSpace(clipID) == "" {
		return nil, &store.ValidationError{Field: "clipId", Reason: "clip id is required"}
	}
	return s.mutate(sectionID, func(sec *store.Section) error {
		order := append([]string{}, sec.ClipOrder...)
		listed := make(map[string]bool, len(order))
		for _, id := range order {
			listed[id] = true
		}
		for _, id := range members {
			if id != "" && !listed[id] {
				order = append(order, id)
				listed[id] = true
			}
		}
		sec.ClipOrder = search.MoveBefore(order, clipID, beforeClipID)
		return nil
	})
}

// mutate applies fn to the section with id under the lock and persists.
func (s *FileSectionStore) mutate(id string, fn func(sec *store.Section) error) (*store.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("section %q: %w", id, store.ErrNotFound)
	}
	sec := cloneSection(s.doc.Tabs[i])
	if err := fn(&sec); err != nil {
		return nil, err
	}
	s.doc.Tabs[i] = sec
	s.saveLocked()

	c := cloneSection(sec)
	return &c, nil
}

func (s *FileSectionStore) indexOf(id string) int {
	for i, t := range s.doc.Tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *FileSectionStore) saveLocked() error {
	return WriteJSON(s.path, s.doc)
}

func cloneSection(s store.Section) store.Section {
	s.Schema = append([]string{}, s.Schema...)
	s.ClipOrder = append([]string{}, s.ClipOrder...)
	return s
}
