package file

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cliptray/cliptray/internal/normalize"
	"github.com/cliptray/cliptray/internal/store"
)

// FileClipStore implements store.ClipStore on top of clips.json.
type FileClipStore struct {
	path string
	now  func() time.Time

	mu    sync.Mutex
	clips []store.Clip
}

// NewFileClipStore loads the clip collection. Clips persisted without an id
// are assigned one and the collection is rewritten.
func NewFileClipStore(path string) *FileClipStore {
	s := &FileClipStore{path: path, now: time.Now}
	s.load()
	return s
}

func (s *FileClipStore) load() {
	var raws []any
	switch doc := ReadJSON[any](s.path, nil).(type) {
	case []any:
		raws = doc
	case map[string]any:
		raws, _ = doc["clips"].([]any)
	}

	s.clips = normalize.Clips(raws)
	repaired := 0
	seen := make(map[string]bool, len(s.clips))
	for i := range s.clips {
		if s.clips[i].ID == "" || seen[s.clips[i].ID] {
			s.clips[i].ID = s.newIDLocked(s.now())
			repaired++
		}
		seen[s.clips[i].ID] = true
	}
	if repaired > 0 {
		slog.Warn("clips: assigned ids to clips missing one", "count", repaired)
		s.saveLocked()
	}
}

// List returns a copy of all clips in insertion order.
func (s *FileClipStore) List() []store.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.Clip, len(s.clips))
	for i, c := range s.clips {
		out[i] = cloneClip(c)
	}
	return out
}

// Get returns a copy of the clip with the given id.
func (s *FileClipStore) Get(id string) (*store.Clip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, false
	}
	c := cloneClip(s.clips[i])
	return &c, true
}

// Count returns the number of clips.
func (s *FileClipStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clips)
}

// Upsert shallow-merges patch into an existing clip (matched by id) or
// appends a new one. New clips default to the inbox section and to the
// current time for capturedAt and createdAt. A failed write is logged; the
// in-memory change stands.
func (s *FileClipStore) Upsert(patch store.ClipPatch) (*store.Clip, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := strings.TrimSpace(patch.ID())

	var (
		clip    store.Clip
		created bool
	)
	if i := s.indexOf(id); id != "" && i >= 0 {
		merged := normalize.ClipMap(s.clips[i])
		for k, v := range patch {
			if k == "id" {
				continue
			}
			merged[k] = v
		}
		clip = normalize.Clip(merged)
		clip.ID = s.clips[i].ID
		clip.UpdatedAt = now.UnixMilli()
		s.clips[i] = clip
	} else {
		raw := make(map[string]any, len(patch))
		for k, v := range patch {
			raw[k] = v
		}
		clip = normalize.Clip(raw)
		if clip.ID == "" {
			clip.ID = s.newIDLocked(now)
		}
		if clip.CapturedAt <= 0 {
			clip.CapturedAt = now.UnixMilli()
		}
		if clip.CreatedAt <= 0 {
			clip.CreatedAt = now.UnixMilli()
		}
		s.clips = append(s.clips, clip)
		created = true
	}
	s.saveLocked()

	out := cloneClip(clip)
	return &out, created, nil
}

// DeleteMany removes each id independently. Unknown ids report ErrNotFound,
// clips in locked sections report ErrLocked, the rest are removed in a
// single write.
func (s *FileClipStore) DeleteMany(ids []string, isLocked func(sectionID string) bool) ([]store.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remove := make(map[string]bool, len(ids))
	var errs []error
	for _, id := range ids {
		if remove[id] {
			continue
		}
		i := s.indexOf(id)
		if i < 0 {
			errs = append(errs, fmt.Errorf("clip %q: %w", id, store.ErrNotFound))
			continue
		}
		if isLocked != nil && isLocked(s.clips[i].SectionID) {
			errs = append(errs, fmt.Errorf("clip %q in section %q: %w", id, s.clips[i].SectionID, store.ErrLocked))
			continue
		}
		remove[id] = true
	}

	var removed []store.Clip
	if len(remove) > 0 {
		kept := s.clips[:0:0]
		for _, c := range s.clips {
			if remove[c.ID] {
				removed = append(removed, c)
				continue
			}
			kept = append(kept, c)
		}
		s.clips = kept
		s.saveLocked()
		slog.Info("clips deleted", "count", len(removed))
	}
	return removed, errors.Join(errs...)
}

// newIDLocked returns a fresh clip-<millis>-<random> id not already in use.
func (s *FileClipStore) newIDLocked(now time.Time) string {
	for {
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		id := fmt.Sprintf("clip-%d-%s", now.UnixMilli(), suffix)
		if s.indexOf(id) < 0 {
			return id
		}
	}
}

func (s *FileClipStore) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, c := range s.clips {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *FileClipStore) saveLocked() error {
	if s.clips == nil {
		s.clips = []store.Clip{}
	}
	return WriteJSON(s.path, s.clips)
}

func cloneClip(c store.Clip) store.Clip {
	c.Tags = append([]string{}, c.Tags...)
	c.Screenshots = append([]string{}, c.Screenshots...)
	if c.Icon != nil {
		v := *c.Icon
		c.Icon = &v
	}
	if c.Color != nil {
		v := *c.Color
		c.Color = &v
	}
	return c
}
