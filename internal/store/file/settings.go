package file

import (
	"maps"
	"sync"
)

// FileSettingsStore keeps the UI settings document. The contents are opaque
// to the core; only the persistence shape is owned here.
type FileSettingsStore struct {
	path string

	mu       sync.Mutex
	settings map[string]any
}

func NewFileSettingsStore(path string) *FileSettingsStore {
	s := &FileSettingsStore{path: path}
	s.settings = ReadJSON[map[string]any](path, nil)
	if s.settings == nil {
		s.settings = map[string]any{}
	}
	return s
}

// Get returns a shallow copy of the settings.
func (s *FileSettingsStore) Get() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.settings)
}

// Save replaces the settings document.
func (s *FileSettingsStore) Save(settings map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(settings)
	if next == nil {
		next = map[string]any{}
	}
	if err := WriteJSON(s.path, next); err != nil {
		return err
	}
	s.settings = next
	return nil
}
