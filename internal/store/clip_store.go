package store

// ClipStore owns the clip collection.
// Every mutation persists the full collection before returning.
type ClipStore interface {
	List() []Clip
	Get(id string) (*Clip, bool)
	Count() int

	// Upsert merges patch into the clip with the same id, or appends a new
	// clip. The bool result is true when a new clip was created.
	Upsert(patch ClipPatch) (*Clip, bool, error)

	// DeleteMany removes clips per id. Ids that are unknown or belong to a
	// locked section are skipped and reported in the joined error; the rest
	// are removed. Returns the removed clips.
	DeleteMany(ids []string, isLocked func(sectionID string) bool) ([]Clip, error)
}

// SettingsStore holds the free-form UI settings document.
type SettingsStore interface {
	Get() map[string]any
	Save(settings map[string]any) error
}
