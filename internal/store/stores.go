package store

// Stores is the top-level container for all storage backends.
type Stores struct {
	Sections SectionStore
	Clips    ClipStore
	Settings SettingsStore
}
