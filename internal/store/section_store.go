package store

// SectionStore owns the list of sections (tabs) and the active tab.
// Every mutation persists the tabs document before returning.
type SectionStore interface {
	List() []Section
	Get(id string) (*Section, bool)
	ActiveID() string
	SetActive(id string) error

	CreateSection(name string) (*Section, error)
	RenameSection(id, label string) (*Section, error)
	SetLocked(id string, locked bool) (*Section, error)
	SetColor(id, color string) (*Section, error)
	SetIcon(id, icon string) (*Section, error)
	SetExportPath(id, path string) (*Section, error)
	SetSchema(id string, fields []string) (*Section, error)
	DeleteSection(id string) error

	// ReorderSections moves sourceID immediately before targetID (to the end
	// when targetID is unknown) and re-sequences order densely.
	ReorderSections(sourceID, targetID string) ([]Section, error)

	// ReorderClips rewrites only the section's clipOrder. members is the
	// section's current display order; ids missing from clipOrder are
	// appended before clipID is moved in front of beforeClipID.
	ReorderClips(sectionID, clipID, beforeClipID string, members []string) (*Section, error)
}
