package store

// InboxSectionID is the section clips land in when the caller names none.
const InboxSectionID = "inbox"

// AllSectionsID is the pseudo-section that matches every clip in filters.
const AllSectionsID = "all"

// Schema field names recognized by the clip editor.
const (
	FieldTitle       = "title"
	FieldText        = "text"
	FieldScreenshots = "screenshots"
	FieldTags        = "tags"
	FieldSourceTitle = "sourceTitle"
	FieldOpen        = "open"
	FieldCapturedAt  = "capturedAt"
	FieldNotes       = "notes"
)

// Clip is a single stored snippet of captured text plus metadata.
// Timestamps are unix millis; 0 means absent.
type Clip struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Text        string   `json:"text"`
	Notes       string   `json:"notes"`
	Tags        []string `json:"tags"`
	Screenshots []string `json:"screenshots"`
	Icon        *string  `json:"icon"`
	Color       *string  `json:"color"`
	SectionID   string   `json:"sectionId"`
	SourceURL   string   `json:"sourceUrl"`
	SourceTitle string   `json:"sourceTitle"`
	CapturedAt  int64    `json:"capturedAt"`
	CreatedAt   int64    `json:"createdAt,omitempty"`
	UpdatedAt   int64    `json:"updatedAt,omitempty"`
}

// Section is a user-defined tab holding clips.
type Section struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Locked     bool     `json:"locked"`
	Color      string   `json:"color"`
	Icon       string   `json:"icon"`
	ExportPath string   `json:"exportPath"`
	Order      int      `json:"order"`
	Schema     []string `json:"schema"`
	ClipOrder  []string `json:"clipOrder"`
}

// TabsDocument is the on-disk shape of tabs.json.
type TabsDocument struct {
	Tabs        []Section `json:"tabs"`
	ActiveTabID string    `json:"activeTabId"`
}

// ClipPatch carries a partial clip keyed by JSON field name.
// Keys present replace prior values on merge; absent keys are preserved.
type ClipPatch map[string]any

// ID returns the patch's "id" entry when it is a non-empty string.
func (p ClipPatch) ID() string {
	if s, ok := p["id"].(string); ok {
		return s
	}
	return ""
}

// StoreConfig configures the file-backed store layer.
type StoreConfig struct {
	// ClipsPath is the clips collection (clips.json).
	ClipsPath string

	// TabsPath is the tabs document (tabs.json).
	TabsPath string

	// LegacySectionsPath is read once when the tabs document is empty (sections.json).
	LegacySectionsPath string

	// SettingsPath is the free-form UI settings document (settings.json).
	SettingsPath string

	// DataRoot, DataDir, ScreenshotsDir and ExportBase feed the export path policy.
	DataRoot       string
	DataDir        string
	ScreenshotsDir string
	ExportBase     string
}
