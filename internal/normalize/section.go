package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cliptray/cliptray/internal/store"
)

// SchemaFields is the recognized clip field vocabulary in canonical order.
var SchemaFields = []string{
	store.FieldTitle,
	store.FieldText,
	store.FieldScreenshots,
	store.FieldTags,
	store.FieldSourceTitle,
	store.FieldOpen,
	store.FieldCapturedAt,
	store.FieldNotes,
}

// retiredSourceURLField was replaced by "open" in section schemas.
const retiredSourceURLField = "sourceUrl"

// DefaultSchema returns a fresh copy of the full vocabulary.
func DefaultSchema() []string {
	return append([]string{}, SchemaFields...)
}

// Schema clamps a list of field names to the vocabulary, in canonical order.
// A list naming the retired sourceUrl field gains "open". Lists that are
// absent, malformed or empty after clamping become the default schema.
func Schema(v any) []string {
	present := make(map[string]bool)
	switch t := v.(type) {
	case []any, []string:
		for _, f := range asStringList(t, false) {
			present[f] = true
		}
	case map[string]any:
		for f, on := range t {
			if asBool(on) {
				present[f] = true
			}
		}
	default:
		return DefaultSchema()
	}
	if present[retiredSourceURLField] {
		present[store.FieldOpen] = true
	}

	out := make([]string, 0, len(SchemaFields))
	for _, f := range SchemaFields {
		if present[f] {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return DefaultSchema()
	}
	return out
}

// Section repairs a persisted section shape. index is the section's position
// in the source list and seeds both the fallback id and the fallback order.
func Section(raw map[string]any, index int) store.Section {
	if raw == nil {
		raw = map[string]any{}
	}

	s := store.Section{
		ID:         strings.TrimSpace(asString(raw["id"])),
		Locked:     asBool(raw["locked"]),
		Color:      asString(raw["color"]),
		Icon:       asString(raw["icon"]),
		ExportPath: asString(first(raw, "exportPath", "exportFolder")),
		Order:      index,
		Schema:     Schema(raw["schema"]),
		ClipOrder:  uniqueStrings(raw["clipOrder"]),
	}
	if s.ID == "" {
		s.ID = fmt.Sprintf("tab-%d", index)
	}
	s.Label = strings.TrimSpace(asString(first(raw, "label", "name", "title")))
	if s.Label == "" {
		s.Label = s.ID
	}
	if n, ok := asInt64(raw["order"]); ok {
		s.Order = int(n)
	}
	return s
}

// Sections normalizes a list and sorts the result by order. An id that is
// reserved or already taken (including a generated tab-<i> meeting an
// explicit id later in the list) gets a numeric suffix, so no section is
// lost. Entries that are not objects are skipped but still consume an index.
func Sections(raws []any) []store.Section {
	explicit := make(map[string]bool)
	for _, r := range raws {
		if m, ok := r.(map[string]any); ok {
			if id := strings.TrimSpace(asString(m["id"])); id != "" {
				explicit[id] = true
			}
		}
	}

	out := make([]store.Section, 0, len(raws))
	taken := make(map[string]bool)
	for i, r := range raws {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		s := Section(m, i)
		generated := strings.TrimSpace(asString(m["id"])) == ""
		if taken[s.ID] || (generated && explicit[s.ID]) || store.CheckSectionID(s.ID) != nil {
			s.ID = uniqueSectionID(s.ID, func(id string) bool { return taken[id] || explicit[id] })
		}
		taken[s.ID] = true
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// uniqueSectionID returns base-2, base-3, ... skipping ids in use and
// reserved ids.
func uniqueSectionID(base string, inUse func(string) bool) string {
	for n := 2; ; n++ {
		id := fmt.Sprintf("%s-%d", base, n)
		if !inUse(id) && store.CheckSectionID(id) == nil {
			return id
		}
	}
}

// SectionMap renders a section back into its JSON field map.
func SectionMap(s store.Section) map[string]any {
	return map[string]any{
		"id":         s.ID,
		"label":      s.Label,
		"locked":     s.Locked,
		"color":      s.Color,
		"icon":       s.Icon,
		"exportPath": s.ExportPath,
		"order":      s.Order,
		"schema":     append([]string{}, s.Schema...),
		"clipOrder":  append([]string{}, s.ClipOrder...),
	}
}
