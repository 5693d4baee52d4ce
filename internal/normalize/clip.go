package normalize

import (
	"strings"

	"github.com/cliptray/cliptray/internal/store"
)

// Clip repairs a persisted or incoming clip shape. It never fails; missing
// fields get zero values and legacy color fields are folded into color.
func Clip(raw map[string]any) store.Clip {
	if raw == nil {
		raw = map[string]any{}
	}

	c := store.Clip{
		ID:          strings.TrimSpace(asString(raw["id"])),
		Title:       asString(raw["title"]),
		Text:        asString(raw["text"]),
		Notes:       asString(raw["notes"]),
		Tags:        asStringList(raw["tags"], true),
		Screenshots: asStringList(raw["screenshots"], false),
		Icon:        asOptString(raw["icon"]),
		Color:       asOptString(first(raw, "color", "appearanceColor", "userColor")),
		SectionID:   strings.TrimSpace(asString(raw["sectionId"])),
		SourceURL:   asString(raw["sourceUrl"]),
		SourceTitle: asString(raw["sourceTitle"]),
	}
	if c.SectionID == "" {
		c.SectionID = store.InboxSectionID
	}
	c.CapturedAt = nonNegative(raw["capturedAt"])
	c.CreatedAt = nonNegative(raw["createdAt"])
	c.UpdatedAt = nonNegative(raw["updatedAt"])
	return c
}

// Clips normalizes a whole collection, dropping entries that are not objects.
func Clips(raws []any) []store.Clip {
	out := make([]store.Clip, 0, len(raws))
	for _, r := range raws {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Clip(m))
	}
	return out
}

// ClipMap renders a clip back into its JSON field map, the form patches merge into.
func ClipMap(c store.Clip) map[string]any {
	m := map[string]any{
		"id":          c.ID,
		"title":       c.Title,
		"text":        c.Text,
		"notes":       c.Notes,
		"tags":        append([]string{}, c.Tags...),
		"screenshots": append([]string{}, c.Screenshots...),
		"icon":        nil,
		"color":       nil,
		"sectionId":   c.SectionID,
		"sourceUrl":   c.SourceURL,
		"sourceTitle": c.SourceTitle,
		"capturedAt":  c.CapturedAt,
	}
	if c.Icon != nil {
		m["icon"] = *c.Icon
	}
	if c.Color != nil {
		m["color"] = *c.Color
	}
	if c.CreatedAt > 0 {
		m["createdAt"] = c.CreatedAt
	}
	if c.UpdatedAt > 0 {
		m["updatedAt"] = c.UpdatedAt
	}
	return m
}

func nonNegative(v any) int64 {
	n, ok := asInt64(v)
	if !ok || n < 0 {
		return 0
	}
	return n
}
