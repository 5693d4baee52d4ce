package export

import (
	"github.com/cliptray/cliptray/internal/normalize"
	"github.com/cliptray/cliptray/internal/store"
)

// Document is the canonical mirrored form of a clip. Icon and Color are
// always written, as null when unset.
type Document struct {
	ID          string   `json:"id"`
	SectionID   string   `json:"sectionId"`
	Title       string   `json:"title"`
	Text        string   `json:"text"`
	Notes       string   `json:"notes"`
	Tags        []string `json:"tags"`
	Screenshots []string `json:"screenshots"`
	Icon        *string  `json:"icon"`
	Color       *string  `json:"color"`
	SourceURL   string   `json:"sourceUrl"`
	SourceTitle string   `json:"sourceTitle"`
	CapturedAt  int64    `json:"capturedAt"`
}

// NewDocument projects a clip onto the mirrored field set.
func NewDocument(c store.Clip) Document {
	d := Document{
		ID:          c.ID,
		SectionID:   c.SectionID,
		Title:       c.Title,
		Text:        c.Text,
		Notes:       c.Notes,
		Tags:        append([]string{}, c.Tags...),
		Screenshots: append([]string{}, c.Screenshots...),
		Icon:        c.Icon,
		Color:       c.Color,
		SourceURL:   c.SourceURL,
		SourceTitle: c.SourceTitle,
		CapturedAt:  c.CapturedAt,
	}
	return d
}

// FileName returns <sectionId>_<clipId>.json with both parts sanitized.
func FileName(c store.Clip) string {
	return normalize.SanitizeFilename(c.SectionID) + "_" + normalize.SanitizeFilename(c.ID) + ".json"
}
