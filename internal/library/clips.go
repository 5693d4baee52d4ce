package library

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/cliptray/cliptray/internal/normalize"
	"github.com/cliptray/cliptray/internal/store"
	"github.com/cliptray/cliptray/internal/tracing"
	"github.com/cliptray/cliptray/pkg/protocol"
)

// ingestFields are the request keys accepted from outside the application.
var ingestFields = []string{
	"id", "sectionId", "title", "text", "notes", "tags",
	"screenshots", "sourceUrl", "sourceTitle", "capturedAt",
}

// SaveClip creates or updates a clip, then mirrors it and broadcasts the
// change. The bool result is true for a new clip. A clip that changed section
// loses its mirror in the old section. Mirror failures never fail the save.
func (l *Library) SaveClip(ctx context.Context, patch store.ClipPatch) (clip *store.Clip, created bool, err error) {
	ctx, span := tracing.Start(ctx, "library.SaveClip", tracing.ClipID(patch.ID()))
	defer func() { tracing.End(span, err) }()

	if patch == nil {
		return nil, false, &store.ValidationError{Reason: "clip payload is required"}
	}
	prev, _ := l.clips.Get(strings.TrimSpace(patch.ID()))
	clip, created, err = l.clips.Upsert(patch)
	if err != nil {
		return nil, false, err
	}
	if _, ok := l.sections.Get(clip.SectionID); !ok {
		slog.Warn("clip saved into unknown section", "clip", clip.ID, "section", clip.SectionID)
	}

	l.reindex()
	if prev != nil && prev.SectionID != clip.SectionID {
		l.unmirrorClip(ctx, *prev)
	}
	l.mirrorClip(ctx, *clip)
	l.emit(ctx, protocol.EventClipSaved, map[string]any{"clip": clip, "created": created})

	slog.Debug("clip saved", "id", clip.ID, "section", clip.SectionID, "created", created, "source", store.SourceFromContext(ctx))
	return clip, created, nil
}

// Ingest accepts a clip pushed from outside the application (browser
// extension, CLI). Only known fields are kept. At least one of title and
// text must be non-blank; sectionId defaults to the inbox; a missing or
// non-positive capturedAt becomes the current time.
func (l *Library) Ingest(ctx context.Context, raw map[string]any) (*store.Clip, bool, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	patch := make(store.ClipPatch, len(ingestFields))
	for _, k := range ingestFields {
		if v, ok := raw[k]; ok {
			patch[k] = v
		}
	}

	title, _ := patch["title"].(string)
	text, _ := patch["text"].(string)
	if strings.TrimSpace(title) == "" && strings.TrimSpace(text) == "" {
		return nil, false, &store.ValidationError{Field: "text", Reason: "title or text is required"}
	}

	if sid, _ := patch["sectionId"].(string); strings.TrimSpace(sid) == "" {
		patch["sectionId"] = store.InboxSectionID
	} else {
		patch["sectionId"] = strings.TrimSpace(sid)
	}

	_, existing := l.clips.Get(strings.TrimSpace(patch.ID()))
	captured := normalize.Clip(map[string]any{"capturedAt": patch["capturedAt"]}).CapturedAt
	_, hasCaptured := patch["capturedAt"]
	if captured <= 0 && (hasCaptured || !existing) {
		patch["capturedAt"] = l.now().UnixMilli()
	}

	return l.SaveClip(ctx, patch)
}

// DeleteClip removes one clip. Refused with store.ErrLocked when its
// section is locked.
func (l *Library) DeleteClip(ctx context.Context, id string) error {
	_, err := l.DeleteClips(ctx, []string{id})
	return err
}

// DeleteClips removes each id independently: unknown ids and clips in locked
// sections are reported in the joined error while the rest are deleted.
// Returns the ids removed.
func (l *Library) DeleteClips(ctx context.Context, ids []string) (removedIDs []string, err error) {
	ctx, span := tracing.Start(ctx, "library.DeleteClips", tracing.Count(len(ids)))
	defer func() { tracing.End(span, err) }()

	if len(ids) == 0 {
		return nil, nil
	}
	removed, err := l.clips.DeleteMany(ids, l.IsLocked)
	if len(removed) == 0 {
		return nil, err
	}

	removedIDs = make([]string, len(removed))
	for i, c := range removed {
		removedIDs[i] = c.ID
		l.unmirrorClip(ctx, c)
	}

	l.mu.Lock()
	for _, id := range removedIDs {
		delete(l.selection, id)
	}
	l.mu.Unlock()
	l.reindex()

	l.emit(ctx, protocol.EventClipsDeleted, map[string]any{"ids": removedIDs})
	return removedIDs, err
}

// DeleteSelection deletes the selected clips. Clips that could not be
// deleted stay selected.
func (l *Library) DeleteSelection(ctx context.Context) ([]string, error) {
	ids := l.Selection()
	if len(ids) == 0 {
		return nil, nil
	}
	return l.DeleteClips(ctx, ids)
}

// MoveClips reassigns clips to another section. Clips in locked sections are
// left alone and reported.
func (l *Library) MoveClips(ctx context.Context, ids []string, sectionID string) ([]string, error) {
	if _, ok := l.sections.Get(sectionID); !ok {
		return nil, sectionNotFound(sectionID)
	}

	var moved []string
	var errs []error
	for _, id := range ids {
		c, ok := l.clips.Get(id)
		if !ok {
			errs = append(errs, clipNotFound(id))
			continue
		}
		if l.IsLocked(c.SectionID) {
			errs = append(errs, lockedClip(id, c.SectionID))
			continue
		}
		if _, _, err := l.SaveClip(ctx, store.ClipPatch{"id": id, "sectionId": sectionID}); err != nil {
			errs = append(errs, err)
			continue
		}
		moved = append(moved, id)
	}
	return moved, errors.Join(errs...)
}
