package library

import (
	"context"

	"github.com/cliptray/cliptray/internal/search"
	"github.com/cliptray/cliptray/internal/store"
	"github.com/cliptray/cliptray/internal/tracing"
	"github.com/cliptray/cliptray/pkg/protocol"
)

// CreateSection adds a section named name.
func (l *Library) CreateSection(ctx context.Context, name string) (sec *store.Section, err error) {
	ctx, span := tracing.Start(ctx, "library.CreateSection")
	defer func() { tracing.End(span, err) }()

	sec, err = l.sections.CreateSection(name)
	if err != nil {
		return nil, err
	}
	l.sectionChanged(ctx, protocol.SectionActionCreated, sec)
	return sec, nil
}

// RenameSection changes a section's label.
func (l *Library) RenameSection(ctx context.Context, id, name string) (*store.Section, error) {
	return l.updateSection(ctx, "library.RenameSection", id, func() (*store.Section, error) {
		return l.sections.RenameSection(id, name)
	})
}

// SetLocked locks or unlocks a section.
func (l *Library) SetLocked(ctx context.Context, id string, locked bool) (*store.Section, error) {
	return l.updateSection(ctx, "library.SetLocked", id, func() (*store.Section, error) {
		return l.sections.SetLocked(id, locked)
	})
}

// SetSectionColor sets a section's color.
func (l *Library) SetSectionColor(ctx context.Context, id, color string) (*store.Section, error) {
	return l.updateSection(ctx, "library.SetSectionColor", id, func() (*store.Section, error) {
		return l.sections.SetColor(id, color)
	})
}

// SetSectionIcon sets a section's icon.
func (l *Library) SetSectionIcon(ctx context.Context, id, icon string) (*store.Section, error) {
	return l.updateSection(ctx, "library.SetSectionIcon", id, func() (*store.Section, error) {
		return l.sections.SetIcon(id, icon)
	})
}

// SetExportPath assigns a section's mirror folder ("" disables mirroring).
func (l *Library) SetExportPath(ctx context.Context, id, path string) (*store.Section, error) {
	return l.updateSection(ctx, "library.SetExportPath", id, func() (*store.Section, error) {
		return l.sections.SetExportPath(id, path)
	})
}

// SetSchema sets which editor fields a section shows.
func (l *Library) SetSchema(ctx context.Context, id string, fields []string) (*store.Section, error) {
	return l.updateSection(ctx, "library.SetSchema", id, func() (*store.Section, error) {
		return l.sections.SetSchema(id, fields)
	})
}

// DeleteSection removes an unlocked section. Its clips stay, with a
// dangling sectionId.
func (l *Library) DeleteSection(ctx context.Context, id string) (err error) {
	ctx, span := tracing.Start(ctx, "library.DeleteSection", tracing.SectionID(id))
	defer func() { tracing.End(span, err) }()

	if err = l.sections.DeleteSection(id); err != nil {
		return err
	}
	l.emit(ctx, protocol.EventSectionsChanged, map[string]any{
		"action": protocol.SectionActionDeleted,
		"id":     id,
	})
	return nil
}

// ReorderSections moves sourceID in front of targetID.
func (l *Library) ReorderSections(ctx context.Context, sourceID, targetID string) (secs []store.Section, err error) {
	ctx, span := tracing.Start(ctx, "library.ReorderSections", tracing.SectionID(sourceID))
	defer func() { tracing.End(span, err) }()

	secs, err = l.sections.ReorderSections(sourceID, targetID)
	if err != nil {
		return nil, err
	}
	l.emit(ctx, protocol.EventSectionsChanged, map[string]any{
		"action":   protocol.SectionActionReordered,
		"sections": secs,
	})
	return secs, nil
}

// ReorderClips moves clipID in front of beforeClipID within the section's
// manual order. The current default display order of the section seeds
// clipOrder for clips not yet listed.
func (l *Library) ReorderClips(ctx context.Context, sectionID, clipID, beforeClipID string) (sec *store.Section, err error) {
	ctx, span := tracing.Start(ctx, "library.ReorderClips", tracing.SectionID(sectionID), tracing.ClipID(clipID))
	defer func() { tracing.End(span, err) }()

	current, ok := l.sections.Get(sectionID)
	if !ok {
		return nil, sectionNotFound(sectionID)
	}
	members := search.Filter(l.clips.List(), nil, search.Criteria{SectionID: sectionID})
	ids := make([]string, 0, len(members))
	for _, c := range search.Sort(members, search.SortDefault, current) {
		ids = append(ids, c.ID)
	}

	sec, err = l.sections.ReorderClips(sectionID, clipID, beforeClipID, ids)
	if err != nil {
		return nil, err
	}
	l.sectionChanged(ctx, protocol.SectionActionUpdated, sec)
	return sec, nil
}

// SetActiveSection records the active tab ("all" for every clip).
func (l *Library) SetActiveSection(ctx context.Context, id string) error {
	if err := l.sections.SetActive(id); err != nil {
		return err
	}
	l.emit(ctx, protocol.EventStateChanged, map[string]any{"activeTabId": id})
	return nil
}

// IsLocked reports whether the section with id exists and is locked.
func (l *Library) IsLocked(sectionID string) bool {
	sec, ok := l.sections.Get(sectionID)
	return ok && sec.Locked
}

func (l *Library) updateSection(ctx context.Context, op, id string, fn func() (*store.Section, error)) (sec *store.Section, err error) {
	ctx, span := tracing.Start(ctx, op, tracing.SectionID(id))
	defer func() { tracing.End(span, err) }()

	sec, err = fn()
	if err != nil {
		return nil, err
	}
	l.sectionChanged(ctx, protocol.SectionActionUpdated, sec)
	return sec, nil
}

func (l *Library) sectionChanged(ctx context.Context, action string, sec *store.Section) {
	l.emit(ctx, protocol.EventSectionsChanged, map[string]any{
		"action":  action,
		"section": sec,
	})
}
