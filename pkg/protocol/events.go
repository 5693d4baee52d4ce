package protocol

// Event names pushed to the desktop shell and /events subscribers.
const (
	EventHello           = "hello"
	EventClipSaved       = "clip.saved"
	EventClipsDeleted    = "clips.deleted"
	EventSectionsChanged = "sections.changed"
	EventStateChanged    = "state.changed"
)

// Sections change subtypes (in payload.action)
const (
	SectionActionCreated   = "created"
	SectionActionUpdated   = "updated"
	SectionActionDeleted   = "deleted"
	SectionActionReordered = "reordered"
)
