// Package protocol defines the wire format shared by the ingestion endpoint,
// the browser extension and /events subscribers.
package protocol

// Protocol version, sent in the hello event.
const ProtocolVersion = 1

// AddClipRequest is the body of POST /add-clip. Every field is optional on
// the wire; at least one of Title or Text must be non-blank. Tags may be an
// array of strings or a comma-separated string. The server decodes the body
// leniently, so capturedAt may also arrive as a numeric string.
type AddClipRequest struct {
	ID          string   `json:"id,omitempty"`
	SectionID   string   `json:"sectionId,omitempty"`
	Title       string   `json:"title,omitempty"`
	Text        string   `json:"text,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Tags        any      `json:"tags,omitempty"`
	Screenshots []string `json:"screenshots,omitempty"`
	SourceURL   string   `json:"sourceUrl,omitempty"`
	SourceTitle string   `json:"sourceTitle,omitempty"`
	CapturedAt  int64    `json:"capturedAt,omitempty"`
}

// AddClipResponse acknowledges POST /add-clip.
type AddClipResponse struct {
	OK      bool   `json:"ok"`
	ID      string `json:"id,omitempty"`
	Created bool   `json:"created,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	OK       bool `json:"ok"`
	Version  int  `json:"version"`
	Clips    int  `json:"clips"`
	Sections int  `json:"sections"`
}

// EventFrame is pushed to subscribers without a preceding request.
type EventFrame struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
	Seq     int64  `json:"seq,omitempty"`
	Source  string `json:"source,omitempty"` // extension, ui or cli
}

// NewEvent creates an event frame.
func NewEvent(event string, payload any) *EventFrame {
	return &EventFrame{Event: event, Payload: payload}
}

// NewOKResponse acknowledges a saved clip.
func NewOKResponse(id string, created bool) *AddClipResponse {
	return &AddClipResponse{OK: true, ID: id, Created: created}
}

// NewErrorResponse creates a failed response with a code from errors.go.
func NewErrorResponse(code, message string) *AddClipResponse {
	return &AddClipResponse{OK: false, Code: code, Error: message}
}
