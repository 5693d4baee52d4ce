package protocol

// Error codes carried in the "code" field of failed responses.
const (
	ErrInvalidRequest  = "INVALID_REQUEST"
	ErrNotFound        = "NOT_FOUND"
	ErrLocked          = "LOCKED"
	ErrAlreadyExists   = "ALREADY_EXISTS"
	ErrPayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrForbidden       = "FORBIDDEN"
	ErrRateLimited     = "RATE_LIMITED"
	ErrInternal        = "INTERNAL"
)
