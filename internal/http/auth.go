package http

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// clientKey identifies the caller for rate limiting: the remote IP without
// its port.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// idempotencyKey returns the Idempotency-Key header, or "" when absent.
// Malformed keys are ignored rather than rejected.
func idempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		return ""
	}
	if !isValidIdempotencyKey(key) {
		slog.Warn("security.idempotency_key_invalid", "length", len(key))
		return ""
	}
	return key
}
