package http

import "regexp"

var idempotencyKeyRe = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// isValidIdempotencyKey checks that a client-chosen key is short and printable.
func isValidIdempotencyKey(s string) bool {
	return idempotencyKeyRe.MatchString(s)
}
