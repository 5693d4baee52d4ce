package config

import (
	"regexp"
	"strings"
)

// Extension origin schemes accepted when server.allowExtensionOrigins is set.
var ExtensionSchemes = []string{"chrome-extension://", "moz-extension://", "safari-web-extension://"}

var (
	validOriginRe   = regexp.MustCompile(`^[a-z][a-z0-9+.-]*://[^/\s?#]+$`)
	trailingSlashes = regexp.MustCompile(`/+$`)
)

// NormalizeOrigin converts a configured origin into the form browsers send
// in the Origin header:
//   - Lowercase, surrounding whitespace removed
//   - Trailing slashes stripped
func NormalizeOrigin(origin string) string {
	lower := strings.ToLower(strings.TrimSpace(origin))
	return trailingSlashes.ReplaceAllString(lower, "")
}

// NormalizeOrigins normalizes a list, dropping blanks and duplicates.
func NormalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	seen := make(map[string]bool, len(origins))
	for _, o := range origins {
		n := NormalizeOrigin(o)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// IsValidOrigin reports whether origin is scheme://host[:port] with no path.
func IsValidOrigin(origin string) bool {
	return validOriginRe.MatchString(NormalizeOrigin(origin))
}

// IsExtensionOrigin reports whether origin belongs to a browser extension.
func IsExtensionOrigin(origin string) bool {
	lower := strings.ToLower(origin)
	for _, scheme := range ExtensionSchemes {
		if strings.HasPrefix(lower, scheme) && len(lower) > len(scheme) {
			return true
		}
	}
	return false
}
