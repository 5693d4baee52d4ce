package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxFilenameBytes = 80
	fallbackFilename = "untitled"
)

// SanitizeFilename makes s safe as a single path component: path-unsafe and
// control characters are dropped, whitespace runs become "_" and the result
// is cut to 80 bytes on a rune boundary.
func SanitizeFilename(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		case unicode.IsControl(r), strings.ContainsRune(`<>:"/\|?*`, r):
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}

	out := b.String()
	if len(out) > maxFilenameBytes {
		cut := maxFilenameBytes
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	out = strings.Trim(out, ".")
	if out == "" {
		return fallbackFilename
	}
	return out
}
