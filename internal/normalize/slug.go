package normalize

import (
	"regexp"
	"strings"
)

// FallbackSlug is returned when a name has no usable characters.
const FallbackSlug = "section"

const maxSlugLength = 64

var (
	validSlugRe  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	invalidChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify converts a display name into a section id:
//   - Lowercase, max 64 chars
//   - Runs of non-alphanumeric characters collapse to a single "-"
//   - Leading/trailing dashes stripped
//   - Empty result becomes FallbackSlug
func Slugify(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return FallbackSlug
	}
	if len(lower) <= maxSlugLength && validSlugRe.MatchString(lower) {
		return lower
	}

	result := invalidChars.ReplaceAllString(lower, "-")
	result = strings.Trim(result, "-")
	if len(result) > maxSlugLength {
		result = strings.TrimRight(result[:maxSlugLength], "-")
	}
	if result == "" {
		return FallbackSlug
	}
	return result
}
