package models

import "strings"

// Slugify converts a title into a lowercase, alphanumeric-and-hyphen
// identifier safe for use in URLs. Characters outside [a-z0-9 ] are
// dropped and runs of whitespace collapse into single hyphens.
func Slugify(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))

	var b strings.Builder
	lastWasSpace := false
	for _, r := range title {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastWasSpace = false
		case r == ' ' || r == '-' || r == '_':
			if !lastWasSpace && b.Len() > 0 {
				b.WriteRune('-')
				lastWasSpace = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
