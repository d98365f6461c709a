package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims surrounding whitespace and collapses any
// internal run of whitespace to a single space. Control characters are
// treated as whitespace, which keeps pasted names from smuggling
// newlines into display fields.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return strings.TrimSpace(result.String())
}

// NormalizeName cleans a user or resource display name.
func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeDescription cleans free-form description text without
// lowercasing it.
func NormalizeDescription(desc string) string {
	return TrimAndNormalize(desc)
}

// NormalizeEmail lowercases and trims an email address so uniqueness
// checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
