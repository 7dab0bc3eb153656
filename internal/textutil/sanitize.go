package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName makes a clip title safe to use as an output file name.
// Path separators and drive punctuation become dashes, characters that
// shells and filesystems reject are dropped, and interior whitespace runs
// collapse to a single space. The result may be empty when the input had
// nothing usable.
func SanitizeFileName(name string) string {
	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			b.WriteByte('-')
			pendingSpace = false
		case r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			// dropped outright
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsControl(r):
			// dropped outright
		default:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// SanitizeToken lowercases a preset or aspect name into a token usable inside
// a file name. Runs of anything outside [a-z0-9] collapse to a single
// underscore; leading and trailing separators never appear.
func SanitizeToken(value string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}
