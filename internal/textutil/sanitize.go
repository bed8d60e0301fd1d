package textutil

import (
	"strings"
	"unicode"
)

// Separators become a dash, other characters that are unsafe on common
// filesystems are dropped.
var unsafeNameChars = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", " -",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName makes a display title usable as a file or folder name.
// Control characters are removed, runs of whitespace collapse to one space
// and trailing dots are trimmed because SMB shares reject them.
func SanitizeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, name)
	name = unsafeNameChars.Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	return strings.TrimRight(name, ". ")
}

// SanitizeToken lowercases value into an ASCII token of letters, digits,
// hyphens and single underscores. It is used for scratch directory and
// image names. Empty results become "unknown".
func SanitizeToken(value string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(value) {
		r = unicode.ToLower(r)
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return strings.Trim(b.String(), "-")
}
