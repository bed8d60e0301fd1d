package mkisofs

import (
	"strings"
	"unicode"
)

// maxVolumeLabel is the ISO 9660 volume identifier limit.
const maxVolumeLabel = 32

// Args packages dir into iso with a UDF bridge so players accept large files.
func Args(volumeLabel, iso, dir string) []string {
	return []string{
		"-UDF", "-R", "-J",
		"-input-charset", "utf-8",
		"-iso-level", "3",
		"-V", volumeLabel,
		"-o", iso,
		dir,
	}
}

// VolumeLabel derives an ISO volume identifier from a title: upper case,
// spaces as underscores, characters outside [A-Z0-9_] dropped, truncated to
// 32 characters. An empty result falls back to "DISC".
func VolumeLabel(title string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(title)) {
		switch {
		case r == ' ' || r == '_' || r == '-':
			b.WriteByte('_')
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		}
		if b.Len() == maxVolumeLabel {
			break
		}
	}
	label := strings.Trim(b.String(), "_")
	if label == "" {
		return "DISC"
	}
	return label
}
