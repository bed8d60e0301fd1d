package disc

import (
	"regexp"
	"strings"
)

var (
	allDigitsPattern = regexp.MustCompile(`^\d+$`)
	shortCodePattern = regexp.MustCompile(`^[A-Z0-9_]{1,4}$`)
)

var genericLabels = []string{
	"LOGICAL_VOLUME_ID", "VOLUME_ID", "DVD_VIDEO", "BLURAY", "BD_ROM",
	"UNTITLED", "UNKNOWN DISC", "VOLUME_", "VOLUME ID", "DISK_", "TRACK_",
}

// IsGenericLabel reports whether a disc label says nothing about the
// content, such as "DVD_VIDEO", "12345" or "ABC". Authoring labels like
// "THE_WOLVERINE" are not generic; title normalization turns them into
// "The Wolverine".
func IsGenericLabel(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" {
		return true
	}
	upper := strings.ToUpper(label)
	for _, pattern := range genericLabels {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	if allDigitsPattern.MatchString(label) {
		return true
	}
	return shortCodePattern.MatchString(upper)
}
