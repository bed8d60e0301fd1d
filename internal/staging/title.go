package staging

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TimestampLayout names a title when nothing better is known.
const TimestampLayout = "2006-01-02.15-04-05"

// Prompter asks the operator for a title when the file name is a generic
// ripper name such as "title_t00". ok is false when the operator declined.
type Prompter interface {
	PromptTitle(ctx context.Context, suggestion string) (title string, ok bool)
}

var trackSuffix = regexp.MustCompile(`_t\d\d$`)

var now = time.Now

// DeriveTitle turns a staged file path into a display title. override is the
// disc title reported by the ripper or the operator's --title flag.
func DeriveTitle(ctx context.Context, path, override string, prompter Prompter) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = trackSuffix.ReplaceAllString(stem, "")
	override = strings.TrimSpace(override)

	title := now().Format(TimestampLayout)
	switch {
	case !strings.Contains(stem, "title"):
		title = stem
	case override != "":
		title = override
	case prompter != nil:
		if answer, ok := prompter.PromptTitle(ctx, stem); ok && strings.TrimSpace(answer) != "" {
			title = answer
		}
	}
	return normalizeTitle(title)
}

func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "_", " ")
	words := strings.Fields(title)
	caser := cases.Title(language.Und)
	for i, word := range words {
		words[i] = caser.String(word)
	}
	return strings.Join(words, " ")
}
