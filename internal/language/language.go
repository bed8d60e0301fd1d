package language

import (
	"regexp"
	"strings"
)

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 bibliographic variant (e.g. "ger" vs "deu")
	display string   // Human-readable name
	words   []string // Full word forms, lowercased, including endonyms
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}},
	{"de", "deu", "ger", "German", []string{"german", "deutsch"}},
	{"fr", "fra", "fre", "French", []string{"french", "français", "francais"}},
	{"es", "spa", "", "Spanish", []string{"spanish", "español", "espanol"}},
	{"it", "ita", "", "Italian", []string{"italian", "italiano"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese", "português", "portugues"}},
	{"nl", "nld", "dut", "Dutch", []string{"dutch", "nederlands"}},
	{"pl", "pol", "", "Polish", []string{"polish", "polski"}},
	{"cs", "ces", "cze", "Czech", []string{"czech", "čeština", "cestina"}},
	{"sv", "swe", "", "Swedish", []string{"swedish", "svenska"}},
	{"da", "dan", "", "Danish", []string{"danish", "dansk"}},
	{"no", "nor", "", "Norwegian", []string{"norwegian", "norsk"}},
	{"fi", "fin", "", "Finnish", []string{"finnish", "suomi"}},
	{"hu", "hun", "", "Hungarian", []string{"hungarian", "magyar"}},
	{"el", "ell", "gre", "Greek", []string{"greek"}},
	{"tr", "tur", "", "Turkish", []string{"turkish", "türkçe", "turkce"}},
	{"ru", "rus", "", "Russian", []string{"russian"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese"}},
	{"ar", "ara", "", "Arabic", []string{"arabic"}},
	{"hi", "hin", "", "Hindi", []string{"hindi"}},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages)*2)
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

// parenthesized matches settings of the form "German (ger)".
var parenthesized = regexp.MustCompile(`\(\s*([A-Za-z]{2,3})\s*\)\s*$`)

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// ParseNative resolves a native-language setting to an ISO 639-2 code.
// Accepted forms are "German (ger)", "de", "german", and "ger". A 3-letter
// code, bare or in parentheses, is returned unchanged (lowercased) so the
// bibliographic variants HandBrake understands survive. Names and 2-letter
// codes map to the primary 3-letter code. ok is false when nothing matched.
func ParseNative(setting string) (string, bool) {
	setting = strings.TrimSpace(setting)
	if setting == "" {
		return "", false
	}
	if m := parenthesized.FindStringSubmatch(setting); m != nil {
		setting = m[1]
	}
	code := strings.ToLower(setting)
	if len(code) == 3 && isLetters(code) {
		return code, true
	}
	if e := lookup(code); e != nil {
		return e.code3, true
	}
	return "", false
}

// ToISO3 converts any recognized language code or name to ISO 639-2.
// Returns "und" for unrecognized input other than 3-letter codes, which pass through.
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "und"
	}
	if e := lookup(code); e != nil {
		return e.code3
	}
	if len(code) == 3 {
		return code
	}
	return "und"
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

func isLetters(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
