package document

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const fallbackBase = "itinerary"

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[^A-Za-z0-9_\-]`)
)

// Filename derives "<base>-itinerary.pdf" from a destination or title:
// first comma segment, accents folded, whitespace to underscores, anything else
// outside [A-Za-z0-9_-] dropped.
func Filename(title string) string {
	return FilenameBase(title) + "-itinerary.pdf"
}

func FilenameBase(title string) string {
	base := title
	if i := strings.Index(base, ","); i >= 0 {
		base = base[:i]
	}
	base = foldAccents(strings.TrimSpace(base))
	base = whitespaceRun.ReplaceAllString(base, "_")
	base = unsafeChars.ReplaceAllString(base, "")
	if strings.Trim(base, "_-") == "" {
		return fallbackBase
	}
	return base
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
