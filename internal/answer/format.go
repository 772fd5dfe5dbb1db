// Package answer normalizes free-text trivia answers and scores a submitted
// answer against the reference answer with a tolerant, ordered matching policy.
package answer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	accentFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	punctuation = regexp.MustCompile("[.,/#!$%^&*;:\"'{}=\\-_`~()?]")
	underscores = regexp.MustCompile(`_+`)
	ellipses    = regexp.MustCompile(`\.+`)
)

// fillerTokens are dropped wherever they appear; leadingFillers only come
// off the front, so "Santa Maria" keeps its interior letters intact.
var (
	fillerTokens   = map[string]bool{"and": true, "the": true, "v": true, "vs": true}
	leadingFillers = map[string]bool{"a": true, "an": true}
)

func stripAccents(s string) string {
	folded, _, err := transform.String(accentFold, s)
	if err != nil {
		return s
	}
	return folded
}

func stripMarkup(s string) string {
	s = strings.ReplaceAll(s, "<i>", "")
	s = strings.ReplaceAll(s, "</i>", "")
	s = strings.ReplaceAll(s, "\\", "")
	return s
}

// normalizeSpaced lowers, folds accents, strips markup and punctuation, and
// removes filler words, keeping single spaces between the remaining tokens.
func normalizeSpaced(s string) string {
	out := strings.ToLower(s)
	out = stripAccents(out)
	out = stripMarkup(out)
	out = punctuation.ReplaceAllString(out, " ")

	var kept []string
	lead := true
	for _, tok := range strings.Fields(out) {
		if fillerTokens[tok] || (lead && leadingFillers[tok]) {
			continue
		}
		lead = false
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// Normalize produces the raw comparison form: normalizeSpaced with every
// space removed. Idempotent.
func Normalize(s string) string {
	return strings.ReplaceAll(normalizeSpaced(s), " ", "")
}

// FormatDisplay produces the answer text shown on screen after a reveal.
func FormatDisplay(s string) string {
	out := strings.ToUpper(s)
	out = strings.ReplaceAll(out, "\\", "")
	out = strings.ReplaceAll(out, "<I>", "")
	out = strings.ReplaceAll(out, "</I>", "")
	out = strings.ReplaceAll(out, "\"", "")
	out = strings.ReplaceAll(out, "'", "")
	return out
}

// FormatSpoken rewrites question text for speech synthesis: blank runs are
// read as "blank", ellipses become a pause.
func FormatSpoken(s string) string {
	out := strings.ToLower(s)
	out = stripAccents(out)
	out = strings.ReplaceAll(out, "<i>", "")
	out = strings.ReplaceAll(out, "</i>", "")
	out = underscores.ReplaceAllString(out, "blank")
	out = ellipses.ReplaceAllString(out, ",")
	return out
}
