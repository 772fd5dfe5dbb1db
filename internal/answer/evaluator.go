package answer

import "strings"

// Evaluate reports whether a submitted answer is close enough to the
// reference answer. The rules form a leniency ladder; each rule only runs
// if the ones above it did not decide:
//
//  1. A short submission (raw length <= 2) or one that merely echoes the
//     category title is rejected outright, so a category like "Men named
//     Jack" cannot be gamed by answering "Jack".
//  2. Exact normalized match.
//  3. Substring tolerance in either direction.
//  4. Known acronym/alias equivalence (JFK and friends).
//  5. Numeral/word-form cross-conversion, retrying the containment check.
func Evaluate(expectedRaw, submitted, categoryTitle string) bool {
	expected := Normalize(expectedRaw)
	got := Normalize(submitted)
	category := Normalize(categoryTitle)

	if got == "" || expected == "" {
		return false
	}

	if len(submitted) <= 2 {
		return false
	}
	if category != "" && strings.Contains(category, got) {
		return false
	}

	if got == expected {
		return true
	}

	if strings.Contains(expected, got) || strings.Contains(got, expected) {
		return true
	}

	if sameAlias(expected, got) {
		return true
	}

	if !isNumeric(got) {
		expectedDigits := Normalize(wordsToDigits(normalizeSpaced(expectedRaw)))
		gotDigits := Normalize(wordsToDigits(normalizeSpaced(submitted)))
		if strings.Contains(expectedDigits, got) || strings.Contains(gotDigits, expected) {
			return true
		}
		return false
	}

	return strings.Contains(expected, digitsToWords(got))
}
