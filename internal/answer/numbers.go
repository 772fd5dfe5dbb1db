package answer

import (
	"strconv"
	"strings"

	"github.com/divan/num2words"
)

var unitWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func numberWordValue(w string) (int, bool) {
	if v, ok := unitWords[w]; ok {
		return v, true
	}
	if v, ok := tensWords[w]; ok {
		return v, true
	}
	return 0, false
}

// wordsToDigits replaces runs of spelled-out numbers in a spaced, normalized
// string with their digit form ("nineteen sixty three" stays two numbers:
// "19 63" is wrong for years, so adjacent simple values concatenate the way
// they are spoken: 19 then 63 -> "1963").
func wordsToDigits(spaced string) string {
	tokens := strings.Fields(spaced)
	var out []string

	flushRun := func(run []int) {
		if len(run) == 0 {
			return
		}
		var b strings.Builder
		for _, n := range run {
			b.WriteString(strconv.Itoa(n))
		}
		out = append(out, b.String())
	}

	var run []int // accumulated spoken values, concatenated on flush
	cur := -1     // value being built from tens+units, -1 when empty
	flushCur := func() {
		if cur >= 0 {
			run = append(run, cur)
			cur = -1
		}
	}

	for _, tok := range tokens {
		switch {
		case tok == "hundred":
			if cur < 0 {
				cur = 1
			}
			cur *= 100
		case tok == "thousand":
			if cur < 0 {
				cur = 1
			}
			cur *= 1000
		case tok == "million":
			if cur < 0 {
				cur = 1
			}
			cur *= 1000000
		default:
			if v, ok := numberWordValue(tok); ok {
				if cur >= 0 && cur >= 20 && v < 10 {
					// "sixty three" -> 63
					cur += v
				} else {
					flushCur()
					cur = v
				}
			} else {
				flushCur()
				flushRun(run)
				run = nil
				out = append(out, tok)
			}
		}
	}
	flushCur()
	flushRun(run)

	return strings.Join(out, " ")
}

// digitsToWords spells a digit string out and returns its normalized
// comparison form, e.g. "63" -> "sixtythree".
func digitsToWords(digits string) string {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return digits
	}
	return Normalize(num2words.Convert(n))
}
