package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Beatles", "beatles"},
		{"<i>Café</i> Terrace", "cafeterrace"},
		{"Brown v. Board of Education", "brownboardofeducation"},
		{"O'Brien", "obrien"},
		{"  spaced   out  ", "spacedout"},
		{"A Christmas Carol", "christmascarol"},
		// Articles only come off the front, never out of the middle of words.
		{"Santa Maria", "santamaria"},
		{"Anna and the King", "annaking"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	once := Normalize("The Grapes of Wrath")
	assert.Equal(t, once, Normalize(once))
}

func TestEvaluateExactMatch(t *testing.T) {
	assert.True(t, Evaluate("Mount Everest", "mount everest", "World Geography"))
	assert.True(t, Evaluate("Café au lait", "cafe au lait", "Beverages"))
}

func TestEvaluateCategoryEcho(t *testing.T) {
	// Echoing the category title is never accepted, even verbatim.
	assert.False(t, Evaluate("JACK", "JACK", "Men named Jack"))

	// A full answer that happens to contain a category word still passes.
	assert.True(t, Evaluate("Jack Nicholson", "Jack Nicholson", "Men named Jack"))
}

func TestEvaluateShortSubmission(t *testing.T) {
	assert.False(t, Evaluate("Oz", "oz", "Fictional Lands"))
	assert.False(t, Evaluate("Mount Everest", "mt", "World Geography"))
}

func TestEvaluateSubstringTolerance(t *testing.T) {
	assert.True(t, Evaluate("Jack Nicholson", "nicholson", "Famous Actors"))
	assert.True(t, Evaluate("Nicholson", "jack nicholson", "Famous Actors"))

	// Commutative under the containment rule.
	a, b := "Harry S Truman", "Truman"
	assert.Equal(t,
		Evaluate(a, b, "Presidents"),
		Evaluate(b, a, "Presidents"))
}

func TestEvaluateAliases(t *testing.T) {
	assert.True(t, Evaluate("John F. Kennedy", "JFK", "US Presidents"))
	assert.True(t, Evaluate("jfk", "John Fitzgerald Kennedy", "US Presidents"))
	assert.True(t, Evaluate("Franklin Delano Roosevelt", "FDR", "US Presidents"))
	assert.False(t, Evaluate("John F. Kennedy", "LBJ", "US Presidents"))
}

func TestEvaluateNumberConversion(t *testing.T) {
	// Spelled-out submission against digit reference.
	assert.True(t, Evaluate("1963", "nineteen sixty three", "History"))

	// Digit submission against spelled-out reference.
	assert.True(t, Evaluate("one hundred", "100", "Math"))

	assert.False(t, Evaluate("1963", "nineteen sixty four", "History"))
}

func TestEvaluateMiss(t *testing.T) {
	assert.False(t, Evaluate("Mount Everest", "kilimanjaro", "World Geography"))
}

func TestWordsToDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"nineteen sixty three", "1963"},
		{"sixty three", "63"},
		{"one hundred", "100"},
		{"two thousand", "2000"},
		{"no numbers here", "no numbers here"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, wordsToDigits(tt.in), "wordsToDigits(%q)", tt.in)
	}
}

func TestFormatDisplay(t *testing.T) {
	assert.Equal(t, "THE GREAT GATSBY", FormatDisplay(`<I>The Great "Gatsby"</I>`))
}

func TestFormatSpoken(t *testing.T) {
	assert.Equal(t, "fill in the blank", FormatSpoken("Fill in the ____"))
}
