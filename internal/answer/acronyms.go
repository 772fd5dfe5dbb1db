package answer

// aliasSets holds equivalence classes for historical figures that players
// habitually abbreviate. Both the reference answer and the submission must
// land in the same set.
var aliasSets = [][]string{
	{"jfk", "johnfkennedy", "kennedy", "johnfitzgeraldkennedy"},
	{"fdr", "franklindroosevelt", "roosevelt", "franklindelanoroosevelt"},
	{"lbj", "lyndonbjohnson", "johnson", "lyndonbainesjohnson"},
	{"mlk", "martinlutherking", "martinlutherkingjr", "drmartinlutherking"},
}

func sameAlias(expected, submitted string) bool {
	for _, set := range aliasSets {
		var hasExpected, hasSubmitted bool
		for _, alias := range set {
			if alias == expected {
				hasExpected = true
			}
			if alias == submitted {
				hasSubmitted = true
			}
		}
		if hasExpected && hasSubmitted {
			return true
		}
	}
	return false
}
