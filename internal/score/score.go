// Package score holds the arithmetic for clue values, wagers, and score
// adjustments.
package score

import (
	"strconv"
	"strings"

	"github.com/quizparty/trivia-backend/internal"
)

// ClueValue is the dollar value of a board clue at the given row multiplier
// (1..5) for the given round.
func ClueValue(multiplier int, round internal.Round) int {
	return round.Base() * multiplier
}

// Delta is the signed score change for an answer worth value dollars.
func Delta(value int, correct bool) int {
	if correct {
		return value
	}
	return -value
}

// MaxWager caps a daily double or final wager: the player's score, but never
// less than the round's floor, so a trailing player can still bet.
func MaxWager(playerScore int, round internal.Round) int {
	if playerScore > round.WagerCap() {
		return playerScore
	}
	return round.WagerCap()
}

// ClampWager parses a submitted wager and forces it into [0, max]. Anything
// unparseable counts as the minimum.
func ClampWager(raw string, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}
