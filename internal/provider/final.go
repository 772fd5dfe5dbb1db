package provider

import (
	"fmt"

	"github.com/quizparty/trivia-backend/internal"
	"github.com/quizparty/trivia-backend/internal/answer"
)

// FinalClue is one entry of the curated final-round pool. Final clues are
// hand picked rather than drawn, so every game can end on a fair question.
type FinalClue struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// defaultFinalClues seeds the pool when no external list is configured.
var defaultFinalClues = []FinalClue{
	{
		Category: "State Capitals",
		Question: "This state capital is the only one in the United States without a McDonald's",
		Answer:   "Montpelier",
	},
	{
		Category: "World Leaders",
		Question: "He was the first president of the Fifth French Republic",
		Answer:   "Charles de Gaulle",
	},
	{
		Category: "American Literature",
		Question: "This 1925 novel opens with advice the narrator's father gave him about criticizing others",
		Answer:   "The Great Gatsby",
	},
	{
		Category: "The Calendar",
		Question: "The only month whose English name is also a command",
		Answer:   "March",
	},
	{
		Category: "Famous Ships",
		Question: "In 1492 this ship was the largest of a fleet of three and ran aground on Christmas Day",
		Answer:   "Santa Maria",
	},
	{
		Category: "The Elements",
		Question: "This element, atomic number 79, has the chemical symbol Au",
		Answer:   "Gold",
	},
}

// DrawFinalClue picks one clue from the final pool.
func (p *Provider) DrawFinalClue(pool []FinalClue) (*internal.Clue, error) {
	if len(pool) == 0 {
		pool = defaultFinalClues
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no final clues available", ErrExhausted)
	}

	picked := pool[p.randIntn(len(pool))]
	return &internal.Clue{
		ID:             "final",
		CategoryTitle:  answer.FormatDisplay(picked.Category),
		Question:       picked.Question,
		SpokenQuestion: answer.FormatSpoken(picked.Question),
		RawAnswer:      picked.Answer,
		DisplayAnswer:  answer.FormatDisplay(picked.Answer),
	}, nil
}
