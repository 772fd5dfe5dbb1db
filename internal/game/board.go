package game

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/quizparty/trivia-backend/internal"
	"github.com/quizparty/trivia-backend/internal/provider"
)

// defaultDrawBudget bounds how many draws a board build may burn before the
// source counts as exhausted.
const defaultDrawBudget = 1000

// dailyDoubleWeights is the chance of a daily double landing on each board
// row, top to bottom. Cheap clues rarely hide one.
var dailyDoubleWeights = [internal.CluesPerCategory]float64{0.05, 0.20, 0.40, 0.20, 0.15}

// GameBoards is everything a full game needs: both round boards plus the
// final clue.
type GameBoards struct {
	FirstRound  []*internal.Category
	SecondRound []*internal.Category
	Final       *internal.Clue
}

type BoardBuilder struct {
	Provider *provider.Provider
	Budget   int

	randIntn  func(n int) int
	randFloat func() float64
}

func NewBoardBuilder(p *provider.Provider) *BoardBuilder {
	return &BoardBuilder{
		Provider:  p,
		Budget:    defaultDrawBudget,
		randIntn:  rand.Intn,
		randFloat: rand.Float64,
	}
}

// Build draws thirteen approved categories with distinct source IDs, six per
// round plus one reserved for the final clue, lays out clue IDs, and hides
// the daily doubles.
func (b *BoardBuilder) Build(ctx context.Context) (*GameBoards, error) {
	exclude := make(map[int]bool)
	attempts := 0

	draw := func() (*internal.Category, error) {
		for {
			if attempts >= b.Budget {
				return nil, fmt.Errorf("%w: gave up after %d draws", provider.ErrExhausted, attempts)
			}
			attempts++
			cat, err := b.Provider.DrawCategory(ctx, exclude)
			if err == nil {
				exclude[cat.SourceID] = true
				return cat, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}
	}

	boards := &GameBoards{}
	for i := 0; i < internal.NumCategories; i++ {
		cat, err := draw()
		if err != nil {
			return nil, err
		}
		boards.FirstRound = append(boards.FirstRound, cat)
	}
	for i := 0; i < internal.NumCategories; i++ {
		cat, err := draw()
		if err != nil {
			return nil, err
		}
		boards.SecondRound = append(boards.SecondRound, cat)
	}

	// The final clue is the hardest clue of one more reserved category. When
	// the source cannot supply one, the curated pool steps in.
	if reserved, err := draw(); err == nil {
		final := reserved.Clues[internal.CluesPerCategory-1]
		final.ID = "final"
		boards.Final = final
	} else {
		final, err := b.Provider.DrawFinalClue(nil)
		if err != nil {
			return nil, err
		}
		boards.Final = final
	}

	assignClueIDs(boards.FirstRound)
	assignClueIDs(boards.SecondRound)
	b.placeDailyDoubles(boards)

	return boards, nil
}

// assignClueIDs stamps every cell with its board coordinate ID, 1-based.
func assignClueIDs(categories []*internal.Category) {
	for ci, cat := range categories {
		for ri, clue := range cat.Clues {
			clue.ID = internal.ClueID(ci+1, ri+1)
		}
	}
}

// weightedClueRow draws a row index 0..4 from the daily double distribution.
func (b *BoardBuilder) weightedClueRow() int {
	r := b.randFloat()
	sum := 0.0
	for row, weight := range dailyDoubleWeights {
		sum += weight
		if r <= sum {
			return row
		}
	}
	return len(dailyDoubleWeights) - 1
}

// placeDailyDoubles hides one daily double in the first round and two in the
// second, the second pair always in distinct categories.
func (b *BoardBuilder) placeDailyDoubles(boards *GameBoards) {
	boards.FirstRound[b.randIntn(internal.NumCategories)].Clues[b.weightedClueRow()].DailyDouble = true

	first := b.randIntn(internal.NumCategories)
	boards.SecondRound[first].Clues[b.weightedClueRow()].DailyDouble = true

	second := first
	for second == first {
		second = b.randIntn(internal.NumCategories)
	}
	boards.SecondRound[second].Clues[b.weightedClueRow()].DailyDouble = true
}

// findClue locates a clue by its board ID in the given categories.
func findClue(categories []*internal.Category, clueID string) *internal.Clue {
	for _, cat := range categories {
		for _, clue := range cat.Clues {
			if clue.ID == clueID {
				return clue
			}
		}
	}
	return nil
}

// boardState summarizes the given categories for broadcast. Callers hold the
// session lock.
func boardState(categories []*internal.Category, controller *internal.Player) internal.BoardStateData {
	state := internal.BoardStateData{
		UsedClues: make(map[string][]string),
	}
	for _, cat := range categories {
		state.CategoryTitles = append(state.CategoryTitles, cat.Title)
		state.CategoryYears = append(state.CategoryYears, cat.Year)
		for _, clue := range cat.Clues {
			if clue.Used {
				state.UsedClues[cat.Title] = append(state.UsedClues[cat.Title], clue.ID)
			} else {
				state.RemainingClues = append(state.RemainingClues, clue.ID)
			}
		}
	}
	if controller != nil {
		state.ControllerID = controller.ID
		state.ControllerName = controller.Name
	}
	return state
}
