// Package provider draws candidate trivia categories from a clue source and
// filters out the ones that cannot be played as text.
package provider

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/quizparty/trivia-backend/internal"
	"github.com/quizparty/trivia-backend/internal/answer"
)

var (
	// ErrRejected marks a drawn category that failed approval.
	ErrRejected = errors.New("category rejected")
	// ErrExhausted marks a source that cannot produce a category at all.
	ErrExhausted = errors.New("clue source exhausted")
)

// RawClue mirrors one clue of the upstream archive payload.
type RawClue struct {
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	Value        int    `json:"value"`
	Airdate      string `json:"airdate"`
	InvalidCount *int   `json:"invalid_count"`
}

// RawCategory mirrors one category of the upstream archive payload.
type RawCategory struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	CluesCount int       `json:"clues_count"`
	Clues      []RawClue `json:"clues"`
}

// Source produces raw categories by archive ID.
type Source interface {
	Category(ctx context.Context, id int) (*RawCategory, error)
	// MaxID bounds the ID space random draws are taken from.
	MaxID() int
}

type Provider struct {
	src Source

	// MinYear rejects clues that first aired before this year.
	MinYear int

	randIntn func(n int) int
}

func New(src Source, minYear int) *Provider {
	return &Provider{src: src, MinYear: minYear, randIntn: rand.Intn}
}

// DrawCategory makes one random draw and runs it through approval. IDs in
// exclude are skipped so a game never fields the same category twice.
// Callers retry on ErrRejected within their own attempt budget.
func (p *Provider) DrawCategory(ctx context.Context, exclude map[int]bool) (*internal.Category, error) {
	id := p.randIntn(p.src.MaxID()) + 1
	if exclude[id] {
		return nil, fmt.Errorf("%w: category %d already drawn", ErrRejected, id)
	}

	raw, err := p.src.Category(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch category %d: %v", ErrRejected, id, err)
	}

	clues, err := p.pickClueWindow(raw)
	if err != nil {
		return nil, err
	}
	if err := approve(raw, clues, p.MinYear); err != nil {
		return nil, err
	}
	return convert(raw, clues), nil
}

// pickClueWindow selects an aligned run of five clues from a category that
// aired multiple times, so the five values line up with board rows.
func (p *Provider) pickClueWindow(raw *RawCategory) ([]RawClue, error) {
	if raw.CluesCount < internal.CluesPerCategory || len(raw.Clues) < internal.CluesPerCategory {
		return nil, fmt.Errorf("%w: category %d has %d clues", ErrRejected, raw.ID, len(raw.Clues))
	}

	windows := (len(raw.Clues) - internal.CluesPerCategory) / internal.CluesPerCategory
	start := p.randIntn(windows+1) * internal.CluesPerCategory
	return raw.Clues[start : start+internal.CluesPerCategory], nil
}

func approve(raw *RawCategory, clues []RawClue, minYear int) error {
	title := answer.Normalize(raw.Title)
	if strings.Contains(title, "logo") || strings.Contains(title, "video") {
		return fmt.Errorf("%w: category %d is a media category", ErrRejected, raw.ID)
	}

	for i, clue := range clues {
		question := answer.Normalize(clue.Question)
		if question == "" || clue.InvalidCount != nil {
			return fmt.Errorf("%w: category %d clue %d is invalid", ErrRejected, raw.ID, i)
		}
		if strings.Contains(question, "seenhere") ||
			strings.Contains(question, "picturedhere") ||
			strings.Contains(question, "heardhere") ||
			strings.Contains(question, "video") {
			return fmt.Errorf("%w: category %d clue %d needs media", ErrRejected, raw.ID, i)
		}
		if airYear(clue.Airdate) < minYear {
			return fmt.Errorf("%w: category %d clue %d aired before %d", ErrRejected, raw.ID, i, minYear)
		}
	}
	return nil
}

func airYear(airdate string) int {
	if len(airdate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(airdate[:4])
	if err != nil {
		return 0
	}
	return year
}

func convert(raw *RawCategory, clues []RawClue) *internal.Category {
	cat := &internal.Category{
		Title:    answer.FormatDisplay(raw.Title),
		SourceID: raw.ID,
		Year:     airYear(clues[0].Airdate),
	}
	for _, clue := range clues {
		cat.Clues = append(cat.Clues, &internal.Clue{
			CategoryTitle:  cat.Title,
			Year:           airYear(clue.Airdate),
			Question:       strings.TrimSpace(clue.Question),
			SpokenQuestion: answer.FormatSpoken(clue.Question),
			RawAnswer:      clue.Answer,
			DisplayAnswer:  answer.FormatDisplay(clue.Answer),
		})
	}
	return cat
}
