package internal

import (
	"fmt"
	"time"
)

const (
	NumCategories    = 6
	CluesPerCategory = 5

	FirstRoundBase  = 200
	SecondRoundBase = 400

	FirstRoundWagerCap  = 1000
	SecondRoundWagerCap = 2000

	BuzzWindowDuration   = 5 * time.Second
	AnswerWindowDuration = 15 * time.Second

	// The reveal holds long enough for players to register their old score,
	// then the new one, before the board returns.
	ScoreRevealDuration   = 1 * time.Second
	BoardReturnDuration   = 4 * time.Second
	AnswerDisplayDuration = ScoreRevealDuration + BoardReturnDuration
	BuzzClaimDelay        = 250 * time.Millisecond
	FinalWagerWindow      = 15 * time.Second
	FinalAnswerWindow     = 30 * time.Second

	MaxSessionCodeLength = 5
)

type GamePhase string

const (
	PhaseLobby            GamePhase = "lobby"
	PhaseBoardLoading     GamePhase = "board_loading"
	PhaseBoardOpen        GamePhase = "board_open"
	PhaseClueOpen         GamePhase = "clue_open"
	PhaseDailyDoubleWager GamePhase = "daily_double_wager"
	PhaseAnswering        GamePhase = "answering"
	PhaseReveal           GamePhase = "reveal"
	PhaseRoundTransition  GamePhase = "round_transition"
	PhaseFinalWager       GamePhase = "final_wager"
	PhaseFinalAnswer      GamePhase = "final_answer"
	PhaseEnded            GamePhase = "ended"
)

type Round int

const (
	RoundFirst Round = iota + 1
	RoundSecond
	RoundFinal
)

// Base returns the dollar increment per price tier for a board round.
func (r Round) Base() int {
	if r == RoundSecond {
		return SecondRoundBase
	}
	return FirstRoundBase
}

// WagerCap returns the floor of the maximum wager for a round. The final
// round carries the second round's cap.
func (r Round) WagerCap() int {
	if r == RoundSecond || r == RoundFinal {
		return SecondRoundWagerCap
	}
	return FirstRoundWagerCap
}

// ClueID identifies a cell on the board, e.g. "category-3-price-4".
func ClueID(category, price int) string {
	return fmt.Sprintf("category-%d-price-%d", category, price)
}

// Clue is immutable once loaded except for its Used flag, which only the
// owning session flips.
type Clue struct {
	ID             string `json:"id"`
	CategoryTitle  string `json:"category_title"`
	Year           int    `json:"year"`
	Question       string `json:"question"`
	SpokenQuestion string `json:"spoken_question"`
	// RawAnswer is the reference answer text; players never see it.
	RawAnswer     string `json:"-"`
	DisplayAnswer string `json:"display_answer"`
	Used          bool   `json:"used"`
	DailyDouble   bool   `json:"daily_double"`
}

type Category struct {
	Title     string  `json:"title"`
	SourceID  int     `json:"source_id"`
	Year      int     `json:"year"`
	Clues     []*Clue `json:"clues"`
	Completed bool    `json:"completed"`
}

// Conn is the per-connection transport surface the engine depends on.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type Player struct {
	// ID is the transient connection identity; it changes on reconnect.
	ID   string `json:"id"`
	Name string `json:"name"`
	Conn Conn   `json:"-"`

	Score    int `json:"score"`
	Wager    int `json:"wager"`
	MaxWager int `json:"max_wager"`

	// Final round state
	FinalAnswer  string `json:"final_answer"`
	FinalCorrect bool   `json:"final_correct"`

	JoinedAt time.Time `json:"joined_at"`
}

// PublicPlayer strips the connection before a player is broadcast.
func (p *Player) PublicPlayer() *Player {
	return &Player{
		ID:           p.ID,
		Name:         p.Name,
		Score:        p.Score,
		Wager:        p.Wager,
		MaxWager:     p.MaxWager,
		FinalAnswer:  p.FinalAnswer,
		FinalCorrect: p.FinalCorrect,
		JoinedAt:     p.JoinedAt,
	}
}

// LeaderboardEntry is one ranked slot of a named leaderboard. Positions run
// 1..10, unique and contiguous, sorted descending by score.
type LeaderboardEntry struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}
