package internal

// Message is the envelope for every event crossing the transport boundary,
// in both directions.
type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

type PlayerJoinedData struct {
	Player      *Player `json:"player"`
	PlayerCount int     `json:"player_count"`
	Connected   bool    `json:"connected"`
}

type PlayerLeftData struct {
	PlayerID      string  `json:"player_id"`
	Name          string  `json:"name"`
	PlayerCount   int     `json:"player_count"`
	NewController *Player `json:"new_controller,omitempty"` // if the leaving player held the board
}

type BoardStateData struct {
	CategoryTitles []string            `json:"category_titles"`
	CategoryYears  []int               `json:"category_years"`
	UsedClues      map[string][]string `json:"used_clues"`
	RemainingClues []string            `json:"remaining_clues"`
	ControllerID   string              `json:"controller_id"`
	ControllerName string              `json:"controller_name"`
}

type ClueRevealData struct {
	ClueID   string `json:"clue_id"`
	Question string `json:"question"`
	Spoken   string `json:"spoken_question,omitempty"`
}

type WagerPromptData struct {
	CategoryTitle string  `json:"category_title"`
	Player        *Player `json:"player"`
	MaxWager      int     `json:"max_wager"`
}

type AnswerResultData struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Answer   string `json:"answer"`
	Correct  bool   `json:"correct"`
	Score    int    `json:"score"`
}

type CorrectAnswerData struct {
	Answer   string `json:"answer"`
	TimedOut bool   `json:"timed_out"`
}

// LivefeedData mirrors a player's in-progress input on the host screen.
type LivefeedData struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Text     string `json:"text"`
}

type BuzzersReadyData struct {
	AttemptedIDs []string `json:"attempted_ids"`
}

type FinalWagerPromptData struct {
	Players map[string]*Player `json:"players"`
}

type FinalResultsData struct {
	Players map[string]*Player `json:"players"`
}

type LeaderboardData struct {
	Week    []LeaderboardEntry `json:"week"`
	Month   []LeaderboardEntry `json:"month"`
	AllTime []LeaderboardEntry `json:"all_time"`
}
