package game

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/quizparty/trivia-backend/internal"
	"github.com/quizparty/trivia-backend/internal/answer"
	"github.com/quizparty/trivia-backend/internal/leaderboard"
	"github.com/quizparty/trivia-backend/internal/score"
)

const maxNameLength = 20

// Session is one running game. All state behind mu; public methods lock,
// mutate, snapshot what they need, then broadcast outside the lock. Requests
// that do not fit the current phase are dropped silently, so a stale or
// malicious client cannot corrupt the game.
type Session struct {
	Code      string
	CreatedAt time.Time

	mu     sync.RWMutex
	phase  internal.GamePhase
	round  internal.Round
	roster *Roster
	host   internal.Conn

	boards       *GameBoards
	controllerID string
	currentClue  *internal.Clue
	clueValue    int
	answererID   string
	buzzable     bool
	attempted    map[string]bool

	finalAwaiting map[string]bool

	timer        *phaseTimer
	lastActivity time.Time

	builder *BoardBuilder
	lb      *leaderboard.Leaderboard
}

func NewSession(code string, builder *BoardBuilder, lb *leaderboard.Leaderboard) *Session {
	return &Session{
		Code:         code,
		CreatedAt:    time.Now(),
		phase:        internal.PhaseLobby,
		round:        internal.RoundFirst,
		roster:       NewRoster(),
		builder:      builder,
		lb:           lb,
		lastActivity: time.Now(),
	}
}

func (s *Session) Phase() internal.GamePhase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// ActivePlayers returns broadcast-safe snapshots of the connected players.
func (s *Session) ActivePlayers() []*internal.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*internal.Player, 0, s.roster.Count())
	for _, p := range s.roster.Active() {
		players = append(players, p.PublicPlayer())
	}
	return players
}

func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

func (s *Session) touch() {
	s.lastActivity = time.Now()
}

// AttachHost binds the host screen connection. A session has exactly one
// host; a reconnecting host replaces the old connection and gets the current
// board state back.
func (s *Session) AttachHost(conn internal.Conn) {
	s.mu.Lock()
	s.host = conn
	s.touch()
	inGame := s.boards != nil && s.phase != internal.PhaseLobby
	var state internal.BoardStateData
	if inGame {
		state = s.boardStateLocked()
	}
	s.mu.Unlock()

	if inGame {
		deliver(conn, "board_state", state)
	}
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Player"
	}
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	return name
}

// Join adds a player during the lobby and returns the reconnect token.
func (s *Session) Join(id, name string, conn internal.Conn) (string, bool) {
	s.mu.Lock()
	if s.phase != internal.PhaseLobby {
		s.mu.Unlock()
		log.Printf("[Join] session=%s: rejected join in phase %s", s.Code, s.phase)
		return "", false
	}

	player := &internal.Player{
		ID:       id,
		Name:     cleanName(name),
		Conn:     conn,
		JoinedAt: time.Now(),
	}
	token := s.roster.Add(player)
	if s.controllerID == "" {
		s.controllerID = id
	}
	count := s.roster.Count()
	s.touch()
	public := player.PublicPlayer()
	s.mu.Unlock()

	log.Printf("[Join] session=%s: player %s (%s) joined, count=%d", s.Code, player.Name, id, count)
	s.broadcast("player_joined", internal.PlayerJoinedData{
		Player:      public,
		PlayerCount: count,
		Connected:   true,
	})
	return token, true
}

// Reconnect reattaches an archived player on a new connection, replaying the
// state it needs to rejoin the game in progress.
func (s *Session) Reconnect(token, newID string, conn internal.Conn) (*internal.Player, bool) {
	s.mu.Lock()
	player, ok := s.roster.Restore(token, newID, conn)
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	count := s.roster.Count()
	s.touch()
	inGame := s.boards != nil && s.phase != internal.PhaseLobby
	var state internal.BoardStateData
	if inGame {
		state = s.boardStateLocked()
	}
	public := player.PublicPlayer()
	s.mu.Unlock()

	log.Printf("[Reconnect] session=%s: player %s back as %s", s.Code, player.Name, newID)
	if inGame {
		deliver(conn, "board_state", state)
	}
	s.broadcast("player_joined", internal.PlayerJoinedData{
		Player:      public,
		PlayerCount: count,
		Connected:   true,
	})
	return player, true
}

// Start moves the lobby into board loading and builds both boards off the
// session goroutine. Loading failure returns the session to the lobby so the
// host can try again.
func (s *Session) Start() {
	s.mu.Lock()
	if s.phase != internal.PhaseLobby || s.roster.Count() == 0 {
		s.mu.Unlock()
		return
	}
	s.phase = internal.PhaseBoardLoading
	s.touch()
	s.mu.Unlock()

	log.Printf("[Start] session=%s: loading boards", s.Code)
	s.broadcast("board_loading", nil)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		boards, err := s.builder.Build(ctx)

		s.mu.Lock()
		if s.phase != internal.PhaseBoardLoading {
			s.mu.Unlock()
			return
		}
		if err != nil {
			s.phase = internal.PhaseLobby
			s.mu.Unlock()
			log.Printf("[Start] session=%s: board load failed: %v", s.Code, err)
			s.broadcast("board_load_failed", nil)
			return
		}
		s.boards = boards
		s.round = internal.RoundFirst
		s.phase = internal.PhaseBoardOpen
		state := s.boardStateLocked()
		s.mu.Unlock()

		log.Printf("[Start] session=%s: first round open", s.Code)
		s.broadcast("round_started", int(internal.RoundFirst))
		s.broadcast("board_state", state)
	}()
}

func (s *Session) categoriesLocked() []*internal.Category {
	if s.boards == nil {
		return nil
	}
	if s.round == internal.RoundSecond {
		return s.boards.SecondRound
	}
	return s.boards.FirstRound
}

func (s *Session) boardStateLocked() internal.BoardStateData {
	var controller *internal.Player
	if p, ok := s.roster.Get(s.controllerID); ok {
		controller = p
	}
	return boardState(s.categoriesLocked(), controller)
}

// RequestClue opens a board cell. Only the board controller may pick, only
// while the board is open, and only an unused cell.
func (s *Session) RequestClue(playerID, clueID string) {
	s.mu.Lock()
	if s.phase != internal.PhaseBoardOpen || playerID != s.controllerID {
		s.mu.Unlock()
		return
	}
	clue := findClue(s.categoriesLocked(), clueID)
	if clue == nil || clue.Used {
		s.mu.Unlock()
		return
	}

	clue.Used = true
	s.currentClue = clue
	s.clueValue = score.ClueValue(clueRow(clueID), s.round)
	s.attempted = make(map[string]bool)
	s.touch()

	if clue.DailyDouble {
		s.phase = internal.PhaseDailyDoubleWager
		s.answererID = playerID
		player, _ := s.roster.Get(playerID)
		player.MaxWager = score.MaxWager(player.Score, s.round)
		prompt := internal.WagerPromptData{
			CategoryTitle: clue.CategoryTitle,
			Player:        player.PublicPlayer(),
			MaxWager:      player.MaxWager,
		}
		s.mu.Unlock()

		log.Printf("[RequestClue] session=%s: daily double under %s", s.Code, clueID)
		s.broadcast("daily_double", prompt)
		s.startTimer(internal.FinalWagerWindow, func() { s.SubmitWager(playerID, "0") })
		return
	}

	s.phase = internal.PhaseClueOpen
	s.buzzable = true
	s.answererID = ""
	reveal := internal.ClueRevealData{
		ClueID:   clue.ID,
		Question: clue.Question,
		Spoken:   clue.SpokenQuestion,
	}
	s.mu.Unlock()

	log.Printf("[RequestClue] session=%s: clue %s open", s.Code, clueID)
	s.broadcast("clue_revealed", reveal)
	s.broadcast("buzzers_open", nil)
	s.startTimer(internal.BuzzWindowDuration, s.expireBuzzWindow)
}

// clueRow extracts the 1-based price row from a board cell ID.
func clueRow(clueID string) int {
	idx := strings.LastIndex(clueID, "-")
	if idx < 0 || idx+1 >= len(clueID) {
		return 1
	}
	switch clueID[idx+1:] {
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	case "5":
		return 5
	}
	return 1
}

// Buzz claims the open clue for a player. First buzz wins; the answer prompt
// goes out after a short claim delay so late buzzes on the wire settle.
func (s *Session) Buzz(playerID string) {
	s.mu.Lock()
	if s.phase != internal.PhaseClueOpen || !s.buzzable || s.attempted[playerID] {
		s.mu.Unlock()
		return
	}
	player, ok := s.roster.Get(playerID)
	if !ok {
		s.mu.Unlock()
		return
	}
	s.buzzable = false
	s.answererID = playerID
	s.phase = internal.PhaseAnswering
	s.touch()
	public := player.PublicPlayer()
	s.mu.Unlock()

	s.cancelTimer()
	log.Printf("[Buzz] session=%s: %s buzzed in", s.Code, public.Name)
	s.broadcast("player_buzzed", public)

	time.AfterFunc(internal.BuzzClaimDelay, func() {
		s.mu.RLock()
		stillAnswering := s.phase == internal.PhaseAnswering && s.answererID == playerID
		s.mu.RUnlock()
		if !stillAnswering {
			return
		}
		s.toPlayer(playerID, "answer_prompt", nil)
		s.startTimer(internal.AnswerWindowDuration, func() { s.resolveAnswer(playerID, "", true) })
	})
}

// SubmitWager locks in a daily double wager and reveals the clue.
func (s *Session) SubmitWager(playerID, raw string) {
	s.mu.Lock()
	if s.phase != internal.PhaseDailyDoubleWager || playerID != s.answererID {
		s.mu.Unlock()
		return
	}
	player, ok := s.roster.Get(playerID)
	if !ok {
		s.mu.Unlock()
		return
	}
	wager := score.ClampWager(raw, player.MaxWager)
	player.Wager = wager
	s.clueValue = wager
	s.phase = internal.PhaseAnswering
	s.touch()
	reveal := internal.ClueRevealData{
		ClueID:   s.currentClue.ID,
		Question: s.currentClue.Question,
		Spoken:   s.currentClue.SpokenQuestion,
	}
	s.mu.Unlock()

	s.cancelTimer()
	log.Printf("[SubmitWager] session=%s: %s wagered %d", s.Code, playerID, wager)
	s.broadcast("clue_revealed", reveal)
	s.startTimer(internal.AnswerWindowDuration, func() { s.resolveAnswer(playerID, "", true) })
}

// SubmitAnswer scores the current answerer's submission.
func (s *Session) SubmitAnswer(playerID, text string) {
	s.resolveAnswer(playerID, text, false)
}

// resolveAnswer applies one answer attempt, then either returns the clue to
// the remaining buzzers or reveals the correct answer.
func (s *Session) resolveAnswer(playerID, text string, timedOut bool) {
	s.mu.Lock()
	if s.phase != internal.PhaseAnswering || playerID != s.answererID {
		s.mu.Unlock()
		return
	}
	player, ok := s.roster.Get(playerID)
	if !ok {
		s.mu.Unlock()
		return
	}
	clue := s.currentClue
	correct := !timedOut && answer.Evaluate(clue.RawAnswer, text, clue.CategoryTitle)
	player.Score += score.Delta(s.clueValue, correct)
	s.touch()

	result := internal.AnswerResultData{
		PlayerID: playerID,
		Name:     player.Name,
		Answer:   text,
		Correct:  correct,
		Score:    player.Score,
	}

	if correct {
		s.controllerID = playerID
		s.phase = internal.PhaseReveal
		s.answererID = ""
		reveal := internal.CorrectAnswerData{Answer: clue.DisplayAnswer}
		s.mu.Unlock()

		s.cancelTimer()
		s.broadcast("answer_result", result)
		s.broadcast("correct_answer", reveal)
		s.startTimer(internal.AnswerDisplayDuration, s.returnToBoard)
		return
	}

	s.attempted[playerID] = true
	s.answererID = ""

	// A missed daily double never reopens; everyone else already had no shot.
	exhausted := clue.DailyDouble || len(s.attempted) >= s.roster.Count()
	if exhausted {
		s.phase = internal.PhaseReveal
		reveal := internal.CorrectAnswerData{Answer: clue.DisplayAnswer, TimedOut: timedOut}
		s.mu.Unlock()

		s.cancelTimer()
		s.broadcast("answer_result", result)
		s.broadcast("correct_answer", reveal)
		s.startTimer(internal.AnswerDisplayDuration, s.returnToBoard)
		return
	}

	s.phase = internal.PhaseClueOpen
	s.buzzable = true
	attemptedIDs := make([]string, 0, len(s.attempted))
	for id := range s.attempted {
		attemptedIDs = append(attemptedIDs, id)
	}
	s.mu.Unlock()

	s.cancelTimer()
	s.broadcast("answer_result", result)
	s.broadcast("buzzers_ready", internal.BuzzersReadyData{AttemptedIDs: attemptedIDs})
	s.startTimer(internal.BuzzWindowDuration, s.expireBuzzWindow)
}

// AnswerLivefeed mirrors in-progress answer typing on the host screen so
// the room can watch along. Only the player whose turn it is gets through.
func (s *Session) AnswerLivefeed(playerID, text string) {
	s.mu.RLock()
	allowed := (s.phase == internal.PhaseAnswering && s.answererID == playerID) ||
		(s.phase == internal.PhaseFinalAnswer && s.finalAwaiting[playerID])
	var name string
	if p, ok := s.roster.Get(playerID); ok {
		name = p.Name
	} else {
		allowed = false
	}
	s.mu.RUnlock()
	if !allowed {
		return
	}
	s.toHost("answer_livefeed", internal.LivefeedData{PlayerID: playerID, Name: name, Text: text})
}

// WagerLivefeed mirrors in-progress wager typing on the host screen.
func (s *Session) WagerLivefeed(playerID, text string) {
	s.mu.RLock()
	allowed := (s.phase == internal.PhaseDailyDoubleWager && s.answererID == playerID) ||
		(s.phase == internal.PhaseFinalWager && s.finalAwaiting[playerID])
	var name string
	if p, ok := s.roster.Get(playerID); ok {
		name = p.Name
	} else {
		allowed = false
	}
	s.mu.RUnlock()
	if !allowed {
		return
	}
	s.toHost("wager_livefeed", internal.LivefeedData{PlayerID: playerID, Name: name, Text: text})
}

// expireBuzzWindow closes an unclaimed clue.
func (s *Session) expireBuzzWindow() {
	s.mu.Lock()
	if s.phase != internal.PhaseClueOpen || s.currentClue == nil {
		s.mu.Unlock()
		return
	}
	s.phase = internal.PhaseReveal
	s.buzzable = false
	reveal := internal.CorrectAnswerData{Answer: s.currentClue.DisplayAnswer, TimedOut: true}
	s.mu.Unlock()

	log.Printf("[expireBuzzWindow] session=%s: no takers", s.Code)
	s.broadcast("correct_answer", reveal)
	s.startTimer(internal.AnswerDisplayDuration, s.returnToBoard)
}

// returnToBoard ends the reveal: back to the open board, into the next
// round, or into the final when the second board is spent.
func (s *Session) returnToBoard() {
	s.mu.Lock()
	if s.phase != internal.PhaseReveal {
		s.mu.Unlock()
		return
	}
	s.currentClue = nil

	if s.boardSpentLocked() {
		if s.round == internal.RoundFirst {
			s.round = internal.RoundSecond
			s.phase = internal.PhaseRoundTransition
			if lowest := s.roster.LowestScore(); lowest != nil {
				s.controllerID = lowest.ID
			}
			s.mu.Unlock()

			log.Printf("[returnToBoard] session=%s: second round", s.Code)
			s.broadcast("round_started", int(internal.RoundSecond))
			s.startTimer(internal.BoardReturnDuration, s.openBoard)
			return
		}
		s.mu.Unlock()
		s.startFinalRound()
		return
	}

	s.phase = internal.PhaseBoardOpen
	state := s.boardStateLocked()
	s.mu.Unlock()

	s.broadcast("board_state", state)
}

// openBoard finishes a round transition.
func (s *Session) openBoard() {
	s.mu.Lock()
	if s.phase != internal.PhaseRoundTransition {
		s.mu.Unlock()
		return
	}
	s.phase = internal.PhaseBoardOpen
	state := s.boardStateLocked()
	s.mu.Unlock()

	s.broadcast("board_state", state)
}

func (s *Session) boardSpentLocked() bool {
	for _, cat := range s.categoriesLocked() {
		for _, clue := range cat.Clues {
			if !clue.Used {
				return false
			}
		}
	}
	return true
}

// HandleDisconnect archives a dropped player. A player mid-answer counts as
// an incorrect answer first so the clue resolves; board control fails over
// to the earliest remaining player.
func (s *Session) HandleDisconnect(connID string) {
	s.mu.RLock()
	answering := s.phase == internal.PhaseAnswering && s.answererID == connID
	wagering := s.phase == internal.PhaseDailyDoubleWager && s.answererID == connID
	s.mu.RUnlock()

	if wagering {
		s.SubmitWager(connID, "0")
		answering = true
	}
	if answering {
		s.resolveAnswer(connID, "", true)
	}

	s.mu.Lock()
	player, ok := s.roster.Archive(connID)
	if !ok {
		s.mu.Unlock()
		return
	}
	count := s.roster.Count()
	var newController *internal.Player
	if s.controllerID == connID {
		if next := s.roster.FirstActive(); next != nil {
			s.controllerID = next.ID
			newController = next.PublicPlayer()
		} else {
			s.controllerID = ""
		}
	}
	if s.finalAwaiting != nil {
		delete(s.finalAwaiting, connID)
	}
	// A gone player no longer counts toward clue exhaustion.
	delete(s.attempted, connID)
	s.touch()
	left := internal.PlayerLeftData{
		PlayerID:      connID,
		Name:          player.Name,
		PlayerCount:   count,
		NewController: newController,
	}
	s.mu.Unlock()

	log.Printf("[HandleDisconnect] session=%s: %s left, count=%d", s.Code, player.Name, count)
	s.broadcast("player_left", left)

	if count == 0 {
		s.endSession("last player left")
	}
}

// HandleHostDisconnect ends the session: without a host screen there is no
// board to play on.
func (s *Session) HandleHostDisconnect() {
	s.mu.Lock()
	s.host = nil
	s.mu.Unlock()

	s.endSession("host gone")
}

// Shutdown ends the session and drops every member connection so their read
// loops unwind. The registry calls this when it destroys a session.
func (s *Session) Shutdown() {
	s.endSession("session closed")

	s.mu.Lock()
	var conns []internal.Conn
	if s.host != nil {
		conns = append(conns, s.host)
		s.host = nil
	}
	for _, p := range s.roster.Active() {
		if p.Conn != nil {
			conns = append(conns, p.Conn)
		}
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

// endSession moves the session to its terminal phase and tells everyone.
func (s *Session) endSession(cause string) {
	s.mu.Lock()
	if s.phase == internal.PhaseEnded {
		s.mu.Unlock()
		return
	}
	s.phase = internal.PhaseEnded
	s.touch()
	s.mu.Unlock()

	s.cancelTimer()
	log.Printf("[endSession] session=%s: %s", s.Code, cause)
	s.broadcast("session_ended", nil)
}

// Reset returns an ended session to the lobby with scores wiped, keeping the
// connected players for another game.
func (s *Session) Reset() {
	s.mu.Lock()
	if s.phase != internal.PhaseEnded {
		s.mu.Unlock()
		return
	}
	s.phase = internal.PhaseLobby
	s.round = internal.RoundFirst
	s.boards = nil
	s.currentClue = nil
	s.answererID = ""
	s.attempted = nil
	s.finalAwaiting = nil
	for _, p := range s.roster.Active() {
		p.Score = 0
		p.Wager = 0
		p.MaxWager = 0
		p.FinalAnswer = ""
		p.FinalCorrect = false
	}
	if first := s.roster.FirstActive(); first != nil {
		s.controllerID = first.ID
	}
	s.touch()
	s.mu.Unlock()

	log.Printf("[Reset] session=%s: back to lobby", s.Code)
	s.broadcast("session_reset", nil)
}
