package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizparty/trivia-backend/internal"
	"github.com/quizparty/trivia-backend/internal/leaderboard"
)

func testCategories(prefix string) []*internal.Category {
	var cats []*internal.Category
	for c := 0; c < internal.NumCategories; c++ {
		cat := &internal.Category{Title: fmt.Sprintf("%s %d", prefix, c+1)}
		for r := 0; r < internal.CluesPerCategory; r++ {
			cat.Clues = append(cat.Clues, &internal.Clue{
				CategoryTitle: cat.Title,
				Question:      fmt.Sprintf("Question %d %d", c+1, r+1),
				RawAnswer:     fmt.Sprintf("Answer %d %d", c+1, r+1),
				DisplayAnswer: fmt.Sprintf("ANSWER %d %d", c+1, r+1),
			})
		}
		cats = append(cats, cat)
	}
	assignClueIDs(cats)
	return cats
}

func makeBoards() *GameBoards {
	return &GameBoards{
		FirstRound:  testCategories("HISTORY"),
		SecondRound: testCategories("SCIENCE"),
		Final: &internal.Clue{
			ID:            "final",
			CategoryTitle: "WORLD CITIES",
			Question:      "The final question",
			RawAnswer:     "Paris",
			DisplayAnswer: "PARIS",
		},
	}
}

// startedSession joins the named players in the lobby, then puts the session
// on an open first round board. The first player controls the board.
func startedSession(t *testing.T, names ...string) (*Session, *fakeConn, map[string]*fakeConn) {
	t.Helper()
	s := NewSession("TEST", nil, leaderboard.New(leaderboard.NewMemStore()))

	host := &fakeConn{}
	s.AttachHost(host)

	conns := make(map[string]*fakeConn)
	for i, name := range names {
		id := fmt.Sprintf("p%d", i+1)
		conn := &fakeConn{}
		_, ok := s.Join(id, name, conn)
		require.True(t, ok)
		conns[id] = conn
	}

	s.mu.Lock()
	s.boards = makeBoards()
	s.phase = internal.PhaseBoardOpen
	s.mu.Unlock()
	return s, host, conns
}

func playerScore(t *testing.T, s *Session, id string) int {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.roster.Get(id)
	require.True(t, ok)
	return p.Score
}

func TestJoinLobbyOnly(t *testing.T) {
	s := NewSession("TEST", nil, nil)
	s.AttachHost(&fakeConn{})

	token, ok := s.Join("p1", "alice", &fakeConn{})
	require.True(t, ok)
	assert.NotEmpty(t, token)

	s.mu.Lock()
	s.phase = internal.PhaseBoardOpen
	s.mu.Unlock()

	_, ok = s.Join("p2", "bob", &fakeConn{})
	assert.False(t, ok)
	assert.Len(t, s.ActivePlayers(), 1)
}

func TestJoinFirstPlayerControls(t *testing.T) {
	s, _, _ := startedSession(t, "alice", "bob")
	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Equal(t, "p1", s.controllerID)
}

func TestJoinCleansName(t *testing.T) {
	s := NewSession("TEST", nil, nil)
	_, ok := s.Join("p1", "   ", &fakeConn{})
	require.True(t, ok)
	assert.Equal(t, "Player", s.ActivePlayers()[0].Name)
}

func TestRequestClueControllerOnly(t *testing.T) {
	s, _, _ := startedSession(t, "alice", "bob")

	// Not the controller: dropped.
	s.RequestClue("p2", "category-1-price-1")
	assert.Equal(t, internal.PhaseBoardOpen, s.Phase())

	s.RequestClue("p1", "category-1-price-1")
	assert.Equal(t, internal.PhaseClueOpen, s.Phase())

	s.mu.RLock()
	assert.True(t, s.boards.FirstRound[0].Clues[0].Used)
	assert.Equal(t, 200, s.clueValue)
	s.mu.RUnlock()
}

func TestRequestClueUsedCellIgnored(t *testing.T) {
	s, _, _ := startedSession(t, "alice")
	s.cancelTimer()

	s.mu.Lock()
	s.boards.FirstRound[0].Clues[0].Used = true
	s.mu.Unlock()

	s.RequestClue("p1", "category-1-price-1")
	assert.Equal(t, internal.PhaseBoardOpen, s.Phase())

	s.RequestClue("p1", "no-such-clue")
	assert.Equal(t, internal.PhaseBoardOpen, s.Phase())
}

func TestBuzzFirstWins(t *testing.T) {
	s, _, _ := startedSession(t, "alice", "bob", "carol")
	s.RequestClue("p1", "category-1-price-1")

	s.Buzz("p2")
	assert.Equal(t, internal.PhaseAnswering, s.Phase())

	s.Buzz("p3")
	s.mu.RLock()
	assert.Equal(t, "p2", s.answererID)
	s.mu.RUnlock()
}

func TestBuzzOutsideWindowIgnored(t *testing.T) {
	s, _, _ := startedSession(t, "alice", "bob")

	s.Buzz("p2")
	assert.Equal(t, internal.PhaseBoardOpen, s.Phase())
}

func TestSubmitAnswerCorrect(t *testing.T) {
	s, host, _ := startedSession(t, "alice", "bob")
	s.RequestClue("p1", "category-1-price-3")
	s.Buzz("p2")

	s.SubmitAnswer("p2", "answer 1 3")

	assert.Equal(t, 600, playerScore(t, s, "p2"))
	assert.Equal(t, internal.PhaseReveal, s.Phase())
	s.mu.RLock()
	assert.Equal(t, "p2", s.controllerID)
	s.mu.RUnlock()
	assert.True(t, host.received("answer_result"))
	assert.True(t, host.received("correct_answer"))
	s.cancelTimer()
}

func TestSubmitAnswerIncorrectReopens(t *testing.T) {
	s, host, _ := startedSession(t, "alice", "bob")
	s.RequestClue("p1", "category-1-price-1")
	s.Buzz("p2")

	s.SubmitAnswer("p2", "wrong guess")

	assert.Equal(t, -200, playerScore(t, s, "p2"))
	assert.Equal(t, internal.PhaseClueOpen, s.Phase())
	assert.True(t, host.received("buzzers_ready"))

	// A missed buzz cannot come back.
	s.Buzz("p2")
	assert.Equal(t, internal.PhaseClueOpen, s.Phase())

	s.Buzz("p1")
	assert.Equal(t, internal.PhaseAnswering, s.Phase())
	s.cancelTimer()
}

func TestSubmitAnswerAllAttemptedReveals(t *testing.T) {
	s, host, _ := startedSession(t, "alice", "bob")
	s.RequestClue("p1", "category-1-price-1")

	s.Buzz("p1")
	s.SubmitAnswer("p1", "wrong guess")
	s.Buzz("p2")
	s.SubmitAnswer("p2", "also wrong")

	assert.Equal(t, internal.PhaseReveal, s.Phase())
	assert.True(t, host.received("correct_answer"))
	s.cancelTimer()
}

func TestSubmitAnswerWrongPlayerIgnored(t *testing.T) {
	s, _, _ := startedSession(t, "alice", "bob")
	s.RequestClue("p1", "category-1-price-1")
	s.Buzz("p2")

	s.SubmitAnswer("p1", "answer 1 1")
	assert.Equal(t, internal.PhaseAnswering, s.Phase())
	assert.Equal(t, 0, playerScore(t, s, "p1"))
	s.cancelTimer()
}

func TestDailyDoubleFlow(t *testing.T) {
	s, host, _ := startedSession(t, "alice", "bob")
	s.mu.Lock()
	s.boards.FirstRound[0].Clues[0].DailyDouble = true
	s.mu.Unlock()

	s.RequestClue("p1", "category-1-price-1")
	assert.Equal(t, internal.PhaseDailyDoubleWager, s.Phase())
	assert.True(t, host.received("daily_double"))

	// No buzzing on a daily double.
	s.Buzz("p2")
	assert.Equal(t, internal.PhaseDailyDoubleWager, s.Phase())

	// Only the controller wagers.
	s.SubmitWager("p2", "800")
	assert.Equal(t, internal.PhaseDailyDoubleWager, s.Phase())

	s.SubmitWager("p1", "600")
	assert.Equal(t, internal.PhaseAnswering, s.Phase())

	s.SubmitAnswer("p1", "answer 1 1")
	assert.Equal(t, 600, playerScore(t, s, "p1"))
	s.cancelTimer()
}

func TestDailyDoubleWagerClamped(t *testing.T) {
	s, _, _ := startedSession(t, "alice")
	s.mu.Lock()
	s.boards.FirstRound[0].Clues[0].DailyDouble = true
	s.mu.Unlock()

	s.RequestClue("p1", "category-1-price-1")
	// Score 0 on the first board: cap is the round floor.
	s.SubmitWager("p1", "99999")

	s.mu.RLock()
	assert.Equal(t, internal.FirstRoundWagerCap, s.clueValue)
	s.mu.RUnlock()
	s.cancelTimer()
}

func TestDailyDoubleMissDoesNotReopen(t *testing.T) {
	s, _, _ := startedSession(t, "alice", "bob")
	s.mu.Lock()
	s.boards.FirstRound[0].Clues[0].DailyDouble = true
	s.mu.Unlock()

	s.RequestClue("p1", "category-1-price-1")
	s.SubmitWager("p1", "500")
	s.SubmitAnswer("p1", "wrong guess")

	assert.Equal(t, -500, playerScore(t, s, "p1"))
	assert.Equal(t, internal.PhaseReveal, s.Phase())
	s.cancelTimer()
}

func TestLivefeedsOnlyFromCurrentPlayer(t *testing.T) {
	s, host, _ := startedSession(t, "alice", "bob")
	s.RequestClue("p1", "category-1-price-1")
	s.Buzz("p2")

	s.AnswerLivefeed("p1", "ans")
	assert.False(t, host.received("answer_livefeed"))

	s.AnswerLivefeed("p2", "ans")
	assert.True(t, host.received("answer_livefeed"))

	// Wager feed is closed outside wager phases.
	s.WagerLivefeed("p2", "40")
	assert.False(t, host.received("wager_livefeed"))
	s.cancelTimer()
}

func markAllUsed(cats []*internal.Category) {
	for _, cat := range cats {
		for _, clue := range cat.Clues {
			clue.Used = true
		}
	}
}

func TestReturnToBoardAdvancesRound(t *testing.T) {
	s, host, _ := startedSession(t, "alice", "bob")

	s.mu.Lock()
	markAllUsed(s.boards.FirstRound)
	s.phase = internal.PhaseReveal
	p1, _ := s.roster.Get("p1")
	p2, _ := s.roster.Get("p2")
	p1.Score = 1000
	p2.Score = 400
	s.mu.Unlock()

	s.returnToBoard()

	assert.Equal(t, internal.PhaseRoundTransition, s.Phase())
	s.mu.RLock()
	assert.Equal(t, internal.RoundSecond, s.round)
	// The trailing player picks first in the second round.
	assert.Equal(t, "p2", s.controllerID)
	s.mu.RUnlock()
	assert.True(t, host.received("round_started"))

	s.openBoard()
	assert.Equal(t, internal.PhaseBoardOpen, s.Phase())
	s.cancelTimer()
}

func TestReturnToBoardStaysInRound(t *testing.T) {
	s, _, _ := startedSession(t, "alice")

	s.mu.Lock()
	s.boards.FirstRound[0].Clues[0].Used = true
	s.phase = internal.PhaseReveal
	s.mu.Unlock()

	s.returnToBoard()
	assert.Equal(t, internal.PhaseBoardOpen, s.Phase())
}

func TestDisconnectDuringAnswerCountsAsMiss(t *testing.T) {
	s, _, _ := startedSession(t, "alice", "bob", "carol")
	s.RequestClue("p1", "category-1-price-1")
	s.Buzz("p2")

	s.HandleDisconnect("p2")

	assert.Equal(t, internal.PhaseClueOpen, s.Phase())
	assert.Len(t, s.ActivePlayers(), 2)
	s.cancelTimer()
}

func TestDisconnectControllerFailsOver(t *testing.T) {
	s, host, _ := startedSession(t, "alice", "bob")

	s.HandleDisconnect("p1")

	s.mu.RLock()
	assert.Equal(t, "p2", s.controllerID)
	s.mu.RUnlock()
	assert.True(t, host.received("player_left"))
}

func TestDisconnectLastPlayerEndsSession(t *testing.T) {
	s, host, _ := startedSession(t, "alice")

	s.HandleDisconnect("p1")

	assert.Equal(t, internal.PhaseEnded, s.Phase())
	assert.True(t, host.received("session_ended"))
}

func TestDisconnectedAttemptDoesNotCloseClue(t *testing.T) {
	s, _, _ := startedSession(t, "alice", "bob", "carol")
	s.RequestClue("p1", "category-1-price-1")

	s.Buzz("p1")
	s.SubmitAnswer("p1", "wrong guess")
	s.HandleDisconnect("p1")

	s.Buzz("p2")
	s.SubmitAnswer("p2", "also wrong")

	// carol never attempted, so the clue stays open.
	assert.Equal(t, internal.PhaseClueOpen, s.Phase())
	s.Buzz("p3")
	assert.Equal(t, internal.PhaseAnswering, s.Phase())
	s.cancelTimer()
}

func TestReconnectRestoresScore(t *testing.T) {
	s, _, _ := startedSession(t, "alice", "bob")

	s.mu.Lock()
	p1, _ := s.roster.Get("p1")
	p1.Score = 800
	token := s.roster.Token("p1")
	s.mu.Unlock()

	s.HandleDisconnect("p1")
	require.Len(t, s.ActivePlayers(), 1)

	conn := &fakeConn{}
	player, ok := s.Reconnect(token, "p9", conn)
	require.True(t, ok)
	assert.Equal(t, 800, player.Score)
	assert.Len(t, s.ActivePlayers(), 2)
	assert.True(t, conn.received("board_state"))
}

func TestReconnectBadToken(t *testing.T) {
	s, _, _ := startedSession(t, "alice")
	_, ok := s.Reconnect("bogus", "p9", &fakeConn{})
	assert.False(t, ok)
}

func TestHostDisconnectEndsSession(t *testing.T) {
	s, _, conns := startedSession(t, "alice")

	s.HandleHostDisconnect()

	assert.Equal(t, internal.PhaseEnded, s.Phase())
	assert.True(t, conns["p1"].received("session_ended"))
}

func TestResetReturnsToLobby(t *testing.T) {
	s, host, _ := startedSession(t, "alice", "bob")

	s.mu.Lock()
	p1, _ := s.roster.Get("p1")
	p1.Score = 2400
	s.phase = internal.PhaseEnded
	s.mu.Unlock()

	s.Reset()

	assert.Equal(t, internal.PhaseLobby, s.Phase())
	assert.Equal(t, 0, playerScore(t, s, "p1"))
	assert.True(t, host.received("session_reset"))

	// Another game can start fresh.
	_, ok := s.Join("p3", "carol", &fakeConn{})
	assert.True(t, ok)
}
