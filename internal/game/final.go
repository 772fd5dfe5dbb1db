package game

import (
	"context"
	"log"
	"time"

	"github.com/quizparty/trivia-backend/internal"
	"github.com/quizparty/trivia-backend/internal/answer"
	"github.com/quizparty/trivia-backend/internal/score"
)

// startFinalRound opens the final wager window. Only players above zero may
// play the final; with nobody eligible the game ends straight away.
func (s *Session) startFinalRound() {
	s.mu.Lock()
	if s.phase == internal.PhaseEnded {
		s.mu.Unlock()
		return
	}
	s.round = internal.RoundFinal

	eligible := make(map[string]*internal.Player)
	for _, p := range s.roster.Active() {
		p.Wager = 0
		p.FinalAnswer = ""
		p.FinalCorrect = false
		if p.Score > 0 {
			eligible[p.ID] = p
			p.MaxWager = score.MaxWager(p.Score, internal.RoundFinal)
		} else {
			p.MaxWager = 0
		}
	}
	if len(eligible) == 0 {
		s.mu.Unlock()
		log.Printf("[startFinalRound] session=%s: nobody eligible, ending", s.Code)
		s.finishGame()
		return
	}

	s.phase = internal.PhaseFinalWager
	s.finalAwaiting = make(map[string]bool, len(eligible))
	prompt := internal.FinalWagerPromptData{Players: make(map[string]*internal.Player, len(eligible))}
	for id, p := range eligible {
		s.finalAwaiting[id] = true
		prompt.Players[id] = p.PublicPlayer()
	}
	category := s.boards.Final.CategoryTitle
	s.touch()
	s.mu.Unlock()

	log.Printf("[startFinalRound] session=%s: %d players eligible", s.Code, len(prompt.Players))
	s.broadcast("final_category", category)
	s.broadcast("final_wager_prompt", prompt)
	s.startTimer(internal.FinalWagerWindow, s.closeFinalWagers)
}

// SubmitFinalWager locks in one player's final wager. The window closes
// early once everyone has answered.
func (s *Session) SubmitFinalWager(playerID, raw string) {
	s.mu.Lock()
	if s.phase != internal.PhaseFinalWager || !s.finalAwaiting[playerID] {
		s.mu.Unlock()
		return
	}
	player, ok := s.roster.Get(playerID)
	if !ok {
		s.mu.Unlock()
		return
	}
	player.Wager = score.ClampWager(raw, player.MaxWager)
	delete(s.finalAwaiting, playerID)
	done := len(s.finalAwaiting) == 0
	s.touch()
	s.mu.Unlock()

	if done {
		s.cancelTimer()
		s.closeFinalWagers()
	}
}

// closeFinalWagers reveals the final clue and opens the answer window.
// Players who never wagered stay at zero.
func (s *Session) closeFinalWagers() {
	s.mu.Lock()
	if s.phase != internal.PhaseFinalWager {
		s.mu.Unlock()
		return
	}
	s.phase = internal.PhaseFinalAnswer
	s.finalAwaiting = make(map[string]bool)
	for _, p := range s.roster.Active() {
		if p.MaxWager > 0 {
			s.finalAwaiting[p.ID] = true
		}
	}
	final := s.boards.Final
	reveal := internal.ClueRevealData{
		ClueID:   final.ID,
		Question: final.Question,
		Spoken:   final.SpokenQuestion,
	}
	s.touch()
	s.mu.Unlock()

	log.Printf("[closeFinalWagers] session=%s: final clue out", s.Code)
	s.broadcast("final_clue", reveal)
	s.startTimer(internal.FinalAnswerWindow, s.closeFinalAnswers)
}

// SubmitFinalAnswer records one player's final response.
func (s *Session) SubmitFinalAnswer(playerID, text string) {
	s.mu.Lock()
	if s.phase != internal.PhaseFinalAnswer || !s.finalAwaiting[playerID] {
		s.mu.Unlock()
		return
	}
	player, ok := s.roster.Get(playerID)
	if !ok {
		s.mu.Unlock()
		return
	}
	player.FinalAnswer = text
	delete(s.finalAwaiting, playerID)
	done := len(s.finalAwaiting) == 0
	s.touch()
	s.mu.Unlock()

	if done {
		s.cancelTimer()
		s.closeFinalAnswers()
	}
}

// closeFinalAnswers grades the final round, applies the wagers, and ends the
// game. A blank answer simply loses its wager.
func (s *Session) closeFinalAnswers() {
	s.mu.Lock()
	if s.phase != internal.PhaseFinalAnswer {
		s.mu.Unlock()
		return
	}
	final := s.boards.Final
	results := internal.FinalResultsData{Players: make(map[string]*internal.Player)}
	for _, p := range s.roster.Active() {
		if p.MaxWager > 0 {
			correct := answer.Evaluate(final.RawAnswer, p.FinalAnswer, final.CategoryTitle)
			p.FinalCorrect = correct
			p.Score += score.Delta(p.Wager, correct)
		}
		results.Players[p.ID] = p.PublicPlayer()
	}
	reveal := internal.CorrectAnswerData{Answer: final.DisplayAnswer}
	s.touch()
	s.mu.Unlock()

	s.cancelTimer()
	log.Printf("[closeFinalAnswers] session=%s: final graded", s.Code)
	s.broadcast("final_results", results)
	s.broadcast("correct_answer", reveal)
	s.finishGame()
}

// finishGame records the final players' scores on the leaderboards and ends
// the session. Players who sat out the final are not ranked.
func (s *Session) finishGame() {
	s.mu.Lock()
	if s.phase == internal.PhaseEnded {
		s.mu.Unlock()
		return
	}
	s.phase = internal.PhaseEnded
	var graded []*internal.Player
	for _, p := range s.roster.Active() {
		if p.MaxWager > 0 {
			graded = append(graded, p)
		}
	}
	s.touch()
	s.mu.Unlock()

	s.cancelTimer()

	if s.lb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, p := range graded {
			if err := s.lb.SubmitAll(ctx, p.Name, p.Score); err != nil {
				log.Printf("[finishGame] session=%s: leaderboard submit for %s: %v", s.Code, p.Name, err)
			}
		}
		if data, err := s.lb.Snapshot(ctx); err == nil {
			s.broadcast("leaderboard", data)
		} else {
			log.Printf("[finishGame] session=%s: leaderboard snapshot: %v", s.Code, err)
		}
	}

	s.broadcast("session_ended", nil)
}
