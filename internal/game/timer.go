package game

import (
	"context"
	"log"
	"time"
)

// phaseTimer is the single pending deadline of a session. Cancelling works
// through the context; expiry callbacks check context identity under the
// session lock so a stale timer can never fire into a newer phase.
type phaseTimer struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// startTimer arms the session's phase timer, replacing any previous one.
// onExpire runs on its own goroutine without the session lock held.
func (s *Session) startTimer(d time.Duration, onExpire func()) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), d)
	s.timer = &phaseTimer{ctx: ctx, cancel: cancel}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()

		s.mu.Lock()
		current := s.timer != nil && s.timer.ctx == ctx
		if current {
			s.timer = nil
		}
		s.mu.Unlock()

		if !current || ctx.Err() != context.DeadlineExceeded {
			return
		}
		log.Printf("[startTimer] session=%s: timer expired after %v", s.Code, d)
		go onExpire()
	}()
}

// cancelTimer stops the pending timer, if any.
func (s *Session) cancelTimer() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.cancel()
		s.timer = nil
	}
	s.mu.Unlock()
}
