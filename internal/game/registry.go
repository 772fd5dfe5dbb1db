package game

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/quizparty/trivia-backend/internal"
	"github.com/quizparty/trivia-backend/internal/leaderboard"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength   = 4

	// codeAttempts bounds collision retries at one length before the
	// registry falls back to a longer code.
	codeAttempts = 16
)

// Registry owns every live session, keyed by join code.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	builder *BoardBuilder
	lb      *leaderboard.Leaderboard
}

func NewRegistry(builder *BoardBuilder, lb *leaderboard.Leaderboard) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		builder:  builder,
		lb:       lb,
	}
}

// newCode generates a join code that is free in the registry. Collisions
// retry at four letters, then grow the code once before giving up.
func (r *Registry) newCode() (string, error) {
	for length := codeLength; length <= internal.MaxSessionCodeLength; length++ {
		for i := 0; i < codeAttempts; i++ {
			code, err := gonanoid.Generate(codeAlphabet, length)
			if err != nil {
				return "", fmt.Errorf("generate session code: %w", err)
			}
			if _, taken := r.sessions[code]; !taken {
				return code, nil
			}
		}
	}
	return "", fmt.Errorf("session code space exhausted")
}

// Create starts an empty session and returns it.
func (r *Registry) Create() (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.newCode()
	if err != nil {
		return nil, err
	}
	session := NewSession(code, r.builder, r.lb)
	r.sessions[code] = session
	log.Printf("[Create] session=%s: created", code)
	return session, nil
}

// Get looks a session up by join code, case-insensitively.
func (r *Registry) Get(code string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[strings.ToUpper(code)]
	return s, ok
}

// Remove destroys a session, telling its members before the code is freed.
func (r *Registry) Remove(code string) {
	r.mu.Lock()
	s, ok := r.sessions[code]
	delete(r.sessions, code)
	r.mu.Unlock()

	if ok {
		s.Shutdown()
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Reap drops sessions that ended or sat idle longer than maxIdle and
// returns how many were removed.
func (r *Registry) Reap(maxIdle time.Duration) int {
	r.mu.Lock()
	var reaped []*Session
	for code, s := range r.sessions {
		idle := time.Since(s.LastActivity())
		// Ended sessions linger briefly so a play-again reset can still land.
		if (s.Phase() == internal.PhaseEnded && idle > time.Minute) || idle > maxIdle {
			delete(r.sessions, code)
			reaped = append(reaped, s)
			log.Printf("[Reap] session=%s: removed", code)
		}
	}
	r.mu.Unlock()

	for _, s := range reaped {
		s.Shutdown()
	}
	return len(reaped)
}

// StartReaper sweeps idle sessions on an interval until stop is closed.
func (r *Registry) StartReaper(interval, maxIdle time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Reap(maxIdle)
			case <-stop:
				return
			}
		}
	}()
}
