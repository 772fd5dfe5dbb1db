package leaderboard

import (
	"context"
	"sync"

	"github.com/quizparty/trivia-backend/internal"
)

// MemStore holds leaderboards in process memory. It backs deployments that
// run without a database; rankings reset on restart.
type MemStore struct {
	mu    sync.Mutex
	lists map[string][]internal.LeaderboardEntry
}

func NewMemStore() *MemStore {
	return &MemStore{lists: make(map[string][]internal.LeaderboardEntry)}
}

func (m *MemStore) ReadAll(_ context.Context, list string) ([]internal.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]internal.LeaderboardEntry, len(m.lists[list]))
	copy(entries, m.lists[list])
	return entries, nil
}

func (m *MemStore) ReplaceAll(_ context.Context, list string, entries []internal.LeaderboardEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[list] = entries
	return nil
}
