// Package leaderboard maintains the persistent top-ten rankings across three
// time windows and inserts finished players into them.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/quizparty/trivia-backend/internal"
)

// Size is the number of ranked slots per list.
const Size = 10

const (
	ListWeek    = "week"
	ListMonth   = "month"
	ListAllTime = "allTime"
)

// Lists enumerates every window a score is submitted to.
var Lists = []string{ListWeek, ListMonth, ListAllTime}

// Store persists one ordered list per window. Implementations resolve the
// current period themselves, so a weekly list rolls over without callers
// noticing.
type Store interface {
	ReadAll(ctx context.Context, list string) ([]internal.LeaderboardEntry, error)
	ReplaceAll(ctx context.Context, list string, entries []internal.LeaderboardEntry) error
}

type Leaderboard struct {
	store Store
}

func New(store Store) *Leaderboard {
	return &Leaderboard{store: store}
}

// insert places (name, score) into entries if it qualifies and returns the
// updated list plus the 1-based position taken, or 0 if the score did not
// make the cut. A tie never displaces a sitting entry.
func insert(entries []internal.LeaderboardEntry, name string, score int) ([]internal.LeaderboardEntry, int) {
	pos := 0
	for i := 0; i < len(entries); i++ {
		if score > entries[i].Score {
			pos = i + 1
			break
		}
	}
	if pos == 0 {
		if len(entries) >= Size {
			return entries, 0
		}
		pos = len(entries) + 1
	}

	updated := make([]internal.LeaderboardEntry, 0, Size)
	updated = append(updated, entries[:pos-1]...)
	updated = append(updated, internal.LeaderboardEntry{Name: name, Score: score})
	updated = append(updated, entries[pos-1:]...)
	if len(updated) > Size {
		updated = updated[:Size]
	}
	for i := range updated {
		updated[i].Position = i + 1
	}
	return updated, pos
}

// Submit tries to place a score on one list and reports the position taken,
// 0 when the score did not qualify.
func (l *Leaderboard) Submit(ctx context.Context, list, name string, score int) (int, error) {
	if name == "" {
		name = "anonymous"
	}

	entries, err := l.store.ReadAll(ctx, list)
	if err != nil {
		return 0, fmt.Errorf("read %s leaderboard: %w", list, err)
	}

	updated, pos := insert(entries, name, score)
	if pos == 0 {
		return 0, nil
	}
	if err := l.store.ReplaceAll(ctx, list, updated); err != nil {
		return 0, fmt.Errorf("write %s leaderboard: %w", list, err)
	}
	return pos, nil
}

// SubmitAll places a score on every window.
func (l *Leaderboard) SubmitAll(ctx context.Context, name string, score int) error {
	for _, list := range Lists {
		if _, err := l.Submit(ctx, list, name, score); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot reads all three windows for broadcast.
func (l *Leaderboard) Snapshot(ctx context.Context) (internal.LeaderboardData, error) {
	var data internal.LeaderboardData
	var err error
	if data.Week, err = l.store.ReadAll(ctx, ListWeek); err != nil {
		return data, fmt.Errorf("read week leaderboard: %w", err)
	}
	if data.Month, err = l.store.ReadAll(ctx, ListMonth); err != nil {
		return data, fmt.Errorf("read month leaderboard: %w", err)
	}
	if data.AllTime, err = l.store.ReadAll(ctx, ListAllTime); err != nil {
		return data, fmt.Errorf("read allTime leaderboard: %w", err)
	}
	return data, nil
}
