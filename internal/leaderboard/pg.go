package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizparty/trivia-backend/internal"
)

// PgStore keeps leaderboard slots in Postgres, one row per (list, period,
// position). Week and month lists roll over by period key, so expired
// entries simply stop matching.
type PgStore struct {
	db *pgxpool.Pool

	// now is swappable for tests
	now func() time.Time
}

func NewPgStore(dsn string) (*PgStore, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return &PgStore{db: pool, now: time.Now}, nil
}

// Migrate creates the backing table.
func (s *PgStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS leaderboards (
			list     TEXT NOT NULL,
			period   TEXT NOT NULL,
			position INT  NOT NULL,
			name     TEXT NOT NULL,
			score    INT  NOT NULL,
			PRIMARY KEY (list, period, position)
		)`)
	return err
}

// periodKey scopes a list to its current window.
func (s *PgStore) periodKey(list string) string {
	switch list {
	case ListWeek:
		year, week := s.now().UTC().ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case ListMonth:
		return s.now().UTC().Format("2006-01")
	default:
		return "all"
	}
}

func (s *PgStore) ReadAll(ctx context.Context, list string) ([]internal.LeaderboardEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT position, name, score FROM leaderboards
		 WHERE list = $1 AND period = $2
		 ORDER BY position ASC`,
		list, s.periodKey(list),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []internal.LeaderboardEntry
	for rows.Next() {
		var e internal.LeaderboardEntry
		if err := rows.Scan(&e.Position, &e.Name, &e.Score); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PgStore) ReplaceAll(ctx context.Context, list string, entries []internal.LeaderboardEntry) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	period := s.periodKey(list)
	if _, err := tx.Exec(ctx,
		"DELETE FROM leaderboards WHERE list = $1 AND period = $2",
		list, period,
	); err != nil {
		return err
	}

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO leaderboards (list, period, position, name, score)
			 VALUES ($1, $2, $3, $4, $5)`,
			list, period, e.Position, e.Name, e.Score,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *PgStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PgStore) Close() {
	s.db.Close()
}
