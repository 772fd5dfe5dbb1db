package game

import (
	"sort"

	"github.com/google/uuid"

	"github.com/quizparty/trivia-backend/internal"
)

// Roster tracks the players of one session. Every player is either active
// (connected, keyed by connection ID) or archived (disconnected, keyed by
// reconnect token), never both. Not safe for concurrent use; the owning
// session's lock guards it.
type Roster struct {
	active   map[string]*internal.Player
	archived map[string]*internal.Player
	tokens   map[string]string // connection ID -> reconnect token
}

func NewRoster() *Roster {
	return &Roster{
		active:   make(map[string]*internal.Player),
		archived: make(map[string]*internal.Player),
		tokens:   make(map[string]string),
	}
}

// Add registers a new active player and returns the reconnect token that
// survives connection churn.
func (r *Roster) Add(p *internal.Player) string {
	token := uuid.NewString()
	r.active[p.ID] = p
	r.tokens[p.ID] = token
	return token
}

func (r *Roster) Get(id string) (*internal.Player, bool) {
	p, ok := r.active[id]
	return p, ok
}

// Token returns the reconnect token of an active player.
func (r *Roster) Token(id string) string {
	return r.tokens[id]
}

// Archive moves an active player to the archive, keeping score and name so a
// reconnect can pick up where the player left off.
func (r *Roster) Archive(id string) (*internal.Player, bool) {
	p, ok := r.active[id]
	if !ok {
		return nil, false
	}
	token := r.tokens[id]
	delete(r.active, id)
	delete(r.tokens, id)
	p.Conn = nil
	r.archived[token] = p
	return p, true
}

// Restore reactivates an archived player on a fresh connection. The player
// gets a new connection ID but keeps its token.
func (r *Roster) Restore(token, newID string, conn internal.Conn) (*internal.Player, bool) {
	p, ok := r.archived[token]
	if !ok {
		return nil, false
	}
	delete(r.archived, token)
	p.ID = newID
	p.Conn = conn
	r.active[newID] = p
	r.tokens[newID] = token
	return p, true
}

// Remove drops a player entirely, active or archived.
func (r *Roster) Remove(id string) {
	if token, ok := r.tokens[id]; ok {
		delete(r.archived, token)
	}
	delete(r.active, id)
	delete(r.tokens, id)
}

func (r *Roster) Count() int {
	return len(r.active)
}

// Active returns connected players ordered by join time, earliest first.
func (r *Roster) Active() []*internal.Player {
	players := make([]*internal.Player, 0, len(r.active))
	for _, p := range r.active {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	return players
}

// FirstActive returns the earliest joined connected player, nil when the
// roster is empty.
func (r *Roster) FirstActive() *internal.Player {
	players := r.Active()
	if len(players) == 0 {
		return nil
	}
	return players[0]
}

// LowestScore returns the connected player with the lowest score, ties going
// to the earlier join.
func (r *Roster) LowestScore() *internal.Player {
	var lowest *internal.Player
	for _, p := range r.Active() {
		if lowest == nil || p.Score < lowest.Score {
			lowest = p
		}
	}
	return lowest
}
