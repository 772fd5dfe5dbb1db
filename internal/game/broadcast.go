package game

import (
	"log"

	"github.com/quizparty/trivia-backend/internal"
)

// deliver writes one event to one connection, logging but otherwise ignoring
// write failures: a broken connection surfaces through its read loop.
func deliver(conn internal.Conn, msgType string, data any) {
	if conn == nil {
		return
	}
	if err := conn.WriteJSON(internal.Message[any]{Type: msgType, Data: data}); err != nil {
		log.Printf("[deliver] write %s failed: %v", msgType, err)
	}
}

// broadcast sends an event to the host and every connected player. The
// connection list is snapshotted under the read lock and writes happen
// outside it, so a slow socket cannot stall the session.
func (s *Session) broadcast(msgType string, data any) {
	s.mu.RLock()
	conns := make([]internal.Conn, 0, s.roster.Count()+1)
	if s.host != nil {
		conns = append(conns, s.host)
	}
	for _, p := range s.roster.Active() {
		if p.Conn != nil {
			conns = append(conns, p.Conn)
		}
	}
	s.mu.RUnlock()

	for _, conn := range conns {
		deliver(conn, msgType, data)
	}
}

// toHost sends an event to the host screen only.
func (s *Session) toHost(msgType string, data any) {
	s.mu.RLock()
	host := s.host
	s.mu.RUnlock()
	deliver(host, msgType, data)
}

// toPlayer sends an event to a single player.
func (s *Session) toPlayer(id string, msgType string, data any) {
	s.mu.RLock()
	var conn internal.Conn
	if p, ok := s.roster.Get(id); ok {
		conn = p.Conn
	}
	s.mu.RUnlock()
	deliver(conn, msgType, data)
}
