// Package websocket bridges gorilla connections to game sessions: it
// upgrades requests, identifies the caller, and pumps client events into the
// session until the connection drops.
package websocket

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/quizparty/trivia-backend/internal"
	"github.com/quizparty/trivia-backend/internal/game"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Handler struct {
	registry *game.Registry
}

func NewHandler(registry *game.Registry) *Handler {
	return &Handler{registry: registry}
}

// joinedData is the handshake reply carrying the durable reconnect token.
type joinedData struct {
	Token  string           `json:"token"`
	Player *internal.Player `json:"player"`
}

// HandleWebSocket upgrades a connection and attaches it to its session as
// host or player.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	session, ok := h.registry.Get(code)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[HandleWebSocket] upgrade failed: %v", err)
		return
	}

	if r.URL.Query().Get("role") == "host" {
		session.AttachHost(conn)
		log.Printf("[HandleWebSocket] session=%s: host attached", session.Code)
		go h.hostLoop(session, conn)
		return
	}

	playerID := uuid.NewString()

	if token := r.URL.Query().Get("token"); token != "" {
		if player, ok := session.Reconnect(token, playerID, conn); ok {
			writeEvent(conn, "joined", joinedData{Token: token, Player: player.PublicPlayer()})
			go h.playerLoop(session, conn, playerID)
			return
		}
	}

	name := r.URL.Query().Get("name")
	token, ok := session.Join(playerID, name, conn)
	if !ok {
		writeEvent(conn, "join_rejected", nil)
		conn.Close()
		return
	}
	player, _ := h.playerOf(session, playerID)
	writeEvent(conn, "joined", joinedData{Token: token, Player: player})
	go h.playerLoop(session, conn, playerID)
}

func (h *Handler) playerOf(session *game.Session, id string) (*internal.Player, bool) {
	// Join just succeeded; the snapshot is only for the handshake reply.
	for _, p := range session.ActivePlayers() {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func writeEvent(conn *websocket.Conn, msgType string, data any) {
	if err := conn.WriteJSON(internal.Message[any]{Type: msgType, Data: data}); err != nil {
		log.Printf("[writeEvent] write %s failed: %v", msgType, err)
	}
}

// hostLoop reads host events until the screen disconnects, which ends the
// session.
func (h *Handler) hostLoop(session *game.Session, conn *websocket.Conn) {
	defer func() {
		conn.Close()
		session.HandleHostDisconnect()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[hostLoop] session=%s: read error: %v", session.Code, err)
			return
		}
		var msg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("[hostLoop] session=%s: bad message: %v", session.Code, err)
			continue
		}

		switch msg.Type {
		case "start_game":
			session.Start()
		case "play_again":
			session.Reset()
		default:
			log.Printf("[hostLoop] session=%s: unknown type %q", session.Code, msg.Type)
		}
	}
}

// playerLoop reads one player's events until the connection drops.
func (h *Handler) playerLoop(session *game.Session, conn *websocket.Conn, playerID string) {
	defer func() {
		conn.Close()
		session.HandleDisconnect(playerID)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[playerLoop] session=%s player=%s: read error: %v", session.Code, playerID, err)
			return
		}
		var msg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("[playerLoop] session=%s: bad message: %v", session.Code, err)
			continue
		}

		var body string
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &body); err != nil {
				log.Printf("[playerLoop] session=%s: bad %s payload: %v", session.Code, msg.Type, err)
				continue
			}
		}

		switch msg.Type {
		case "request_clue":
			session.RequestClue(playerID, body)
		case "buzz":
			session.Buzz(playerID)
		case "submit_answer":
			session.SubmitAnswer(playerID, body)
		case "submit_wager":
			session.SubmitWager(playerID, body)
		case "submit_final_wager":
			session.SubmitFinalWager(playerID, body)
		case "submit_final_answer":
			session.SubmitFinalAnswer(playerID, body)
		case "answer_livefeed":
			session.AnswerLivefeed(playerID, body)
		case "wager_livefeed":
			session.WagerLivefeed(playerID, body)
		default:
			log.Printf("[playerLoop] session=%s: unknown type %q", session.Code, msg.Type)
		}
	}
}
