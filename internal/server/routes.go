package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)

	r.HandleFunc("/sessions", s.CreateSessionHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/sessions/{code}", s.SessionInfoHandler).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{code}/qr", s.SessionQRHandler).Methods(http.MethodGet)

	r.HandleFunc("/leaderboard", s.LeaderboardHandler).Methods(http.MethodGet)

	r.HandleFunc("/ws/{code}", s.ws.HandleWebSocket)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[writeJSON] encode failed: %v", err)
	}
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateSessionHandler opens a new empty session and returns its join code.
func (s *Server) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, err := s.registry.Create()
	if err != nil {
		log.Printf("[CreateSessionHandler] %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not create session"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"code": session.Code})
}

func (s *Server) SessionInfoHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.registry.Get(mux.Vars(r)["code"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":    session.Code,
		"phase":   session.Phase(),
		"players": session.ActivePlayers(),
	})
}

// SessionQRHandler renders the join link for a session as a PNG, for the
// host screen to put up in the lobby.
func (s *Server) SessionQRHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.registry.Get(mux.Vars(r)["code"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	joinURL := fmt.Sprintf("%s/join/%s", strings.TrimRight(s.cfg.PublicURL, "/"), session.Code)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		log.Printf("[SessionQRHandler] session=%s: %v", session.Code, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not render qr"})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		log.Printf("[SessionQRHandler] write failed: %v", err)
	}
}

func (s *Server) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	data, err := s.lb.Snapshot(r.Context())
	if err != nil {
		log.Printf("[LeaderboardHandler] %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not read leaderboard"})
		return
	}
	writeJSON(w, http.StatusOK, data)
}
