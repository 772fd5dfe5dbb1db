// Package server exposes the HTTP surface: session creation, join QR codes,
// leaderboard reads, and the websocket endpoint.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/quizparty/trivia-backend/internal/game"
	"github.com/quizparty/trivia-backend/internal/leaderboard"
	ws "github.com/quizparty/trivia-backend/internal/websocket"
)

type Config struct {
	// Port the HTTP server listens on.
	Port string
	// PublicURL is the externally reachable base URL, used in join links.
	PublicURL string
}

type Server struct {
	cfg      Config
	registry *game.Registry
	lb       *leaderboard.Leaderboard
	ws       *ws.Handler
}

func New(cfg Config, registry *game.Registry, lb *leaderboard.Leaderboard) *Server {
	return &Server{
		cfg:      cfg,
		registry: registry,
		lb:       lb,
		ws:       ws.NewHandler(registry),
	}
}

func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", s.cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return srv.ListenAndServe()
}
