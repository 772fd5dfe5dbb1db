package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/quizparty/trivia-backend/internal/game"
	"github.com/quizparty/trivia-backend/internal/leaderboard"
	"github.com/quizparty/trivia-backend/internal/provider"
	"github.com/quizparty/trivia-backend/internal/server"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	port := env("PORT", "8080")
	publicURL := env("PUBLIC_URL", "http://localhost:"+port)
	providerURL := env("PROVIDER_URL", "https://jservice.io")

	minYear, err := strconv.Atoi(env("MIN_CLUE_YEAR", "1990"))
	if err != nil {
		log.Fatalf("invalid MIN_CLUE_YEAR: %v", err)
	}

	var store leaderboard.Store
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pg, err := leaderboard.NewPgStore(dsn)
		if err != nil {
			log.Fatalf("connect to database: %v", err)
		}
		defer pg.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pg.Migrate(ctx); err != nil {
			cancel()
			log.Fatalf("migrate leaderboards: %v", err)
		}
		cancel()
		store = pg
	} else {
		log.Println("DATABASE_URL not set, leaderboards are in-memory")
		store = leaderboard.NewMemStore()
	}

	lb := leaderboard.New(store)
	prov := provider.New(provider.NewHTTPSource(providerURL), minYear)
	registry := game.NewRegistry(game.NewBoardBuilder(prov), lb)

	stop := make(chan struct{})
	defer close(stop)
	registry.StartReaper(10*time.Minute, 2*time.Hour, stop)

	srv := server.New(server.Config{Port: port, PublicURL: publicURL}, registry, lb)
	log.Printf("listening on :%s", port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
