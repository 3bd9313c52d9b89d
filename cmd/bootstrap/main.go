package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"quiz-buzzer/internal/config"
	"quiz-buzzer/internal/server"

	"github.com/rs/zerolog/log"
)

type samplePlayer struct {
	name  string
	sound string
}

var samplePlayers = []samplePlayer{
	{name: "Alice", sound: "bell"},
	{name: "Bob", sound: "buzzer"},
	{name: "Charlie", sound: "ding"},
	{name: "Diana", sound: "horn"},
}

func main() {
	name := flag.String("name", "Sample Quiz", "name of the seeded game")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	config.ConfigureLogging(cfg)

	if err := seed(context.Background(), cfg, *name); err != nil {
		log.Error().Err(err).Msg("bootstrap failed")
		os.Exit(1)
	}
}

// seed creates one game with the sample players and random scores.
func seed(ctx context.Context, cfg config.Config, name string) error {
	store, conn, err := server.OpenStore(cfg)
	if err != nil {
		return err
	}
	if conn != nil {
		if sqlDB, err := conn.DB(); err == nil {
			defer sqlDB.Close()
		}
	}

	g, err := store.CreateGame(ctx, name)
	if err != nil {
		return fmt.Errorf("creating sample game: %w", err)
	}
	for i, sample := range samplePlayers {
		player, err := store.RegisterOrUpdate(ctx, g.Code, sample.name, fmt.Sprintf("sample-device-%d", i+1), sample.sound)
		if err != nil {
			return fmt.Errorf("adding %s: %w", sample.name, err)
		}
		if points := rand.Intn(6); points > 0 {
			if err := store.IncrementScore(ctx, player.ID, points); err != nil {
				return fmt.Errorf("scoring %s: %w", sample.name, err)
			}
		}
	}

	players, err := store.ListPlayers(ctx, g.Code)
	if err != nil {
		return err
	}
	log.Info().Str("game_code", g.Code).Str("name", g.Name).Int("players", len(players)).Msg("sample game created")
	for _, p := range players {
		log.Info().Str("player", p.Name).Str("buzzer_sound", p.BuzzerSound).Int("score", p.Score).Msg("sample player")
	}
	return nil
}
