package server

import (
	"context"
	"errors"

	"quiz-buzzer/internal/db"
	"quiz-buzzer/internal/game"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// LoadGame rebuilds a game and everything recorded for it.
func (b *gormBackend) LoadGame(ctx context.Context, code string) (*game.Snapshot, error) {
	conn := b.db.WithContext(ctx)

	var record db.GameSession
	if err := conn.Where("code = ?", code).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, game.ErrNotFound
		}
		return nil, err
	}

	var players []db.Player
	if err := conn.Where("game_session_id = ?", record.ID).Order("id asc").Find(&players).Error; err != nil {
		return nil, err
	}
	var buzzes []db.BuzzEvent
	if err := conn.Where("game_session_id = ?", record.ID).Order("id asc").Find(&buzzes).Error; err != nil {
		return nil, err
	}

	snap := &game.Snapshot{
		Game: game.GameSession{
			ID:           int64(record.ID),
			Code:         record.Code,
			Name:         record.Name,
			IsActive:     record.IsActive,
			CreatedAt:    record.CreatedAt,
			CurrentRound: record.CurrentRound,
		},
		Players: buildPlayers(players, record),
		Buzzes:  buildBuzzes(buzzes, record),
	}
	log.Info().
		Str("game_code", record.Code).
		Int("players", len(snap.Players)).
		Int("buzzes", len(snap.Buzzes)).
		Msg("game restored from database")
	return snap, nil
}

func buildPlayers(records []db.Player, g db.GameSession) []game.Player {
	players := make([]game.Player, 0, len(records))
	for _, record := range records {
		players = append(players, game.Player{
			ID:          int64(record.ID),
			GameID:      int64(g.ID),
			GameCode:    g.Code,
			Name:        record.Name,
			DeviceID:    record.DeviceID,
			BuzzerSound: record.BuzzerSound,
			Score:       record.Score,
			JoinedAt:    record.JoinedAt,
		})
	}
	return players
}

func buildBuzzes(records []db.BuzzEvent, g db.GameSession) []game.BuzzEvent {
	buzzes := make([]game.BuzzEvent, 0, len(records))
	for _, record := range records {
		buzzes = append(buzzes, game.BuzzEvent{
			ID:              int64(record.ID),
			GameID:          int64(g.ID),
			GameCode:        g.Code,
			PlayerID:        int64(record.PlayerID),
			ClientTimestamp: record.ClientTimestamp,
			ServerTimestamp: record.ServerTimestamp,
			TimeOffset:      record.TimeOffset,
			RoundNumber:     record.RoundNumber,
			IsCorrect:       record.IsCorrect,
		})
	}
	return buzzes
}
