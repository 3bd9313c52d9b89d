package server

import (
	"context"
	"errors"
	"fmt"

	"quiz-buzzer/internal/db"
	"quiz-buzzer/internal/game"

	json "github.com/goccy/go-json"
	pgconnv1 "github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	eventGameCreated       = "game_created"
	eventPlayerJoined      = "player_joined"
	eventPlayerUpdated     = "player_updated"
	eventRoundStarted      = "round_started"
	eventGameActiveChanged = "game_active_changed"
	eventBuzzRecorded      = "buzz_recorded"
	eventAnswerJudged      = "answer_judged"
	eventScoreChanged      = "score_changed"
)

// EventPayload is the JSON body of a journal row. Only the fields relevant
// to the event type are set.
type EventPayload struct {
	Code            string `json:"code,omitempty"`
	Name            string `json:"name,omitempty"`
	PlayerID        int64  `json:"player_id,omitempty"`
	PlayerName      string `json:"player_name,omitempty"`
	DeviceID        string `json:"device_id,omitempty"`
	BuzzerSound     string `json:"buzzer_sound,omitempty"`
	Round           int    `json:"round,omitempty"`
	IsActive        *bool  `json:"is_active,omitempty"`
	Score           *int   `json:"score,omitempty"`
	ClientTimestamp int64  `json:"client_timestamp,omitempty"`
	ServerTimestamp int64  `json:"server_timestamp,omitempty"`
	IsCorrect       *bool  `json:"is_correct,omitempty"`
}

type gormBackend struct {
	db *gorm.DB
}

// NewGormBackend stores games, players and buzzes in Postgres and journals
// every change to the events table.
func NewGormBackend(conn *gorm.DB) game.Backend {
	return &gormBackend{db: conn}
}

func (b *gormBackend) CreateGame(ctx context.Context, g game.GameSession) (int64, error) {
	record := db.GameSession{
		Code:         g.Code,
		Name:         g.Name,
		IsActive:     g.IsActive,
		CurrentRound: g.CurrentRound,
		CreatedAt:    g.CreatedAt,
	}
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("game code %s already stored", g.Code)
		}
		return appendEvent(tx, record.ID, nil, g.CurrentRound, eventGameCreated, EventPayload{
			Code: g.Code,
			Name: g.Name,
		})
	})
	if err != nil {
		return 0, err
	}
	return int64(record.ID), nil
}

func (b *gormBackend) UpdateGame(ctx context.Context, g game.GameSession) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record db.GameSession
		if err := tx.First(&record, g.ID).Error; err != nil {
			return err
		}
		updates := map[string]any{
			"name":          g.Name,
			"is_active":     g.IsActive,
			"current_round": g.CurrentRound,
		}
		if err := tx.Model(&db.GameSession{}).Where("id = ?", record.ID).Updates(updates).Error; err != nil {
			return err
		}
		if record.CurrentRound != g.CurrentRound {
			if err := appendEvent(tx, record.ID, nil, g.CurrentRound, eventRoundStarted, EventPayload{
				Round: g.CurrentRound,
			}); err != nil {
				return err
			}
		}
		if record.IsActive != g.IsActive {
			active := g.IsActive
			if err := appendEvent(tx, record.ID, nil, g.CurrentRound, eventGameActiveChanged, EventPayload{
				IsActive: &active,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *gormBackend) CreatePlayer(ctx context.Context, p game.Player) (int64, error) {
	record := db.Player{
		GameSessionID: uint(p.GameID),
		Name:          p.Name,
		DeviceID:      p.DeviceID,
		BuzzerSound:   p.BuzzerSound,
		Score:         p.Score,
		JoinedAt:      p.JoinedAt,
	}
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("player %q already stored: %w", p.Name, err)
			}
			return err
		}
		playerID := record.ID
		return appendEvent(tx, record.GameSessionID, &playerID, 0, eventPlayerJoined, EventPayload{
			PlayerID:    int64(record.ID),
			PlayerName:  p.Name,
			DeviceID:    p.DeviceID,
			BuzzerSound: p.BuzzerSound,
		})
	})
	if err != nil {
		return 0, err
	}
	return int64(record.ID), nil
}

func (b *gormBackend) UpdatePlayer(ctx context.Context, p game.Player) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record db.Player
		if err := tx.First(&record, p.ID).Error; err != nil {
			return err
		}
		updates := map[string]any{
			"name":         p.Name,
			"buzzer_sound": p.BuzzerSound,
			"score":        p.Score,
		}
		if err := tx.Model(&db.Player{}).Where("id = ?", record.ID).Updates(updates).Error; err != nil {
			return err
		}
		playerID := record.ID
		if record.Score != p.Score {
			score := p.Score
			return appendEvent(tx, record.GameSessionID, &playerID, 0, eventScoreChanged, EventPayload{
				PlayerID: p.ID,
				Score:    &score,
			})
		}
		return appendEvent(tx, record.GameSessionID, &playerID, 0, eventPlayerUpdated, EventPayload{
			PlayerID:    p.ID,
			PlayerName:  p.Name,
			BuzzerSound: p.BuzzerSound,
		})
	})
}

func (b *gormBackend) CreateBuzz(ctx context.Context, buzz game.BuzzEvent) (int64, error) {
	record := db.BuzzEvent{
		GameSessionID:   uint(buzz.GameID),
		PlayerID:        uint(buzz.PlayerID),
		RoundNumber:     buzz.RoundNumber,
		ClientTimestamp: buzz.ClientTimestamp,
		ServerTimestamp: buzz.ServerTimestamp,
		TimeOffset:      buzz.TimeOffset,
		IsCorrect:       buzz.IsCorrect,
	}
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			if isUniqueViolation(err) {
				return game.ErrDuplicateBuzz
			}
			return err
		}
		playerID := record.PlayerID
		return appendEvent(tx, record.GameSessionID, &playerID, buzz.RoundNumber, eventBuzzRecorded, EventPayload{
			PlayerID:        buzz.PlayerID,
			Round:           buzz.RoundNumber,
			ClientTimestamp: buzz.ClientTimestamp,
			ServerTimestamp: buzz.ServerTimestamp,
		})
	})
	if err != nil {
		return 0, err
	}
	return int64(record.ID), nil
}

func (b *gormBackend) UpdateBuzz(ctx context.Context, buzz game.BuzzEvent) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&db.BuzzEvent{}).Where("id = ?", buzz.ID).Update("is_correct", buzz.IsCorrect)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return game.ErrBuzzNotFound
		}
		playerID := uint(buzz.PlayerID)
		return appendEvent(tx, uint(buzz.GameID), &playerID, buzz.RoundNumber, eventAnswerJudged, EventPayload{
			PlayerID:  buzz.PlayerID,
			Round:     buzz.RoundNumber,
			IsCorrect: buzz.IsCorrect,
		})
	})
}

func (b *gormBackend) CodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := b.db.WithContext(ctx).Model(&db.GameSession{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func appendEvent(tx *gorm.DB, gameID uint, playerID *uint, round int, eventType string, payload EventPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := db.Event{
		GameSessionID: gameID,
		PlayerID:      playerID,
		RoundNumber:   round,
		Type:          eventType,
		Payload:       datatypes.JSON(data),
	}
	if err := tx.Create(&event).Error; err != nil {
		return err
	}
	log.Debug().
		Uint("game_id", gameID).
		Str("event", eventType).
		Msg("event journaled")
	return nil
}

// isUniqueViolation recognizes both driver generations that gorm's postgres
// dialector may surface.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var legacyErr *pgconnv1.PgError
	if errors.As(err, &legacyErr) {
		return legacyErr.Code == "23505"
	}
	return false
}
