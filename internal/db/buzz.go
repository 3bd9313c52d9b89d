package db

import "time"

type BuzzEvent struct {
	ID              uint      `gorm:"primaryKey"`
	GameSessionID   uint      `gorm:"index;not null;uniqueIndex:idx_buzz_game_player_round"`
	PlayerID        uint      `gorm:"index;not null;uniqueIndex:idx_buzz_game_player_round"`
	RoundNumber     int       `gorm:"not null;uniqueIndex:idx_buzz_game_player_round"`
	ClientTimestamp int64     `gorm:"not null"`
	ServerTimestamp int64     `gorm:"not null;default:0"`
	TimeOffset      int64     `gorm:"not null;default:0"`
	IsCorrect       *bool     `gorm:""`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}
