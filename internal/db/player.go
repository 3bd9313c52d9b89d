package db

import "time"

type Player struct {
	ID            uint      `gorm:"primaryKey"`
	GameSessionID uint      `gorm:"index;not null;uniqueIndex:idx_players_game_name;uniqueIndex:idx_players_game_device"`
	Name          string    `gorm:"size:50;not null;uniqueIndex:idx_players_game_name"`
	DeviceID      string    `gorm:"size:100;not null;uniqueIndex:idx_players_game_device"`
	BuzzerSound   string    `gorm:"size:20;not null;default:default"`
	Score         int       `gorm:"not null;default:0"`
	JoinedAt      time.Time `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
	BuzzEvents    []BuzzEvent
}
