package db

import (
	"time"

	"gorm.io/datatypes"
)

// Event is an append-only journal entry describing one change to a game.
type Event struct {
	ID            uint           `gorm:"primaryKey"`
	GameSessionID uint           `gorm:"index;not null"`
	PlayerID      *uint          `gorm:"index"`
	RoundNumber   int            `gorm:"not null;default:0"`
	Type          string         `gorm:"size:64;not null"`
	Payload       datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt     time.Time      `gorm:"not null"`
}
