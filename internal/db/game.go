package db

import "time"

type GameSession struct {
	ID           uint      `gorm:"primaryKey"`
	Code         string    `gorm:"size:8;uniqueIndex;not null"`
	Name         string    `gorm:"size:100;not null"`
	IsActive     bool      `gorm:"not null;default:true"`
	CurrentRound int       `gorm:"not null;default:1"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
	Players      []Player
	BuzzEvents   []BuzzEvent
	Events       []Event
}
