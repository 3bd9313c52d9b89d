package server

import (
	"errors"
	"fmt"
	"testing"

	pgconnv1 "github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"quiz-buzzer/internal/db"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconnv1.PgError{Code: "23505"})))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestBuildSnapshotRows(t *testing.T) {
	correct := true
	record := db.GameSession{ID: 7, Code: "ABC123", Name: "Trivia", IsActive: true, CurrentRound: 3}
	players := buildPlayers([]db.Player{
		{ID: 11, GameSessionID: 7, Name: "Ada", DeviceID: "d1", BuzzerSound: "bell", Score: 2},
	}, record)
	buzzes := buildBuzzes([]db.BuzzEvent{
		{ID: 21, GameSessionID: 7, PlayerID: 11, RoundNumber: 3, ClientTimestamp: 100, ServerTimestamp: 150, TimeOffset: 50, IsCorrect: &correct},
	}, record)

	assert.Equal(t, int64(11), players[0].ID)
	assert.Equal(t, int64(7), players[0].GameID)
	assert.Equal(t, "ABC123", players[0].GameCode)
	assert.Equal(t, 2, players[0].Score)
	assert.Equal(t, int64(11), buzzes[0].PlayerID)
	assert.Equal(t, 3, buzzes[0].RoundNumber)
	assert.Equal(t, int64(50), buzzes[0].TimeOffset)
	assert.Equal(t, &correct, buzzes[0].IsCorrect)
}
