package game

import "time"

// DefaultGameName is used when a game is created without a display name.
const DefaultGameName = "Quiz Game"

// DefaultBuzzerSound is assigned to players that do not pick a sound.
const DefaultBuzzerSound = "default"

// MaxNameLength bounds a player name in characters, including any " (n)"
// suffix added to resolve a collision.
const MaxNameLength = 50

type GameSession struct {
	ID           int64
	Code         string
	Name         string
	IsActive     bool
	CreatedAt    time.Time
	CurrentRound int
}

type Player struct {
	ID          int64
	GameID      int64
	GameCode    string
	Name        string
	DeviceID    string
	BuzzerSound string
	Score       int
	JoinedAt    time.Time
}

// BuzzEvent is one player's buzz in one round. IsCorrect stays nil until the
// host judges it.
type BuzzEvent struct {
	ID              int64
	GameID          int64
	GameCode        string
	PlayerID        int64
	ClientTimestamp int64
	ServerTimestamp int64
	TimeOffset      int64
	RoundNumber     int
	IsCorrect       *bool
}

// stamp fills the server timestamp and offset once.
func (b *BuzzEvent) stamp(nowMillis int64) {
	if b.ServerTimestamp == 0 {
		b.ServerTimestamp = nowMillis
	}
	if b.TimeOffset == 0 {
		b.TimeOffset = b.ServerTimestamp - b.ClientTimestamp
	}
}

// BuzzEntry is the ordered view of a buzz as shown to clients.
type BuzzEntry struct {
	ID         int64
	PlayerID   int64
	PlayerName string
	Timestamp  int64
	IsCorrect  *bool
}

// Snapshot is everything a backend knows about one game.
type Snapshot struct {
	Game    GameSession
	Players []Player
	Buzzes  []BuzzEvent
}
