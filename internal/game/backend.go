package game

import (
	"context"
	"sync/atomic"
)

// Backend is the only path from the store to durable state. It also owns id
// allocation so that ids survive a restart when a database is configured.
type Backend interface {
	CreateGame(ctx context.Context, game GameSession) (int64, error)
	UpdateGame(ctx context.Context, game GameSession) error
	CreatePlayer(ctx context.Context, player Player) (int64, error)
	UpdatePlayer(ctx context.Context, player Player) error
	CreateBuzz(ctx context.Context, buzz BuzzEvent) (int64, error)
	UpdateBuzz(ctx context.Context, buzz BuzzEvent) error
	CodeTaken(ctx context.Context, code string) (bool, error)
	// LoadGame returns ErrNotFound when the code is unknown.
	LoadGame(ctx context.Context, code string) (*Snapshot, error)
}

type memoryBackend struct {
	nextGame   atomic.Int64
	nextPlayer atomic.Int64
	nextBuzz   atomic.Int64
}

// NewMemoryBackend returns a Backend that allocates ids and persists nothing.
func NewMemoryBackend() Backend {
	return &memoryBackend{}
}

func (m *memoryBackend) CreateGame(context.Context, GameSession) (int64, error) {
	return m.nextGame.Add(1), nil
}

func (m *memoryBackend) UpdateGame(context.Context, GameSession) error { return nil }

func (m *memoryBackend) CreatePlayer(context.Context, Player) (int64, error) {
	return m.nextPlayer.Add(1), nil
}

func (m *memoryBackend) UpdatePlayer(context.Context, Player) error { return nil }

func (m *memoryBackend) CreateBuzz(context.Context, BuzzEvent) (int64, error) {
	return m.nextBuzz.Add(1), nil
}

func (m *memoryBackend) UpdateBuzz(context.Context, BuzzEvent) error { return nil }

func (m *memoryBackend) CodeTaken(context.Context, string) (bool, error) { return false, nil }

func (m *memoryBackend) LoadGame(context.Context, string) (*Snapshot, error) {
	return nil, ErrNotFound
}
