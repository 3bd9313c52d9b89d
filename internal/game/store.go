package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

const maxCodeAttempts = 64

// Store is the in-memory aggregate for every live game. The outer lock only
// guards the code index; each session serializes its own mutations so games
// never contend with each other.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
	reserved map[string]struct{}
	players  map[int64]string

	backend  Backend
	clock    clockwork.Clock
	newCode  func() string
	restores singleflight.Group
}

type session struct {
	mu      sync.Mutex
	game    GameSession
	players []*Player
	buzzes  []*BuzzEvent
}

type Option func(*Store)

func WithBackend(backend Backend) Option {
	return func(s *Store) {
		if backend != nil {
			s.backend = backend
		}
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithCodeGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newCode = gen
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*session),
		reserved: make(map[string]struct{}),
		players:  make(map[int64]string),
		backend:  NewMemoryBackend(),
		clock:    clockwork.NewRealClock(),
		newCode:  NewCodeGenerator(DefaultCodeLength),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Clock() clockwork.Clock {
	return s.clock
}

// CreateGame registers a new active session under a freshly generated code.
func (s *Store) CreateGame(ctx context.Context, name string) (GameSession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultGameName
	}
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := NormalizeCode(s.newCode())
		if !s.reserve(code) {
			continue
		}
		taken, err := s.backend.CodeTaken(ctx, code)
		if err != nil {
			s.release(code)
			return GameSession{}, fmt.Errorf("checking game code: %w", err)
		}
		if taken {
			s.release(code)
			continue
		}
		game := GameSession{
			Code:         code,
			Name:         name,
			IsActive:     true,
			CreatedAt:    s.clock.Now().UTC(),
			CurrentRound: 1,
		}
		id, err := s.backend.CreateGame(ctx, game)
		if err != nil {
			s.release(code)
			return GameSession{}, fmt.Errorf("creating game: %w", err)
		}
		game.ID = id

		s.mu.Lock()
		delete(s.reserved, code)
		s.sessions[code] = &session{game: game}
		s.mu.Unlock()
		return game, nil
	}
	return GameSession{}, ErrCodeExhausted
}

func (s *Store) reserve(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == "" {
		return false
	}
	if _, ok := s.sessions[code]; ok {
		return false
	}
	if _, ok := s.reserved[code]; ok {
		return false
	}
	s.reserved[code] = struct{}{}
	return true
}

func (s *Store) release(code string) {
	s.mu.Lock()
	delete(s.reserved, code)
	s.mu.Unlock()
}

// Game returns a copy of the session metadata for code.
func (s *Store) Game(ctx context.Context, code string) (GameSession, error) {
	sess, err := s.lookup(ctx, code)
	if err != nil {
		return GameSession{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.game, nil
}

// StartNewRound increments the round counter and returns the new value. Each
// call produces exactly one increment.
func (s *Store) StartNewRound(ctx context.Context, code string) (int, error) {
	sess, err := s.lookup(ctx, code)
	if err != nil {
		return 0, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	next := sess.game
	next.CurrentRound++
	if err := s.backend.UpdateGame(ctx, next); err != nil {
		return 0, fmt.Errorf("saving round %d: %w", next.CurrentRound, err)
	}
	sess.game = next
	return next.CurrentRound, nil
}

func (s *Store) SetActive(ctx context.Context, code string, active bool) (GameSession, error) {
	sess, err := s.lookup(ctx, code)
	if err != nil {
		return GameSession{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.game.IsActive == active {
		return sess.game, nil
	}
	next := sess.game
	next.IsActive = active
	if err := s.backend.UpdateGame(ctx, next); err != nil {
		return GameSession{}, fmt.Errorf("saving game state: %w", err)
	}
	sess.game = next
	return next, nil
}

// lookup resolves a code to its live session, restoring it from the backend
// on a miss. Concurrent misses for one code share a single load.
func (s *Store) lookup(ctx context.Context, code string) (*session, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	sess, ok := s.sessions[code]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}

	v, err, _ := s.restores.Do(code, func() (any, error) {
		s.mu.RLock()
		existing, ok := s.sessions[code]
		s.mu.RUnlock()
		if ok {
			return existing, nil
		}
		snap, err := s.backend.LoadGame(ctx, code)
		if err != nil {
			return nil, err
		}
		return s.install(snap), nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("restoring game %s: %w", code, err)
	}
	return v.(*session), nil
}

func (s *Store) install(snap *Snapshot) *session {
	sess := &session{game: snap.Game}
	sess.game.Code = NormalizeCode(sess.game.Code)
	if sess.game.CurrentRound < 1 {
		sess.game.CurrentRound = 1
	}
	for i := range snap.Players {
		player := snap.Players[i]
		player.GameCode = sess.game.Code
		sess.players = append(sess.players, &player)
	}
	for i := range snap.Buzzes {
		buzz := snap.Buzzes[i]
		buzz.GameCode = sess.game.Code
		sess.buzzes = append(sess.buzzes, &buzz)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[sess.game.Code]; ok {
		return existing
	}
	s.sessions[sess.game.Code] = sess
	for _, player := range sess.players {
		s.players[player.ID] = sess.game.Code
	}
	return sess
}
