package game

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCodes(codes ...string) func() string {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		code := codes[i%len(codes)]
		i++
		return code
	}
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	opts = append([]Option{WithClock(clock)}, opts...)
	return NewStore(opts...), clock
}

func TestCreateGameDefaults(t *testing.T) {
	store, clock := newTestStore(t, WithCodeGenerator(fixedCodes("abc123")))
	ctx := context.Background()

	game, err := store.CreateGame(ctx, "  ")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", game.Code)
	assert.Equal(t, DefaultGameName, game.Name)
	assert.True(t, game.IsActive)
	assert.Equal(t, 1, game.CurrentRound)
	assert.Equal(t, clock.Now().UTC(), game.CreatedAt)
	assert.NotZero(t, game.ID)
}

func TestCreateGameRetriesOnCollision(t *testing.T) {
	store, _ := newTestStore(t, WithCodeGenerator(fixedCodes("AAAAAA", "AAAAAA", "BBBBBB")))
	ctx := context.Background()

	first, err := store.CreateGame(ctx, "One")
	require.NoError(t, err)
	second, err := store.CreateGame(ctx, "Two")
	require.NoError(t, err)

	assert.Equal(t, "AAAAAA", first.Code)
	assert.Equal(t, "BBBBBB", second.Code)
}

func TestCreateGameGivesUpWhenCodesRunOut(t *testing.T) {
	store, _ := newTestStore(t, WithCodeGenerator(fixedCodes("SAME11")))
	ctx := context.Background()

	_, err := store.CreateGame(ctx, "One")
	require.NoError(t, err)
	_, err = store.CreateGame(ctx, "Two")
	assert.ErrorIs(t, err, ErrCodeExhausted)
}

func TestGameLookupIsCaseInsensitive(t *testing.T) {
	store, _ := newTestStore(t, WithCodeGenerator(fixedCodes("QZ12AB")))
	ctx := context.Background()
	_, err := store.CreateGame(ctx, "Trivia")
	require.NoError(t, err)

	game, err := store.Game(ctx, " qz12ab ")
	require.NoError(t, err)
	assert.Equal(t, "Trivia", game.Name)

	_, err = store.Game(ctx, "NOPE00")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterResolvesNameCollisions(t *testing.T) {
	store, _ := newTestStore(t, WithCodeGenerator(fixedCodes("ABC123")))
	ctx := context.Background()
	_, err := store.CreateGame(ctx, "Trivia")
	require.NoError(t, err)

	first, err := store.RegisterOrUpdate(ctx, "ABC123", "Sam", "device-1", "bell")
	require.NoError(t, err)
	second, err := store.RegisterOrUpdate(ctx, "ABC123", "Sam", "device-2", "")
	require.NoError(t, err)
	third, err := store.RegisterOrUpdate(ctx, "ABC123", "Sam", "device-3", "horn")
	require.NoError(t, err)

	assert.Equal(t, "Sam", first.Name)
	assert.Equal(t, "Sam (1)", second.Name)
	assert.Equal(t, "Sam (2)", third.Name)
	assert.Equal(t, DefaultBuzzerSound, second.BuzzerSound)

	players, err := store.ListPlayers(ctx, "ABC123")
	require.NoError(t, err)
	require.Len(t, players, 3)
	for _, player := range players {
		assert.Zero(t, player.Score)
	}
}

func TestRegisterCollisionSuffixFitsNameLimit(t *testing.T) {
	store, _ := newTestStore(t, WithCodeGenerator(fixedCodes("ABC123")))
	ctx := context.Background()
	_, err := store.CreateGame(ctx, "Trivia")
	require.NoError(t, err)

	long := strings.Repeat("x", MaxNameLength)
	first, err := store.RegisterOrUpdate(ctx, "ABC123", long, "device-1", "")
	require.NoError(t, err)
	second, err := store.RegisterOrUpdate(ctx, "ABC123", long, "device-2", "")
	require.NoError(t, err)
	third, err := store.RegisterOrUpdate(ctx, "ABC123", long+"yy", "device-3", "")
	require.NoError(t, err)

	assert.Equal(t, long, first.Name)
	assert.Equal(t, strings.Repeat("x", MaxNameLength-4)+" (1)", second.Name)
	assert.Equal(t, strings.Repeat("x", MaxNameLength-4)+" (2)", third.Name)
	for _, player := range []Player{first, second, third} {
		assert.LessOrEqual(t, utf8.RuneCountInString(player.Name), MaxNameLength)
	}
}

func TestRegisterRejoinUpdatesInPlace(t *testing.T) {
	store, _ := newTestStore(t, WithCodeGenerator(fixedCodes("ABC123")))
	ctx := context.Background()
	_, err := store.CreateGame(ctx, "Trivia")
	require.NoError(t, err)

	sam, err := store.RegisterOrUpdate(ctx, "ABC123", "Sam", "device-1", "bell")
	require.NoError(t, err)
	_, err = store.RegisterOrUpdate(ctx, "ABC123", "Ada", "device-2", "bell")
	require.NoError(t, err)

	// Name held by another player: sound changes, name stays.
	again, err := store.RegisterOrUpdate(ctx, "ABC123", "Ada", "device-1", "horn")
	require.NoError(t, err)
	assert.Equal(t, sam.ID, again.ID)
	assert.Equal(t, "Sam", again.Name)
	assert.Equal(t, "horn", again.BuzzerSound)

	renamed, err := store.RegisterOrUpdate(ctx, "ABC123", "Samantha", "device-1", "horn")
	require.NoError(t, err)
	assert.Equal(t, sam.ID, renamed.ID)
	assert.Equal(t, "Samantha", renamed.Name)

	players, err := store.ListPlayers(ctx, "ABC123")
	require.NoError(t, err)
	assert.Len(t, players, 2)
}

func TestRegisterOnRetiredGame(t *testing.T) {
	store, _ := newTestStore(t, WithCodeGenerator(fixedCodes("ABC123")))
	ctx := context.Background()
	_, err := store.CreateGame(ctx, "Trivia")
	require.NoError(t, err)
	_, err = store.RegisterOrUpdate(ctx, "ABC123", "Sam", "device-1", "bell")
	require.NoError(t, err)

	_, err = store.SetActive(ctx, "ABC123", false)
	require.NoError(t, err)

	_, err = store.RegisterOrUpdate(ctx, "ABC123", "Ada", "device-2", "bell")
	assert.ErrorIs(t, err, ErrGameInactive)

	_, err = store.RegisterOrUpdate(ctx, "ABC123", "Sam", "device-1", "ding")
	assert.NoError(t, err)
}

func TestRegisterValidatesInput(t *testing.T) {
	store, _ := newTestStore(t, WithCodeGenerator(fixedCodes("ABC123")))
	ctx := context.Background()
	_, err := store.CreateGame(ctx, "Trivia")
	require.NoError(t, err)

	_, err = store.RegisterOrUpdate(ctx, "ABC123", " ", "device-1", "")
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = store.RegisterOrUpdate(ctx, "ABC123", "Sam", "", "")
	assert.ErrorIs(t, err, ErrInvalidDevice)
	_, err = store.RegisterOrUpdate(ctx, "ZZZZZZ", "Sam", "device-1", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPlayersOrdering(t *testing.T) {
	store, _ := newTestStore(t, WithCodeGenerator(fixedCodes("ABC123")))
	ctx := context.Background()
	_, err := store.CreateGame(ctx, "Trivia")
	require.NoError(t, err)

	cam, err := store.RegisterOrUpdate(ctx, "ABC123", "Cam", "d3", "")
	require.NoError(t, err)
	_, err = store.RegisterOrUpdate(ctx, "ABC123", "Ada", "d1", "")
	require.NoError(t, err)
	ben, err := store.RegisterOrUpdate(ctx, "ABC123", "Ben", "d2", "")
	require.NoError(t, err)

	require.NoError(t, store.IncrementScore(ctx, ben.ID, 1))
	require.NoError(t, store.IncrementScore(ctx, cam.ID, 1))

	players, err := store.ListPlayers(ctx, "ABC123")
	require.NoError(t, err)
	names := []string{players[0].Name, players[1].Name, players[2].Name}
	assert.Equal(t, []string{"Ben", "Cam", "Ada"}, names)
}

func TestIncrementScoreErrors(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.IncrementScore(ctx, 42, 1), ErrPlayerNotFound)
	assert.ErrorIs(t, store.IncrementScore(ctx, 42, 0), ErrInvalidPoints)
}

func TestStartNewRoundConcurrent(t *testing.T) {
	store, _ := newTestStore(t, WithCodeGenerator(fixedCodes("ABC123")))
	ctx := context.Background()
	_, err := store.CreateGame(ctx, "Trivia")
	require.NoError(t, err)

	const calls = 50
	var wg sync.WaitGroup
	rounds := make(chan int, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			round, err := store.StartNewRound(ctx, "abc123")
			if err == nil {
				rounds <- round
			}
		}()
	}
	wg.Wait()
	close(rounds)

	seen := make(map[int]bool)
	for round := range rounds {
		assert.False(t, seen[round], "round %d returned twice", round)
		seen[round] = true
	}
	assert.Len(t, seen, calls)

	game, err := store.Game(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, 1+calls, game.CurrentRound)
}

func TestStartNewRoundUnknownGame(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.StartNewRound(context.Background(), "NOPE00")
	assert.ErrorIs(t, err, ErrNotFound)
}

type failingBackend struct {
	Backend
	err error
}

func (f failingBackend) UpdateGame(context.Context, GameSession) error { return f.err }

func TestStartNewRoundBackendFailureLeavesRound(t *testing.T) {
	boom := errors.New("storage down")
	store, _ := newTestStore(t,
		WithCodeGenerator(fixedCodes("ABC123")),
		WithBackend(failingBackend{Backend: NewMemoryBackend(), err: boom}),
	)
	ctx := context.Background()
	_, err := store.CreateGame(ctx, "Trivia")
	require.NoError(t, err)

	_, err = store.StartNewRound(ctx, "ABC123")
	require.ErrorIs(t, err, boom)

	game, err := store.Game(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, 1, game.CurrentRound)
}

type restoringBackend struct {
	Backend
	mu    sync.Mutex
	loads int
	snap  Snapshot
}

func (r *restoringBackend) LoadGame(_ context.Context, code string) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if code != r.snap.Game.Code {
		return nil, ErrNotFound
	}
	r.loads++
	snap := r.snap
	return &snap, nil
}

func TestLookupRestoresFromBackend(t *testing.T) {
	correct := true
	backend := &restoringBackend{
		Backend: NewMemoryBackend(),
		snap: Snapshot{
			Game:    GameSession{ID: 7, Code: "OLD001", Name: "Yesterday", IsActive: true, CurrentRound: 3},
			Players: []Player{{ID: 11, GameID: 7, Name: "Ada", DeviceID: "d1", Score: 2}},
			Buzzes: []BuzzEvent{
				{ID: 5, GameID: 7, PlayerID: 11, ClientTimestamp: 100, ServerTimestamp: 120, TimeOffset: 20, RoundNumber: 3, IsCorrect: &correct},
			},
		},
	}
	store, _ := newTestStore(t, WithBackend(backend))
	ctx := context.Background()

	game, err := store.Game(ctx, "old001")
	require.NoError(t, err)
	assert.Equal(t, 3, game.CurrentRound)

	buzzes, err := store.OrderedBuzzes(ctx, "OLD001", 3)
	require.NoError(t, err)
	require.Len(t, buzzes, 1)
	assert.Equal(t, "Ada", buzzes[0].PlayerName)

	require.NoError(t, store.IncrementScore(ctx, 11, 1))
	players, err := store.ListPlayers(ctx, "OLD001")
	require.NoError(t, err)
	assert.Equal(t, 3, players[0].Score)
	assert.Equal(t, 1, backend.loads)
}
