package server

import (
	"context"
	"sync"

	"quiz-buzzer/internal/game"
	"quiz-buzzer/internal/protocol"

	"github.com/rs/zerolog/log"
)

// client is one websocket connection as seen by the hub. Outbound frames are
// queued on send and written by the connection's write pump.
type client struct {
	id   string
	send chan []byte

	mu       sync.Mutex
	closed   bool
	playerID int64
}

func newClient(id string, buffer int) *client {
	if buffer < 1 {
		buffer = 1
	}
	return &client{
		id:   id,
		send: make(chan []byte, buffer),
	}
}

// enqueue reports false when the client is gone or its queue is full.
func (c *client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *client) setPlayer(id int64) {
	c.mu.Lock()
	c.playerID = id
	c.mu.Unlock()
}

func (c *client) player() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

// Hub fans game events out to every connection of a game code. Each code has
// its own lock, held while a command mutates the store and enqueues its
// events, so every member sees one command's effects before the next one's.
type Hub struct {
	store *game.Store

	mu     sync.Mutex
	groups map[string]map[*client]struct{}
	locks  map[string]*sync.Mutex
}

func NewHub(store *game.Store) *Hub {
	return &Hub{
		store:  store,
		groups: make(map[string]map[*client]struct{}),
		locks:  make(map[string]*sync.Mutex),
	}
}

func (h *Hub) lock(code string) func() {
	h.mu.Lock()
	l, ok := h.locks[code]
	if !ok {
		l = &sync.Mutex{}
		h.locks[code] = l
	}
	h.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Connect adds c to the group for code and sends it the current game state
// followed by the player list. An unknown code gets an error event and the
// connection stays in the group.
func (h *Hub) Connect(ctx context.Context, code string, c *client) {
	code = game.NormalizeCode(code)
	unlock := h.lock(code)
	defer unlock()

	h.mu.Lock()
	group := h.groups[code]
	if group == nil {
		group = make(map[*client]struct{})
		h.groups[code] = group
	}
	group[c] = struct{}{}
	h.mu.Unlock()

	g, err := h.store.Game(ctx, code)
	if err != nil {
		log.Warn().Err(err).Str("game_code", code).Str("connection_id", c.id).Msg("connect to unavailable game")
		h.send(code, c, protocol.NewError(errorMessage(err)))
		return
	}
	players, err := h.store.ListPlayers(ctx, code)
	if err != nil {
		h.send(code, c, protocol.NewError(errorMessage(err)))
		return
	}
	h.send(code, c, protocol.NewGameState(g, players))
	h.send(code, c, protocol.NewPlayerList(players))
}

// Disconnect removes c from its group and closes its queue. Calling it more
// than once is harmless.
func (h *Hub) Disconnect(code string, c *client) {
	code = game.NormalizeCode(code)
	h.mu.Lock()
	if group, ok := h.groups[code]; ok {
		delete(group, c)
		if len(group) == 0 {
			delete(h.groups, code)
		}
	}
	h.mu.Unlock()
	c.close()
}

// size returns how many connections are in the group for code.
func (h *Hub) size(code string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[game.NormalizeCode(code)])
}

func (h *Hub) members(code string) []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[code]
	clients := make([]*client, 0, len(group))
	for c := range group {
		clients = append(clients, c)
	}
	return clients
}

func (h *Hub) send(code string, c *client, event protocol.Event) {
	data, err := protocol.Encode(event)
	if err != nil {
		log.Error().Err(err).Str("event", event.EventType()).Msg("encode event")
		return
	}
	if !c.enqueue(data) {
		h.drop(code, c)
	}
}

func (h *Hub) broadcast(code string, event protocol.Event) {
	data, err := protocol.Encode(event)
	if err != nil {
		log.Error().Err(err).Str("event", event.EventType()).Msg("encode event")
		return
	}
	for _, c := range h.members(code) {
		if !c.enqueue(data) {
			h.drop(code, c)
		}
	}
}

func (h *Hub) drop(code string, c *client) {
	log.Warn().
		Str("game_code", code).
		Str("connection_id", c.id).
		Msg("dropping slow or closed websocket client")
	h.Disconnect(code, c)
}

// PublishGameState sends the current game state to every connection of code.
func (h *Hub) PublishGameState(ctx context.Context, code string) {
	code = game.NormalizeCode(code)
	unlock := h.lock(code)
	defer unlock()
	g, players, err := h.state(ctx, code)
	if err != nil {
		log.Warn().Err(err).Str("game_code", code).Msg("publish game state")
		return
	}
	h.broadcast(code, protocol.NewGameState(g, players))
}
