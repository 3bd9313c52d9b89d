package protocol

import (
	json "github.com/goccy/go-json"

	"quiz-buzzer/internal/game"
)

const (
	EventGameState           = "game_state"
	EventPlayerList          = "player_list"
	EventBuzzOrder           = "buzz_order"
	EventRoundState          = "round_state"
	EventJoinConfirmed       = "join_confirmed"
	EventStartRoundConfirmed = "start_round_confirmed"
	EventSyncTimeResponse    = "sync_time_response"
	EventPong                = "pong"
	EventError               = "error"
)

const (
	RoundStarted = "started"
	RoundEnded   = "ended"
)

// Event is an outbound message. Encode gives its wire form.
type Event interface {
	EventType() string
}

type GameInfo struct {
	ID           int64  `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	IsActive     bool   `json:"is_active"`
	CurrentRound int    `json:"current_round"`
}

type PlayerInfo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	BuzzerSound string `json:"buzzer_sound"`
}

type BuzzInfo struct {
	ID         int64  `json:"id"`
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`
	Timestamp  int64  `json:"timestamp"`
	IsCorrect  *bool  `json:"is_correct"`
}

type GameState struct {
	Type         string       `json:"type"`
	Game         GameInfo     `json:"game"`
	Players      []PlayerInfo `json:"players"`
	CurrentRound int          `json:"current_round"`
}

type PlayerList struct {
	Type    string       `json:"type"`
	Players []PlayerInfo `json:"players"`
}

type BuzzOrder struct {
	Type          string     `json:"type"`
	OrderedBuzzes []BuzzInfo `json:"ordered_buzzes"`
	Round         int        `json:"round"`
}

type RoundState struct {
	Type  string `json:"type"`
	State string `json:"state"`
	Round int    `json:"round"`
}

type JoinConfirmed struct {
	Type       string `json:"type"`
	PlayerID   int64  `json:"player_id"`
	GameName   string `json:"game_name"`
	ActualName string `json:"actual_name"`
}

type StartRoundConfirmed struct {
	Type  string `json:"type"`
	Round int    `json:"round"`
}

type SyncTimeResponse struct {
	Type       string `json:"type"`
	ClientTime *int64 `json:"client_time"`
	ServerTime int64  `json:"server_time"`
}

type Pong struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Message   string `json:"message"`
}

type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (GameState) EventType() string           { return EventGameState }
func (PlayerList) EventType() string          { return EventPlayerList }
func (BuzzOrder) EventType() string           { return EventBuzzOrder }
func (RoundState) EventType() string          { return EventRoundState }
func (JoinConfirmed) EventType() string       { return EventJoinConfirmed }
func (StartRoundConfirmed) EventType() string { return EventStartRoundConfirmed }
func (SyncTimeResponse) EventType() string    { return EventSyncTimeResponse }
func (Pong) EventType() string                { return EventPong }
func (Error) EventType() string               { return EventError }

func Encode(event Event) ([]byte, error) {
	return json.Marshal(event)
}

func NewGameInfo(g game.GameSession) GameInfo {
	return GameInfo{
		ID:           g.ID,
		Code:         g.Code,
		Name:         g.Name,
		IsActive:     g.IsActive,
		CurrentRound: g.CurrentRound,
	}
}

func NewPlayerInfos(players []game.Player) []PlayerInfo {
	infos := make([]PlayerInfo, 0, len(players))
	for _, p := range players {
		infos = append(infos, PlayerInfo{
			ID:          p.ID,
			Name:        p.Name,
			Score:       p.Score,
			BuzzerSound: p.BuzzerSound,
		})
	}
	return infos
}

func NewGameState(g game.GameSession, players []game.Player) GameState {
	return GameState{
		Type:         EventGameState,
		Game:         NewGameInfo(g),
		Players:      NewPlayerInfos(players),
		CurrentRound: g.CurrentRound,
	}
}

func NewPlayerList(players []game.Player) PlayerList {
	return PlayerList{Type: EventPlayerList, Players: NewPlayerInfos(players)}
}

func NewBuzzOrder(entries []game.BuzzEntry, round int) BuzzOrder {
	buzzes := make([]BuzzInfo, 0, len(entries))
	for _, e := range entries {
		buzzes = append(buzzes, BuzzInfo{
			ID:         e.ID,
			PlayerID:   e.PlayerID,
			PlayerName: e.PlayerName,
			Timestamp:  e.Timestamp,
			IsCorrect:  e.IsCorrect,
		})
	}
	return BuzzOrder{Type: EventBuzzOrder, OrderedBuzzes: buzzes, Round: round}
}

func NewRoundState(state string, round int) RoundState {
	return RoundState{Type: EventRoundState, State: state, Round: round}
}

func NewJoinConfirmed(player game.Player, gameName string) JoinConfirmed {
	return JoinConfirmed{
		Type:       EventJoinConfirmed,
		PlayerID:   player.ID,
		GameName:   gameName,
		ActualName: player.Name,
	}
}

func NewStartRoundConfirmed(round int) StartRoundConfirmed {
	return StartRoundConfirmed{Type: EventStartRoundConfirmed, Round: round}
}

func NewSyncTimeResponse(sync game.TimeSync) SyncTimeResponse {
	return SyncTimeResponse{
		Type:       EventSyncTimeResponse,
		ClientTime: sync.ClientTime,
		ServerTime: sync.ServerTime,
	}
}

func NewPong(timestamp int64) Pong {
	return Pong{Type: EventPong, Timestamp: timestamp, Message: "Connection is working!"}
}

func NewError(message string) Error {
	return Error{Type: EventError, Message: message}
}
