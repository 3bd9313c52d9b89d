package protocol

import (
	"bytes"
	"strconv"

	json "github.com/goccy/go-json"
)

// Command is one decoded inbound message. The set of implementations is
// closed: only types in this file satisfy it.
type Command interface {
	Kind() string
	isCommand()
}

const (
	TypeJoin         = "join"
	TypeJoinGame     = "join_game"
	TypeBuzz         = "buzz"
	TypeStartRound   = "start_round"
	TypeEndRound     = "end_round"
	TypeJudgeAnswer  = "judge_answer"
	TypeSyncTime     = "sync_time"
	TypePing         = "ping"
	TypeGetGameState = "get_game_state"
)

type Join struct {
	Name        string `json:"name" validate:"required,max=50"`
	DeviceID    string `json:"device_id" validate:"required,max=100"`
	BuzzerSound string `json:"buzzer_sound" validate:"max=20"`
}

// Buzz carries the client clock reading in milliseconds. Zero is a valid
// reading, so only an absent timestamp is rejected.
type Buzz struct {
	PlayerID  ID     `json:"player_id" validate:"required"`
	Timestamp *int64 `json:"timestamp" validate:"required"`
	Round     int    `json:"round" validate:"required,min=1"`
}

type StartRound struct {
	IsHost bool `json:"is_host"`
}

type EndRound struct {
	IsHost bool `json:"is_host"`
}

type JudgeAnswer struct {
	IsHost    bool `json:"is_host"`
	PlayerID  ID   `json:"player_id" validate:"required"`
	IsCorrect bool `json:"is_correct"`
	Round     int  `json:"round" validate:"required,min=1"`
}

type SyncTime struct {
	ClientTime *int64 `json:"client_time"`
}

type Ping struct{}

type GetGameState struct{}

func (Join) Kind() string         { return TypeJoin }
func (Buzz) Kind() string         { return TypeBuzz }
func (StartRound) Kind() string   { return TypeStartRound }
func (EndRound) Kind() string     { return TypeEndRound }
func (JudgeAnswer) Kind() string  { return TypeJudgeAnswer }
func (SyncTime) Kind() string     { return TypeSyncTime }
func (Ping) Kind() string         { return TypePing }
func (GetGameState) Kind() string { return TypeGetGameState }

func (Join) isCommand()         {}
func (Buzz) isCommand()         {}
func (StartRound) isCommand()   {}
func (EndRound) isCommand()     {}
func (JudgeAnswer) isCommand()  {}
func (SyncTime) isCommand()     {}
func (Ping) isCommand()         {}
func (GetGameState) isCommand() {}

// ID is a player or record id. Clients send it as a number, but a quoted
// number is accepted too.
type ID int64

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			*id = 0
			return nil
		}
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		*id = ID(value)
		return nil
	}
	var value int64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*id = ID(value)
	return nil
}
