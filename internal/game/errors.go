package game

import "errors"

var (
	ErrNotFound       = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrBuzzNotFound   = errors.New("buzz not found")
	ErrGameInactive   = errors.New("game is no longer active")
	ErrDuplicateBuzz  = errors.New("player already buzzed this round")
	ErrInvalidName    = errors.New("player name is required")
	ErrInvalidDevice  = errors.New("device id is required")
	ErrInvalidRound   = errors.New("round must be at least 1")
	ErrInvalidPoints  = errors.New("points must be positive")
	ErrCodeExhausted  = errors.New("could not generate a unique game code")
)
