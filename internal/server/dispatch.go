package server

import (
	"context"
	"errors"

	"quiz-buzzer/internal/game"
	"quiz-buzzer/internal/protocol"

	"github.com/rs/zerolog/log"
)

// HandleMessage decodes one inbound frame from c and applies it to the game
// named by code. Failures are reported to c alone; nothing here closes the
// connection.
func (h *Hub) HandleMessage(ctx context.Context, code string, c *client, raw []byte) {
	code = game.NormalizeCode(code)
	cmd, err := protocol.Decode(raw)
	if err != nil {
		var decodeErr *protocol.DecodeError
		message := "Invalid message"
		if errors.As(err, &decodeErr) {
			message = decodeErr.Message
		}
		log.Debug().Err(err).Str("game_code", code).Str("connection_id", c.id).Msg("rejected websocket message")
		h.send(code, c, protocol.NewError(message))
		return
	}

	unlock := h.lock(code)
	defer unlock()

	logger := log.With().
		Str("game_code", code).
		Str("connection_id", c.id).
		Str("command", cmd.Kind()).
		Logger()
	logger.Debug().Msg("handling command")

	switch cmd := cmd.(type) {
	case protocol.Join:
		player, err := h.store.RegisterOrUpdate(ctx, code, cmd.Name, cmd.DeviceID, cmd.BuzzerSound)
		if err != nil {
			h.fail(code, c, err)
			return
		}
		c.setPlayer(player.ID)
		g, players, err := h.state(ctx, code)
		if err != nil {
			h.fail(code, c, err)
			return
		}
		h.broadcast(code, protocol.NewPlayerList(players))
		h.broadcast(code, protocol.NewGameState(g, players))
		h.send(code, c, protocol.NewJoinConfirmed(player, g.Name))
		logger.Info().Int64("player_id", player.ID).Str("name", player.Name).Msg("player joined")

	case protocol.Buzz:
		// A buzz that cannot be recorded still re-sends the round's order.
		playerID := int64(cmd.PlayerID)
		err := h.store.RecordBuzz(ctx, code, playerID, *cmd.Timestamp, cmd.Round)
		switch {
		case errors.Is(err, game.ErrDuplicateBuzz):
			logger.Debug().Int64("player_id", playerID).Int("round", cmd.Round).Msg("duplicate buzz ignored")
		case errors.Is(err, game.ErrPlayerNotFound):
			logger.Debug().Int64("player_id", playerID).Int("round", cmd.Round).Msg("buzz from unknown player ignored")
		case err != nil:
			h.fail(code, c, err)
			return
		}
		buzzes, err := h.store.OrderedBuzzes(ctx, code, cmd.Round)
		if err != nil {
			h.fail(code, c, err)
			return
		}
		h.broadcast(code, protocol.NewBuzzOrder(buzzes, cmd.Round))

	case protocol.StartRound:
		if !cmd.IsHost {
			logger.Debug().Msg("ignoring start_round from non-host")
			return
		}
		round, err := h.store.StartNewRound(ctx, code)
		if err != nil {
			logger.Error().Err(err).Msg("failed to start round")
			h.send(code, c, protocol.NewError("Failed to start round"))
			return
		}
		h.send(code, c, protocol.NewStartRoundConfirmed(round))
		h.broadcast(code, protocol.NewRoundState(protocol.RoundStarted, round))
		g, players, err := h.state(ctx, code)
		if err != nil {
			h.fail(code, c, err)
			return
		}
		h.broadcast(code, protocol.NewGameState(g, players))
		logger.Info().Int("round", round).Msg("round started")

	case protocol.EndRound:
		if !cmd.IsHost {
			logger.Debug().Msg("ignoring end_round from non-host")
			return
		}
		g, err := h.store.Game(ctx, code)
		if err != nil {
			h.fail(code, c, err)
			return
		}
		h.broadcast(code, protocol.NewRoundState(protocol.RoundEnded, g.CurrentRound))
		logger.Info().Int("round", g.CurrentRound).Msg("round ended")

	case protocol.JudgeAnswer:
		if !cmd.IsHost {
			logger.Debug().Msg("ignoring judge_answer from non-host")
			return
		}
		playerID := int64(cmd.PlayerID)
		err := h.store.Judge(ctx, code, playerID, cmd.Round, cmd.IsCorrect)
		switch {
		case errors.Is(err, game.ErrBuzzNotFound):
			logger.Debug().Int64("player_id", playerID).Int("round", cmd.Round).Msg("judged player has no buzz")
		case err != nil:
			h.fail(code, c, err)
			return
		}
		if cmd.IsCorrect {
			err := h.store.IncrementScore(ctx, playerID, 1)
			switch {
			case errors.Is(err, game.ErrPlayerNotFound):
				logger.Debug().Int64("player_id", playerID).Msg("correct answer for unknown player")
			case err != nil:
				h.fail(code, c, err)
				return
			}
		}
		players, err := h.store.ListPlayers(ctx, code)
		if err != nil {
			h.fail(code, c, err)
			return
		}
		h.broadcast(code, protocol.NewPlayerList(players))

	case protocol.SyncTime:
		h.send(code, c, protocol.NewSyncTimeResponse(game.SyncTime(h.store.Clock(), cmd.ClientTime)))

	case protocol.Ping:
		h.send(code, c, protocol.NewPong(game.NowMillis(h.store.Clock())))

	case protocol.GetGameState:
		g, players, err := h.state(ctx, code)
		if err != nil {
			h.fail(code, c, err)
			return
		}
		h.send(code, c, protocol.NewGameState(g, players))
		h.send(code, c, protocol.NewPlayerList(players))
		h.broadcast(code, protocol.NewPlayerList(players))
	}
}

func (h *Hub) state(ctx context.Context, code string) (game.GameSession, []game.Player, error) {
	g, err := h.store.Game(ctx, code)
	if err != nil {
		return game.GameSession{}, nil, err
	}
	players, err := h.store.ListPlayers(ctx, code)
	if err != nil {
		return game.GameSession{}, nil, err
	}
	return g, players, nil
}

func (h *Hub) fail(code string, c *client, err error) {
	event := log.Warn()
	if !isClientError(err) {
		event = log.Error()
	}
	event.Err(err).Str("game_code", code).Str("connection_id", c.id).Msg("command failed")
	h.send(code, c, protocol.NewError(errorMessage(err)))
}

func isClientError(err error) bool {
	for _, target := range []error{
		game.ErrNotFound,
		game.ErrPlayerNotFound,
		game.ErrBuzzNotFound,
		game.ErrGameInactive,
		game.ErrInvalidName,
		game.ErrInvalidDevice,
		game.ErrInvalidRound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errorMessage is the text sent to clients. Storage failures are not
// described beyond a generic message.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrNotFound):
		return "Game not found"
	case errors.Is(err, game.ErrPlayerNotFound):
		return "Player not found"
	case errors.Is(err, game.ErrBuzzNotFound):
		return "Buzz not found"
	case errors.Is(err, game.ErrGameInactive):
		return "Game is no longer active"
	case errors.Is(err, game.ErrInvalidName):
		return "Player name is required"
	case errors.Is(err, game.ErrInvalidDevice):
		return "Device id is required"
	case errors.Is(err, game.ErrInvalidRound):
		return "Round must be at least 1"
	default:
		return "Error processing message"
	}
}
