package game

import (
	"context"
	"fmt"
	"sort"
)

// RecordBuzz stores the first buzz of a player in a round. Later buzzes by the
// same player in the same round are rejected with ErrDuplicateBuzz.
func (s *Store) RecordBuzz(ctx context.Context, code string, playerID, clientTimestamp int64, round int) error {
	if round < 1 {
		return ErrInvalidRound
	}
	sess, err := s.lookup(ctx, code)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.playerByID(playerID) == nil {
		return ErrPlayerNotFound
	}
	if sess.buzzFor(playerID, round) != nil {
		return ErrDuplicateBuzz
	}
	buzz := BuzzEvent{
		GameID:          sess.game.ID,
		GameCode:        sess.game.Code,
		PlayerID:        playerID,
		ClientTimestamp: clientTimestamp,
		RoundNumber:     round,
	}
	buzz.stamp(NowMillis(s.clock))
	id, err := s.backend.CreateBuzz(ctx, buzz)
	if err != nil {
		return fmt.Errorf("saving buzz: %w", err)
	}
	buzz.ID = id
	sess.buzzes = append(sess.buzzes, &buzz)
	return nil
}

// OrderedBuzzes lists a round's buzzes by client timestamp, earliest first.
// Equal timestamps fall back to arrival order at the server.
func (s *Store) OrderedBuzzes(ctx context.Context, code string, round int) ([]BuzzEntry, error) {
	sess, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	picked := make([]BuzzEvent, 0)
	names := make(map[int64]string, len(sess.players))
	for _, player := range sess.players {
		names[player.ID] = player.Name
	}
	for _, buzz := range sess.buzzes {
		if buzz.RoundNumber == round {
			picked = append(picked, *buzz)
		}
	}
	sess.mu.Unlock()

	sort.SliceStable(picked, func(i, j int) bool {
		if picked[i].ClientTimestamp != picked[j].ClientTimestamp {
			return picked[i].ClientTimestamp < picked[j].ClientTimestamp
		}
		if picked[i].ServerTimestamp != picked[j].ServerTimestamp {
			return picked[i].ServerTimestamp < picked[j].ServerTimestamp
		}
		return picked[i].ID < picked[j].ID
	})

	entries := make([]BuzzEntry, 0, len(picked))
	for _, buzz := range picked {
		entries = append(entries, BuzzEntry{
			ID:         buzz.ID,
			PlayerID:   buzz.PlayerID,
			PlayerName: names[buzz.PlayerID],
			Timestamp:  buzz.ClientTimestamp,
			IsCorrect:  buzz.IsCorrect,
		})
	}
	return entries, nil
}

// Judge records the verdict on the player's buzz for the round. Scoring is
// left to the caller.
func (s *Store) Judge(ctx context.Context, code string, playerID int64, round int, isCorrect bool) error {
	sess, err := s.lookup(ctx, code)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	buzz := sess.buzzFor(playerID, round)
	if buzz == nil {
		return ErrBuzzNotFound
	}
	updated := *buzz
	verdict := isCorrect
	updated.IsCorrect = &verdict
	if err := s.backend.UpdateBuzz(ctx, updated); err != nil {
		return fmt.Errorf("saving verdict: %w", err)
	}
	*buzz = updated
	return nil
}

func (sess *session) buzzFor(playerID int64, round int) *BuzzEvent {
	for _, buzz := range sess.buzzes {
		if buzz.PlayerID == playerID && buzz.RoundNumber == round {
			return buzz
		}
	}
	return nil
}
