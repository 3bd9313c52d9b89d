package game

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// ListPlayers returns the leaderboard: score descending, then name ascending.
func (s *Store) ListPlayers(ctx context.Context, code string) ([]Player, error) {
	sess, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	list := make([]Player, 0, len(sess.players))
	for _, player := range sess.players {
		list = append(list, *player)
	}
	sess.mu.Unlock()

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// RegisterOrUpdate joins a device to the game. A known device keeps its
// player: the sound is replaced and the name only changes when no other
// player holds it. A new device gets the requested name, suffixed with
// " (n)" until unique.
func (s *Store) RegisterOrUpdate(ctx context.Context, code, name, deviceID, buzzerSound string) (Player, error) {
	name = truncateRunes(strings.TrimSpace(name), MaxNameLength)
	if name == "" {
		return Player{}, ErrInvalidName
	}
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return Player{}, ErrInvalidDevice
	}
	if buzzerSound == "" {
		buzzerSound = DefaultBuzzerSound
	}

	sess, err := s.lookup(ctx, code)
	if err != nil {
		return Player{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if existing := sess.playerByDevice(deviceID); existing != nil {
		updated := *existing
		updated.BuzzerSound = buzzerSound
		if !sess.nameTaken(name, existing.ID) {
			updated.Name = name
		}
		if updated != *existing {
			if err := s.backend.UpdatePlayer(ctx, updated); err != nil {
				return Player{}, fmt.Errorf("saving player %d: %w", updated.ID, err)
			}
			*existing = updated
		}
		return updated, nil
	}

	if !sess.game.IsActive {
		return Player{}, ErrGameInactive
	}
	player := Player{
		GameID:      sess.game.ID,
		GameCode:    sess.game.Code,
		Name:        sess.uniqueName(name),
		DeviceID:    deviceID,
		BuzzerSound: buzzerSound,
		JoinedAt:    s.clock.Now().UTC(),
	}
	id, err := s.backend.CreatePlayer(ctx, player)
	if err != nil {
		return Player{}, fmt.Errorf("creating player: %w", err)
	}
	player.ID = id
	sess.players = append(sess.players, &player)

	s.mu.Lock()
	s.players[player.ID] = sess.game.Code
	s.mu.Unlock()
	return player, nil
}

// IncrementScore adds points to a player's score.
func (s *Store) IncrementScore(ctx context.Context, playerID int64, points int) error {
	if points < 1 {
		return ErrInvalidPoints
	}
	s.mu.RLock()
	code, ok := s.players[playerID]
	s.mu.RUnlock()
	if !ok {
		return ErrPlayerNotFound
	}
	sess, err := s.lookup(ctx, code)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	player := sess.playerByID(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	updated := *player
	updated.Score += points
	if err := s.backend.UpdatePlayer(ctx, updated); err != nil {
		return fmt.Errorf("saving score for player %d: %w", playerID, err)
	}
	*player = updated
	return nil
}

func (sess *session) playerByDevice(deviceID string) *Player {
	for _, player := range sess.players {
		if player.DeviceID == deviceID {
			return player
		}
	}
	return nil
}

func (sess *session) playerByID(id int64) *Player {
	for _, player := range sess.players {
		if player.ID == id {
			return player
		}
	}
	return nil
}

func (sess *session) nameTaken(name string, exceptID int64) bool {
	for _, player := range sess.players {
		if player.ID != exceptID && player.Name == name {
			return true
		}
	}
	return false
}

// uniqueName trims the base name when needed so that base plus suffix stays
// within MaxNameLength.
func (sess *session) uniqueName(name string) string {
	candidate := truncateRunes(name, MaxNameLength)
	for suffix := 1; sess.nameTaken(candidate, 0); suffix++ {
		tag := fmt.Sprintf(" (%d)", suffix)
		base := strings.TrimRight(truncateRunes(name, MaxNameLength-len(tag)), " ")
		candidate = base + tag
	}
	return candidate
}

func truncateRunes(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
