package server

import (
	"errors"
	"net/http"
	"time"

	"quiz-buzzer/internal/game"
	"quiz-buzzer/internal/protocol"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type createGameRequest struct {
	Name string `json:"name" binding:"omitempty,gamename"`
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type syncTimeRequest struct {
	ClientTime *int64 `json:"client_time"`
}

type gameSummary struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	CurrentRound int       `json:"current_round"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func newGameSummary(g game.GameSession) gameSummary {
	return gameSummary{
		ID:           g.ID,
		Code:         g.Code,
		Name:         g.Name,
		CurrentRound: g.CurrentRound,
		IsActive:     g.IsActive,
		CreatedAt:    g.CreatedAt,
	}
}

var createGameMessages = bindMessages{
	"Name": {"gamename": "game name must be 100 characters or fewer"},
}

func (s *Server) handleCreateGame(c *gin.Context) {
	var req createGameRequest
	if c.Request.ContentLength != 0 {
		if !bindJSON(c, &req, createGameMessages, "invalid game request") {
			return
		}
	}
	name := normalizeText(req.Name)
	if name == "" {
		name = s.cfg.DefaultGameName
	}
	g, err := s.store.CreateGame(c.Request.Context(), name)
	if err != nil {
		log.Error().Err(err).Msg("failed to create game")
		writeError(c, http.StatusInternalServerError, "failed to create game")
		return
	}
	log.Info().Str("game_code", g.Code).Int64("game_id", g.ID).Str("name", g.Name).Msg("game created")
	c.JSON(http.StatusCreated, newGameSummary(g))
}

func (s *Server) handleGetGame(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		writeStoreError(c, game.ErrNotFound)
		return
	}
	ctx := c.Request.Context()
	g, err := s.store.Game(ctx, code)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	players, err := s.store.ListPlayers(ctx, g.Code)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"game":    newGameSummary(g),
		"players": protocol.NewPlayerInfos(players),
	})
}

var setActiveMessages = bindMessages{
	"IsActive": {"required": "is_active is required"},
}

func (s *Server) handleSetActive(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		writeStoreError(c, game.ErrNotFound)
		return
	}
	var req setActiveRequest
	if !bindJSON(c, &req, setActiveMessages, "invalid request") {
		return
	}
	ctx := c.Request.Context()
	g, err := s.store.SetActive(ctx, code, *req.IsActive)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	s.hub.PublishGameState(ctx, g.Code)
	log.Info().Str("game_code", g.Code).Bool("is_active", g.IsActive).Msg("game activity changed")
	c.JSON(http.StatusOK, newGameSummary(g))
}

func (s *Server) handleSyncTime(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		c.JSON(http.StatusOK, gin.H{"server_time": game.NowMillis(s.store.Clock())})
		return
	}
	var req syncTimeRequest
	if !bindJSON(c, &req, nil, "Invalid JSON") {
		return
	}
	sync := game.SyncTime(s.store.Clock(), req.ClientTime)
	c.JSON(http.StatusOK, gin.H{
		"client_time": sync.ClientTime,
		"server_time": sync.ServerTime,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			log.Error().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrNotFound):
		writeError(c, http.StatusNotFound, "game not found")
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("store request failed")
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
