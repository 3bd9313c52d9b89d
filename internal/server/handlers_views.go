package server

import (
	"net/http"

	"quiz-buzzer/internal/web"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func (s *Server) handleHome(c *gin.Context) {
	templ.Handler(web.Home()).ServeHTTP(c.Writer, c.Request)
}

// handleGameView checks that a code names an active game before a client
// loads its buzzer screen.
func (s *Server) handleGameView(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		s.renderGameError(c, c.Param("code"))
		return
	}
	g, err := s.store.Game(c.Request.Context(), code)
	if err != nil || !g.IsActive {
		if err != nil {
			log.Debug().Err(err).Str("game_code", code).Msg("game view unavailable")
		}
		s.renderGameError(c, code)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"game":          newGameSummary(g),
		"buzzer_sounds": web.BuzzerSounds,
	})
}

func (s *Server) renderGameError(c *gin.Context, code string) {
	templ.Handler(web.GameError(web.NewGameErrorData(code)), templ.WithStatus(http.StatusNotFound)).ServeHTTP(c.Writer, c.Request)
}
