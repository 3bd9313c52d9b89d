package server

import (
	"net/http"
	"strings"
	"time"

	"quiz-buzzer/internal/config"
	"quiz-buzzer/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Server struct {
	store *game.Store
	db    *gorm.DB
	hub   *Hub
	cfg   config.Config
}

// New wires the HTTP and websocket surface around store. conn may be nil when
// no database is configured.
func New(store *game.Store, conn *gorm.DB, cfg config.Config) *Server {
	if store == nil {
		store = game.NewStore(game.WithCodeGenerator(game.NewCodeGenerator(cfg.GameCodeLength)))
	}
	registerValidators()
	return &Server{
		store: store,
		db:    conn,
		hub:   NewHub(store),
		cfg:   cfg,
	}
}

func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/", s.handleHome)
	router.GET("/healthz", s.handleHealth)
	router.GET("/games/:code", s.handleGameView)

	api := router.Group("/api")
	api.POST("/games", s.handleCreateGame)
	api.GET("/games/:code", s.handleGetGame)
	api.POST("/games/:code/active", s.handleSetActive)
	api.GET("/sync-time", s.handleSyncTime)
	api.POST("/sync-time", s.handleSyncTime)

	router.GET("/ws/game/:code", s.handleWebsocket)
	router.GET("/ws/game/:code/", s.handleWebsocket)

	return cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}

func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		allowed = strings.TrimSpace(allowed)
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	}
}
