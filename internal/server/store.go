package server

import (
	"fmt"
	"time"

	"quiz-buzzer/internal/config"
	"quiz-buzzer/internal/db"
	"quiz-buzzer/internal/game"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// OpenStore builds the game store described by cfg. Without DATABASE_URL the
// store keeps everything in memory and the returned connection is nil.
func OpenStore(cfg config.Config) (*game.Store, *gorm.DB, error) {
	opts := []game.Option{
		game.WithCodeGenerator(game.NewCodeGenerator(cfg.GameCodeLength)),
	}
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set; games are kept in memory only")
		return game.NewStore(opts...), nil, nil
	}

	conn, err := db.Open(cfg.DatabaseURL, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.DBConnMaxIdleTimeSeconds) * time.Second,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if cfg.DBAutoMigrate {
		if err := db.Migrate(conn); err != nil {
			return nil, nil, fmt.Errorf("migrating database: %w", err)
		}
	}
	opts = append(opts, game.WithBackend(NewGormBackend(conn)))
	return game.NewStore(opts...), conn, nil
}
