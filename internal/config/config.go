package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	Port     string `env:"PORT"`

	DatabaseURL              string `env:"DATABASE_URL"`
	DBAutoMigrate            bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	DBMaxOpenConns           int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns           int    `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeSeconds int    `env:"DB_CONN_MAX_LIFETIME_SECONDS" envDefault:"300"`
	DBConnMaxIdleTimeSeconds int    `env:"DB_CONN_MAX_IDLE_SECONDS" envDefault:"60"`

	GameCodeLength  int    `env:"GAME_CODE_LENGTH" envDefault:"6"`
	DefaultGameName string `env:"DEFAULT_GAME_NAME" envDefault:"Quiz Game"`

	AllowedOrigins    []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	WSWriteTimeout    time.Duration `env:"WS_WRITE_TIMEOUT" envDefault:"10s"`
	WSPongWait        time.Duration `env:"WS_PONG_WAIT" envDefault:"60s"`
	WSMaxMessageBytes int64         `env:"WS_MAX_MESSAGE_BYTES" envDefault:"4096"`
	WSSendBuffer      int           `env:"WS_SEND_BUFFER" envDefault:"256"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{
		Environment: map[string]string{},
	})
	if err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.Port != "" {
		cfg.HTTPAddr = ":" + strings.TrimPrefix(cfg.Port, ":")
	}
	cfg.GameCodeLength = clampCodeLength(cfg.GameCodeLength)
	if cfg.WSSendBuffer < 1 {
		cfg.WSSendBuffer = 1
	}
	return cfg, nil
}

// Game codes are stored in a VARCHAR(8) column.
const (
	minGameCodeLength = 4
	maxGameCodeLength = 8
)

func clampCodeLength(n int) int {
	return min(max(n, minGameCodeLength), maxGameCodeLength)
}

// PingPeriod is how often the server pings an idle websocket. It must stay
// below WSPongWait.
func (c Config) PingPeriod() time.Duration {
	return (c.WSPongWait * 9) / 10
}
