// Package config reads process settings from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables win over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string `env:"CUBIRDS_HTTP_ADDR,default=:8000"`
	Redis    Redis

	JWTSecret string        `env:"CUBIRDS_JWT_SECRET,default=cubirds-dev-secret"`
	TokenTTL  time.Duration `env:"CUBIRDS_TOKEN_TTL,default=24h"`

	Oracle Oracle

	// AIDelay is the pause between consecutive computer moves so that
	// spectators can follow them.
	AIDelay  time.Duration `env:"CUBIRDS_AI_DELAY,default=1500ms"`
	Seed     uint64        `env:"CUBIRDS_SEED,default=0"`
	RoomTTL  time.Duration `env:"CUBIRDS_ROOM_TTL,default=24h"`
	LogLevel string        `env:"CUBIRDS_LOG_LEVEL,default=info"`
	DevLog   bool          `env:"CUBIRDS_DEV_LOG,default=false"`
}

type Redis struct {
	Addr     string `env:"REDIS_ADDR,default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,default=0"`
}

// Oracle selects the move-suggestion backend for computer seats. Script takes
// precedence over URL; with neither set the built-in fallback policy plays.
type Oracle struct {
	URL     string        `env:"CUBIRDS_ORACLE_URL"`
	Script  string        `env:"CUBIRDS_ORACLE_SCRIPT"`
	Timeout time.Duration `env:"CUBIRDS_ORACLE_TIMEOUT,default=5s"`
}

// Load decodes the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}
