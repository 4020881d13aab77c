// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backend names
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config is the full server configuration
type Config struct {
	Host     string `env:"HOST" envDefault:""`
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// StorageType selects the persistence backend: memory, redis or postgres
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL" envDefault:""`
	DatabaseURL string `env:"DATABASE_URL" envDefault:""`

	// AllowedOrigin restricts websocket upgrades to one Origin; empty allows all
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:""`

	MoveTimeout       time.Duration `env:"MOVE_TIMEOUT" envDefault:"45s"`
	DisconnectTimeout time.Duration `env:"DISCONNECT_TIMEOUT" envDefault:"30s"`
	LeaveTimeout      time.Duration `env:"LEAVE_TIMEOUT" envDefault:"30s"`
	RematchSwapColors bool          `env:"REMATCH_SWAP_COLORS" envDefault:"true"`
}

// Load reads configuration from a .env file (if present) and the process
// environment
func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL required when STORAGE_TYPE=%s", StorageRedis)
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL required when STORAGE_TYPE=%s", StoragePostgres)
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be %s, %s or %s",
			c.StorageType, StorageMemory, StorageRedis, StoragePostgres)
	}
	return nil
}
