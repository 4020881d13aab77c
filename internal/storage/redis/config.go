package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings. Player records outlive matches so reconnection by prior
	// id keeps working; match records and move logs age out together.
	PlayerTTL time.Duration
	MatchTTL  time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		PlayerTTL:    7 * 24 * time.Hour,
		MatchTTL:     30 * 24 * time.Hour,
	}
}
