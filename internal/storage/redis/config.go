package redis

import (
	"time"

	"github.com/mcoot/wordcascade/internal/storage"
)

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// HistoryTTL expires a room's match history after the room goes quiet
	HistoryTTL time.Duration
	// HistoryLimit caps the number of results kept per room
	HistoryLimit int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		HistoryTTL:   24 * time.Hour,
		HistoryLimit: storage.DefaultHistoryLimit,
	}
}
