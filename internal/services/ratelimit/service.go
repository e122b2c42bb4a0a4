package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/dependencies/clock"
	"github.com/mcoot/wordcascade/internal/storage"
)

// Config holds the sliding window limits
type Config struct {
	Events int
	Window time.Duration
}

// DefaultConfig allows 30 events per minute per connection
func DefaultConfig() Config {
	return Config{
		Events: 30,
		Window: time.Minute,
	}
}

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed    bool
	Count      int
	RetryAfter time.Duration
}

// Service enforces a per-key sliding window backed by storage.
// Storage failures fail open so a broken backend never blocks play.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	cfg     Config
	logger  zerolog.Logger
}

// New creates a new rate limit Service
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger zerolog.Logger) *Service {
	if cfg.Events <= 0 {
		cfg.Events = DefaultConfig().Events
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	return &Service{
		storage: storage,
		clock:   clock,
		cfg:     cfg,
		logger:  logger.With().Str("component", "ratelimit").Logger(),
	}
}

// Allow records one event for key and reports whether it is within the limit
func (s *Service) Allow(ctx context.Context, key string) Decision {
	count, err := s.storage.RecordHit(ctx, key, s.clock.Now(), s.cfg.Window)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("rate limit storage failed, allowing event")
		return Decision{Allowed: true}
	}
	if count > s.cfg.Events {
		return Decision{Count: count, RetryAfter: s.cfg.Window}
	}
	return Decision{Allowed: true, Count: count}
}

// Reset forgets the history for key, typically when a connection closes
func (s *Service) Reset(ctx context.Context, key string) {
	if err := s.storage.ResetHits(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("rate limit reset failed")
	}
}

// Interface for dependency injection
type ServiceInterface interface {
	Allow(ctx context.Context, key string) Decision
	Reset(ctx context.Context, key string)
}

var _ ServiceInterface = (*Service)(nil)
