package storage

import (
	"context"
	"time"

	"github.com/mcoot/wordcascade/internal/model"
)

// Storage defines the interface for shared, process-external state.
// Rooms and sessions live in process memory; only data that is useful to share
// between server instances or survive a room goes through here.
type Storage interface {
	// Dictionary operations
	GetDictionaryWords(ctx context.Context) ([]string, error)
	SaveDictionaryWords(ctx context.Context, words []string) error

	// Rate limit operations

	// RecordHit records one event for key at now and returns how many events
	// fall within the window ending at now, including this one
	RecordHit(ctx context.Context, key string, now time.Time, window time.Duration) (int, error)
	ResetHits(ctx context.Context, key string) error

	// Match history operations
	AppendMatchResult(ctx context.Context, code model.RoomCode, result *model.MatchResult) error
	// GetMatchResults returns up to limit results, most recent first
	GetMatchResults(ctx context.Context, code model.RoomCode, limit int) ([]*model.MatchResult, error)
	DeleteMatchResults(ctx context.Context, code model.RoomCode) error
}

// DefaultHistoryLimit is how many match results are retained per room
const DefaultHistoryLimit = 20
