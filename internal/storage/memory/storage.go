package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	dictionaryWords []string
	hits            map[string][]time.Time
	history         map[model.RoomCode][]*model.MatchResult
	historyLimit    int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		hits:         make(map[string][]time.Time),
		history:      make(map[model.RoomCode][]*model.MatchResult),
		historyLimit: storage.DefaultHistoryLimit,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Dictionary operations

func (s *Storage) GetDictionaryWords(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dictionaryWords == nil {
		return nil, model.ErrDictionaryNotLoaded
	}
	result := make([]string, len(s.dictionaryWords))
	copy(result, s.dictionaryWords)
	return result, nil
}

func (s *Storage) SaveDictionaryWords(ctx context.Context, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dictionaryWords = make([]string, len(words))
	copy(s.dictionaryWords, words)
	return nil
}

// Rate limit operations

func (s *Storage) RecordHit(ctx context.Context, key string, now time.Time, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	kept := s.hits[key][:0]
	for _, t := range s.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	s.hits[key] = kept
	return len(kept), nil
}

func (s *Storage) ResetHits(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hits, key)
	return nil
}

// Match history operations

func (s *Storage) AppendMatchResult(ctx context.Context, code model.RoomCode, result *model.MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.history[code], result)
	if len(list) > s.historyLimit {
		list = list[len(list)-s.historyLimit:]
	}
	s.history[code] = list
	return nil
}

func (s *Storage) GetMatchResults(ctx context.Context, code model.RoomCode, limit int) ([]*model.MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.history[code]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]*model.MatchResult, 0, limit)
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

func (s *Storage) DeleteMatchResults(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, code)
	return nil
}
