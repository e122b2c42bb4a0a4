package dictionary

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/storage"
)

// maxPrefixLength bounds the prefix index; searches never extend words past this
const maxPrefixLength = 15

// Service provides word and prefix lookups
type Service struct {
	storage storage.Storage
	logger  zerolog.Logger

	mu       sync.RWMutex
	words    map[string]struct{}
	prefixes map[string]struct{}
	loaded   bool
}

// New creates a new dictionary Service
func New(storage storage.Storage, logger zerolog.Logger) *Service {
	return &Service{
		storage:  storage,
		logger:   logger.With().Str("component", "dictionary").Logger(),
		words:    make(map[string]struct{}),
		prefixes: make(map[string]struct{}),
	}
}

// LoadFromStorage loads dictionary words from storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	words, err := s.storage.GetDictionaryWords(ctx)
	if err != nil {
		return err
	}
	return s.loadWords(words)
}

// LoadFromFile loads dictionary words from a file (one word per line).
// Lines containing anything other than letters are skipped.
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open dictionary: %w", err)
	}
	defer file.Close()

	var words []string
	skipped := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		if !isAlpha(word) {
			skipped++
			continue
		}
		words = append(words, strings.ToLower(word))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read dictionary: %w", err)
	}

	// Save to storage so other instances can load without the file
	if err := s.storage.SaveDictionaryWords(ctx, words); err != nil {
		return err
	}

	s.logger.Info().
		Str("path", path).
		Int("words", len(words)).
		Int("skipped", skipped).
		Msg("dictionary loaded from file")

	return s.loadWords(words)
}

// LoadWords directly loads a slice of words (useful for testing)
func (s *Service) LoadWords(words []string) error {
	return s.loadWords(words)
}

func (s *Service) loadWords(words []string) error {
	wordSet := make(map[string]struct{}, len(words))
	prefixSet := make(map[string]struct{}, len(words)*2)
	for _, word := range words {
		w := strings.ToLower(word)
		wordSet[w] = struct{}{}
		for i := 1; i < len(w) && i <= maxPrefixLength; i++ {
			prefixSet[w[:i]] = struct{}{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.words = wordSet
	s.prefixes = prefixSet
	s.loaded = true
	return nil
}

// IsValidWord checks if a word exists in the dictionary.
// Words must be at least 2 characters.
func (s *Service) IsValidWord(word string) bool {
	if len(word) < 2 {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return false
	}

	_, ok := s.words[strings.ToLower(word)]
	return ok
}

// HasPrefix reports whether some dictionary word is strictly longer than and starts with prefix
func (s *Service) HasPrefix(prefix string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return false
	}
	if prefix == "" {
		return len(s.words) > 0
	}

	_, ok := s.prefixes[strings.ToLower(prefix)]
	return ok
}

// IsLoaded returns whether the dictionary has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// WordCount returns the number of words in the dictionary
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

func isAlpha(word string) bool {
	for _, r := range word {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// Lookup is the read side consumed by the solver and scorer
type Lookup interface {
	IsValidWord(word string) bool
}

// PrefixLookup is implemented by lookups that can prune searches
type PrefixLookup interface {
	Lookup
	HasPrefix(prefix string) bool
}

// Interface check
type ServiceInterface interface {
	PrefixLookup
	IsLoaded() bool
	WordCount() int
	LoadFromStorage(ctx context.Context) error
	LoadFromFile(ctx context.Context, path string) error
	LoadWords(words []string) error
}

var _ ServiceInterface = (*Service)(nil)

// ErrDictionaryNotLoaded is returned when operations are attempted before loading
var ErrDictionaryNotLoaded = model.ErrDictionaryNotLoaded
