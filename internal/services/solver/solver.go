package solver

import (
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"

	"github.com/mcoot/wordcascade/internal/dependencies/random"
	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/services/dictionary"
)

// Config bounds the search
type Config struct {
	MinWordLength int
	MaxWordLength int
	CacheSize     int
}

// DefaultConfig returns the solver settings used by the game
func DefaultConfig() Config {
	return Config{
		MinWordLength: 3,
		MaxWordLength: 10,
		CacheSize:     256,
	}
}

// Solver finds dictionary words on a board along 8-directionally adjacent,
// non-repeating paths. Results for an unchanged board are memoised.
type Solver struct {
	cfg      Config
	lookup   dictionary.Lookup
	prefixes dictionary.PrefixLookup // nil when the lookup cannot prune
	rnd      random.Random

	mu   sync.Mutex
	memo *simplelru.LRU
}

type memoEntry struct {
	words      []string
	exhaustive bool
}

// New creates a Solver. Prefix pruning is enabled when lookup implements PrefixLookup.
func New(lookup dictionary.Lookup, rnd random.Random, cfg Config) *Solver {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1
	}
	memo, _ := simplelru.NewLRU(cfg.CacheSize, nil) // only errors for a non-positive size
	s := &Solver{
		cfg:    cfg,
		lookup: lookup,
		rnd:    rnd,
		memo:   memo,
	}
	if p, ok := lookup.(dictionary.PrefixLookup); ok {
		s.prefixes = p
	}
	return s
}

// Key identifies a board's contents for memoisation
func Key(board *model.GameBoard) string {
	return fmt.Sprintf("%dx%d:%s", board.Width, board.Height, board.Letters())
}

// FindWords returns distinct uppercase words on the board, stopping once targetCount
// have been found. A targetCount of zero or less searches exhaustively. Start cells
// are visited in random order, so an early-exit search may return different words
// for the same board unless the result is served from the memo.
func (s *Solver) FindWords(board *model.GameBoard, targetCount int) []string {
	key := Key(board)

	s.mu.Lock()
	// Peek leaves recency untouched so eviction stays oldest-inserted
	if v, ok := s.memo.Peek(key); ok {
		entry := v.(memoEntry)
		if entry.exhaustive || (targetCount > 0 && len(entry.words) >= targetCount) {
			s.mu.Unlock()
			return append([]string(nil), entry.words...)
		}
	}
	s.mu.Unlock()

	words, exhaustive := s.search(board, targetCount)

	s.mu.Lock()
	s.memo.Add(key, memoEntry{words: words, exhaustive: exhaustive})
	s.mu.Unlock()

	return append([]string(nil), words...)
}

// IsDead reports whether fewer than threshold words remain on the board.
// A threshold of zero or less disables the check.
func (s *Solver) IsDead(board *model.GameBoard, threshold int) bool {
	if threshold <= 0 {
		return false
	}
	return len(s.FindWords(board, threshold)) < threshold
}

// CacheLen returns the number of memoised boards
func (s *Solver) CacheLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memo.Len()
}

type walker struct {
	solver  *Solver
	board   *model.GameBoard
	target  int
	visited []bool
	found   map[string]struct{}
	words   []string
	done    bool
}

func (s *Solver) search(board *model.GameBoard, target int) ([]string, bool) {
	cells := board.Width * board.Height
	order := make([]int, cells)
	for i := range order {
		order[i] = i
	}
	random.Shuffle(s.rnd, cells, func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	w := &walker{
		solver:  s,
		board:   board,
		target:  target,
		visited: make([]bool, cells),
		found:   make(map[string]struct{}),
	}
	for _, idx := range order {
		if w.done {
			break
		}
		w.walk(model.Position{X: idx % board.Width, Y: idx / board.Width}, "")
	}
	return w.words, !w.done
}

func (w *walker) walk(pos model.Position, prefix string) {
	tile := w.board.Get(pos)
	if tile == nil {
		return
	}
	idx := pos.Y*w.board.Width + pos.X
	if w.visited[idx] {
		return
	}

	current := prefix + tile.Letter
	cfg := w.solver.cfg

	if len(current) >= cfg.MinWordLength {
		if _, seen := w.found[current]; !seen && w.solver.lookup.IsValidWord(current) {
			w.found[current] = struct{}{}
			w.words = append(w.words, current)
			if w.target > 0 && len(w.words) >= w.target {
				w.done = true
				return
			}
		}
	}

	if len(current) >= cfg.MaxWordLength {
		return
	}
	if w.solver.prefixes != nil && !w.solver.prefixes.HasPrefix(current) {
		return
	}

	w.visited[idx] = true
	for dy := -1; dy <= 1 && !w.done; dy++ {
		for dx := -1; dx <= 1 && !w.done; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			next := model.Position{X: pos.X + dx, Y: pos.Y + dy}
			if w.board.InBounds(next) {
				w.walk(next, current)
			}
		}
	}
	w.visited[idx] = false
}

// Interface check
type ServiceInterface interface {
	FindWords(board *model.GameBoard, targetCount int) []string
	IsDead(board *model.GameBoard, threshold int) bool
	CacheLen() int
}

var _ ServiceInterface = (*Solver)(nil)
