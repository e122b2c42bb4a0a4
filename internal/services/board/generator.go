package board

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/model"
)

// WordFinder is the part of the solver the generator needs
type WordFinder interface {
	FindWords(board *model.GameBoard, targetCount int) []string
}

// Stats reports generator activity for health checks
type Stats struct {
	CacheDepth int `json:"cacheDepth"`
	Generated  int `json:"generated"`
	Degraded   int `json:"degraded"`
}

// Generator produces boards that contain at least MinWords words. A small FIFO
// cache of accepted boards hides generation latency; it is refilled in the background.
type Generator struct {
	cfg    Config
	source TileSource
	finder WordFinder
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	cache     []*model.GameBoard
	refilling bool
	closed    bool
	generated int
	degraded  int
}

// NewGenerator creates a Generator. Call Close to stop background refills.
func NewGenerator(cfg Config, source TileSource, finder WordFinder, logger zerolog.Logger) *Generator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Generator{
		cfg:    cfg,
		source: source,
		finder: finder,
		logger: logger.With().Str("component", "board-generator").Logger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Generate returns a board, from the cache when one is ready
func (g *Generator) Generate(ctx context.Context) (*model.GameBoard, error) {
	if board := g.pop(); board != nil {
		g.scheduleRefill()
		return board, nil
	}

	board, err := g.build(ctx)
	if err != nil {
		return nil, err
	}
	g.scheduleRefill()
	return board, nil
}

// Warm fills the cache synchronously, typically once at startup
func (g *Generator) Warm(ctx context.Context) error {
	for g.CacheDepth() < g.cfg.CacheSize {
		board, err := g.build(ctx)
		if err != nil {
			return err
		}
		g.push(board)
	}
	g.logger.Info().Int("cache_depth", g.CacheDepth()).Msg("board cache warmed")
	return nil
}

// CacheDepth returns the number of boards ready to serve
func (g *Generator) CacheDepth() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.cache)
}

// Stats returns a snapshot of generator counters
func (g *Generator) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Stats{
		CacheDepth: len(g.cache),
		Generated:  g.generated,
		Degraded:   g.degraded,
	}
}

// Close stops background refills and waits for any in flight to finish
func (g *Generator) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.cancel()
	g.wg.Wait()
}

// build tries up to MaxAttempts boards and returns the first with enough words.
// If none qualifies the last attempt is returned anyway.
func (g *Generator) build(ctx context.Context) (*model.GameBoard, error) {
	var last *model.GameBoard
	found := 0
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrGenerationCancelled, err)
		}

		board := g.fill()
		words := g.finder.FindWords(board, g.cfg.MinWords)
		if len(words) >= g.cfg.MinWords {
			g.record(false)
			g.logger.Debug().Int("attempt", attempt).Int("words", len(words)).Msg("board accepted")
			return board, nil
		}
		last = board
		found = len(words)
	}

	if last == nil {
		// MaxAttempts < 1: serve an unchecked board
		last = g.fill()
	}
	g.record(true)
	g.logger.Warn().
		Int("attempts", g.cfg.MaxAttempts).
		Int("min_words", g.cfg.MinWords).
		Int("words", found).
		Msg("board generation degraded, serving best effort board")
	return last, nil
}

// fill draws a full board from the tile source
func (g *Generator) fill() *model.GameBoard {
	board := model.NewGameBoard(g.cfg.Width, g.cfg.Height)
	for y := 0; y < g.cfg.Height; y++ {
		for x := 0; x < g.cfg.Width; x++ {
			tile := g.source.Draw()
			board.Set(model.Position{X: x, Y: y}, &model.LetterTile{
				Letter: tile.Letter,
				Points: tile.Points,
				ID:     NewTileID(x, y),
			})
		}
	}
	return board
}

func (g *Generator) record(degraded bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generated++
	if degraded {
		g.degraded++
	}
}

func (g *Generator) pop() *model.GameBoard {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.cache) == 0 {
		return nil
	}
	board := g.cache[0]
	g.cache = g.cache[1:]
	return board
}

func (g *Generator) push(board *model.GameBoard) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.cache) >= g.cfg.CacheSize {
		return false
	}
	g.cache = append(g.cache, board)
	return true
}

// scheduleRefill starts one background refill unless one is already running
func (g *Generator) scheduleRefill() {
	g.mu.Lock()
	if g.closed || g.refilling || len(g.cache) >= g.cfg.CacheSize {
		g.mu.Unlock()
		return
	}
	g.refilling = true
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		defer func() {
			g.mu.Lock()
			g.refilling = false
			g.mu.Unlock()
		}()

		for g.CacheDepth() < g.cfg.CacheSize {
			board, err := g.build(g.ctx)
			if err != nil {
				return
			}
			if !g.push(board) {
				return
			}
		}
	}()
}
