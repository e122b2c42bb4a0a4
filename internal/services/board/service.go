package board

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/dependencies/random"
	"github.com/mcoot/wordcascade/internal/model"
)

// Service owns the process-wide letter bag and board generator. Rooms share one
// instance; the bag is drawn from both for new boards and for cascade refills.
type Service struct {
	cfg       Config
	bag       *Bag
	generator *Generator
}

// New creates a board Service
func New(cfg Config, finder WordFinder, rnd random.Random, logger zerolog.Logger) *Service {
	bag := NewBag(rnd)
	return &Service{
		cfg:       cfg,
		bag:       bag,
		generator: NewGenerator(cfg, bag, finder, logger),
	}
}

// Generate returns a validated board (or a best-effort one after MaxAttempts)
func (s *Service) Generate(ctx context.Context) (*model.GameBoard, error) {
	return s.generator.Generate(ctx)
}

// Cascade computes the delta for removing the given positions, refilling from the bag
func (s *Service) Cascade(board *model.GameBoard, removed []model.Position) (*model.TileChanges, error) {
	return ComputeCascade(board, removed, s.bag)
}

// Warm pre-fills the generator cache
func (s *Service) Warm(ctx context.Context) error {
	return s.generator.Warm(ctx)
}

// Stats returns generator counters
func (s *Service) Stats() Stats {
	return s.generator.Stats()
}

// CacheDepth returns how many pre-generated boards are waiting
func (s *Service) CacheDepth() int {
	return s.generator.CacheDepth()
}

// Config returns the board configuration
func (s *Service) Config() Config {
	return s.cfg
}

// Close stops background generation
func (s *Service) Close() {
	s.generator.Close()
}

// Interface for dependency injection
type ServiceInterface interface {
	Generate(ctx context.Context) (*model.GameBoard, error)
	Cascade(board *model.GameBoard, removed []model.Position) (*model.TileChanges, error)
	Warm(ctx context.Context) error
	Stats() Stats
	CacheDepth() int
	Config() Config
	Close()
}

var _ ServiceInterface = (*Service)(nil)
