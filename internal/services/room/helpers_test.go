package room

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/wordcascade/internal/dependencies/mocks"
	"github.com/mcoot/wordcascade/internal/dependencies/random"
	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/services/board"
	"github.com/mcoot/wordcascade/internal/services/scoring"
	"github.com/mcoot/wordcascade/internal/storage/memory"
	"github.com/mcoot/wordcascade/internal/testutil"
)

var testEpoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type sentEvent struct {
	to      model.PlayerID
	event   model.EventType
	payload any
}

// recordingNotifier keeps every event in memory
type recordingNotifier struct {
	mu        sync.Mutex
	sent      []sentEvent
	published []sentEvent
}

func (n *recordingNotifier) Send(id model.PlayerID, event model.EventType, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentEvent{to: id, event: event, payload: payload})
}

func (n *recordingNotifier) Publish(_ model.RoomCode, event model.EventType, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.published = append(n.published, sentEvent{event: event, payload: payload})
}

func (n *recordingNotifier) received(id model.PlayerID, event model.EventType) []any {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []any
	for _, e := range n.sent {
		if e.to == id && e.event == event {
			out = append(out, e.payload)
		}
	}
	return out
}

func (n *recordingNotifier) count(id model.PlayerID, event model.EventType) int {
	return len(n.received(id, event))
}

func (n *recordingNotifier) publishedCount(event model.EventType) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.published {
		if e.event == event {
			c++
		}
	}
	return c
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
	n.published = nil
}

// stubBoards serves boards in order, repeating the last. When gate is set,
// Generate blocks until it is closed or ctx is cancelled.
type stubBoards struct {
	mu     sync.Mutex
	boards []*model.GameBoard
	calls  int
	gate   chan struct{}
	err    error
}

func (b *stubBoards) Generate(ctx context.Context) (*model.GameBoard, error) {
	b.mu.Lock()
	gate := b.gate
	b.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", model.ErrGenerationCancelled, ctx.Err())
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	idx := min(b.calls-1, len(b.boards)-1)
	return b.boards[idx].Clone(), nil
}

func (b *stubBoards) Cascade(gb *model.GameBoard, removed []model.Position) (*model.TileChanges, error) {
	return board.ComputeCascade(gb, removed, constSource{})
}

func (b *stubBoards) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *stubBoards) setGate(gate chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gate = gate
}

type constSource struct{}

func (constSource) Draw() board.Tile {
	return board.Tile{Letter: "E", Points: 1}
}

type stubSolver struct {
	dead atomic.Bool
}

func (s *stubSolver) IsDead(_ *model.GameBoard, threshold int) bool {
	return threshold > 0 && s.dead.Load()
}

type wordSet map[string]bool

func (w wordSet) IsValidWord(word string) bool {
	return w[strings.ToUpper(word)]
}

// C A T S
// O X Y Z
// D E Q U
// G R E W
func firstBoard() *model.GameBoard {
	return testutil.BoardFromRows("CATS", "OXYZ", "DEQU", "GREW")
}

func secondBoard() *model.GameBoard {
	return testutil.BoardFromRows("DOGS", "AXYZ", "TEQU", "GREW")
}

// catsPath traces CATS along the top row
func catsPath() []model.Position {
	return testutil.Path(0, 0, 1, 0, 2, 0, 3, 0)
}

type harness struct {
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	notifier *recordingNotifier
	boards   *stubBoards
	solver   *stubSolver
	store    *memory.Storage
	cfg      Config
	manager  *Manager
}

func newHarness(cfg Config) *harness {
	h := &harness{
		clock:    mocks.NewMockClock(testEpoch),
		random:   mocks.NewMockRandom(),
		notifier: &recordingNotifier{},
		boards:   &stubBoards{boards: []*model.GameBoard{firstBoard(), secondBoard()}},
		solver:   &stubSolver{},
		store:    memory.New(),
		cfg:      cfg,
	}
	h.random.Fallback = random.NewSeeded(7)
	h.manager = NewManager(cfg, h.deps(), h.random)
	return h
}

func (h *harness) deps() Deps {
	return Deps{
		Boards:   h.boards,
		Solver:   h.solver,
		Scorer:   scoring.New(wordSet{"CAT": true, "CATS": true, "COD": true, "DOG": true, "DOGS": true}),
		History:  h.store,
		Notifier: h.notifier,
		Clock:    h.clock,
		Logger:   testutil.NopLogger(),
	}
}

func testSettings(rounds int, duration time.Duration) *model.MatchSettings {
	settings := model.DefaultMatchSettings()
	settings.TotalRounds = rounds
	settings.RoundDuration = duration
	return &settings
}
