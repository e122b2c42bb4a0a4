package solver

import (
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordcascade/internal/dependencies/mocks"
	"github.com/mcoot/wordcascade/internal/services/dictionary"
	"github.com/mcoot/wordcascade/internal/storage/memory"
	"github.com/mcoot/wordcascade/internal/testutil"
)

// countingLookup implements only Lookup, so the solver runs without prefix pruning
type countingLookup struct {
	words map[string]bool
	calls atomic.Int64
}

func newCountingLookup(words ...string) *countingLookup {
	l := &countingLookup{words: make(map[string]bool)}
	for _, w := range words {
		l.words[strings.ToUpper(w)] = true
	}
	return l
}

func (l *countingLookup) IsValidWord(word string) bool {
	l.calls.Add(1)
	return l.words[strings.ToUpper(word)]
}

type SolverSuite struct {
	suite.Suite
	dict   *dictionary.Service
	rnd    *mocks.MockRandom
	solver *Solver
}

func TestSolverSuite(t *testing.T) {
	suite.Run(t, new(SolverSuite))
}

func (s *SolverSuite) SetupTest() {
	s.dict = dictionary.New(memory.New(), testutil.NopLogger())
	s.Require().NoError(s.dict.LoadWords([]string{"cat", "cod", "coda", "dog", "tad", "dad", "act", "at"}))
	s.rnd = mocks.NewMockRandom()
	s.solver = New(s.dict, s.rnd, DefaultConfig())
}

// CAT
// ODX
// GQZ
func (s *SolverSuite) board() []string {
	return []string{"CAT", "ODX", "GQZ"}
}

func (s *SolverSuite) TestFindsAllReachableWords() {
	words := s.solver.FindWords(testutil.BoardFromRows(s.board()...), 0)

	// ACT needs C next to T, DAD needs D twice, AT is too short
	s.ElementsMatch([]string{"CAT", "COD", "CODA", "DOG", "TAD"}, words)
}

func (s *SolverSuite) TestRespectsMaxWordLength() {
	cfg := DefaultConfig()
	cfg.MaxWordLength = 3
	solver := New(s.dict, s.rnd, cfg)

	words := solver.FindWords(testutil.BoardFromRows(s.board()...), 0)
	s.NotContains(words, "CODA")
	s.Contains(words, "COD")
}

func (s *SolverSuite) TestStopsAtTarget() {
	words := s.solver.FindWords(testutil.BoardFromRows(s.board()...), 2)
	s.Len(words, 2)
}

func (s *SolverSuite) TestWorksWithoutPrefixPruning() {
	lookup := newCountingLookup("cat", "dog")
	solver := New(lookup, s.rnd, DefaultConfig())

	words := solver.FindWords(testutil.BoardFromRows(s.board()...), 0)
	s.ElementsMatch([]string{"CAT", "DOG"}, words)
}

func (s *SolverSuite) TestPrefixPruningReducesLookups() {
	counting := newCountingLookup("cat", "cod", "coda", "dog", "tad")
	unpruned := New(counting, s.rnd, DefaultConfig())
	unpruned.FindWords(testutil.BoardFromRows(s.board()...), 0)

	pruned := &prefixCounting{countingLookup: newCountingLookup("cat", "cod", "coda", "dog", "tad"), dict: s.dict}
	New(pruned, s.rnd, DefaultConfig()).FindWords(testutil.BoardFromRows(s.board()...), 0)

	s.Less(pruned.calls.Load(), counting.calls.Load())
}

type prefixCounting struct {
	*countingLookup
	dict *dictionary.Service
}

func (p *prefixCounting) HasPrefix(prefix string) bool {
	return p.dict.HasPrefix(prefix)
}

func (s *SolverSuite) TestMemoisesUnchangedBoard() {
	lookup := newCountingLookup("cat", "dog")
	solver := New(lookup, s.rnd, DefaultConfig())
	board := testutil.BoardFromRows(s.board()...)

	first := solver.FindWords(board, 0)
	calls := lookup.calls.Load()
	second := solver.FindWords(board, 0)

	s.Equal(first, second)
	s.Equal(calls, lookup.calls.Load(), "second call should be served from the memo")
	s.Equal(1, solver.CacheLen())
}

func (s *SolverSuite) TestShortPartialResultIsNotReusedForLargerTarget() {
	lookup := newCountingLookup("cat", "dog", "tad")
	solver := New(lookup, s.rnd, DefaultConfig())
	board := testutil.BoardFromRows(s.board()...)

	s.Len(solver.FindWords(board, 1), 1)
	s.Len(solver.FindWords(board, 3), 3)
}

func (s *SolverSuite) TestMemoEvictsOldestBoard() {
	lookup := newCountingLookup("cat")
	cfg := DefaultConfig()
	cfg.CacheSize = 2
	solver := New(lookup, s.rnd, cfg)

	first := testutil.BoardFromRows("CAT", "XXX", "XXX")
	solver.FindWords(first, 0)
	solver.FindWords(testutil.BoardFromRows("CAT", "YYY", "YYY"), 0)
	solver.FindWords(first, 0) // read does not refresh recency
	solver.FindWords(testutil.BoardFromRows("CAT", "ZZZ", "ZZZ"), 0)

	s.Equal(2, solver.CacheLen())

	calls := lookup.calls.Load()
	solver.FindWords(first, 0)
	s.Greater(lookup.calls.Load(), calls, "first board should have been evicted")
}

func (s *SolverSuite) TestIsDead() {
	s.True(s.solver.IsDead(testutil.BoardFromRows("XXX", "XXX", "XXX"), 1))
	s.False(s.solver.IsDead(testutil.BoardFromRows(s.board()...), 3))
	s.True(s.solver.IsDead(testutil.BoardFromRows(s.board()...), 6))
}

func (s *SolverSuite) TestIsDeadDisabledAtZeroThreshold() {
	s.False(s.solver.IsDead(testutil.BoardFromRows("XXX", "XXX", "XXX"), 0))
}

func (s *SolverSuite) TestSkipsEmptyCells() {
	words := s.solver.FindWords(testutil.BoardFromRows("C.T", "OA.", "D.."), 0)
	s.ElementsMatch([]string{"CAT", "COD", "CODA", "TAD"}, words)
}
