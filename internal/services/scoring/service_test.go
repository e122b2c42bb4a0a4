package scoring

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/testutil"
)

// recordingLookup accepts a fixed word set and counts lookups
type recordingLookup struct {
	words map[string]bool
	calls int
}

func (l *recordingLookup) IsValidWord(word string) bool {
	l.calls++
	return l.words[strings.ToUpper(word)]
}

type ServiceSuite struct {
	suite.Suite
	lookup  *recordingLookup
	service *Service
	board   *model.GameBoard
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.lookup = &recordingLookup{words: map[string]bool{
		"AT": true, "CAT": true, "CATS": true, "STAIR": true, "STAIRS": true,
	}}
	s.service = New(s.lookup)
	// C A T S
	// X I . .
	// S R . .
	s.board = testutil.BoardFromRows(
		"CATS",
		"XIQQ",
		"SRQQ",
	)
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ServiceSuite) submission(word string, difficulty model.Difficulty, coords ...int) Submission {
	return Submission{
		Word:       word,
		Path:       testutil.Path(coords...),
		Board:      s.board,
		Difficulty: difficulty,
		Settings:   model.DefaultMatchSettings(),
		Now:        s.now,
	}
}

// Path rules

func (s *ServiceSuite) TestPathTooShort() {
	s.Equal(ReasonPathTooShort, ValidatePath(nil).Reason)
	s.Equal(ReasonPathTooShort, ValidatePath(testutil.Path(0, 0)).Reason)
}

func (s *ServiceSuite) TestPathReuse() {
	res := ValidatePath(testutil.Path(0, 0, 1, 0, 0, 0))
	s.False(res.Valid)
	s.Equal(ReasonPathReuse, res.Reason)
}

func (s *ServiceSuite) TestPathNotAdjacent() {
	res := ValidatePath(testutil.Path(0, 0, 0, 2))
	s.False(res.Valid)
	s.Equal(ReasonNotAdjacent, res.Reason)
}

func (s *ServiceSuite) TestPathDiagonalIsAdjacent() {
	s.True(ValidatePath(testutil.Path(0, 0, 1, 1, 2, 0)).Valid)
}

func (s *ServiceSuite) TestPathRulesRunBeforeLookup() {
	for _, sub := range []Submission{
		s.submission("C", model.DifficultyEasy, 0, 0),
		s.submission("CAC", model.DifficultyEasy, 0, 0, 1, 0, 0, 0),
		s.submission("CS", model.DifficultyEasy, 0, 0, 0, 2),
	} {
		res := s.service.Evaluate(sub)
		s.False(res.Valid)
	}
	s.Equal(0, s.lookup.calls)
}

// Evaluation

func (s *ServiceSuite) TestValidWordScores() {
	res := s.service.Evaluate(s.submission("cat", model.DifficultyMedium, 0, 0, 1, 0, 2, 0))

	s.True(res.Valid)
	s.Equal("CAT", res.Word)
	s.Equal(4, res.Points) // 3 * 1.2 = 3.6
	s.False(res.SpeedBonus)
}

func (s *ServiceSuite) TestMissingTile() {
	board := testutil.BoardFromRows("CA.", "...")
	sub := s.submission("CAT", model.DifficultyEasy, 0, 0, 1, 0, 2, 0)
	sub.Board = board

	res := s.service.Evaluate(sub)
	s.Equal(ReasonMissingTile, res.Reason)
	s.Equal(0, s.lookup.calls)
}

func (s *ServiceSuite) TestDifficultyGatingBeforeLookup() {
	res := s.service.Evaluate(s.submission("AT", model.DifficultyHard, 1, 0, 2, 0))

	s.False(res.Valid)
	s.Equal("word must be at least 4 letters on hard difficulty", res.Reason)
	s.Equal(0, s.lookup.calls)
}

func (s *ServiceSuite) TestEasyAllowsTwoLetters() {
	res := s.service.Evaluate(s.submission("AT", model.DifficultyEasy, 1, 0, 2, 0))
	s.True(res.Valid)
	s.Equal(2, res.Points)
}

func (s *ServiceSuite) TestWordMustMatchTiles() {
	res := s.service.Evaluate(s.submission("COT", model.DifficultyMedium, 0, 0, 1, 0, 2, 0))

	s.Equal(ReasonWordMismatch, res.Reason)
	s.Equal(0, s.lookup.calls)
}

func (s *ServiceSuite) TestNotInDictionary() {
	res := s.service.Evaluate(s.submission("CAI", model.DifficultyMedium, 0, 0, 1, 0, 1, 1))

	s.False(res.Valid)
	s.Equal(ReasonNotInDict, res.Reason)
	s.Equal(1, s.lookup.calls)
}

func (s *ServiceSuite) TestUnknownDifficultyUsesDefault() {
	res := s.service.Evaluate(s.submission("AT", "impossible", 1, 0, 2, 0))
	s.Equal("word must be at least 3 letters on medium difficulty", res.Reason)
}

func (s *ServiceSuite) TestLongWordBonusesAndMultipliers() {
	// S(3,0) T(2,0) A(1,0) I(1,1) R(1,2) S(0,2)
	res := s.service.Evaluate(s.submission("STAIRS", model.DifficultyExtreme, 3, 0, 2, 0, 1, 0, 1, 1, 1, 2, 0, 2))

	s.True(res.Valid)
	s.Equal(42, res.Points) // (6 + 5 + 10) * 2.0
}

func (s *ServiceSuite) TestSpeedBonus() {
	sub := s.submission("CAT", model.DifficultyEasy, 0, 0, 1, 0, 2, 0)
	sub.LastWordAt = s.now.Add(-2 * time.Second)

	res := s.service.Evaluate(sub)
	s.True(res.SpeedBonus)
	s.Equal(5, res.Points) // 3 * 1.0 * 1.5 = 4.5, rounds half away from zero
}

func (s *ServiceSuite) TestNoSpeedBonusOutsideWindow() {
	sub := s.submission("CAT", model.DifficultyEasy, 0, 0, 1, 0, 2, 0)
	sub.LastWordAt = s.now.Add(-4 * time.Second)

	res := s.service.Evaluate(sub)
	s.False(res.SpeedBonus)
	s.Equal(3, res.Points)
}

// Scoring helpers

func (s *ServiceSuite) TestBaseScore() {
	s.Equal(2, BaseScore(2))
	s.Equal(4, BaseScore(4))
	s.Equal(10, BaseScore(5))
	s.Equal(21, BaseScore(6))
	s.Equal(22, BaseScore(7))
}

func (s *ServiceSuite) TestWordValue() {
	s.Equal(5, WordValue("cat"))
	s.Equal(22, WordValue("QUIZ"))
}
