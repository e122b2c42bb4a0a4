package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/services/board"
	"github.com/mcoot/wordcascade/internal/services/dictionary"
)

// Rejection reasons reported to players
const (
	ReasonPathTooShort = "path must contain at least 2 tiles"
	ReasonPathReuse    = "path cannot reuse the same tile"
	ReasonNotAdjacent  = "tiles must be adjacent in the path"
	ReasonMissingTile  = "path includes a position with no tile"
	ReasonWordMismatch = "word does not match the selected tiles"
	ReasonNotInDict    = "not a valid word"
	reasonTooShortFmt  = "word must be at least %d letters on %s difficulty"
)

const (
	minPathLength      = 2
	lengthBonusFive    = 5
	lengthBonusSixPlus = 10
)

// Result is the outcome of validating or scoring a submission
type Result struct {
	Valid      bool
	Reason     string
	Word       string
	Points     int
	SpeedBonus bool
}

func invalid(word, reason string) Result {
	return Result{Word: word, Reason: reason}
}

// Submission is one claimed word along with everything needed to judge it
type Submission struct {
	Word       string
	Path       []model.Position
	Board      *model.GameBoard
	Difficulty model.Difficulty
	Settings   model.MatchSettings
	LastWordAt time.Time // previous accepted word, zero if none
	Now        time.Time
}

// Service validates and scores word submissions
type Service struct {
	dictionary dictionary.Lookup
}

// New creates a new scoring Service
func New(dictionary dictionary.Lookup) *Service {
	return &Service{
		dictionary: dictionary,
	}
}

// ValidatePath checks the shape of a path: length, no reuse, adjacency
func ValidatePath(path []model.Position) Result {
	if len(path) < minPathLength {
		return invalid("", ReasonPathTooShort)
	}
	seen := make(map[model.Position]bool, len(path))
	for _, pos := range path {
		if seen[pos] {
			return invalid("", ReasonPathReuse)
		}
		seen[pos] = true
	}
	for i := 1; i < len(path); i++ {
		if !path[i-1].IsAdjacent(path[i]) {
			return invalid("", ReasonNotAdjacent)
		}
	}
	return Result{Valid: true}
}

// Evaluate judges a submission. Every cheap check runs before the dictionary lookup.
func (s *Service) Evaluate(sub Submission) Result {
	word := strings.ToUpper(strings.TrimSpace(sub.Word))

	if res := ValidatePath(sub.Path); !res.Valid {
		res.Word = word
		return res
	}

	letters, ok := sub.Board.WordAt(sub.Path)
	if !ok {
		return invalid(word, ReasonMissingTile)
	}

	difficulty := sub.Difficulty
	level, ok := difficulty.Level()
	if !ok {
		difficulty = model.DefaultDifficulty
		level, _ = difficulty.Level()
	}
	if len(word) < level.MinWordLength {
		return invalid(word, fmt.Sprintf(reasonTooShortFmt, level.MinWordLength, difficulty))
	}

	if letters != word {
		return invalid(word, ReasonWordMismatch)
	}

	if !s.dictionary.IsValidWord(word) {
		return invalid(word, ReasonNotInDict)
	}

	speedBonus := IsSpeedBonus(sub.LastWordAt, sub.Now, sub.Settings.SpeedBonusWindow)
	return Result{
		Valid:      true,
		Word:       word,
		Points:     Score(len(word), level.Multiplier, speedBonus, sub.Settings.SpeedBonusMultiplier),
		SpeedBonus: speedBonus,
	}
}

// BaseScore is the word length plus 5 from five letters and a further 10 from six
func BaseScore(length int) int {
	score := length
	if length >= 5 {
		score += lengthBonusFive
	}
	if length >= 6 {
		score += lengthBonusSixPlus
	}
	return score
}

// Score applies the difficulty and optional speed multipliers to the base score, rounding to nearest
func Score(length int, difficultyMultiplier float64, speedBonus bool, speedMultiplier float64) int {
	points := float64(BaseScore(length)) * difficultyMultiplier
	if speedBonus {
		points *= speedMultiplier
	}
	return int(math.Round(points))
}

// IsSpeedBonus reports whether now is within window of the previous accepted word
func IsSpeedBonus(last, now time.Time, window time.Duration) bool {
	if last.IsZero() || window <= 0 {
		return false
	}
	elapsed := now.Sub(last)
	return elapsed >= 0 && elapsed <= window
}

// WordValue sums the Scrabble letter values of a word. Used for board quality, not round scores.
func WordValue(word string) int {
	total := 0
	for _, r := range strings.ToUpper(word) {
		total += board.LetterValue(string(r))
	}
	return total
}

// Interface for dependency injection
type ServiceInterface interface {
	Evaluate(sub Submission) Result
}

var _ ServiceInterface = (*Service)(nil)
