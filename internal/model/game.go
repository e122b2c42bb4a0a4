package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// MatchStatus is the phase of a room's match state machine
type MatchStatus string

const (
	MatchStatusLobby    MatchStatus = "lobby"
	MatchStatusStarting MatchStatus = "starting"
	MatchStatusActive   MatchStatus = "active"
	MatchStatusRoundEnd MatchStatus = "round-end"
	MatchStatusFinished MatchStatus = "finished"
)

// InGame returns true for every phase other than the lobby
func (s MatchStatus) InGame() bool {
	return s != MatchStatusLobby && s != ""
}

// Difficulty is a per-player setting controlling the minimum word length and score multiplier
type Difficulty string

const (
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
	DifficultyExtreme Difficulty = "extreme"
)

// DefaultDifficulty is assigned to players on join
const DefaultDifficulty = DifficultyMedium

// DifficultyLevel describes the rules for one difficulty
type DifficultyLevel struct {
	MinWordLength int
	Multiplier    float64
}

var difficultyLevels = map[Difficulty]DifficultyLevel{
	DifficultyEasy:    {MinWordLength: 2, Multiplier: 1.0},
	DifficultyMedium:  {MinWordLength: 3, Multiplier: 1.2},
	DifficultyHard:    {MinWordLength: 4, Multiplier: 1.5},
	DifficultyExtreme: {MinWordLength: 5, Multiplier: 2.0},
}

// Level returns the rules for the difficulty; ok is false for unknown values
func (d Difficulty) Level() (DifficultyLevel, bool) {
	lvl, ok := difficultyLevels[d]
	return lvl, ok
}

// IsValid reports whether d is one of the configured levels
func (d Difficulty) IsValid() bool {
	_, ok := difficultyLevels[d]
	return ok
}

// MatchSettings is the host-editable configuration of a match. Immutable once a match starts.
type MatchSettings struct {
	TotalRounds          int           `json:"totalRounds"`
	RoundDuration        time.Duration `json:"roundDuration"`
	ShuffleCost          int           `json:"shuffleCost"`
	SpeedBonusMultiplier float64       `json:"speedBonusMultiplier"`
	SpeedBonusWindow     time.Duration `json:"speedBonusWindow"`
	DeadBoardThreshold   int           `json:"deadBoardThreshold"`
}

// DefaultMatchSettings returns the settings a new room starts with
func DefaultMatchSettings() MatchSettings {
	return MatchSettings{
		TotalRounds:          3,
		RoundDuration:        120 * time.Second,
		ShuffleCost:          5,
		SpeedBonusMultiplier: 1.5,
		SpeedBonusWindow:     3 * time.Second,
		DeadBoardThreshold:   3,
	}
}

// Validate checks the settings are within playable bounds
func (s MatchSettings) Validate() error {
	switch {
	case s.TotalRounds < 1 || s.TotalRounds > 10:
		return fmt.Errorf("%w: totalRounds must be between 1 and 10", ErrInvalidSettings)
	case s.RoundDuration < 10*time.Second || s.RoundDuration > 10*time.Minute:
		return fmt.Errorf("%w: roundDuration must be between 10s and 10m", ErrInvalidSettings)
	case s.ShuffleCost < 0 || s.ShuffleCost > 100:
		return fmt.Errorf("%w: shuffleCost must be between 0 and 100", ErrInvalidSettings)
	case s.SpeedBonusMultiplier < 1 || s.SpeedBonusMultiplier > 5:
		return fmt.Errorf("%w: speedBonusMultiplier must be between 1 and 5", ErrInvalidSettings)
	case s.SpeedBonusWindow < 0 || s.SpeedBonusWindow > 30*time.Second:
		return fmt.Errorf("%w: speedBonusWindow must be between 0 and 30s", ErrInvalidSettings)
	case s.DeadBoardThreshold < 0 || s.DeadBoardThreshold > 20:
		return fmt.Errorf("%w: deadBoardThreshold must be between 0 and 20", ErrInvalidSettings)
	}
	return nil
}

type matchSettingsJSON struct {
	TotalRounds          int     `json:"totalRounds"`
	RoundDurationMs      int64   `json:"roundDurationMs"`
	ShuffleCost          int     `json:"shuffleCost"`
	SpeedBonusMultiplier float64 `json:"speedBonusMultiplier"`
	SpeedBonusWindowMs   int64   `json:"speedBonusWindowMs"`
	DeadBoardThreshold   int     `json:"deadBoardThreshold"`
}

// MarshalJSON encodes durations as milliseconds
func (s MatchSettings) MarshalJSON() ([]byte, error) {
	return json.Marshal(matchSettingsJSON{
		TotalRounds:          s.TotalRounds,
		RoundDurationMs:      s.RoundDuration.Milliseconds(),
		ShuffleCost:          s.ShuffleCost,
		SpeedBonusMultiplier: s.SpeedBonusMultiplier,
		SpeedBonusWindowMs:   s.SpeedBonusWindow.Milliseconds(),
		DeadBoardThreshold:   s.DeadBoardThreshold,
	})
}

// UnmarshalJSON decodes durations from milliseconds
func (s *MatchSettings) UnmarshalJSON(data []byte) error {
	var raw matchSettingsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = MatchSettings{
		TotalRounds:          raw.TotalRounds,
		RoundDuration:        time.Duration(raw.RoundDurationMs) * time.Millisecond,
		ShuffleCost:          raw.ShuffleCost,
		SpeedBonusMultiplier: raw.SpeedBonusMultiplier,
		SpeedBonusWindow:     time.Duration(raw.SpeedBonusWindowMs) * time.Millisecond,
		DeadBoardThreshold:   raw.DeadBoardThreshold,
	}
	return nil
}

// GameState is the round-scoped state owned by a room
type GameState struct {
	CurrentRound   int           `json:"currentRound"`
	TotalRounds    int           `json:"totalRounds"`
	TimeRemaining  time.Duration `json:"-"`
	MatchStatus    MatchStatus   `json:"matchStatus"`
	Board          *GameBoard    `json:"board"`
	RoundStartTime time.Time     `json:"roundStartTime,omitzero"`
	Settings       MatchSettings `json:"settings"`
}

// MarshalJSON adds the remaining time in milliseconds
func (g GameState) MarshalJSON() ([]byte, error) {
	type alias GameState
	return json.Marshal(struct {
		alias
		TimeRemainingMs int64 `json:"timeRemainingMs"`
	}{
		alias:           alias(g),
		TimeRemainingMs: g.TimeRemaining.Milliseconds(),
	})
}

// RoomCode is the short human-readable identifier of a room
type RoomCode string

// RoomSnapshot is a point-in-time copy of a room safe to hand outside the room's lock
type RoomSnapshot struct {
	RoomCode     RoomCode      `json:"roomCode"`
	HostID       PlayerID      `json:"hostId"`
	Players      []Player      `json:"players"`
	MaxPlayers   int           `json:"maxPlayers"`
	IsGameActive bool          `json:"isGameActive"`
	Settings     MatchSettings `json:"settings"`
	GameState    *GameState    `json:"gameState"`
	CreatedAt    time.Time     `json:"createdAt"`
	LastActivity time.Time     `json:"lastActivity"`
}

// Player returns the player with the given id from the snapshot
func (r RoomSnapshot) Player(id PlayerID) (Player, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// MatchResult records the outcome of one finished match
type MatchResult struct {
	WinnerID    PlayerID       `json:"winnerId"`
	FinalScores []PlayerResult `json:"finalScores"`
	FinishedAt  time.Time      `json:"finishedAt"`
}

// PlayerResult is a single player's line in a round or match summary
type PlayerResult struct {
	PlayerID   PlayerID `json:"playerId"`
	Username   string   `json:"username"`
	RoundScore int      `json:"roundScore"`
	TotalScore int      `json:"totalScore"`
}
