package room

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/dependencies/clock"
	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/services/scoring"
	"github.com/mcoot/wordcascade/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 4
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// MinPlayers is the number of connected players needed to start a match
	MinPlayers = 2
)

// Config holds room timing and capacity settings
type Config struct {
	MaxPlayers int
	// Countdown is the pause between match start and the first round
	Countdown time.Duration
	// TickInterval is how often the round timer is checked
	TickInterval time.Duration
	// FinalSeconds is the window at the end of a round where every tick is broadcast
	FinalSeconds time.Duration
	// ResyncInterval is how often a full board snapshot is broadcast; zero disables it
	ResyncInterval time.Duration
	RoundEndDelay  time.Duration
	FinishDelay    time.Duration
	// InactivityTimeout is how long a room may go without activity before it is destroyed
	InactivityTimeout time.Duration
	// SweepInterval is how often the manager looks for inactive rooms
	SweepInterval time.Duration
}

// DefaultConfig returns default room configuration
func DefaultConfig() Config {
	return Config{
		MaxPlayers:        8,
		Countdown:         3 * time.Second,
		TickInterval:      250 * time.Millisecond,
		FinalSeconds:      10 * time.Second,
		ResyncInterval:    5 * time.Second,
		RoundEndDelay:     5 * time.Second,
		FinishDelay:       10 * time.Second,
		InactivityTimeout: 30 * time.Minute,
		SweepInterval:     time.Minute,
	}
}

// Notifier delivers events out of a room. Implementations must not block and
// must not call back into the room.
type Notifier interface {
	// Send delivers an event to one player's current connection
	Send(playerID model.PlayerID, event model.EventType, payload any)
	// Publish delivers a room-wide event to spectators of the room
	Publish(code model.RoomCode, event model.EventType, payload any)
}

// BoardSource generates boards and computes cascades
type BoardSource interface {
	Generate(ctx context.Context) (*model.GameBoard, error)
	Cascade(board *model.GameBoard, removed []model.Position) (*model.TileChanges, error)
}

// DeadBoardChecker decides whether a board has too few words left
type DeadBoardChecker interface {
	IsDead(board *model.GameBoard, threshold int) bool
}

// Deps are the collaborators shared by every room
type Deps struct {
	Boards   BoardSource
	Solver   DeadBoardChecker
	Scorer   scoring.ServiceInterface
	History  storage.Storage
	Notifier Notifier
	Clock    clock.Clock
	Logger   zerolog.Logger
}
