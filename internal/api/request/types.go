package request

import (
	"time"

	"github.com/mcoot/wordcascade/internal/model"
)

// JoinRoomRequest joins an existing room, or creates one when RoomCode is empty
type JoinRoomRequest struct {
	RoomCode string    `json:"roomCode" validate:"omitempty,len=4,alphanum"`
	Username string    `json:"username" validate:"required,min=1,max=20"`
	Settings *Settings `json:"settings,omitempty" validate:"omitempty"`
}

// Settings is a partial MatchSettings; omitted fields keep their current value
type Settings struct {
	TotalRounds          *int     `json:"totalRounds,omitempty" validate:"omitempty,min=1,max=10"`
	RoundDurationMs      *int64   `json:"roundDurationMs,omitempty" validate:"omitempty,min=10000,max=600000"`
	ShuffleCost          *int     `json:"shuffleCost,omitempty" validate:"omitempty,min=0,max=100"`
	SpeedBonusMultiplier *float64 `json:"speedBonusMultiplier,omitempty" validate:"omitempty,min=1,max=5"`
	SpeedBonusWindowMs   *int64   `json:"speedBonusWindowMs,omitempty" validate:"omitempty,min=0,max=30000"`
	DeadBoardThreshold   *int     `json:"deadBoardThreshold,omitempty" validate:"omitempty,min=0,max=20"`
}

// Apply returns base with every provided field overwritten
func (s *Settings) Apply(base model.MatchSettings) model.MatchSettings {
	if s == nil {
		return base
	}
	if s.TotalRounds != nil {
		base.TotalRounds = *s.TotalRounds
	}
	if s.RoundDurationMs != nil {
		base.RoundDuration = time.Duration(*s.RoundDurationMs) * time.Millisecond
	}
	if s.ShuffleCost != nil {
		base.ShuffleCost = *s.ShuffleCost
	}
	if s.SpeedBonusMultiplier != nil {
		base.SpeedBonusMultiplier = *s.SpeedBonusMultiplier
	}
	if s.SpeedBonusWindowMs != nil {
		base.SpeedBonusWindow = time.Duration(*s.SpeedBonusWindowMs) * time.Millisecond
	}
	if s.DeadBoardThreshold != nil {
		base.DeadBoardThreshold = *s.DeadBoardThreshold
	}
	return base
}

// UpdateSettingsRequest is sent by the host to edit the match settings
type UpdateSettingsRequest struct {
	Settings Settings `json:"settings"`
}

// ReadyRequest toggles the sender's ready flag
type ReadyRequest struct {
	Ready *bool `json:"ready" validate:"required"`
}

// DifficultyRequest changes the sender's difficulty
type DifficultyRequest struct {
	Difficulty model.Difficulty `json:"difficulty" validate:"required,oneof=easy medium hard extreme"`
}

// SubmitWordRequest claims a word traced through the board
type SubmitWordRequest struct {
	Word string           `json:"word" validate:"required,min=2,max=20,alpha"`
	Path []model.Position `json:"path" validate:"required,min=2,max=20,dive"`
}

// ReconnectRequest restores a previous session by id or username
type ReconnectRequest struct {
	SessionID string `json:"sessionId" validate:"required_without=Username,omitempty,uuid"`
	Username  string `json:"username" validate:"required_without=SessionID,omitempty,max=20"`
}

// Empty is the payload of events that carry no data
type Empty struct{}
