package model

import "time"

// PlayerID uniquely identifies a player across the system. It doubles as the
// player's session id so a reconnecting client can present it.
type PlayerID string

// Player is a room-scoped participant
type Player struct {
	ID                PlayerID   `json:"id"`
	Username          string     `json:"username"`
	Score             int        `json:"score"`
	RoundScore        int        `json:"roundScore"`
	IsConnected       bool       `json:"isConnected"`
	IsReady           bool       `json:"isReady"`
	Difficulty        Difficulty `json:"difficulty"`
	LastWordTimestamp time.Time  `json:"lastWordTimestamp,omitzero"`
	JoinedAt          time.Time  `json:"-"`
}

// ResetScores zeroes the player's match and round scores
func (p *Player) ResetScores() {
	p.Score = 0
	p.RoundScore = 0
	p.LastWordTimestamp = time.Time{}
}
