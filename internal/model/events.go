package model

import "time"

// EventType identifies a message exchanged with clients
type EventType string

// Client to server events
const (
	EventRoomJoin         EventType = "room:join"
	EventRoomLeave        EventType = "room:leave"
	EventPlayerReady      EventType = "player:ready"
	EventPlayerDifficulty EventType = "player:difficulty"
	EventRoomSettings     EventType = "room:settings"
	EventMatchStart       EventType = "match:start"
	EventMatchEndRound    EventType = "match:end-round"
	EventWordSubmit       EventType = "word:submit"
	EventBoardRequest     EventType = "board:request"
	EventBoardShuffle     EventType = "board:shuffle"
	EventSessionReconnect EventType = "session:reconnect"
)

// Server to client events
const (
	EventRoomCreated             EventType = "room:created"
	EventRoomJoined              EventType = "room:joined"
	EventRoomLeft                EventType = "room:left"
	EventPlayerJoined            EventType = "room:player-joined"
	EventPlayerLeft              EventType = "room:player-left"
	EventPlayerReadyChanged      EventType = "room:player-ready"
	EventPlayerDifficultyChanged EventType = "room:player-difficulty"
	EventSettingsUpdated         EventType = "room:settings-updated"
	EventHostChanged             EventType = "room:host-changed"
	EventMatchStarting           EventType = "match:starting"
	EventMatchStarted            EventType = "match:started"
	EventMatchTimer              EventType = "match:timer"
	EventRoundEnd                EventType = "match:round-end"
	EventMatchFinished           EventType = "match:finished"
	EventReturnToLobby           EventType = "match:return-to-lobby"
	EventTileChanges             EventType = "game:tile-changes"
	EventBoardSync               EventType = "game:board-sync"
	EventScoreUpdate             EventType = "score:update"
	EventLeaderboardUpdate       EventType = "leaderboard:update"
	EventWordValid               EventType = "word:valid"
	EventWordInvalid             EventType = "word:invalid"
	EventSessionUpdate           EventType = "session:update"
	EventReconnectSuccess        EventType = "session:reconnect-success"
	EventReconnectFailed         EventType = "session:reconnect-failed"
	EventError                   EventType = "error"
	EventRateLimit               EventType = "rate-limit"
)

// Board sync reasons
const (
	SyncReasonPeriodic         = "periodic"
	SyncReasonRequested        = "requested"
	SyncReasonReconnect        = "reconnect"
	SyncReasonShuffle          = "shuffle"
	SyncReasonDeadBoard        = "dead-board"
	SyncReasonChecksumMismatch = "checksum-mismatch"
)

// Event is a room-wide broadcast as delivered to spectators
type Event struct {
	Type      EventType `json:"event"`
	RoomCode  RoomCode  `json:"roomCode"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"data"`
}

// RoomPayload is sent on room:created, room:joined and match:return-to-lobby
type RoomPayload struct {
	RoomCode RoomCode     `json:"roomCode"`
	PlayerID PlayerID     `json:"playerId,omitempty"`
	Room     RoomSnapshot `json:"room"`
}

// PlayerJoinedPayload is broadcast when a player joins a room
type PlayerJoinedPayload struct {
	Player Player `json:"player"`
}

// PlayerLeftPayload is broadcast when a player leaves a room
type PlayerLeftPayload struct {
	PlayerID PlayerID `json:"playerId"`
	Username string   `json:"username"`
}

// PlayerReadyPayload is broadcast when a player toggles ready
type PlayerReadyPayload struct {
	PlayerID PlayerID `json:"playerId"`
	IsReady  bool     `json:"isReady"`
}

// PlayerDifficultyPayload is broadcast when a player changes difficulty
type PlayerDifficultyPayload struct {
	PlayerID   PlayerID   `json:"playerId"`
	Difficulty Difficulty `json:"difficulty"`
}

// SettingsPayload is broadcast when the host edits the match settings
type SettingsPayload struct {
	Settings MatchSettings `json:"settings"`
}

// HostChangedPayload is broadcast when host status transfers
type HostChangedPayload struct {
	OldHostID PlayerID `json:"oldHostId"`
	NewHostID PlayerID `json:"newHostId"`
}

// MatchStartingPayload announces the pre-round countdown
type MatchStartingPayload struct {
	CountdownMs int64 `json:"countdownMs"`
	TotalRounds int   `json:"totalRounds"`
}

// MatchStartedPayload is broadcast when a round becomes active
type MatchStartedPayload struct {
	RoundNumber     int        `json:"roundNumber"`
	TotalRounds     int        `json:"totalRounds"`
	Board           *GameBoard `json:"board"`
	Checksum        string     `json:"checksum"`
	SequenceNumber  uint64     `json:"sequenceNumber"`
	RoundDurationMs int64      `json:"roundDurationMs"`
	TimeRemainingMs int64      `json:"timeRemainingMs"`
}

// TimerPayload is the round timer update
type TimerPayload struct {
	TimeRemainingMs  int64 `json:"timeRemainingMs"`
	SecondsRemaining int   `json:"secondsRemaining"`
}

// RoundEndPayload summarises a finished round
type RoundEndPayload struct {
	RoundNumber     int            `json:"roundNumber"`
	TotalRounds     int            `json:"totalRounds"`
	IsMatchComplete bool           `json:"isMatchComplete"`
	Results         []PlayerResult `json:"results"`
}

// MatchFinishedPayload summarises a finished match
type MatchFinishedPayload struct {
	WinnerID       PlayerID       `json:"winnerId"`
	WinnerUsername string         `json:"winnerUsername"`
	Results        []PlayerResult `json:"results"`
}

// TileChangesPayload carries one cascade delta and the checksum of the board after it
type TileChangesPayload struct {
	TileChanges
	PlayerID PlayerID `json:"playerId"`
	Word     string   `json:"word"`
	Checksum string   `json:"checksum"`
}

// BoardSyncPayload is a full board snapshot
type BoardSyncPayload struct {
	Board           *GameBoard `json:"board"`
	Checksum        string     `json:"checksum"`
	SequenceNumber  uint64     `json:"sequenceNumber"`
	TimeRemainingMs int64      `json:"timeRemainingMs"`
	RoundNumber     int        `json:"roundNumber"`
	Reason          string     `json:"reason"`
}

// ScoreUpdatePayload is broadcast when a player's score changes
type ScoreUpdatePayload struct {
	PlayerID   PlayerID `json:"playerId"`
	Score      int      `json:"score"`
	RoundScore int      `json:"roundScore"`
}

// LeaderboardPayload ranks the room's players by total score
type LeaderboardPayload struct {
	Players []PlayerResult `json:"players"`
}

// WordValidPayload is sent to the submitter of an accepted word
type WordValidPayload struct {
	Word       string     `json:"word"`
	Points     int        `json:"points"`
	TotalScore int        `json:"totalScore"`
	RoundScore int        `json:"roundScore"`
	SpeedBonus bool       `json:"speedBonus"`
	Path       []Position `json:"path"`
}

// WordInvalidPayload is sent to the submitter of a rejected word
type WordInvalidPayload struct {
	Word   string `json:"word"`
	Reason string `json:"reason"`
}

// SessionPayload describes the caller's session
type SessionPayload struct {
	SessionID   PlayerID `json:"sessionId"`
	Username    string   `json:"username"`
	IsConnected bool     `json:"isConnected"`
	Score       int      `json:"score"`
}

// ReconnectSuccessPayload is sent after a session is restored
type ReconnectSuccessPayload struct {
	Session SessionPayload `json:"session"`
	Room    *RoomSnapshot  `json:"room,omitempty"`
}

// ReconnectFailedPayload is sent when no prior session matched; Session is the fresh one
type ReconnectFailedPayload struct {
	Reason  string         `json:"reason"`
	Session SessionPayload `json:"session"`
}

// ErrorPayload is the generic error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RateLimitPayload is sent instead of processing an event over the limit
type RateLimitPayload struct {
	Message      string `json:"message"`
	RetryAfterMs int64  `json:"retryAfterMs"`
}
