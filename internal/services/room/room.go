package room

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/dependencies/clock"
	"github.com/mcoot/wordcascade/internal/model"
)

// Room owns one room's players, settings and match state. All state is guarded
// by mu; timer callbacks and async board results re-acquire it and are dropped
// if the phase epoch has moved on.
type Room struct {
	code   model.RoomCode
	cfg    Config
	deps   Deps
	clock  clock.Clock
	logger zerolog.Logger

	mu           sync.Mutex
	hostID       model.PlayerID
	players      []*model.Player // join order
	settings     model.MatchSettings
	status       model.MatchStatus
	createdAt    time.Time
	lastActivity time.Time
	closed       bool
	history      []model.MatchResult

	// Match state
	currentRound int
	board        *model.GameBoard
	checksum     string
	sequence     uint64
	roundStart   time.Time
	deadline     time.Time
	lastSecond   int

	// Phase bookkeeping
	epoch        uint64
	timers       map[string]clock.Timer
	genCancel    context.CancelFunc
	pendingBoard *model.GameBoard
	delayDone    bool
	regenerating bool
}

func newRoom(code model.RoomCode, settings model.MatchSettings, cfg Config, deps Deps) *Room {
	now := deps.Clock.Now()
	return &Room{
		code:         code,
		cfg:          cfg,
		deps:         deps,
		clock:        deps.Clock,
		logger:       deps.Logger.With().Str("component", "room").Str("room", string(code)).Logger(),
		settings:     settings,
		status:       model.MatchStatusLobby,
		createdAt:    now,
		lastActivity: now,
		timers:       make(map[string]clock.Timer),
	}
}

// Code returns the room code
func (r *Room) Code() model.RoomCode {
	return r.code
}

// Join adds a player to the lobby and sends them room:joined
func (r *Room) Join(id model.PlayerID, username string) (model.RoomSnapshot, error) {
	return r.join(id, username, model.EventRoomJoined)
}

func (r *Room) join(id model.PlayerID, username string, event model.EventType) (model.RoomSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return model.RoomSnapshot{}, model.ErrRoomClosed
	}
	if r.findLocked(id) != nil {
		return model.RoomSnapshot{}, model.ErrAlreadyInRoom
	}
	if r.status != model.MatchStatusLobby {
		return model.RoomSnapshot{}, model.ErrGameInProgress
	}
	if len(r.players) >= r.cfg.MaxPlayers {
		return model.RoomSnapshot{}, model.ErrRoomFull
	}

	now := r.clock.Now()
	player := &model.Player{
		ID:          id,
		Username:    username,
		IsConnected: true,
		Difficulty:  model.DefaultDifficulty,
		JoinedAt:    now,
	}
	r.players = append(r.players, player)
	if r.hostID == "" {
		r.hostID = id
	}
	r.lastActivity = now

	snap := r.snapshotLocked()
	r.deps.Notifier.Send(id, event, model.RoomPayload{RoomCode: r.code, PlayerID: id, Room: snap})
	r.broadcastExceptLocked(id, model.EventPlayerJoined, model.PlayerJoinedPayload{Player: *player})

	r.logger.Info().Str("player_id", string(id)).Str("username", username).Msg("player joined")
	return snap, nil
}

// Leave removes a player and returns how many players remain
func (r *Room) Leave(id model.PlayerID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return len(r.players), model.ErrNotInRoom
	}
	player := r.players[idx]
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	r.lastActivity = r.clock.Now()

	r.deps.Notifier.Send(id, model.EventRoomLeft, model.PlayerLeftPayload{PlayerID: id, Username: player.Username})
	r.broadcastLocked(model.EventPlayerLeft, model.PlayerLeftPayload{PlayerID: id, Username: player.Username})
	if r.hostID == id {
		r.transferHostLocked(id)
	}

	r.logger.Info().Str("player_id", string(id)).Int("remaining", len(r.players)).Msg("player left")

	if len(r.players) == 0 {
		r.shutdownLocked()
	}
	return len(r.players), nil
}

// SetReady toggles a player's ready flag in the lobby
func (r *Room) SetReady(id model.PlayerID, ready bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.findLocked(id)
	if player == nil {
		return model.ErrNotInRoom
	}
	if r.status != model.MatchStatusLobby {
		return model.ErrGameInProgress
	}

	player.IsReady = ready
	r.lastActivity = r.clock.Now()
	r.broadcastLocked(model.EventPlayerReadyChanged, model.PlayerReadyPayload{PlayerID: id, IsReady: ready})
	return nil
}

// SetDifficulty changes a player's difficulty in the lobby
func (r *Room) SetDifficulty(id model.PlayerID, difficulty model.Difficulty) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.findLocked(id)
	if player == nil {
		return model.ErrNotInRoom
	}
	if !difficulty.IsValid() {
		return model.ErrInvalidDifficulty
	}
	if r.status != model.MatchStatusLobby {
		return model.ErrGameInProgress
	}

	player.Difficulty = difficulty
	r.lastActivity = r.clock.Now()
	r.broadcastLocked(model.EventPlayerDifficultyChanged, model.PlayerDifficultyPayload{PlayerID: id, Difficulty: difficulty})
	return nil
}

// UpdateSettings replaces the match settings. Host only, lobby only.
func (r *Room) UpdateSettings(id model.PlayerID, settings model.MatchSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findLocked(id) == nil {
		return model.ErrNotInRoom
	}
	if r.hostID != id {
		return model.ErrNotHost
	}
	if r.status != model.MatchStatusLobby {
		return model.ErrGameInProgress
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	r.settings = settings
	r.lastActivity = r.clock.Now()
	r.broadcastLocked(model.EventSettingsUpdated, model.SettingsPayload{Settings: settings})
	return nil
}

// Disconnect marks a player as gone without removing them, so they can reconnect
func (r *Room) Disconnect(id model.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.findLocked(id)
	if player == nil || !player.IsConnected {
		return
	}
	player.IsConnected = false
	r.logger.Info().Str("player_id", string(id)).Msg("player disconnected")

	if r.hostID == id {
		r.transferHostLocked(id)
	}
}

// Reconnect marks a player connected again and returns the room state
func (r *Room) Reconnect(id model.PlayerID) (model.RoomSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.findLocked(id)
	if player == nil {
		return model.RoomSnapshot{}, model.ErrNotInRoom
	}
	player.IsConnected = true
	r.lastActivity = r.clock.Now()
	if host := r.findLocked(r.hostID); host == nil || !host.IsConnected {
		r.setHostLocked(id)
	}

	r.logger.Info().Str("player_id", string(id)).Msg("player reconnected")
	return r.snapshotLocked(), nil
}

// Snapshot returns a copy of the room state
func (r *Room) Snapshot() model.RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// History returns finished match results, oldest first
func (r *Room) History() []model.MatchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.MatchResult(nil), r.history...)
}

// LastActivity returns when a player last acted in the room
func (r *Room) LastActivity() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActivity
}

// ConnectedCount returns the number of connected players
func (r *Room) ConnectedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.connectedLocked())
}

// Close cancels all timers and pending generation. The room accepts no further joins.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shutdownLocked()
}

func (r *Room) shutdownLocked() {
	if r.closed {
		return
	}
	r.closed = true
	r.nextEpochLocked()
	r.logger.Info().Msg("room closed")
}

// Helpers below require mu to be held

func (r *Room) findLocked(id model.PlayerID) *model.Player {
	if idx := r.indexLocked(id); idx >= 0 {
		return r.players[idx]
	}
	return nil
}

func (r *Room) indexLocked(id model.PlayerID) int {
	for i, p := range r.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *Room) connectedLocked() []*model.Player {
	var out []*model.Player
	for _, p := range r.players {
		if p.IsConnected {
			out = append(out, p)
		}
	}
	return out
}

// transferHostLocked hands host to the first connected player other than from,
// falling back to the first remaining player
func (r *Room) transferHostLocked(from model.PlayerID) {
	var next model.PlayerID
	for _, p := range r.players {
		if p.ID != from && p.IsConnected {
			next = p.ID
			break
		}
	}
	if next == "" {
		for _, p := range r.players {
			if p.ID != from {
				next = p.ID
				break
			}
		}
	}
	if next == "" {
		if r.findLocked(from) == nil {
			r.hostID = ""
		}
		return
	}
	r.setHostLocked(next)
}

func (r *Room) setHostLocked(id model.PlayerID) {
	if r.hostID == id {
		return
	}
	old := r.hostID
	r.hostID = id
	r.broadcastLocked(model.EventHostChanged, model.HostChangedPayload{OldHostID: old, NewHostID: id})
	r.logger.Info().Str("old_host", string(old)).Str("new_host", string(id)).Msg("host changed")
}

func (r *Room) broadcastLocked(event model.EventType, payload any) {
	r.broadcastExceptLocked("", event, payload)
}

func (r *Room) broadcastExceptLocked(except model.PlayerID, event model.EventType, payload any) {
	for _, p := range r.players {
		if p.IsConnected && p.ID != except {
			r.deps.Notifier.Send(p.ID, event, payload)
		}
	}
	r.deps.Notifier.Publish(r.code, event, payload)
}

// rankedLocked returns players ordered by total score; ties keep join order
func (r *Room) rankedLocked() []model.PlayerResult {
	results := make([]model.PlayerResult, len(r.players))
	for i, p := range r.players {
		results[i] = model.PlayerResult{
			PlayerID:   p.ID,
			Username:   p.Username,
			RoundScore: p.RoundScore,
			TotalScore: p.Score,
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalScore > results[j].TotalScore
	})
	return results
}

func (r *Room) timeRemainingLocked() time.Duration {
	if r.status != model.MatchStatusActive {
		return 0
	}
	remaining := r.deadline.Sub(r.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (r *Room) snapshotLocked() model.RoomSnapshot {
	players := make([]model.Player, len(r.players))
	for i, p := range r.players {
		players[i] = *p
	}
	snap := model.RoomSnapshot{
		RoomCode:     r.code,
		HostID:       r.hostID,
		Players:      players,
		MaxPlayers:   r.cfg.MaxPlayers,
		IsGameActive: r.status.InGame(),
		Settings:     r.settings,
		CreatedAt:    r.createdAt,
		LastActivity: r.lastActivity,
	}
	if r.status.InGame() {
		snap.GameState = &model.GameState{
			CurrentRound:   r.currentRound,
			TotalRounds:    r.settings.TotalRounds,
			TimeRemaining:  r.timeRemainingLocked(),
			MatchStatus:    r.status,
			Board:          r.board,
			RoundStartTime: r.roundStart,
			Settings:       r.settings,
		}
	}
	return snap
}
