package room

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/dependencies/random"
	"github.com/mcoot/wordcascade/internal/model"
)

const maxCodeAttempts = 100

// Manager owns every live room and the player to room index. It never calls
// into a room while holding its own lock.
type Manager struct {
	cfg    Config
	deps   Deps
	random random.Random
	logger zerolog.Logger

	mu    sync.RWMutex
	rooms map[model.RoomCode]*Room
	index map[model.PlayerID]model.RoomCode
}

// NewManager creates a new room Manager
func NewManager(cfg Config, deps Deps, rnd random.Random) *Manager {
	return &Manager{
		cfg:    cfg,
		deps:   deps,
		random: rnd,
		logger: deps.Logger.With().Str("component", "room-manager").Logger(),
		rooms:  make(map[model.RoomCode]*Room),
		index:  make(map[model.PlayerID]model.RoomCode),
	}
}

// CreateRoom creates a room with the caller as host. Nil settings use the defaults.
func (m *Manager) CreateRoom(id model.PlayerID, username string, settings *model.MatchSettings) (*Room, model.RoomSnapshot, error) {
	s := model.DefaultMatchSettings()
	if settings != nil {
		if err := settings.Validate(); err != nil {
			return nil, model.RoomSnapshot{}, err
		}
		s = *settings
	}

	m.mu.Lock()
	if _, ok := m.index[id]; ok {
		m.mu.Unlock()
		return nil, model.RoomSnapshot{}, model.ErrAlreadyInRoom
	}
	code := m.generateCodeLocked()
	r := newRoom(code, s, m.cfg, m.deps)
	m.rooms[code] = r
	m.index[id] = code
	m.mu.Unlock()

	snap, err := r.join(id, username, model.EventRoomCreated)
	if err != nil {
		m.destroy(code, r)
		return nil, model.RoomSnapshot{}, err
	}

	m.logger.Info().Str("room", string(code)).Str("host", string(id)).Msg("room created")
	return r, snap, nil
}

// JoinRoom adds a player to an existing room
func (m *Manager) JoinRoom(code model.RoomCode, id model.PlayerID, username string) (*Room, model.RoomSnapshot, error) {
	code = NormalizeCode(code)

	m.mu.RLock()
	_, inRoom := m.index[id]
	r, ok := m.rooms[code]
	m.mu.RUnlock()

	if inRoom {
		return nil, model.RoomSnapshot{}, model.ErrAlreadyInRoom
	}
	if !ok {
		return nil, model.RoomSnapshot{}, model.ErrRoomNotFound
	}

	snap, err := r.Join(id, username)
	if err != nil {
		return nil, model.RoomSnapshot{}, err
	}

	m.mu.Lock()
	m.index[id] = code
	m.mu.Unlock()
	return r, snap, nil
}

// Leave removes a player from their room, destroying the room once empty
func (m *Manager) Leave(id model.PlayerID) error {
	m.mu.Lock()
	code, ok := m.index[id]
	r := m.rooms[code]
	delete(m.index, id)
	m.mu.Unlock()

	if !ok || r == nil {
		return model.ErrNotInRoom
	}

	remaining, err := r.Leave(id)
	if err != nil {
		return err
	}
	if remaining == 0 {
		m.destroy(code, r)
	}
	return nil
}

// RoomFor returns the room a player belongs to
func (m *Manager) RoomFor(id model.PlayerID) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	code, ok := m.index[id]
	if !ok {
		return nil, model.ErrNotInRoom
	}
	r, ok := m.rooms[code]
	if !ok {
		return nil, model.ErrNotInRoom
	}
	return r, nil
}

// Get returns a room by code
func (m *Manager) Get(code model.RoomCode) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[NormalizeCode(code)]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return r, nil
}

// Disconnect marks a player disconnected in their room, if any
func (m *Manager) Disconnect(id model.PlayerID) {
	r, err := m.RoomFor(id)
	if err != nil {
		return
	}
	r.Disconnect(id)
}

// Reconnect marks a player connected again in their room
func (m *Manager) Reconnect(id model.PlayerID) (*Room, model.RoomSnapshot, error) {
	r, err := m.RoomFor(id)
	if err != nil {
		return nil, model.RoomSnapshot{}, err
	}
	snap, err := r.Reconnect(id)
	if err != nil {
		return nil, model.RoomSnapshot{}, err
	}
	return r, snap, nil
}

// SweepInactive destroys rooms idle for longer than the inactivity timeout and
// returns how many were removed
func (m *Manager) SweepInactive() int {
	now := m.deps.Clock.Now()

	m.mu.RLock()
	rooms := make(map[model.RoomCode]*Room, len(m.rooms))
	for code, r := range m.rooms {
		rooms[code] = r
	}
	m.mu.RUnlock()

	removed := 0
	for code, r := range rooms {
		if now.Sub(r.LastActivity()) > m.cfg.InactivityTimeout {
			m.destroy(code, r)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info().Int("removed", removed).Msg("swept inactive rooms")
	}
	return removed
}

// Run sweeps inactive rooms until ctx is cancelled
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SweepInactive()
		}
	}
}

// Count returns the number of live rooms
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Close destroys every room
func (m *Manager) Close() {
	m.mu.Lock()
	rooms := m.rooms
	m.rooms = make(map[model.RoomCode]*Room)
	m.index = make(map[model.PlayerID]model.RoomCode)
	m.mu.Unlock()

	for _, r := range rooms {
		r.Close()
	}
}

func (m *Manager) destroy(code model.RoomCode, r *Room) {
	m.mu.Lock()
	if m.rooms[code] == r {
		delete(m.rooms, code)
	}
	for id, c := range m.index {
		if c == code {
			delete(m.index, id)
		}
	}
	m.mu.Unlock()

	r.Close()
	m.logger.Info().Str("room", string(code)).Msg("room destroyed")
}

// generateCodeLocked picks an unused room code. Caller holds mu.
func (m *Manager) generateCodeLocked() model.RoomCode {
	var code model.RoomCode
	for range maxCodeAttempts {
		code = model.RoomCode(m.random.String(RoomCodeLength, RoomCodeAlphabet))
		if _, exists := m.rooms[code]; !exists && code != "" {
			return code
		}
	}
	// Fall back to a longer code rather than fail
	return model.RoomCode(m.random.String(RoomCodeLength*2, RoomCodeAlphabet))
}

// NormalizeCode upper-cases and trims a room code
func NormalizeCode(code model.RoomCode) model.RoomCode {
	return model.RoomCode(strings.ToUpper(strings.TrimSpace(string(code))))
}

// ManagerInterface defines the interface for the room Manager
type ManagerInterface interface {
	CreateRoom(id model.PlayerID, username string, settings *model.MatchSettings) (*Room, model.RoomSnapshot, error)
	JoinRoom(code model.RoomCode, id model.PlayerID, username string) (*Room, model.RoomSnapshot, error)
	Leave(id model.PlayerID) error
	RoomFor(id model.PlayerID) (*Room, error)
	Get(code model.RoomCode) (*Room, error)
	Disconnect(id model.PlayerID)
	Reconnect(id model.PlayerID) (*Room, model.RoomSnapshot, error)
	SweepInactive() int
	Count() int
	Close()
}

// Ensure Manager implements ManagerInterface
var _ ManagerInterface = (*Manager)(nil)
