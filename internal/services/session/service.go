package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/dependencies/clock"
	"github.com/mcoot/wordcascade/internal/model"
)

// DefaultUsername is used when a client connects without a name
const DefaultUsername = "Guest"

// Config holds configuration for the session registry
type Config struct {
	// TTL is how long a disconnected session is kept for reconnection
	TTL time.Duration
	// SweepInterval is how often expired sessions are purged by Run
	SweepInterval time.Duration
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		TTL:           5 * time.Minute,
		SweepInterval: time.Minute,
	}
}

// Service maps connection ids to durable player sessions. A session outlives its
// connection so that a player can reconnect and keep their identity and score.
type Service struct {
	clock  clock.Clock
	cfg    Config
	logger zerolog.Logger

	mu       sync.RWMutex
	sessions map[model.PlayerID]*model.PlayerSession
	sockets  map[string]model.PlayerID
	onExpire func(id model.PlayerID)
}

// New creates a new session Service
func New(clock clock.Clock, cfg Config, logger zerolog.Logger) *Service {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}
	return &Service{
		clock:    clock,
		cfg:      cfg,
		logger:   logger.With().Str("component", "session").Logger(),
		sessions: make(map[model.PlayerID]*model.PlayerSession),
		sockets:  make(map[string]model.PlayerID),
	}
}

// CreateOrUpdate returns the session bound to socketID, creating one on first connect.
// A non-empty username replaces the stored one.
func (s *Service) CreateOrUpdate(socketID, username string) model.PlayerSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if id, ok := s.sockets[socketID]; ok {
		sess := s.sessions[id]
		if username != "" {
			sess.Username = username
		}
		sess.IsConnected = true
		sess.LastActivity = now
		return *sess
	}

	if username == "" {
		username = DefaultUsername
	}
	sess := &model.PlayerSession{
		ID:           model.PlayerID(uuid.NewString()),
		Username:     username,
		SocketID:     socketID,
		IsConnected:  true,
		LastActivity: now,
	}
	s.sessions[sess.ID] = sess
	s.sockets[socketID] = sess.ID

	s.logger.Debug().Str("player_id", string(sess.ID)).Str("socket_id", socketID).Msg("session created")
	return *sess
}

// FindForReconnection looks a prior session up by exact id, falling back to a
// case-insensitive username match. Disconnected sessions are preferred, then the
// most recently active.
func (s *Service) FindForReconnection(priorID model.PlayerID, username string) (model.PlayerSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if priorID != "" {
		if sess, ok := s.sessions[priorID]; ok {
			return *sess, true
		}
	}
	if username == "" {
		return model.PlayerSession{}, false
	}

	var best *model.PlayerSession
	for _, sess := range s.sessions {
		if !strings.EqualFold(sess.Username, username) {
			continue
		}
		if best == nil || betterCandidate(sess, best) {
			best = sess
		}
	}
	if best == nil {
		return model.PlayerSession{}, false
	}
	return *best, true
}

func betterCandidate(a, b *model.PlayerSession) bool {
	if a.IsConnected != b.IsConnected {
		return !a.IsConnected
	}
	return a.LastActivity.After(b.LastActivity)
}

// Migrate rebinds the session on oldSocketID to newSocketID and marks it connected
func (s *Service) Migrate(oldSocketID, newSocketID string) (model.PlayerSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.sockets[oldSocketID]
	if !ok {
		return model.PlayerSession{}, false
	}
	sess := s.sessions[id]

	// A fresh session already bound to the new socket is superseded
	if prevID, bound := s.sockets[newSocketID]; bound && prevID != id {
		delete(s.sessions, prevID)
	}

	delete(s.sockets, oldSocketID)
	s.sockets[newSocketID] = id
	sess.SocketID = newSocketID
	sess.IsConnected = true
	sess.LastActivity = s.clock.Now()

	s.logger.Info().
		Str("player_id", string(id)).
		Str("old_socket_id", oldSocketID).
		Str("new_socket_id", newSocketID).
		Msg("session migrated")
	return *sess, true
}

// MarkDisconnected flags the session on socketID as disconnected and starts its TTL
func (s *Service) MarkDisconnected(socketID string) (model.PlayerSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.sockets[socketID]
	if !ok {
		return model.PlayerSession{}, false
	}
	sess := s.sessions[id]
	sess.IsConnected = false
	sess.LastActivity = s.clock.Now()
	return *sess, true
}

// Get returns the session bound to socketID
func (s *Service) Get(socketID string) (model.PlayerSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.sockets[socketID]
	if !ok {
		return model.PlayerSession{}, false
	}
	return *s.sessions[id], true
}

// GetByID returns the session with the given id
func (s *Service) GetByID(id model.PlayerID) (model.PlayerSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return model.PlayerSession{}, false
	}
	return *sess, true
}

// Touch records activity on socketID
func (s *Service) Touch(socketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.sockets[socketID]; ok {
		s.sessions[id].LastActivity = s.clock.Now()
	}
}

// RecordWord credits an accepted word to the session
func (s *Service) RecordWord(id model.PlayerID, points int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.WordsSubmitted++
		sess.Score += points
	}
}

// Remove drops the session bound to socketID entirely
func (s *Service) Remove(socketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.sockets[socketID]; ok {
		delete(s.sockets, socketID)
		delete(s.sessions, id)
	}
}

// ActiveCount returns the number of connected sessions
func (s *Service) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sess := range s.sessions {
		if sess.IsConnected {
			count++
		}
	}
	return count
}

// OnExpire registers fn to be called with the id of every session Sweep purges.
// fn runs after the registry lock is released.
func (s *Service) OnExpire(fn func(id model.PlayerID)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpire = fn
}

// Sweep purges sessions disconnected for longer than the TTL and returns how many were removed
func (s *Service) Sweep() int {
	s.mu.Lock()
	now := s.clock.Now()
	var expired []model.PlayerID
	for id, sess := range s.sessions {
		if sess.IsConnected || now.Sub(sess.LastActivity) <= s.cfg.TTL {
			continue
		}
		delete(s.sessions, id)
		if s.sockets[sess.SocketID] == id {
			delete(s.sockets, sess.SocketID)
		}
		expired = append(expired, id)
	}
	onExpire := s.onExpire
	s.mu.Unlock()

	if len(expired) > 0 {
		s.logger.Info().Int("removed", len(expired)).Msg("expired sessions purged")
	}
	if onExpire != nil {
		for _, id := range expired {
			onExpire(id)
		}
	}
	return len(expired)
}

// Run sweeps expired sessions until ctx is cancelled
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Interface for dependency injection
type ServiceInterface interface {
	CreateOrUpdate(socketID, username string) model.PlayerSession
	FindForReconnection(priorID model.PlayerID, username string) (model.PlayerSession, bool)
	Migrate(oldSocketID, newSocketID string) (model.PlayerSession, bool)
	MarkDisconnected(socketID string) (model.PlayerSession, bool)
	Get(socketID string) (model.PlayerSession, bool)
	GetByID(id model.PlayerID) (model.PlayerSession, bool)
	Touch(socketID string)
	RecordWord(id model.PlayerID, points int)
	Remove(socketID string)
	ActiveCount() int
	Sweep() int
}

var _ ServiceInterface = (*Service)(nil)
