package handler

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/services/room"
)

// Conn is one client connection, whatever the transport
type Conn interface {
	// ID identifies the connection; the session registry keys sessions by it
	ID() string
	// Emit queues an event for the client. It must not block.
	Emit(event model.EventType, payload any) error
}

// Publisher receives room-wide events for read-only spectators
type Publisher interface {
	Publish(code model.RoomCode, event model.EventType, payload any)
}

// Connections maps players to their current connection and delivers room events
type Connections struct {
	mu        sync.RWMutex
	byPlayer  map[model.PlayerID]Conn
	publisher Publisher
	logger    zerolog.Logger
}

// Ensure Connections implements room.Notifier
var _ room.Notifier = (*Connections)(nil)

// NewConnections creates a connection registry. publisher may be nil.
func NewConnections(publisher Publisher, logger zerolog.Logger) *Connections {
	return &Connections{
		byPlayer:  make(map[model.PlayerID]Conn),
		publisher: publisher,
		logger:    logger.With().Str("component", "connections").Logger(),
	}
}

// Bind routes a player's events to conn, replacing any previous connection
func (c *Connections) Bind(id model.PlayerID, conn Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byPlayer[id] = conn
}

// Unbind removes the player's binding if it still points at connID
func (c *Connections) Unbind(id model.PlayerID, connID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn, ok := c.byPlayer[id]
	if !ok || conn.ID() != connID {
		return false
	}
	delete(c.byPlayer, id)
	return true
}

// Get returns the player's current connection
func (c *Connections) Get(id model.PlayerID) (Conn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conn, ok := c.byPlayer[id]
	return conn, ok
}

// Count returns the number of bound players
func (c *Connections) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byPlayer)
}

// Send delivers an event to one player, dropping it if they have no connection
func (c *Connections) Send(id model.PlayerID, event model.EventType, payload any) {
	conn, ok := c.Get(id)
	if !ok {
		return
	}
	if err := conn.Emit(event, payload); err != nil {
		c.logger.Warn().
			Err(err).
			Str("player_id", string(id)).
			Str("event", string(event)).
			Msg("dropped event")
	}
}

// Publish mirrors a room-wide event to spectators
func (c *Connections) Publish(code model.RoomCode, event model.EventType, payload any) {
	if c.publisher != nil {
		c.publisher.Publish(code, event, payload)
	}
}
