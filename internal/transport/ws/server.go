package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/api/handler"
	"github.com/mcoot/wordcascade/internal/model"
)

// Dispatcher receives connection lifecycle and client events
type Dispatcher interface {
	Connect(conn handler.Conn) model.PlayerSession
	Disconnect(conn handler.Conn)
	Handle(ctx context.Context, conn handler.Conn, event string, raw []byte)
	Reject(ctx context.Context, conn handler.Conn, err error)
}

// Server upgrades HTTP requests to websockets and pumps their events into a Dispatcher
type Server struct {
	dispatcher Dispatcher
	upgrader   websocket.Upgrader
	logger     zerolog.Logger

	mu      sync.Mutex
	clients map[*Client]bool
}

// NewServer creates a websocket Server. Origins are not checked.
func NewServer(dispatcher Dispatcher, logger zerolog.Logger) *Server {
	return &Server{
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  logger.With().Str("component", "ws").Logger(),
		clients: make(map[*Client]bool),
	}
}

// ServeHTTP handles GET /ws
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newClient(conn, s.logger)
	s.mu.Lock()
	s.clients[client] = true
	s.mu.Unlock()

	go client.writePump()
	s.dispatcher.Connect(client)
	s.readPump(client)
}

// readPump dispatches inbound events one at a time until the connection fails
func (s *Server) readPump(c *Client) {
	defer func() {
		s.dispatcher.Disconnect(c)
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.dispatcher.Reject(context.Background(), c, fmt.Errorf("%w: malformed message: %v", model.ErrInvalidRequest, err))
			continue
		}
		if env.Event == "" {
			s.dispatcher.Reject(context.Background(), c, fmt.Errorf("%w: missing event name", model.ErrInvalidRequest))
			continue
		}
		s.dispatcher.Handle(context.Background(), c, env.Event, env.Data)
	}
}

// Count returns the number of open connections
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close closes every open connection
func (s *Server) Close() {
	s.mu.Lock()
	clients := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
}
