package socketio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/api/handler"
	"github.com/mcoot/wordcascade/internal/model"
)

const (
	namespace = "/"

	// Buffer size for outgoing events per connection
	sendBufferSize = 256
)

var (
	// ErrSendBufferFull is returned by Emit when the client is not keeping up
	ErrSendBufferFull = errors.New("send buffer full")
	// ErrConnClosed is returned by Emit after the connection has gone
	ErrConnClosed = errors.New("connection closed")
)

// Dispatcher receives connection lifecycle and client events
type Dispatcher interface {
	Events() []model.EventType
	Connect(conn handler.Conn) model.PlayerSession
	Disconnect(conn handler.Conn)
	Handle(ctx context.Context, conn handler.Conn, event string, raw []byte)
	Reject(ctx context.Context, conn handler.Conn, err error)
}

type outbound struct {
	event   string
	payload any
}

// conn adapts a socket.io connection to handler.Conn. socket.io's own Emit
// waits for the transport, so events are queued and written by writePump.
type conn struct {
	s socketio.Conn

	mu     sync.Mutex
	send   chan outbound
	closed bool
}

func (c *conn) ID() string {
	return c.s.ID()
}

// Emit queues the event without blocking
func (c *conn) Emit(event model.EventType, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- outbound{event: string(event), payload: payload}:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// close stops the write pump. Safe to call more than once.
func (c *conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *conn) writePump() {
	for msg := range c.send {
		c.s.Emit(msg.event, msg.payload)
	}
}

// adapt returns the adapter stored on s, creating it and its write pump on first use
func adapt(s socketio.Conn) *conn {
	if c, ok := s.Context().(*conn); ok {
		return c
	}
	c := &conn{s: s, send: make(chan outbound, sendBufferSize)}
	s.SetContext(c)
	go c.writePump()
	return c
}

// NewServer builds a socket.io server that forwards every client event the
// dispatcher knows to it. The caller runs Serve and Close.
func NewServer(dispatcher Dispatcher, logger zerolog.Logger) *socketio.Server {
	logger = logger.With().Str("component", "socketio").Logger()
	io := socketio.NewServer(nil)

	io.OnConnect(namespace, func(s socketio.Conn) error {
		dispatcher.Connect(adapt(s))
		logger.Debug().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	for _, event := range dispatcher.Events() {
		name := string(event)
		io.OnEvent(namespace, name, func(s socketio.Conn, data map[string]any) {
			raw, err := encodePayload(data)
			if err != nil {
				dispatcher.Reject(context.Background(), adapt(s), fmt.Errorf("%w: unencodable payload: %v", model.ErrInvalidRequest, err))
				return
			}
			dispatcher.Handle(context.Background(), adapt(s), name, raw)
		})
	}

	io.OnError(namespace, func(s socketio.Conn, err error) {
		if s == nil {
			logger.Warn().Err(err).Msg("socket error")
			return
		}
		logger.Warn().Err(err).Str("sid", s.ID()).Msg("socket error")
	})

	io.OnDisconnect(namespace, func(s socketio.Conn, reason string) {
		c := adapt(s)
		dispatcher.Disconnect(c)
		c.close()
		logger.Debug().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	return io
}

// encodePayload turns the decoded socket.io argument back into JSON for the gateway
func encodePayload(data map[string]any) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	return json.Marshal(data)
}
