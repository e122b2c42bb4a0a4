package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/api/apierr"
	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/services/ratelimit"
	"github.com/mcoot/wordcascade/internal/services/room"
	"github.com/mcoot/wordcascade/internal/services/session"
)

const reasonNoSession = "no matching session"

// eventHandler handles one decoded client event for the session's player
type eventHandler func(ctx context.Context, conn Conn, sess model.PlayerSession, raw []byte) error

// Gateway is the boundary between transports and the game. Every client event
// passes through panic recovery, the rate limiter and strict schema validation
// before it reaches a room.
type Gateway struct {
	conns    *Connections
	rooms    room.ManagerInterface
	sessions session.ServiceInterface
	limiter  ratelimit.ServiceInterface
	validate *validator.Validate
	logger   zerolog.Logger
	handlers map[model.EventType]eventHandler
}

// NewGateway creates a new Gateway
func NewGateway(
	conns *Connections,
	rooms room.ManagerInterface,
	sessions session.ServiceInterface,
	limiter ratelimit.ServiceInterface,
	logger zerolog.Logger,
) *Gateway {
	g := &Gateway{
		conns:    conns,
		rooms:    rooms,
		sessions: sessions,
		limiter:  limiter,
		validate: validator.New(),
		logger:   logger.With().Str("component", "gateway").Logger(),
	}
	g.handlers = map[model.EventType]eventHandler{
		model.EventRoomJoin:         g.handleJoin,
		model.EventRoomLeave:        g.handleLeave,
		model.EventPlayerReady:      g.handleReady,
		model.EventPlayerDifficulty: g.handleDifficulty,
		model.EventRoomSettings:     g.handleSettings,
		model.EventMatchStart:       g.handleStart,
		model.EventMatchEndRound:    g.handleEndRound,
		model.EventWordSubmit:       g.handleSubmitWord,
		model.EventBoardRequest:     g.handleRequestBoard,
		model.EventBoardShuffle:     g.handleShuffle,
		model.EventSessionReconnect: g.handleReconnect,
	}
	return g
}

// Events returns the client event names the gateway handles, sorted
func (g *Gateway) Events() []model.EventType {
	events := make([]model.EventType, 0, len(g.handlers))
	for e := range g.handlers {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i] < events[j] })
	return events
}

// Connect registers a new connection, creating its session
func (g *Gateway) Connect(conn Conn) model.PlayerSession {
	sess := g.sessions.CreateOrUpdate(conn.ID(), "")
	g.conns.Bind(sess.ID, conn)
	g.emit(conn, model.EventSessionUpdate, sessionPayload(sess))

	g.logger.Debug().Str("socket_id", conn.ID()).Str("player_id", string(sess.ID)).Msg("connected")
	return sess
}

// Disconnect marks the connection's session and room player as disconnected.
// Neither is removed, so the player can reconnect.
func (g *Gateway) Disconnect(conn Conn) {
	g.limiter.Reset(context.Background(), conn.ID())

	sess, ok := g.sessions.MarkDisconnected(conn.ID())
	if !ok {
		return
	}
	if g.conns.Unbind(sess.ID, conn.ID()) {
		g.rooms.Disconnect(sess.ID)
	}

	g.logger.Debug().Str("socket_id", conn.ID()).Str("player_id", string(sess.ID)).Msg("disconnected")
}

// Handle dispatches one client event. Failures are reported to conn only.
func (g *Gateway) Handle(ctx context.Context, conn Conn, event string, raw []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error().
				Interface("panic", rec).
				Str("stack", string(debug.Stack())).
				Str("socket_id", conn.ID()).
				Str("event", event).
				Msg("panic recovered in event handler")
			g.emitError(conn, apierr.NewInternalError())
		}
	}()

	if !g.allow(ctx, conn) {
		return
	}

	handler, ok := g.handlers[model.EventType(event)]
	if !ok {
		g.emitError(conn, fmt.Errorf("%w: unknown event %q", model.ErrInvalidRequest, event))
		return
	}

	sess, ok := g.sessions.Get(conn.ID())
	if !ok {
		sess = g.Connect(conn)
	}
	g.sessions.Touch(conn.ID())

	if err := handler(ctx, conn, sess, raw); err != nil {
		g.logger.Debug().
			Err(err).
			Str("event", event).
			Str("player_id", string(sess.ID)).
			Msg("event rejected")
		g.emitError(conn, err)
	}
}

// Reject reports a frame the transport could not decode. It counts against the
// connection's rate limit like any other event.
func (g *Gateway) Reject(ctx context.Context, conn Conn, err error) {
	if !g.allow(ctx, conn) {
		return
	}
	g.logger.Debug().Err(err).Str("socket_id", conn.ID()).Msg("malformed frame")
	g.emitError(conn, err)
}

// allow records one event for conn and tells it to slow down when over the limit
func (g *Gateway) allow(ctx context.Context, conn Conn) bool {
	decision := g.limiter.Allow(ctx, conn.ID())
	if !decision.Allowed {
		g.emit(conn, model.EventRateLimit, model.RateLimitPayload{
			Message:      "too many events, slow down",
			RetryAfterMs: decision.RetryAfter.Milliseconds(),
		})
	}
	return decision.Allowed
}

// decode strictly unmarshals raw into dst and validates it
func (g *Gateway) decode(raw []byte, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed payload: %v", model.ErrInvalidRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after payload", model.ErrInvalidRequest)
	}

	if err := g.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", model.ErrInvalidRequest, describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func (g *Gateway) emit(conn Conn, event model.EventType, payload any) {
	if err := conn.Emit(event, payload); err != nil {
		g.logger.Warn().Err(err).Str("socket_id", conn.ID()).Str("event", string(event)).Msg("dropped event")
	}
}

func (g *Gateway) emitError(conn Conn, err error) {
	apiErr := apierr.FromError(err)
	g.emit(conn, model.EventError, model.ErrorPayload{Code: apiErr.Code, Message: apiErr.Message})
}

func sessionPayload(sess model.PlayerSession) model.SessionPayload {
	return model.SessionPayload{
		SessionID:   sess.ID,
		Username:    sess.Username,
		IsConnected: sess.IsConnected,
		Score:       sess.Score,
	}
}
