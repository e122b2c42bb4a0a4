package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/wordcascade/internal/api/apierr"
	"github.com/mcoot/wordcascade/internal/api/handler"
	"github.com/mcoot/wordcascade/internal/model"
)

// echoDispatcher replies to every event with the same event name and payload
type echoDispatcher struct {
	mu           sync.Mutex
	connected    []string
	disconnected []string
	rejected     []error
}

func (d *echoDispatcher) Connect(conn handler.Conn) model.PlayerSession {
	d.mu.Lock()
	d.connected = append(d.connected, conn.ID())
	d.mu.Unlock()
	_ = conn.Emit(model.EventSessionUpdate, map[string]string{"socketId": conn.ID()})
	return model.PlayerSession{ID: model.PlayerID(conn.ID())}
}

func (d *echoDispatcher) Disconnect(conn handler.Conn) {
	d.mu.Lock()
	d.disconnected = append(d.disconnected, conn.ID())
	d.mu.Unlock()
}

func (d *echoDispatcher) Handle(_ context.Context, conn handler.Conn, event string, raw []byte) {
	_ = conn.Emit(model.EventType(event), json.RawMessage(raw))
}

func (d *echoDispatcher) Reject(_ context.Context, conn handler.Conn, err error) {
	d.mu.Lock()
	d.rejected = append(d.rejected, err)
	d.mu.Unlock()
	apiErr := apierr.FromError(err)
	_ = conn.Emit(model.EventError, model.ErrorPayload{Code: apiErr.Code, Message: apiErr.Message})
}

func (d *echoDispatcher) rejectedErrors() []error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]error(nil), d.rejected...)
}

func (d *echoDispatcher) disconnectCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.disconnected)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestServerEmitsOnConnect(t *testing.T) {
	d := &echoDispatcher{}
	srv := httptest.NewServer(NewServer(d, zerolog.Nop()))
	defer srv.Close()

	conn := dial(t, srv)
	env := readEnvelope(t, conn)
	assert.Equal(t, string(model.EventSessionUpdate), env.Event)
	assert.Contains(t, string(env.Data), "socketId")
}

func TestServerDispatchesEvents(t *testing.T) {
	d := &echoDispatcher{}
	srv := httptest.NewServer(NewServer(d, zerolog.Nop()))
	defer srv.Close()

	conn := dial(t, srv)
	readEnvelope(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"event": "room:join",
		"data":  map[string]string{"username": "alice"},
	}))

	env := readEnvelope(t, conn)
	assert.Equal(t, "room:join", env.Event)
	assert.JSONEq(t, `{"username":"alice"}`, string(env.Data))
}

func TestServerRejectsMalformedMessages(t *testing.T) {
	d := &echoDispatcher{}
	srv := httptest.NewServer(NewServer(d, zerolog.Nop()))
	defer srv.Close()

	conn := dial(t, srv)
	readEnvelope(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	env := readEnvelope(t, conn)
	assert.Equal(t, string(model.EventError), env.Event)
	assert.Contains(t, string(env.Data), "INVALID_REQUEST")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"data":{}}`)))
	env = readEnvelope(t, conn)
	assert.Equal(t, string(model.EventError), env.Event)
	assert.Contains(t, string(env.Data), "missing event name")

	// Both frames went through the dispatcher so they count against its limits
	rejected := d.rejectedErrors()
	require.Len(t, rejected, 2)
	for _, err := range rejected {
		assert.ErrorIs(t, err, model.ErrInvalidRequest)
	}
}

func TestServerDisconnectsOnClose(t *testing.T) {
	d := &echoDispatcher{}
	s := NewServer(d, zerolog.Nop())
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv)
	readEnvelope(t, conn)
	assert.Equal(t, 1, s.Count())

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return d.disconnectCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return s.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestClientEmitAfterClose(t *testing.T) {
	c := &Client{id: "x", send: make(chan []byte, 1), logger: zerolog.Nop()}
	require.NoError(t, c.Emit(model.EventError, nil))
	assert.ErrorIs(t, c.Emit(model.EventError, nil), ErrSendBufferFull)

	c.close()
	c.close()
	assert.ErrorIs(t, c.Emit(model.EventError, nil), ErrClientClosed)
}
