package socketio

import (
	"sync"
	"testing"
	"time"

	socketio "github.com/googollee/go-socket.io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/wordcascade/internal/model"
)

type emitted struct {
	event string
	args  []any
}

// fakeConn implements the parts of socketio.Conn the adapter touches. When
// block is set, Emit waits on it the way a slow polling client would.
type fakeConn struct {
	socketio.Conn
	id    string
	ctx   any
	block chan struct{}

	mu      sync.Mutex
	emitted []emitted
	entered chan struct{}
}

func (f *fakeConn) ID() string { return f.id }
func (f *fakeConn) Context() any { return f.ctx }
func (f *fakeConn) SetContext(ctx any) { f.ctx = ctx }
func (f *fakeConn) Emit(event string, v ...any) {
	if f.entered != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitted = append(f.emitted, emitted{event: event, args: v})
}

func (f *fakeConn) sent() []emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]emitted(nil), f.emitted...)
}

func TestAdaptReusesConn(t *testing.T) {
	s := &fakeConn{id: "sid-1"}

	first := adapt(s)
	defer first.close()
	second := adapt(s)

	assert.Same(t, first, second)
	assert.Equal(t, "sid-1", first.ID())
}

func TestConnEmitForwardsEvent(t *testing.T) {
	s := &fakeConn{id: "sid-1"}
	c := adapt(s)
	defer c.close()

	require.NoError(t, c.Emit(model.EventError, model.ErrorPayload{Code: "X", Message: "y"}))

	require.Eventually(t, func() bool { return len(s.sent()) == 1 }, time.Second, 5*time.Millisecond)
	got := s.sent()[0]
	assert.Equal(t, string(model.EventError), got.event)
	assert.Equal(t, []any{model.ErrorPayload{Code: "X", Message: "y"}}, got.args)
}

func TestConnEmitDoesNotBlockOnStalledClient(t *testing.T) {
	s := &fakeConn{id: "sid-1", block: make(chan struct{}), entered: make(chan struct{}, 1)}
	c := adapt(s)

	// The pump takes the first event and stalls inside the library call
	require.NoError(t, c.Emit(model.EventMatchTimer, 1))
	select {
	case <-s.entered:
	case <-time.After(time.Second):
		t.Fatal("write pump never picked up the first event")
	}

	done := make(chan error, 1)
	go func() {
		for i := 0; i < sendBufferSize; i++ {
			if err := c.Emit(model.EventMatchTimer, i); err != nil {
				done <- err
				return
			}
		}
		done <- c.Emit(model.EventMatchTimer, "overflow")
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSendBufferFull)
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a stalled connection")
	}

	close(s.block)
	c.close()
	assert.ErrorIs(t, c.Emit(model.EventMatchTimer, 2), ErrConnClosed)
	require.Eventually(t, func() bool { return len(s.sent()) == sendBufferSize+1 }, time.Second, 5*time.Millisecond)
}

func TestEncodePayload(t *testing.T) {
	raw, err := encodePayload(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = encodePayload(map[string]any{"word": "CATS"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"word":"CATS"}`, string(raw))
}
