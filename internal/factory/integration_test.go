package factory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordcascade/internal/model"
)

// testConn records everything the gateway emits to it
type testConn struct {
	id string

	mu     sync.Mutex
	events []emitted
}

type emitted struct {
	event   model.EventType
	payload any
}

func (c *testConn) ID() string { return c.id }

func (c *testConn) Emit(event model.EventType, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, emitted{event: event, payload: payload})
	return nil
}

func (c *testConn) received(event model.EventType) []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []any
	for _, e := range c.events {
		if e.event == event {
			out = append(out, e.payload)
		}
	}
	return out
}

func (c *testConn) count(event model.EventType) int {
	return len(c.received(event))
}

func (c *testConn) last(event model.EventType) any {
	all := c.received(event)
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(s.app.LoadTestDictionary())
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

func (s *IntegrationSuite) connect(id string) *testConn {
	c := &testConn{id: id}
	s.app.Gateway.Connect(c)
	return c
}

func (s *IntegrationSuite) send(c *testConn, event model.EventType, payload any) {
	raw, err := json.Marshal(payload)
	s.Require().NoError(err)
	s.app.Gateway.Handle(s.ctx, c, string(event), raw)
}

func (s *IntegrationSuite) sessionID(c *testConn) model.PlayerID {
	p, ok := c.last(model.EventSessionUpdate).(model.SessionPayload)
	s.Require().True(ok, "no session:update for %s", c.id)
	return p.SessionID
}

// startMatch creates room WXYZ with host and guest, readies both and waits for round one
func (s *IntegrationSuite) startMatch(totalRounds int) (host, guest *testConn, started model.MatchStartedPayload) {
	s.app.MockRandom.QueueString("WXYZ")

	host = s.connect("sock-host")
	guest = s.connect("sock-guest")

	s.send(host, model.EventRoomJoin, map[string]any{
		"username": "Host",
		"settings": map[string]any{"totalRounds": totalRounds},
	})
	s.Require().Equal(1, host.count(model.EventRoomCreated))

	s.send(guest, model.EventRoomJoin, map[string]any{"roomCode": "wxyz", "username": "Guest"})
	s.Require().Equal(1, guest.count(model.EventRoomJoined))
	s.Require().Equal(1, host.count(model.EventPlayerJoined))

	s.send(host, model.EventPlayerReady, map[string]any{"ready": true})
	s.send(guest, model.EventPlayerReady, map[string]any{"ready": true})
	s.send(host, model.EventMatchStart, nil)
	s.Require().Equal(0, host.count(model.EventError), "%v", host.received(model.EventError))
	s.Require().Equal(1, guest.count(model.EventMatchStarting))

	s.app.MockClock.Advance(s.app.Config.Room.Countdown)
	s.Require().Eventually(func() bool {
		return host.count(model.EventMatchStarted) == 1 && guest.count(model.EventMatchStarted) == 1
	}, 5*time.Second, 10*time.Millisecond)

	started = host.last(model.EventMatchStarted).(model.MatchStartedPayload)
	return host, guest, started
}

// findPath locates word on board along adjacent, non-repeating tiles
func findPath(board *model.GameBoard, word string) []model.Position {
	word = strings.ToUpper(word)
	used := make(map[model.Position]bool)
	var walk func(pos model.Position, rest string, path []model.Position) []model.Position
	walk = func(pos model.Position, rest string, path []model.Position) []model.Position {
		tile := board.Get(pos)
		if tile == nil || used[pos] || !strings.HasPrefix(rest, strings.ToUpper(tile.Letter)) {
			return nil
		}
		path = append(path, pos)
		rest = rest[len(tile.Letter):]
		if rest == "" {
			return path
		}
		used[pos] = true
		defer delete(used, pos)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				next := model.Position{X: pos.X + dx, Y: pos.Y + dy}
				if (dx == 0 && dy == 0) || !board.InBounds(next) {
					continue
				}
				if found := walk(next, rest, path); found != nil {
					return found
				}
			}
		}
		return nil
	}

	for y := 0; y < board.Height; y++ {
		for x := 0; x < board.Width; x++ {
			if found := walk(model.Position{X: x, Y: y}, word, nil); found != nil {
				return found
			}
		}
	}
	return nil
}

// Test: complete match from room creation back to the lobby
func (s *IntegrationSuite) TestCompleteMatchFlow() {
	host, guest, started := s.startMatch(1)

	s.Equal(1, started.RoundNumber)
	s.Equal(1, started.TotalRounds)
	s.Equal(5, started.Board.Width)
	s.Equal(5, started.Board.Height)
	s.Equal(25, started.Board.FilledCount())
	s.NotEmpty(started.Checksum)
	s.Equal(guest.last(model.EventMatchStarted).(model.MatchStartedPayload).Checksum, started.Checksum)

	// Submit a word the solver can see on the board
	words := s.app.Solver.FindWords(started.Board, 1)
	s.Require().NotEmpty(words)
	path := findPath(started.Board, words[0])
	s.Require().NotNil(path, "no path for %s", words[0])

	s.send(host, model.EventWordSubmit, map[string]any{"word": words[0], "path": path})
	s.Require().Equal(1, host.count(model.EventWordValid), "%v", host.received(model.EventWordInvalid))
	valid := host.last(model.EventWordValid).(model.WordValidPayload)
	s.Positive(valid.Points)

	s.Require().Equal(1, guest.count(model.EventTileChanges))
	changes := guest.last(model.EventTileChanges).(model.TileChangesPayload)
	s.Equal(started.SequenceNumber+1, changes.SequenceNumber)
	s.Len(changes.RemovedPositions, len(path))

	// Host ends the only round
	s.send(host, model.EventMatchEndRound, nil)
	s.Require().Equal(1, guest.count(model.EventRoundEnd))
	roundEnd := guest.last(model.EventRoundEnd).(model.RoundEndPayload)
	s.True(roundEnd.IsMatchComplete)

	s.app.MockClock.Advance(s.app.Config.Room.RoundEndDelay)
	s.Require().Equal(1, guest.count(model.EventMatchFinished))
	finished := guest.last(model.EventMatchFinished).(model.MatchFinishedPayload)
	s.Equal(s.sessionID(host), finished.WinnerID)

	s.app.MockClock.Advance(s.app.Config.Room.FinishDelay)
	s.Equal(1, guest.count(model.EventReturnToLobby))

	// Result is persisted asynchronously
	s.Eventually(func() bool {
		results, err := s.app.Storage.GetMatchResults(s.ctx, "WXYZ", 10)
		return err == nil && len(results) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

// Test: a player reconnects on a new connection and gets the board back
func (s *IntegrationSuite) TestReconnectDuringRound() {
	host, guest, started := s.startMatch(2)
	guestID := s.sessionID(guest)

	s.app.Gateway.Disconnect(guest)
	s.Equal(0, host.count(model.EventHostChanged))

	again := s.connect("sock-guest-2")
	s.send(again, model.EventSessionReconnect, map[string]any{"sessionId": string(guestID)})

	s.Require().Equal(1, again.count(model.EventReconnectSuccess), "%v", again.received(model.EventReconnectFailed))
	success := again.last(model.EventReconnectSuccess).(model.ReconnectSuccessPayload)
	s.Equal(guestID, success.Session.SessionID)
	s.Require().NotNil(success.Room)
	s.Equal(model.RoomCode("WXYZ"), success.Room.RoomCode)

	s.Require().GreaterOrEqual(again.count(model.EventBoardSync), 1)
	syncPayload := again.last(model.EventBoardSync).(model.BoardSyncPayload)
	s.Equal(model.SyncReasonReconnect, syncPayload.Reason)
	s.Equal(started.Checksum, syncPayload.Checksum)

	// Events for the player now go to the new connection only
	s.send(host, model.EventMatchEndRound, nil)
	s.Equal(1, again.count(model.EventRoundEnd))
	s.Equal(0, guest.count(model.EventRoundEnd))
}

// Test: an unknown session id falls back to the fresh session
func (s *IntegrationSuite) TestReconnectWithUnknownSession() {
	c := s.connect("sock-1")
	s.send(c, model.EventSessionReconnect, map[string]any{"sessionId": "8b8f0a52-6bd1-4a4b-8d0c-2f1b6f7c9a10"})

	s.Require().Equal(1, c.count(model.EventReconnectFailed))
	failed := c.last(model.EventReconnectFailed).(model.ReconnectFailedPayload)
	s.Equal(s.sessionID(c), failed.Session.SessionID)
}

// Test: a disconnected player whose session expires gives up their seat
func (s *IntegrationSuite) TestExpiredSessionLeavesRoom() {
	s.app.MockRandom.QueueString("WXYZ")
	host := s.connect("sock-host")
	guest := s.connect("sock-guest")
	s.send(host, model.EventRoomJoin, map[string]any{"username": "Host"})
	s.send(guest, model.EventRoomJoin, map[string]any{"roomCode": "WXYZ", "username": "Guest"})
	guestID := s.sessionID(guest)

	s.app.Gateway.Disconnect(guest)
	s.app.MockClock.Advance(10 * time.Minute)
	s.Equal(1, s.app.SessionService.Sweep())

	_, err := s.app.RoomManager.RoomFor(guestID)
	s.ErrorIs(err, model.ErrNotInRoom)

	rm, err := s.app.RoomManager.Get("WXYZ")
	s.Require().NoError(err)
	snap := rm.Snapshot()
	s.Len(snap.Players, 1)
	_, found := snap.Player(guestID)
	s.False(found)

	left, ok := host.last(model.EventPlayerLeft).(model.PlayerLeftPayload)
	s.Require().True(ok)
	s.Equal(guestID, left.PlayerID)
}

// Test: a connection over the event limit is told to slow down
func (s *IntegrationSuite) TestRateLimit() {
	cfg := TestConfig()
	cfg.RateLimit.Events = 3
	s.Require().NoError(s.app.Close())
	s.app = NewTestAppWithConfig(cfg)
	s.Require().NoError(s.app.LoadTestDictionary())

	c := s.connect("sock-1")
	for i := 0; i < 4; i++ {
		s.send(c, model.EventBoardRequest, nil)
	}

	s.Equal(3, c.count(model.EventError))
	s.Equal(1, c.count(model.EventRateLimit))

	// The window slides
	s.app.MockClock.Advance(cfg.RateLimit.Window + time.Second)
	s.send(c, model.EventBoardRequest, nil)
	s.Equal(4, c.count(model.EventError))
	s.Equal(1, c.count(model.EventRateLimit))
}

// Test: malformed payloads are rejected without touching the room
// Test: undecodable frames use up the same event budget as real events
func (s *IntegrationSuite) TestMalformedFramesAreRateLimited() {
	cfg := TestConfig()
	cfg.RateLimit.Events = 3
	s.Require().NoError(s.app.Close())
	s.app = NewTestAppWithConfig(cfg)
	s.Require().NoError(s.app.LoadTestDictionary())

	c := s.connect("sock-1")
	for i := 0; i < 3; i++ {
		s.app.Gateway.Reject(s.ctx, c, fmt.Errorf("%w: malformed message", model.ErrInvalidRequest))
	}
	s.Equal(3, c.count(model.EventError))
	s.Equal(0, c.count(model.EventRateLimit))

	s.app.Gateway.Reject(s.ctx, c, fmt.Errorf("%w: malformed message", model.ErrInvalidRequest))
	s.send(c, model.EventBoardRequest, nil)
	s.Equal(3, c.count(model.EventError))
	s.Equal(2, c.count(model.EventRateLimit))

	errPayload := c.last(model.EventError).(model.ErrorPayload)
	s.Equal("INVALID_REQUEST", errPayload.Code)
}

func (s *IntegrationSuite) TestInvalidPayloads() {
	c := s.connect("sock-1")

	s.app.Gateway.Handle(s.ctx, c, string(model.EventRoomJoin), []byte(`{"username":"A","extra":1}`))
	s.app.Gateway.Handle(s.ctx, c, string(model.EventRoomJoin), []byte(`{"username":""}`))
	s.app.Gateway.Handle(s.ctx, c, "no:such-event", nil)

	errs := c.received(model.EventError)
	s.Require().Len(errs, 3)
	for _, e := range errs {
		s.Equal("INVALID_REQUEST", e.(model.ErrorPayload).Code)
	}
	s.Equal(0, s.app.RoomManager.Count())
}
