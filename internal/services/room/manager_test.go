package room

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordcascade/internal/model"
)

type ManagerSuite struct {
	suite.Suite
	h *harness
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.h = newHarness(DefaultConfig())
}

func (s *ManagerSuite) TearDownTest() {
	s.h.manager.Close()
}

func (s *ManagerSuite) TestCreateRoomGeneratesCode() {
	r, snap, err := s.h.manager.CreateRoom(alice, "Alice", nil)
	s.Require().NoError(err)

	code := string(r.Code())
	s.Len(code, RoomCodeLength)
	for _, ch := range code {
		s.True(strings.ContainsRune(RoomCodeAlphabet, ch), "unexpected character %q", ch)
	}
	s.Equal(r.Code(), snap.RoomCode)
	s.Equal(alice, snap.HostID)
	s.Equal(model.DefaultMatchSettings(), snap.Settings)
	s.Equal(1, s.h.manager.Count())
}

func (s *ManagerSuite) TestCreateRoomSkipsTakenCodes() {
	s.h.random.QueueString("ABCD", "ABCD", "WXYZ")

	first, _, err := s.h.manager.CreateRoom(alice, "Alice", nil)
	s.Require().NoError(err)
	second, _, err := s.h.manager.CreateRoom(bob, "Bob", nil)
	s.Require().NoError(err)

	s.Equal(model.RoomCode("ABCD"), first.Code())
	s.Equal(model.RoomCode("WXYZ"), second.Code())
}

func (s *ManagerSuite) TestCreateRoomRejectsInvalidSettings() {
	settings := model.DefaultMatchSettings()
	settings.RoundDuration = time.Second

	_, _, err := s.h.manager.CreateRoom(alice, "Alice", &settings)
	s.ErrorIs(err, model.ErrInvalidSettings)
	s.Zero(s.h.manager.Count())
}

func (s *ManagerSuite) TestJoinRoom() {
	s.h.random.QueueString("ABCD")
	_, _, err := s.h.manager.CreateRoom(alice, "Alice", nil)
	s.Require().NoError(err)

	r, snap, err := s.h.manager.JoinRoom(" abcd ", bob, "Bob")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("ABCD"), r.Code())
	s.Len(snap.Players, 2)

	found, err := s.h.manager.RoomFor(bob)
	s.Require().NoError(err)
	s.Same(r, found)
}

func (s *ManagerSuite) TestJoinRoomErrors() {
	_, _, err := s.h.manager.JoinRoom("NOPE", bob, "Bob")
	s.ErrorIs(err, model.ErrRoomNotFound)

	r, _, err := s.h.manager.CreateRoom(alice, "Alice", nil)
	s.Require().NoError(err)
	_, _, err = s.h.manager.JoinRoom(r.Code(), alice, "Alice")
	s.ErrorIs(err, model.ErrAlreadyInRoom)
	_, _, err = s.h.manager.CreateRoom(alice, "Alice", nil)
	s.ErrorIs(err, model.ErrAlreadyInRoom)
}

func (s *ManagerSuite) TestLeaveClearsIndex() {
	r, _, err := s.h.manager.CreateRoom(alice, "Alice", nil)
	s.Require().NoError(err)
	_, _, err = s.h.manager.JoinRoom(r.Code(), bob, "Bob")
	s.Require().NoError(err)

	s.Require().NoError(s.h.manager.Leave(bob))
	_, err = s.h.manager.RoomFor(bob)
	s.ErrorIs(err, model.ErrNotInRoom)
	s.ErrorIs(s.h.manager.Leave(bob), model.ErrNotInRoom)
	s.Equal(1, s.h.manager.Count())

	// bob may now join again
	_, _, err = s.h.manager.JoinRoom(r.Code(), bob, "Bob")
	s.NoError(err)
}

func (s *ManagerSuite) TestReconnectUnknownPlayer() {
	_, _, err := s.h.manager.Reconnect("ghost")
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *ManagerSuite) TestSweepInactiveRooms() {
	idle, _, err := s.h.manager.CreateRoom(alice, "Alice", nil)
	s.Require().NoError(err)

	s.h.clock.Advance(20 * time.Minute)
	busy, _, err := s.h.manager.CreateRoom(bob, "Bob", nil)
	s.Require().NoError(err)

	s.h.clock.Advance(11 * time.Minute)
	s.Equal(1, s.h.manager.SweepInactive())
	s.Equal(1, s.h.manager.Count())

	_, err = s.h.manager.Get(idle.Code())
	s.ErrorIs(err, model.ErrRoomNotFound)
	_, err = s.h.manager.RoomFor(alice)
	s.ErrorIs(err, model.ErrNotInRoom)

	_, err = s.h.manager.Get(busy.Code())
	s.NoError(err)
}

func (s *ManagerSuite) TestCloseDestroysEverything() {
	_, _, err := s.h.manager.CreateRoom(alice, "Alice", nil)
	s.Require().NoError(err)
	_, _, err = s.h.manager.CreateRoom(bob, "Bob", nil)
	s.Require().NoError(err)

	s.h.manager.Close()
	s.Zero(s.h.manager.Count())
	_, err = s.h.manager.RoomFor(alice)
	s.ErrorIs(err, model.ErrNotInRoom)
}
