package board

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/testutil"
)

type ReplicaSuite struct {
	suite.Suite
	source  *fixedSource
	server  *model.GameBoard
	replica *Replica
}

func TestReplicaSuite(t *testing.T) {
	suite.Run(t, new(ReplicaSuite))
}

func (s *ReplicaSuite) SetupTest() {
	s.source = &fixedSource{tile: Tile{Letter: "Z", Points: 10}}
	s.server = testutil.BoardFromRows("ABC", "DEF", "GHI")
	s.replica = NewReplica()
	s.Require().NoError(s.replica.ApplySnapshot(s.server, 4, Checksum(s.server)))
}

// advance computes the next delta on the server board and returns it with the new checksum
func (s *ReplicaSuite) advance(seq uint64, removed ...int) (*model.TileChanges, string) {
	changes, err := ComputeCascade(s.server, testutil.Path(removed...), s.source)
	s.Require().NoError(err)
	changes.SequenceNumber = seq
	s.server, err = ApplyChanges(s.server, changes)
	s.Require().NoError(err)
	return changes, Checksum(s.server)
}

func (s *ReplicaSuite) TestSnapshotChecksumVerified() {
	err := NewReplica().ApplySnapshot(s.server, 1, "bogus")
	s.ErrorIs(err, model.ErrChecksumMismatch)
}

func (s *ReplicaSuite) TestSnapshotIsCopied() {
	s.server.Get(model.Position{X: 0, Y: 0}).Letter = "Q"
	s.Equal("A", s.replica.Board().Get(model.Position{X: 0, Y: 0}).Letter)
}

func (s *ReplicaSuite) TestAppliesDeltasInOrder() {
	c1, sum1 := s.advance(5, 1, 1)
	c2, sum2 := s.advance(6, 0, 2)

	applied, err := s.replica.Apply(c1, sum1)
	s.Require().NoError(err)
	s.True(applied)
	applied, err = s.replica.Apply(c2, sum2)
	s.Require().NoError(err)
	s.True(applied)

	s.Equal(uint64(6), s.replica.Sequence())
	s.Equal(Checksum(s.server), Checksum(s.replica.Board()))
}

func (s *ReplicaSuite) TestDuplicateDeltaIsIgnored() {
	c1, sum1 := s.advance(5, 1, 1)
	_, err := s.replica.Apply(c1, sum1)
	s.Require().NoError(err)
	before := Checksum(s.replica.Board())

	applied, err := s.replica.Apply(c1, sum1)
	s.Require().NoError(err)
	s.False(applied)
	s.Equal(before, Checksum(s.replica.Board()))
}

func (s *ReplicaSuite) TestStaleDeltaIsIgnored() {
	c, _ := s.advance(3, 1, 1)
	applied, err := s.replica.Apply(c, "")
	s.Require().NoError(err)
	s.False(applied)
	s.Equal(uint64(4), s.replica.Sequence())
}

func (s *ReplicaSuite) TestGapIsRefused() {
	s.advance(5, 1, 1)
	c2, sum2 := s.advance(6, 0, 0)

	_, err := s.replica.Apply(c2, sum2)
	s.ErrorIs(err, model.ErrSequenceGap)
	s.Equal(uint64(4), s.replica.Sequence())
}

func (s *ReplicaSuite) TestGapRecoveredBySnapshot() {
	s.advance(5, 1, 1)
	s.advance(6, 0, 0)

	s.Require().NoError(s.replica.ApplySnapshot(s.server, 6, Checksum(s.server)))

	c3, sum3 := s.advance(7, 2, 2)
	applied, err := s.replica.Apply(c3, sum3)
	s.Require().NoError(err)
	s.True(applied)
}

func (s *ReplicaSuite) TestDeltaBeforeSnapshotIsRefused() {
	c, _ := s.advance(1, 1, 1)
	_, err := NewReplica().Apply(c, "")
	s.ErrorIs(err, model.ErrSequenceGap)
}

func (s *ReplicaSuite) TestChecksumMismatchLeavesBoardUnchanged() {
	c, _ := s.advance(5, 1, 1)
	before := Checksum(s.replica.Board())

	_, err := s.replica.Apply(c, "bogus")
	s.ErrorIs(err, model.ErrChecksumMismatch)
	s.Equal(before, Checksum(s.replica.Board()))
	s.Equal(uint64(4), s.replica.Sequence())
}
