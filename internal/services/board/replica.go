package board

import (
	"fmt"

	"github.com/mcoot/wordcascade/internal/model"
)

// Replica rebuilds a room's board from snapshots and deltas the way a client does.
// Deltas at or below the last applied sequence number are ignored; a delta that
// skips a number is refused so the caller can request a full snapshot.
type Replica struct {
	board    *model.GameBoard
	sequence uint64
	synced   bool
}

// NewReplica creates an empty replica; it accepts deltas only after a snapshot
func NewReplica() *Replica {
	return &Replica{}
}

// ApplySnapshot replaces the board after verifying its checksum
func (r *Replica) ApplySnapshot(board *model.GameBoard, sequence uint64, checksum string) error {
	if got := Checksum(board); got != checksum {
		return fmt.Errorf("%w: snapshot %s, computed %s", model.ErrChecksumMismatch, checksum, got)
	}
	r.board = board.Clone()
	r.sequence = sequence
	r.synced = true
	return nil
}

// Apply applies one delta. applied is false when the delta was a duplicate.
// A non-empty checksum is compared with the resulting board; on mismatch the
// replica is left unchanged.
func (r *Replica) Apply(changes *model.TileChanges, checksum string) (applied bool, err error) {
	if !r.synced {
		return false, fmt.Errorf("%w: no snapshot", model.ErrSequenceGap)
	}
	if changes.SequenceNumber <= r.sequence {
		return false, nil
	}
	if changes.SequenceNumber > r.sequence+1 {
		return false, fmt.Errorf("%w: have %d, got %d", model.ErrSequenceGap, r.sequence, changes.SequenceNumber)
	}

	next, err := ApplyChanges(r.board, changes)
	if err != nil {
		return false, err
	}
	if checksum != "" {
		if got := Checksum(next); got != checksum {
			return false, fmt.Errorf("%w: delta %d, computed %s", model.ErrChecksumMismatch, changes.SequenceNumber, got)
		}
	}
	r.board = next
	r.sequence = changes.SequenceNumber
	return true, nil
}

// Board returns the current board; nil before the first snapshot
func (r *Replica) Board() *model.GameBoard {
	return r.board
}

// Sequence returns the last applied sequence number
func (r *Replica) Sequence() uint64 {
	return r.sequence
}

// Synced reports whether a snapshot has been applied
func (r *Replica) Synced() bool {
	return r.synced
}
