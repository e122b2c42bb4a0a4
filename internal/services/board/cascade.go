package board

import (
	"fmt"

	"github.com/mcoot/wordcascade/internal/model"
)

// ComputeCascade removes the given positions and lets each column settle under gravity.
// Survivors keep their relative order and stack against the bottom; vacated cells at the
// top are refilled from source. The input board is not modified. The returned changes
// have no sequence number or timestamp; the caller stamps them.
func ComputeCascade(board *model.GameBoard, removed []model.Position, source TileSource) (*model.TileChanges, error) {
	removedSet := make(map[model.Position]bool, len(removed))
	changes := &model.TileChanges{
		RemovedPositions: make([]model.Position, 0, len(removed)),
		FallingTiles:     []model.FallingTile{},
		NewTiles:         []model.NewTile{},
	}
	for _, pos := range removed {
		if !board.InBounds(pos) || board.Get(pos) == nil {
			return nil, fmt.Errorf("%w: (%d,%d)", model.ErrInvalidPosition, pos.X, pos.Y)
		}
		if removedSet[pos] {
			continue
		}
		removedSet[pos] = true
		changes.RemovedPositions = append(changes.RemovedPositions, pos)
	}

	for x := 0; x < board.Width; x++ {
		var survivors []*model.LetterTile
		for y := 0; y < board.Height; y++ {
			pos := model.Position{X: x, Y: y}
			if removedSet[pos] {
				continue
			}
			if t := board.Get(pos); t != nil {
				survivors = append(survivors, t)
			}
		}

		gap := board.Height - len(survivors)
		for i, t := range survivors {
			newY := gap + i
			if newY == t.Y {
				continue
			}
			changes.FallingTiles = append(changes.FallingTiles, model.FallingTile{
				From:   model.Position{X: x, Y: t.Y},
				To:     model.Position{X: x, Y: newY},
				Letter: t.Letter,
				Points: t.Points,
				ID:     TileID(x, newY, TileNonce(t.ID)),
			})
		}

		for y := 0; y < gap; y++ {
			tile := source.Draw()
			changes.NewTiles = append(changes.NewTiles, model.NewTile{
				Position: model.Position{X: x, Y: y},
				Letter:   tile.Letter,
				Points:   tile.Points,
				ID:       NewTileID(x, y),
			})
		}
	}

	return changes, nil
}

// ApplyChanges returns a new board with the changes applied. It fails with
// ErrInconsistentChanges when the changes do not fit the board, which is what
// happens when the same delta is applied twice.
func ApplyChanges(board *model.GameBoard, changes *model.TileChanges) (*model.GameBoard, error) {
	out := board.Clone()

	for _, nt := range changes.NewTiles {
		if t := board.Get(nt.Position); t != nil && t.ID == nt.ID {
			return nil, fmt.Errorf("%w: tile %s already present", model.ErrInconsistentChanges, nt.ID)
		}
	}

	for _, pos := range changes.RemovedPositions {
		if out.Get(pos) == nil {
			return nil, fmt.Errorf("%w: nothing to remove at (%d,%d)", model.ErrInconsistentChanges, pos.X, pos.Y)
		}
		out.Clear(pos)
	}

	// Lift every falling tile before placing any, since destinations may overlap sources
	lifted := make([]*model.LetterTile, len(changes.FallingTiles))
	for i, ft := range changes.FallingTiles {
		t := out.Get(ft.From)
		if t == nil || t.Letter != ft.Letter || TileNonce(t.ID) != TileNonce(ft.ID) {
			return nil, fmt.Errorf("%w: expected %s at (%d,%d)", model.ErrInconsistentChanges, ft.Letter, ft.From.X, ft.From.Y)
		}
		out.Clear(ft.From)
		lifted[i] = t
	}
	for i, ft := range changes.FallingTiles {
		if !out.InBounds(ft.To) || out.Get(ft.To) != nil {
			return nil, fmt.Errorf("%w: cannot move to (%d,%d)", model.ErrInconsistentChanges, ft.To.X, ft.To.Y)
		}
		t := lifted[i]
		t.ID = ft.ID
		out.Set(ft.To, t)
	}

	for _, nt := range changes.NewTiles {
		if !out.InBounds(nt.Position) || out.Get(nt.Position) != nil {
			return nil, fmt.Errorf("%w: cannot spawn at (%d,%d)", model.ErrInconsistentChanges, nt.Position.X, nt.Position.Y)
		}
		out.Set(nt.Position, &model.LetterTile{
			Letter: nt.Letter,
			Points: nt.Points,
			ID:     nt.ID,
		})
	}

	return out, nil
}
