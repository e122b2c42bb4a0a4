package board

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/mcoot/wordcascade/internal/model"
)

// Checksum hashes the board's dimensions and each cell's position, letter and points.
// Tile ids are not included, so two boards with the same letters in the same places match.
func Checksum(board *model.GameBoard) string {
	if board == nil {
		return ""
	}
	h, _ := blake2b.New256(nil) // only errors for an oversized key
	fmt.Fprintf(h, "%dx%d;", board.Width, board.Height)
	for y := 0; y < board.Height; y++ {
		for x := 0; x < board.Width; x++ {
			t := board.Tiles[y][x]
			if t == nil {
				fmt.Fprintf(h, "%d,%d,.;", x, y)
				continue
			}
			fmt.Fprintf(h, "%d,%d,%s,%d;", x, y, t.Letter, t.Points)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
