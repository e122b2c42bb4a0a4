package testutil

import (
	"fmt"

	"github.com/mcoot/wordcascade/internal/model"
)

// BoardFromRows builds a board from one string per row. A '.' leaves the cell empty.
// Every tile scores 1 point and gets the id "x-y-t".
func BoardFromRows(rows ...string) *model.GameBoard {
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	board := model.NewGameBoard(width, len(rows))
	for y, row := range rows {
		for x, ch := range row {
			if ch == '.' {
				continue
			}
			board.Set(model.Position{X: x, Y: y}, &model.LetterTile{
				Letter: string(ch),
				Points: 1,
				ID:     fmt.Sprintf("%d-%d-t", x, y),
			})
		}
	}
	return board
}

// Path converts alternating x, y coordinates into positions
func Path(coords ...int) []model.Position {
	path := make([]model.Position, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		path = append(path, model.Position{X: coords[i], Y: coords[i+1]})
	}
	return path
}
