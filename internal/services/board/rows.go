package board

import (
	"fmt"
	"strings"

	"github.com/mcoot/wordcascade/internal/model"
)

// FromRows builds a board from one string of letters per row, scoring tiles with
// LetterValue. A '.' leaves the cell empty.
func FromRows(rows []string) (*model.GameBoard, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", model.ErrInvalidRequest)
	}
	width := len(rows[0])
	board := model.NewGameBoard(width, len(rows))
	for y, row := range rows {
		row = strings.ToUpper(row)
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", model.ErrInvalidRequest, y, len(row), width)
		}
		for x, ch := range row {
			if ch == '.' {
				continue
			}
			letter := string(ch)
			if ch < 'A' || ch > 'Z' {
				return nil, fmt.Errorf("%w: row %d has non-letter %q", model.ErrInvalidRequest, y, letter)
			}
			board.Set(model.Position{X: x, Y: y}, &model.LetterTile{
				Letter: letter,
				Points: LetterValue(letter),
				ID:     NewTileID(x, y),
			})
		}
	}
	return board, nil
}
