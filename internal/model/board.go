package model

import "strings"

// Position identifies a cell on the board. X is the column, Y the row, both 0-indexed
// from the top-left corner.
type Position struct {
	X int `json:"x" validate:"gte=0,lte=31"`
	Y int `json:"y" validate:"gte=0,lte=31"`
}

// IsAdjacent reports whether p and o touch horizontally, vertically or diagonally
func (p Position) IsAdjacent(o Position) bool {
	dx := abs(p.X - o.X)
	dy := abs(p.Y - o.Y)
	return dx <= 1 && dy <= 1 && (dx != 0 || dy != 0)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// LetterTile is a single lettered tile placed on a board
type LetterTile struct {
	Letter string `json:"letter"` // single uppercase character
	Points int    `json:"points"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	ID     string `json:"id"`
}

// Position returns the tile's coordinates
func (t *LetterTile) Position() Position {
	return Position{X: t.X, Y: t.Y}
}

// GameBoard is a rectangular grid of tiles. Tiles[row][col]; nil means empty.
// Every non-nil tile has X == col and Y == row.
type GameBoard struct {
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Tiles  [][]*LetterTile `json:"tiles"`
}

// NewGameBoard creates an empty board of the given dimensions
func NewGameBoard(width, height int) *GameBoard {
	tiles := make([][]*LetterTile, height)
	for i := range tiles {
		tiles[i] = make([]*LetterTile, width)
	}
	return &GameBoard{
		Width:  width,
		Height: height,
		Tiles:  tiles,
	}
}

// InBounds returns true if the position is within the board
func (b *GameBoard) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < b.Width && pos.Y >= 0 && pos.Y < b.Height
}

// Get returns the tile at the given position, or nil if empty or out of bounds
func (b *GameBoard) Get(pos Position) *LetterTile {
	if !b.InBounds(pos) {
		return nil
	}
	return b.Tiles[pos.Y][pos.X]
}

// Set places a tile at the given position, rewriting its coordinates to match
func (b *GameBoard) Set(pos Position, tile *LetterTile) {
	if !b.InBounds(pos) {
		return
	}
	if tile != nil {
		tile.X = pos.X
		tile.Y = pos.Y
	}
	b.Tiles[pos.Y][pos.X] = tile
}

// Clear empties the cell at the given position
func (b *GameBoard) Clear(pos Position) {
	if b.InBounds(pos) {
		b.Tiles[pos.Y][pos.X] = nil
	}
}

// Clone returns a deep copy of the board
func (b *GameBoard) Clone() *GameBoard {
	out := NewGameBoard(b.Width, b.Height)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if t := b.Tiles[y][x]; t != nil {
				cp := *t
				out.Tiles[y][x] = &cp
			}
		}
	}
	return out
}

// FilledCount returns the number of non-empty cells
func (b *GameBoard) FilledCount() int {
	count := 0
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Tiles[y][x] != nil {
				count++
			}
		}
	}
	return count
}

// Letters returns the board's letters in row-major order, '.' for empty cells
func (b *GameBoard) Letters() string {
	var sb strings.Builder
	sb.Grow(b.Width * b.Height)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if t := b.Tiles[y][x]; t != nil {
				sb.WriteString(t.Letter)
			} else {
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}

// Rows renders the board as one string per row
func (b *GameBoard) Rows() []string {
	letters := b.Letters()
	rows := make([]string, b.Height)
	for y := 0; y < b.Height; y++ {
		rows[y] = letters[y*b.Width : (y+1)*b.Width]
	}
	return rows
}

// WordAt concatenates the letters along a path. ok is false if any cell is empty.
func (b *GameBoard) WordAt(path []Position) (word string, ok bool) {
	var sb strings.Builder
	for _, pos := range path {
		t := b.Get(pos)
		if t == nil {
			return "", false
		}
		sb.WriteString(t.Letter)
	}
	return sb.String(), true
}
