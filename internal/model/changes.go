package model

import "time"

// FallingTile describes a surviving tile moved down by a cascade
type FallingTile struct {
	From   Position `json:"from"`
	To     Position `json:"to"`
	Letter string   `json:"letter"`
	Points int      `json:"points"`
	ID     string   `json:"id"` // id of the tile at its new position
}

// NewTile describes a tile spawned to refill a vacated cell
type NewTile struct {
	Position Position `json:"position"`
	Letter   string   `json:"letter"`
	Points   int      `json:"points"`
	ID       string   `json:"id"`
}

// TileChanges is the incremental delta produced by resolving one word.
// SequenceNumber is assigned by the owning room and increases monotonically.
type TileChanges struct {
	RemovedPositions []Position    `json:"removedPositions"`
	FallingTiles     []FallingTile `json:"fallingTiles"`
	NewTiles         []NewTile     `json:"newTiles"`
	SequenceNumber   uint64        `json:"sequenceNumber"`
	Timestamp        time.Time     `json:"timestamp"`
}
