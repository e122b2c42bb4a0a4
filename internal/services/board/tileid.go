package board

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewTileID returns an id for a freshly spawned tile at (x, y)
func NewTileID(x, y int) string {
	return TileID(x, y, uuid.NewString())
}

// TileID formats a tile id from its coordinates and nonce
func TileID(x, y int, nonce string) string {
	return fmt.Sprintf("%d-%d-%s", x, y, nonce)
}

// TileNonce extracts the nonce part of a tile id; a tile keeps its nonce when it falls
func TileNonce(id string) string {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) < 3 {
		return id
	}
	return parts[2]
}
