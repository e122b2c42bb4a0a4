package board

import (
	"sync"

	"github.com/mcoot/wordcascade/internal/dependencies/random"
)

// letterDistribution is the English Scrabble tile distribution without blanks (98 tiles)
var letterDistribution = map[string]int{
	"A": 9, "B": 2, "C": 2, "D": 4, "E": 12, "F": 2, "G": 3, "H": 2, "I": 9,
	"J": 1, "K": 1, "L": 4, "M": 2, "N": 6, "O": 8, "P": 2, "Q": 1, "R": 6,
	"S": 4, "T": 6, "U": 4, "V": 2, "W": 2, "X": 1, "Y": 2, "Z": 1,
}

// letterValues are the English Scrabble point values
var letterValues = map[string]int{
	"A": 1, "B": 3, "C": 3, "D": 2, "E": 1, "F": 4, "G": 2, "H": 4, "I": 1,
	"J": 8, "K": 5, "L": 1, "M": 3, "N": 1, "O": 1, "P": 3, "Q": 10, "R": 1,
	"S": 1, "T": 1, "U": 1, "V": 4, "W": 4, "X": 8, "Y": 4, "Z": 10,
}

// alphabet fixes the iteration order used to build the bag
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// LetterValue returns the point value of an uppercase letter, or 0 if unknown
func LetterValue(letter string) int {
	return letterValues[letter]
}

// BagSize is the number of tiles in a full bag
func BagSize() int {
	total := 0
	for _, n := range letterDistribution {
		total += n
	}
	return total
}

// Tile is a letter drawn from a TileSource
type Tile struct {
	Letter string
	Points int
}

// TileSource supplies letters for new boards and cascade refills
type TileSource interface {
	Draw() Tile
}

// Bag is a shuffled bag of tiles drawn without replacement. When it runs out
// it is refilled with a full distribution and reshuffled, so letter frequencies
// stay correct across many boards. Safe for concurrent use.
type Bag struct {
	rnd random.Random

	mu     sync.Mutex
	tiles  []string
	refill int
}

// Ensure Bag implements TileSource
var _ TileSource = (*Bag)(nil)

// NewBag creates a full, shuffled bag
func NewBag(rnd random.Random) *Bag {
	b := &Bag{rnd: rnd}
	b.mu.Lock()
	b.fillLocked()
	b.mu.Unlock()
	return b
}

// Draw removes and returns one tile, refilling the bag first if it is empty
func (b *Bag) Draw() Tile {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.tiles) == 0 {
		b.fillLocked()
	}
	last := len(b.tiles) - 1
	letter := b.tiles[last]
	b.tiles = b.tiles[:last]
	return Tile{Letter: letter, Points: letterValues[letter]}
}

// Remaining returns the number of tiles left before the next refill
func (b *Bag) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tiles)
}

// Refills returns how many times the bag has been filled, including the initial fill
func (b *Bag) Refills() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refill
}

func (b *Bag) fillLocked() {
	tiles := make([]string, 0, BagSize())
	for _, r := range alphabet {
		letter := string(r)
		for i := 0; i < letterDistribution[letter]; i++ {
			tiles = append(tiles, letter)
		}
	}
	random.Shuffle(b.rnd, len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})
	b.tiles = tiles
	b.refill++
}
