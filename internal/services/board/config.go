package board

// Config fixes the board shape and generation quality bar
type Config struct {
	Width       int
	Height      int
	MinWords    int // words the solver must find for a board to be accepted
	MaxAttempts int // boards tried before settling for the last one
	CacheSize   int // pre-generated boards kept ready
}

// DefaultConfig returns the standard 5x5 configuration
func DefaultConfig() Config {
	return Config{
		Width:       5,
		Height:      5,
		MinWords:    10,
		MaxAttempts: 50,
		CacheSize:   3,
	}
}
