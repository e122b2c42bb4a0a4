package factory

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/services/board"
	"github.com/mcoot/wordcascade/internal/services/ratelimit"
	"github.com/mcoot/wordcascade/internal/services/room"
	"github.com/mcoot/wordcascade/internal/services/session"
	"github.com/mcoot/wordcascade/internal/services/solver"
	redisstorage "github.com/mcoot/wordcascade/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Config holds configuration for the application factory
type Config struct {
	Port int
	// LogLevel is a zerolog level name
	LogLevel string
	// LogFormat is "json" or "console"
	LogFormat string
	// DictionaryPath is the word list loaded at startup. Empty skips file loading.
	DictionaryPath string
	// StorageType selects the storage backend ("memory" or "redis")
	StorageType string
	// RedisConfig is required when StorageType is "redis"
	RedisConfig *redisstorage.Config

	Board     board.Config
	Solver    solver.Config
	Room      room.Config
	Session   session.Config
	RateLimit ratelimit.Config

	// Logger is the application logger. If nil, logging is discarded.
	Logger *zerolog.Logger
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		LogLevel:       "info",
		LogFormat:      "json",
		DictionaryPath: "data/words.txt",
		StorageType:    StorageTypeMemory,
		Board:          board.DefaultConfig(),
		Solver:         solver.DefaultConfig(),
		Room:           room.DefaultConfig(),
		Session:        session.DefaultConfig(),
		RateLimit:      ratelimit.DefaultConfig(),
	}
}

// LoadConfig reads an optional .env file and overlays environment variables on DefaultConfig
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return configFromEnv(os.Getenv)
}

// configFromEnv applies overrides from getenv. Split out so tests need not touch the process env.
func configFromEnv(getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()
	p := envParser{getenv: getenv}

	p.setInt("PORT", &cfg.Port)
	p.setString("LOG_LEVEL", &cfg.LogLevel)
	p.setString("LOG_FORMAT", &cfg.LogFormat)
	p.setString("DICTIONARY_PATH", &cfg.DictionaryPath)
	p.setString("STORAGE_TYPE", &cfg.StorageType)

	p.setInt("BOARD_WIDTH", &cfg.Board.Width)
	p.setInt("BOARD_HEIGHT", &cfg.Board.Height)
	p.setInt("BOARD_MIN_WORDS", &cfg.Board.MinWords)
	p.setInt("BOARD_MAX_ATTEMPTS", &cfg.Board.MaxAttempts)
	p.setInt("BOARD_CACHE_SIZE", &cfg.Board.CacheSize)

	p.setInt("RATE_LIMIT_EVENTS", &cfg.RateLimit.Events)
	p.setDuration("RATE_LIMIT_WINDOW", &cfg.RateLimit.Window)
	p.setDuration("RESYNC_INTERVAL", &cfg.Room.ResyncInterval)
	p.setDuration("ROOM_INACTIVITY_TIMEOUT", &cfg.Room.InactivityTimeout)
	p.setDuration("SESSION_TTL", &cfg.Session.TTL)

	if cfg.StorageType == StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		p.setString("REDIS_URL", &redisCfg.URL)
		cfg.RedisConfig = &redisCfg
	}

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type envParser struct {
	getenv func(string) string
	errs   []error
}

func (p *envParser) lookup(key string) (string, bool) {
	v := strings.TrimSpace(p.getenv(key))
	return v, v != ""
}

func (p *envParser) setString(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = v
	}
}

func (p *envParser) setInt(key string, dst *int) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

// setDuration accepts Go duration syntax or a bare number of milliseconds
func (p *envParser) setDuration(key string, dst *time.Duration) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	if ms, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(ms) * time.Millisecond
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = d
}

// NewLogger builds the root logger from the level and format settings
func NewLogger(cfg Config, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	switch cfg.LogFormat {
	case "", "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("LOG_FORMAT: unknown format %q", cfg.LogFormat)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
