package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gosocketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/api"
	"github.com/mcoot/wordcascade/internal/api/handler"
	"github.com/mcoot/wordcascade/internal/dependencies/clock"
	"github.com/mcoot/wordcascade/internal/dependencies/random"
	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/services/board"
	"github.com/mcoot/wordcascade/internal/services/dictionary"
	"github.com/mcoot/wordcascade/internal/services/ratelimit"
	"github.com/mcoot/wordcascade/internal/services/room"
	"github.com/mcoot/wordcascade/internal/services/scoring"
	"github.com/mcoot/wordcascade/internal/services/session"
	"github.com/mcoot/wordcascade/internal/services/solver"
	"github.com/mcoot/wordcascade/internal/storage"
	"github.com/mcoot/wordcascade/internal/storage/memory"
	redisstorage "github.com/mcoot/wordcascade/internal/storage/redis"
	"github.com/mcoot/wordcascade/internal/transport/socketio"
	"github.com/mcoot/wordcascade/internal/transport/sse"
	"github.com/mcoot/wordcascade/internal/transport/ws"
)

// hubCleanupInterval is how often empty spectator hubs are dropped
const hubCleanupInterval = time.Minute

// App contains all wired application components
type App struct {
	Config Config
	Logger zerolog.Logger

	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	DictionaryService *dictionary.Service
	Solver            *solver.Solver
	BoardService      *board.Service
	ScoringService    *scoring.Service
	SessionService    *session.Service
	RateLimiter       *ratelimit.Service
	RoomManager       *room.Manager

	// Transports
	Connections *handler.Connections
	Gateway     *handler.Gateway
	HubManager  *sse.HubManager
	WebSocket   *ws.Server
	SocketIO    *gosocketio.Server
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory' or 'redis'", storageType)
	}

	return newWithDependencies(withDefaults(cfg), store, clock.New(), random.New(), logger), nil
}

// withDefaults fills zero-valued sub-configs so a bare Config{} is usable
func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Board == (board.Config{}) {
		cfg.Board = def.Board
	}
	if cfg.Solver == (solver.Config{}) {
		cfg.Solver = def.Solver
	}
	if cfg.Room == (room.Config{}) {
		cfg.Room = def.Room
	}
	if cfg.Session == (session.Config{}) {
		cfg.Session = def.Session
	}
	if cfg.RateLimit == (ratelimit.Config{}) {
		cfg.RateLimit = def.RateLimit
	}
	return cfg
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(cfg Config, store storage.Storage, clk clock.Clock, rnd random.Random, logger zerolog.Logger) *App {
	dictService := dictionary.New(store, logger)
	wordSolver := solver.New(dictService, rnd, cfg.Solver)
	boardService := board.New(cfg.Board, wordSolver, rnd, logger)
	scoringService := scoring.New(dictService)
	sessionService := session.New(clk, cfg.Session, logger)
	limiter := ratelimit.New(store, clk, cfg.RateLimit, logger)

	hubManager := sse.NewHubManager(logger)
	connections := handler.NewConnections(hubManager, logger)
	roomManager := room.NewManager(cfg.Room, room.Deps{
		Boards:   boardService,
		Solver:   wordSolver,
		Scorer:   scoringService,
		History:  store,
		Notifier: connections,
		Clock:    clk,
		Logger:   logger,
	}, rnd)
	gateway := handler.NewGateway(connections, roomManager, sessionService, limiter, logger)

	// A purged session can no longer reconnect, so its seat is released
	sessionService.OnExpire(func(id model.PlayerID) {
		if err := roomManager.Leave(id); err != nil && !errors.Is(err, model.ErrNotInRoom) {
			logger.Warn().Err(err).Str("player_id", string(id)).Msg("could not remove expired player from room")
		}
	})

	return &App{
		Config:            cfg,
		Logger:            logger,
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		DictionaryService: dictService,
		Solver:            wordSolver,
		BoardService:      boardService,
		ScoringService:    scoringService,
		SessionService:    sessionService,
		RateLimiter:       limiter,
		RoomManager:       roomManager,
		Connections:       connections,
		Gateway:           gateway,
		HubManager:        hubManager,
		WebSocket:         ws.NewServer(gateway, logger),
		SocketIO:          socketio.NewServer(gateway, logger),
	}
}

// LoadDictionary loads the configured word list. Without a file path, or when the
// file cannot be read, it falls back to words already held in storage.
func (a *App) LoadDictionary(ctx context.Context) error {
	if a.Config.DictionaryPath != "" {
		err := a.DictionaryService.LoadFromFile(ctx, a.Config.DictionaryPath)
		if err == nil {
			return nil
		}
		a.Logger.Warn().Err(err).Str("path", a.Config.DictionaryPath).Msg("could not load dictionary file, trying storage")
	}
	return a.DictionaryService.LoadFromStorage(ctx)
}

// Router builds the HTTP handler for every endpoint and transport
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:     a.Logger,
		Dictionary: a.DictionaryService,
		Sessions:   a.SessionService,
		Rooms:      a.RoomManager,
		Boards:     a.BoardService,
		History:    a.Storage,
		WebSocket:  a.WebSocket,
		SocketIO:   a.SocketIO,
		Spectate:   sse.NewHandler(a.HubManager, a.RoomManager),
	})
}

// Run starts the background loops and blocks until ctx is done
func (a *App) Run(ctx context.Context) {
	go func() {
		if err := a.SocketIO.Serve(); err != nil {
			a.Logger.Error().Err(err).Msg("socket.io server stopped")
		}
	}()
	go a.SessionService.Run(ctx)
	go a.HubManager.Run(ctx, hubCleanupInterval)
	a.RoomManager.Run(ctx)
}

// Close releases every component. Safe to call once after Run returns.
func (a *App) Close() error {
	a.WebSocket.Close()
	a.RoomManager.Close()
	a.HubManager.Close()
	a.BoardService.Close()
	err := a.SocketIO.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		err = errors.Join(err, closer.Close())
	}
	return err
}
