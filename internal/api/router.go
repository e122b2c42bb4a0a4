package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/api/handler"
	apimw "github.com/mcoot/wordcascade/internal/api/middleware"
	"github.com/mcoot/wordcascade/internal/middleware"
	"github.com/mcoot/wordcascade/internal/services/room"
	"github.com/mcoot/wordcascade/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     zerolog.Logger
	Dictionary handler.DictionaryStatus
	Sessions   interface {
		handler.SessionCounter
		apimw.SessionLookup
	}
	Rooms   room.ManagerInterface
	Boards  handler.BoardCache
	History storage.Storage

	// Realtime transports. Any may be nil.
	WebSocket http.Handler
	SocketIO  http.Handler
	Spectate  http.Handler
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler))
	r.Use(middleware.Logging(cfg.Logger))

	healthHandler := handler.NewHealthHandler(cfg.Dictionary, cfg.Sessions, cfg.Rooms, cfg.Boards)
	roomHandler := handler.NewRoomHandler(cfg.Rooms, cfg.History)
	sessionHandler := handler.NewSessionHandler(cfg.Rooms)

	r.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	if cfg.WebSocket != nil {
		r.Handle("/ws", cfg.WebSocket).Methods(http.MethodGet)
	}
	if cfg.SocketIO != nil {
		r.PathPrefix("/socket.io/").Handler(cfg.SocketIO)
	}
	if cfg.Spectate != nil {
		r.Handle("/rooms/{code}/events", cfg.Spectate).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(apimw.Recovery(cfg.Logger))

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/history", roomHandler.History).Methods(http.MethodGet)

	protected := api.PathPrefix("/session").Subrouter()
	protected.Use(apimw.RequireSession(cfg.Sessions))
	protected.HandleFunc("", sessionHandler.GetMe).Methods(http.MethodGet)

	return r
}
