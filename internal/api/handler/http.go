package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordcascade/internal/api/middleware"
	"github.com/mcoot/wordcascade/internal/api/response"
	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/services/room"
	"github.com/mcoot/wordcascade/internal/storage"
)

// DictionaryStatus reports whether the word list is available
type DictionaryStatus interface {
	IsLoaded() bool
	WordCount() int
}

// SessionCounter reports live sessions
type SessionCounter interface {
	ActiveCount() int
}

// BoardCache reports how many pre-generated boards are waiting
type BoardCache interface {
	CacheDepth() int
}

// HealthHandler serves GET /health
type HealthHandler struct {
	dictionary DictionaryStatus
	sessions   SessionCounter
	rooms      room.ManagerInterface
	boards     BoardCache
}

// NewHealthHandler creates a new health handler. boards may be nil.
func NewHealthHandler(dictionary DictionaryStatus, sessions SessionCounter, rooms room.ManagerInterface, boards BoardCache) *HealthHandler {
	return &HealthHandler{
		dictionary: dictionary,
		sessions:   sessions,
		rooms:      rooms,
		boards:     boards,
	}
}

// Get handles GET /health
func (h *HealthHandler) Get(w http.ResponseWriter, _ *http.Request) {
	resp := response.HealthResponse{
		Status:           "ok",
		DictionaryLoaded: h.dictionary.IsLoaded(),
		WordCount:        h.dictionary.WordCount(),
		ActiveSessions:   h.sessions.ActiveCount(),
		ActiveRooms:      h.rooms.Count(),
	}
	if h.boards != nil {
		resp.BoardCacheDepth = h.boards.CacheDepth()
	}
	if !resp.DictionaryLoaded {
		resp.Status = "degraded"
	}
	response.JSON(w, http.StatusOK, resp)
}

// RoomHandler serves read-only room endpoints
type RoomHandler struct {
	rooms   room.ManagerInterface
	history storage.Storage
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms room.ManagerInterface, history storage.Storage) *RoomHandler {
	return &RoomHandler{
		rooms:   rooms,
		history: history,
	}
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	rm, err := h.rooms.Get(model.RoomCode(mux.Vars(r)["code"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomResponse{Room: rm.Snapshot()})
}

// History handles GET /api/v1/rooms/{code}/history?limit=N
func (h *RoomHandler) History(w http.ResponseWriter, r *http.Request) {
	code := room.NormalizeCode(model.RoomCode(mux.Vars(r)["code"]))

	limit := storage.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	results, err := h.history.GetMatchResults(r.Context(), code, limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.HistoryFromModel(code, results))
}

// SessionHandler serves the caller's session
type SessionHandler struct {
	rooms room.ManagerInterface
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(rooms room.ManagerInterface) *SessionHandler {
	return &SessionHandler{rooms: rooms}
}

// GetMe handles GET /api/v1/session
func (h *SessionHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustGetSession(r.Context())

	var code model.RoomCode
	rm, err := h.rooms.RoomFor(sess.ID)
	switch {
	case err == nil:
		code = rm.Code()
	case !errors.Is(err, model.ErrNotInRoom):
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionFromModel(sess, code))
}
