package sse

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mcoot/wordcascade/internal/api/apierr"
	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/services/room"
)

const (
	// Time between keepalive comments
	pingPeriod = 15 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// RoomLookup finds the room a spectator subscribes to
type RoomLookup interface {
	Get(code model.RoomCode) (*room.Room, error)
}

// Client is one read-only spectator stream
type Client struct {
	id          string
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new SSE client
func NewClient() *Client {
	return &Client{
		id:          uuid.NewString(),
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Handler serves GET /rooms/{code}/events
type Handler struct {
	hubs  *HubManager
	rooms RoomLookup
}

// NewHandler creates a new spectator stream handler
func NewHandler(hubs *HubManager, rooms RoomLookup) *Handler {
	return &Handler{hubs: hubs, rooms: rooms}
}

// ServeHTTP streams a room's events until the client goes away
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rm, err := h.rooms.Get(model.RoomCode(mux.Vars(r)["code"]))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	ServeSSE(w, r, h.hubs.GetOrCreateHub(rm.Code()))
}

// ServeSSE handles the SSE connection for one spectator
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	client := NewClient()
	if !hub.Register(client) {
		http.Error(w, "Room stream closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
