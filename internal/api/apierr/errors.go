package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/wordcascade/internal/model"
)

// APIError is the machine-readable error sent to clients
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeRateLimited         = "RATE_LIMITED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeRoomNotFound        = "ROOM_NOT_FOUND"
	CodeRoomFull            = "ROOM_FULL"
	CodeNotInRoom           = "NOT_IN_ROOM"
	CodeAlreadyInRoom       = "ALREADY_IN_ROOM"
	CodeNotHost             = "NOT_HOST"
	CodeGameInProgress      = "GAME_IN_PROGRESS"
	CodeNoActiveRound       = "NO_ACTIVE_ROUND"
	CodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
	CodePlayersNotReady     = "PLAYERS_NOT_READY"
	CodeInvalidSettings     = "INVALID_SETTINGS"
	CodeInvalidDifficulty   = "INVALID_DIFFICULTY"
	CodeInsufficientScore   = "INSUFFICIENT_SCORE"
	CodeBoardNotReady       = "BOARD_NOT_READY"
	CodeInternalError       = "INTERNAL_ERROR"
)

// codedError combines an HTTP status code with an APIError
type codedError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *codedError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	ce := toCodedError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ce.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: ce.apiError})
}

// FromError converts any error into the APIError sent over a realtime connection
func FromError(err error) APIError {
	return toCodedError(err).apiError
}

// toCodedError converts an error to a codedError
func toCodedError(err error) *codedError {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce
	}

	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		return &codedError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	case errors.Is(err, model.ErrRateLimited):
		return &codedError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many requests"}}
	case errors.Is(err, model.ErrRoomNotFound):
		return &codedError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrRoomFull), errors.Is(err, model.ErrRoomClosed):
		return &codedError{http.StatusConflict, APIError{CodeRoomFull, "Room is not accepting players"}}
	case errors.Is(err, model.ErrNotInRoom), errors.Is(err, model.ErrPlayerNotFound):
		return &codedError{http.StatusNotFound, APIError{CodeNotInRoom, "Not in a room"}}
	case errors.Is(err, model.ErrAlreadyInRoom):
		return &codedError{http.StatusConflict, APIError{CodeAlreadyInRoom, "Already in a room"}}
	case errors.Is(err, model.ErrNotHost):
		return &codedError{http.StatusForbidden, APIError{CodeNotHost, "Only the host can perform this action"}}
	case errors.Is(err, model.ErrGameInProgress):
		return &codedError{http.StatusConflict, APIError{CodeGameInProgress, "A match is in progress"}}
	case errors.Is(err, model.ErrNoActiveRound):
		return &codedError{http.StatusConflict, APIError{CodeNoActiveRound, "No round is active"}}
	case errors.Is(err, model.ErrInsufficientPlayers):
		return &codedError{http.StatusConflict, APIError{CodeInsufficientPlayers, "Not enough players to start"}}
	case errors.Is(err, model.ErrPlayersNotReady):
		return &codedError{http.StatusConflict, APIError{CodePlayersNotReady, "All players must be ready"}}
	case errors.Is(err, model.ErrInvalidSettings):
		return &codedError{http.StatusBadRequest, APIError{CodeInvalidSettings, err.Error()}}
	case errors.Is(err, model.ErrInvalidDifficulty):
		return &codedError{http.StatusBadRequest, APIError{CodeInvalidDifficulty, "Unknown difficulty"}}
	case errors.Is(err, model.ErrInsufficientScore):
		return &codedError{http.StatusConflict, APIError{CodeInsufficientScore, "Not enough points to shuffle"}}
	case errors.Is(err, model.ErrBoardNotReady):
		return &codedError{http.StatusConflict, APIError{CodeBoardNotReady, "Board is being regenerated"}}

	default:
		return &codedError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &codedError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an error for requests without a known session
func NewUnauthorizedError() error {
	return &codedError{http.StatusUnauthorized, APIError{CodeUnauthorized, "A valid session is required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &codedError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
