package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound    = errors.New("player not found")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInsufficientScore = errors.New("insufficient score")

	// Room errors
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrRoomClosed          = errors.New("room is closed")
	ErrAlreadyInRoom       = errors.New("player is already in a room")
	ErrNotInRoom           = errors.New("player is not in a room")
	ErrNotHost             = errors.New("player is not the host")
	ErrGameInProgress      = errors.New("game is in progress")
	ErrNoActiveRound       = errors.New("no active round")
	ErrInsufficientPlayers = errors.New("insufficient players to start match")
	ErrPlayersNotReady     = errors.New("not all players are ready")
	ErrInvalidSettings     = errors.New("invalid match settings")

	// Board errors
	ErrBoardNotReady       = errors.New("board is not ready")
	ErrInvalidPosition     = errors.New("invalid board position")
	ErrInconsistentChanges = errors.New("tile changes do not match board")
	ErrSequenceGap         = errors.New("tile change sequence gap")
	ErrChecksumMismatch    = errors.New("board checksum mismatch")
	ErrGenerationCancelled = errors.New("board generation cancelled")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Gateway errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrRateLimited    = errors.New("rate limit exceeded")

	// Dictionary errors
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")
)
