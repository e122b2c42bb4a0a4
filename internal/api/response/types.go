package response

import (
	"github.com/mcoot/wordcascade/internal/model"
)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status           string `json:"status"`
	DictionaryLoaded bool   `json:"dictionaryLoaded"`
	WordCount        int    `json:"wordCount"`
	ActiveSessions   int    `json:"activeSessions"`
	ActiveRooms      int    `json:"activeRooms"`
	BoardCacheDepth  int    `json:"boardCacheDepth"`
}

// SessionResponse describes the caller's session
type SessionResponse struct {
	SessionID      string `json:"sessionId"`
	Username       string `json:"username"`
	IsConnected    bool   `json:"isConnected"`
	Score          int    `json:"score"`
	WordsSubmitted int    `json:"wordsSubmitted"`
	RoomCode       string `json:"roomCode,omitempty"`
}

// SessionFromModel converts a model.PlayerSession
func SessionFromModel(s model.PlayerSession, code model.RoomCode) SessionResponse {
	return SessionResponse{
		SessionID:      string(s.ID),
		Username:       s.Username,
		IsConnected:    s.IsConnected,
		Score:          s.Score,
		WordsSubmitted: s.WordsSubmitted,
		RoomCode:       string(code),
	}
}

// RoomResponse is the public view of a room
type RoomResponse struct {
	Room model.RoomSnapshot `json:"room"`
}

// HistoryResponse lists finished matches of a room, newest first
type HistoryResponse struct {
	RoomCode string              `json:"roomCode"`
	Matches  []model.MatchResult `json:"matches"`
}

// HistoryFromModel converts stored match results
func HistoryFromModel(code model.RoomCode, results []*model.MatchResult) HistoryResponse {
	matches := make([]model.MatchResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			matches = append(matches, *r)
		}
	}
	return HistoryResponse{RoomCode: string(code), Matches: matches}
}
