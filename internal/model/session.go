package model

import "time"

// PlayerSession is the connection-scoped identity of a player, independent of
// any room. The session id is stable across reconnects; the socket id is rebound.
type PlayerSession struct {
	ID             PlayerID  `json:"id"`
	Username       string    `json:"username"`
	SocketID       string    `json:"socketId"`
	IsConnected    bool      `json:"isConnected"`
	LastActivity   time.Time `json:"lastActivity"`
	Score          int       `json:"score"`
	WordsSubmitted int       `json:"wordsSubmitted"`
}
