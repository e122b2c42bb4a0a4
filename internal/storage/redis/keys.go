package redis

import (
	"fmt"

	"github.com/mcoot/wordcascade/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "wcgame"

// dictionaryKey returns the Redis key for the dictionary word set
func dictionaryKey() string {
	return fmt.Sprintf("%s:dictionary", keyPrefix)
}

// hitsKey returns the Redis key for a rate limit sorted set
func hitsKey(key string) string {
	return fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)
}

// historyKey returns the Redis key for a room's match history list
func historyKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:history:%s", keyPrefix, code)
}
