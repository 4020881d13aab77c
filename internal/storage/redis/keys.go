package redis

import (
	"fmt"

	"github.com/jkoster/checkersgame-go/internal/model"
)

// Key prefix for all checkers data
const keyPrefix = "checkers"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// matchKey returns the Redis key for a MatchRecord
func matchKey(id model.MatchID) string {
	return fmt.Sprintf("%s:match:%s", keyPrefix, id)
}

// movesKey returns the Redis key for a match's move log (a LIST)
func movesKey(id model.MatchID) string {
	return fmt.Sprintf("%s:moves:%s", keyPrefix, id)
}

// historyKey returns the Redis key for a player's match index (a LIST of
// match ids, most recent first)
func historyKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:history:%s", keyPrefix, id)
}
