package model

import "time"

// PlayerID is a stable opaque identifier for a player identity. It survives
// connection churn: a client reconnecting with its prior id is the same player.
type PlayerID string

// Player is a registered identity with a display nickname
type Player struct {
	ID        PlayerID  `json:"id"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
}
