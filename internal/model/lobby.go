package model

import "time"

// LobbyID identifies an open matchmaking slot. Lobby and match ids share one
// namespace: the match created from a lobby inherits the lobby's id.
type LobbyID string

// LobbyCapacity is the fixed number of players per lobby
const LobbyCapacity = 2

// Lobby is a pending pairing slot for exactly two players. It is consumed
// into a match the moment the second member joins.
type Lobby struct {
	ID        LobbyID
	Members   []PlayerID
	CreatorID PlayerID
	CreatedAt time.Time
}

// HasMember reports whether the player is already in the lobby
func (l *Lobby) HasMember(id PlayerID) bool {
	for _, m := range l.Members {
		if m == id {
			return true
		}
	}
	return false
}

// IsFull reports whether the lobby has reached capacity
func (l *Lobby) IsFull() bool {
	return len(l.Members) >= LobbyCapacity
}
