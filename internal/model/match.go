package model

import (
	"time"

	"github.com/jkoster/checkersgame-go/internal/rules"
)

// MatchID identifies a live match session
type MatchID string

// MatchState is the lifecycle phase of a match session
type MatchState string

const (
	MatchStateActive   MatchState = "active"
	MatchStateGameOver MatchState = "game_over"
)

// Match is the authoritative state of one game. It is created only once two
// identities are bound (no waiting state) and mutated exclusively by the game
// service under its lock.
type Match struct {
	ID    MatchID
	Board rules.Board
	State MatchState

	// Participants bound to fixed colors for the duration of the match
	Players map[rules.Color]PlayerID

	Turn rules.Color

	// Non-nil while the mover owes a further capture from this square
	ContinuationFrom *rules.Square

	Captures map[rules.Color]int

	// Nil until the match is decided, immutable afterwards
	Winner *rules.Color

	MoveCount int

	// TurnEpoch increments whenever the move clock is (re)armed. Stale timer
	// callbacks compare against it and become no-ops.
	TurnEpoch int

	TurnStartedAt time.Time
	CreatedAt     time.Time
}

// ColorOf returns the color the player is bound to
func (m *Match) ColorOf(id PlayerID) (rules.Color, bool) {
	for color, pid := range m.Players {
		if pid == id {
			return color, true
		}
	}
	return "", false
}

// Opponent returns the other participant's id
func (m *Match) Opponent(id PlayerID) (PlayerID, bool) {
	color, ok := m.ColorOf(id)
	if !ok {
		return "", false
	}
	return m.Players[color.Opponent()], true
}

// IsParticipant reports whether the player is bound to this match
func (m *Match) IsParticipant(id PlayerID) bool {
	_, ok := m.ColorOf(id)
	return ok
}

// MatchRecord is the persisted summary of a match (best-effort storage)
type MatchRecord struct {
	ID         MatchID    `json:"id"`
	PlayerA    PlayerID   `json:"player_a"`
	PlayerB    PlayerID   `json:"player_b"`
	WinnerID   *PlayerID  `json:"winner_id,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// MoveRecord is one persisted move log entry
type MoveRecord struct {
	MatchID  MatchID      `json:"match_id"`
	Index    int          `json:"index"`
	From     rules.Square `json:"from"`
	To       rules.Square `json:"to"`
	PlayedAt time.Time    `json:"played_at"`
}
