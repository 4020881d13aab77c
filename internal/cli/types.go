package cli

import "time"

// Wire shapes for the REST API responses. Kept separate from the server's
// internal types so the CLI only depends on the published JSON contract.

// HealthResult is the /healthz response
type HealthResult struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Connections   int    `json:"connections"`
	ActiveMatches int    `json:"active_matches"`
	OpenLobbies   int    `json:"open_lobbies"`
}

// MatchRecord is one entry of a player's match history
type MatchRecord struct {
	ID         string     `json:"id"`
	PlayerA    string     `json:"player_a"`
	PlayerB    string     `json:"player_b"`
	WinnerID   *string    `json:"winner_id,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// HistoryResult is the player history response
type HistoryResult struct {
	Matches []MatchRecord `json:"matches"`
}

// Square is a board coordinate
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// MoveRecord is one entry of a match's move log
type MoveRecord struct {
	MatchID  string    `json:"match_id"`
	Index    int       `json:"index"`
	From     Square    `json:"from"`
	To       Square    `json:"to"`
	PlayedAt time.Time `json:"played_at"`
}

// MovesResult is the match move log response
type MovesResult struct {
	Moves []MoveRecord `json:"moves"`
}
