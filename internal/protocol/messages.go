// Package protocol defines the WebSocket wire contract between clients and
// the server: an envelope with a message kind plus a kind-specific payload.
package protocol

import (
	"encoding/json"

	"github.com/jkoster/checkersgame-go/internal/rules"
)

// Kind discriminates message payloads
type Kind string

// Client -> server message kinds
const (
	KindSetNickname  Kind = "set-nickname"
	KindCreateLobby  Kind = "create-lobby"
	KindListLobbies  Kind = "list-lobbies"
	KindJoinLobby    Kind = "join-lobby"
	KindMove         Kind = "move"
	KindRematchAccept Kind = "rematch-accept"
	KindChat         Kind = "chat"
	KindLeaveMatch   Kind = "leave-match"
	KindRejoinMatch  Kind = "rejoin-match"
	KindForfeitMatch Kind = "forfeit-match"
)

// Server -> client message kinds
const (
	KindNicknameSet        Kind = "nickname-set"
	KindLobbyList          Kind = "lobby-list"
	KindMatchStart         Kind = "match-start"
	KindMoveAccepted       Kind = "move-accepted"
	KindMoveRejected       Kind = "move-rejected"
	KindGameOver           Kind = "game-over"
	KindPlayerDisconnected Kind = "player-disconnected"
	KindPlayerReconnected  Kind = "player-reconnected"
	KindMatchLeaving       Kind = "match-leaving"
	KindMatchRejoined      Kind = "match-rejoined"
	KindMatchEnded         Kind = "match-ended"
	KindRematchRequested   Kind = "rematch-requested"
	KindChatRelay          Kind = "chat"
	KindError              Kind = "error"
)

// Envelope is the outer frame of every client message
type Envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> server payloads

type SetNicknamePayload struct {
	Nickname string `json:"nickname"`
	PriorID  string `json:"prior_id,omitempty"`
}

type JoinLobbyPayload struct {
	LobbyID string `json:"lobby_id"`
}

type MovePayload struct {
	MatchID string       `json:"match_id"`
	From    rules.Square `json:"from"`
	To      rules.Square `json:"to"`
}

type ChatPayload struct {
	MatchID string `json:"match_id"`
	Text    string `json:"text"`
}

// MatchRefPayload addresses a match without further arguments
// (rematch-accept, leave-match, rejoin-match, forfeit-match)
type MatchRefPayload struct {
	MatchID string `json:"match_id"`
}
