package protocol

import (
	"errors"
	"time"

	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/rules"
)

// ServerEvent is an outbound message: the kind plus a payload struct from
// this package. The payload is marshalled as-is.
type ServerEvent struct {
	Kind    Kind `json:"kind"`
	Payload any  `json:"payload,omitempty"`
}

// Server -> client payloads

type NicknameSetPayload struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// LobbyEntry is one row of a personalized lobby-list snapshot. A rejoin
// entry points back at the caller's own match during its leave grace period.
type LobbyEntry struct {
	ID              string `json:"id"`
	CreatorNickname string `json:"creator_nickname"`
	Members         int    `json:"members"`
	Capacity        int    `json:"capacity"`
	IsOwnLobby      bool   `json:"is_own_lobby"`
	IsRejoin        bool   `json:"is_rejoin,omitempty"`
}

type LobbyListPayload struct {
	Entries []LobbyEntry `json:"entries"`
}

type MatchStartPayload struct {
	MatchID           string              `json:"match_id"`
	Color             rules.Color         `json:"color"`
	Board             rules.Board         `json:"board"`
	Turn              rules.Color         `json:"turn"`
	OpponentNickname  string              `json:"opponent_nickname"`
	Captures          map[rules.Color]int `json:"captures"`
	MoveTimeRemaining float64             `json:"move_time_remaining"`
}

type MoveAcceptedPayload struct {
	MatchID            string              `json:"match_id"`
	Board              rules.Board         `json:"board"`
	NextTurn           rules.Color         `json:"next_turn"`
	From               rules.Square        `json:"from"`
	To                 rules.Square        `json:"to"`
	ContinuationActive bool                `json:"continuation_active"`
	ContinuationFrom   *rules.Square       `json:"continuation_from,omitempty"`
	Captures           map[rules.Color]int `json:"captures"`
	MoveTimeRemaining  float64             `json:"move_time_remaining"`
}

type MoveRejectedPayload struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type GameOverPayload struct {
	MatchID string      `json:"match_id"`
	Winner  rules.Color `json:"winner"`
	Reason  string      `json:"reason"`
}

type NoticePayload struct {
	Message string `json:"message"`
}

type MatchLeavingPayload struct {
	MatchID       string  `json:"match_id"`
	TimeRemaining float64 `json:"time_remaining"`
}

type ChatRelayPayload struct {
	SenderNickname string    `json:"sender_nickname"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Stable machine-readable reason codes carried by rejections
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeNotYourTurn      = "NOT_YOUR_TURN"
	CodeInvalidMove      = "INVALID_MOVE"
	CodeLobbyNotFound    = "LOBBY_NOT_FOUND"
	CodeLobbyFull        = "LOBBY_FULL"
	CodeAlreadyMember    = "ALREADY_MEMBER"
	CodeAlreadyInMatch   = "ALREADY_IN_MATCH"
	CodeMatchNotFound    = "MATCH_NOT_FOUND"
	CodeMatchOver        = "MATCH_OVER"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// CodeForError maps a model error to its wire reason code
func CodeForError(err error) string {
	switch {
	case errors.Is(err, model.ErrValidation):
		return CodeValidation
	case errors.Is(err, model.ErrNotAuthenticated):
		return CodeNotAuthenticated
	case errors.Is(err, model.ErrNotYourTurn):
		return CodeNotYourTurn
	case errors.Is(err, model.ErrInvalidMove):
		return CodeInvalidMove
	case errors.Is(err, model.ErrLobbyNotFound):
		return CodeLobbyNotFound
	case errors.Is(err, model.ErrLobbyFull):
		return CodeLobbyFull
	case errors.Is(err, model.ErrAlreadyMember):
		return CodeAlreadyMember
	case errors.Is(err, model.ErrAlreadyInMatch):
		return CodeAlreadyInMatch
	case errors.Is(err, model.ErrMatchNotFound):
		return CodeMatchNotFound
	case errors.Is(err, model.ErrMatchOver):
		return CodeMatchOver
	case errors.Is(err, model.ErrUnauthorized), errors.Is(err, model.ErrPlayerNotFound):
		return CodeUnauthorized
	default:
		return CodeInternalError
	}
}
