// Package ws is the broadcast gateway: it owns every live websocket
// connection, the per-identity private channels and the per-match shared
// channels, and routes inbound client messages into the game service.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/jkoster/checkersgame-go/internal/game"
	"github.com/jkoster/checkersgame-go/internal/metrics"
	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/protocol"
)

// Hub tracks connection-to-identity bindings and match channel membership
type Hub struct {
	mu sync.RWMutex

	service *game.Service
	metrics *metrics.Metrics
	logger  *slog.Logger

	// One live connection per identity; a reconnect replaces the old one
	clients map[model.PlayerID]*Client

	// Current live participants of each match channel
	matchMembers map[model.MatchID]map[model.PlayerID]bool
}

// NewHub creates the gateway
func NewHub(service *game.Service, m *metrics.Metrics, logger *slog.Logger) *Hub {
	return &Hub{
		service:      service,
		metrics:      m,
		logger:       logger.With(slog.String("component", "ws")),
		clients:      make(map[model.PlayerID]*Client),
		matchMembers: make(map[model.MatchID]map[model.PlayerID]bool),
	}
}

// Ensure Hub satisfies the game core's delivery contract
var _ game.Broadcaster = (*Hub)(nil)

// ToPlayer delivers an event on the identity's private channel. Delivery is
// non-blocking: a slow consumer's backlog is dropped, never the event loop.
func (h *Hub) ToPlayer(id model.PlayerID, event protocol.ServerEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("event marshal failed", slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	c := h.clients[id]
	h.mu.RUnlock()
	if c == nil {
		return
	}

	select {
	case c.send <- data:
	default:
		h.logger.Warn("message dropped - client buffer full",
			slog.String("player_id", string(id)),
			slog.String("kind", string(event.Kind)))
	}
}

// ToMatch delivers an event to every live participant of the match channel
func (h *Hub) ToMatch(id model.MatchID, event protocol.ServerEvent) {
	h.mu.RLock()
	members := make([]model.PlayerID, 0, len(h.matchMembers[id]))
	for playerID := range h.matchMembers[id] {
		members = append(members, playerID)
	}
	h.mu.RUnlock()

	for _, playerID := range members {
		h.ToPlayer(playerID, event)
	}
}

// JoinMatch adds a player to the match channel
func (h *Hub) JoinMatch(matchID model.MatchID, playerID model.PlayerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.matchMembers[matchID]
	if members == nil {
		members = make(map[model.PlayerID]bool)
		h.matchMembers[matchID] = members
	}
	members[playerID] = true
}

// LeaveMatch removes a player from the match channel
func (h *Hub) LeaveMatch(matchID model.MatchID, playerID model.PlayerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.matchMembers[matchID], playerID)
}

// CloseMatch drops the match channel entirely
func (h *Hub) CloseMatch(matchID model.MatchID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.matchMembers, matchID)
}

// IsConnected reports whether the identity has a live connection
func (h *Hub) IsConnected(id model.PlayerID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id] != nil
}

// ConnectedPlayers returns the identities with a live connection
func (h *Hub) ConnectedPlayers() []model.PlayerID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]model.PlayerID, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

// ConnectionCount returns the number of live connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// bind registers the connection as the identity's live channel, displacing
// any previous connection for the same identity
func (h *Hub) bind(c *Client, id model.PlayerID) {
	h.mu.Lock()
	old := h.clients[id]
	h.clients[id] = c
	c.playerID = id
	h.mu.Unlock()

	if old != nil && old != c {
		h.logger.Info("connection replaced", slog.String("player_id", string(id)))
		old.close()
	}
}

// unregister drops the connection. It only clears the identity binding if
// this connection still owns it (a replacement connection may already have
// taken over).
func (h *Hub) unregister(c *Client, transient bool) {
	h.mu.Lock()
	id := c.playerID
	owned := id != "" && h.clients[id] == c
	if owned {
		delete(h.clients, id)
	}
	h.mu.Unlock()

	if owned {
		h.service.PlayerDisconnected(id, transient)
	}
}

// dispatch routes one inbound message to the game service and reports any
// rejection back to the sender with its stable reason code
func (h *Hub) dispatch(c *Client, raw []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.sendError(c, protocol.CodeValidation, "malformed message")
		return
	}

	h.metrics.MessagesReceived.WithLabelValues(string(env.Kind)).Inc()

	if env.Kind == protocol.KindSetNickname {
		h.handleSetNickname(c, env.Payload)
		return
	}

	if c.playerID == "" {
		h.sendError(c, protocol.CodeNotAuthenticated, "set a nickname first")
		return
	}

	var err error
	switch env.Kind {
	case protocol.KindCreateLobby:
		err = h.service.CreateLobby(c.playerID)

	case protocol.KindListLobbies:
		err = h.service.ListLobbies(c.playerID)

	case protocol.KindJoinLobby:
		var p protocol.JoinLobbyPayload
		if err = json.Unmarshal(env.Payload, &p); err != nil || p.LobbyID == "" {
			h.sendError(c, protocol.CodeValidation, "lobby_id required")
			return
		}
		err = h.service.JoinLobby(c.playerID, model.LobbyID(p.LobbyID))

	case protocol.KindMove:
		var p protocol.MovePayload
		if err = json.Unmarshal(env.Payload, &p); err != nil || p.MatchID == "" {
			h.sendError(c, protocol.CodeValidation, "match_id, from and to required")
			return
		}
		if err = h.service.ApplyMove(c.playerID, model.MatchID(p.MatchID), p.From, p.To); err != nil {
			// Move rejections ride their own event so clients can roll back
			// optimistic state.
			h.send(c, protocol.ServerEvent{
				Kind: protocol.KindMoveRejected,
				Payload: protocol.MoveRejectedPayload{
					Code:   protocol.CodeForError(err),
					Reason: err.Error(),
				},
			})
		}
		return

	case protocol.KindChat:
		var p protocol.ChatPayload
		if err = json.Unmarshal(env.Payload, &p); err != nil || p.MatchID == "" {
			h.sendError(c, protocol.CodeValidation, "match_id and text required")
			return
		}
		err = h.service.Chat(c.playerID, model.MatchID(p.MatchID), p.Text)

	case protocol.KindRematchAccept, protocol.KindLeaveMatch,
		protocol.KindRejoinMatch, protocol.KindForfeitMatch:
		var p protocol.MatchRefPayload
		if err = json.Unmarshal(env.Payload, &p); err != nil || p.MatchID == "" {
			h.sendError(c, protocol.CodeValidation, "match_id required")
			return
		}
		matchID := model.MatchID(p.MatchID)
		switch env.Kind {
		case protocol.KindRematchAccept:
			err = h.service.RequestRematch(c.playerID, matchID)
		case protocol.KindLeaveMatch:
			err = h.service.LeaveMatch(c.playerID, matchID)
		case protocol.KindRejoinMatch:
			err = h.service.RejoinMatch(c.playerID, matchID)
		case protocol.KindForfeitMatch:
			err = h.service.Forfeit(c.playerID, matchID)
		}

	default:
		h.sendError(c, protocol.CodeValidation, "unknown message kind")
		return
	}

	if err != nil {
		h.sendError(c, protocol.CodeForError(err), err.Error())
	}
}

// handleSetNickname establishes (or renames) the connection's identity
func (h *Hub) handleSetNickname(c *Client, payload json.RawMessage) {
	var p protocol.SetNicknamePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		h.sendError(c, protocol.CodeValidation, "nickname required")
		return
	}

	priorID := p.PriorID
	if c.playerID != "" {
		// An identified connection changing nickname keeps its identity
		priorID = string(c.playerID)
	}

	player, err := h.service.EstablishIdentity(priorID, p.Nickname)
	if err != nil {
		h.sendError(c, protocol.CodeForError(err), err.Error())
		return
	}

	fresh := c.playerID != player.ID
	if fresh {
		h.bind(c, player.ID)
	}

	h.send(c, protocol.ServerEvent{
		Kind: protocol.KindNicknameSet,
		Payload: protocol.NicknameSetPayload{
			ID:       string(player.ID),
			Nickname: player.Nickname,
		},
	})

	if fresh {
		h.service.PlayerConnected(player.ID)
	}
}

func (h *Hub) send(c *Client, event protocol.ServerEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("event marshal failed", slog.String("error", err.Error()))
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) sendError(c *Client, code, message string) {
	h.send(c, protocol.ServerEvent{
		Kind:    protocol.KindError,
		Payload: protocol.ErrorPayload{Code: code, Message: message},
	})
}
