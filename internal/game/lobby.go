package game

import (
	"log/slog"

	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/protocol"
)

// CreateLobby opens a matchmaking slot with the caller as sole member and
// creator. Players bound to an active match cannot open lobbies.
func (s *Service) CreateLobby(id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeMatchLocked(id) != nil {
		return model.ErrAlreadyInMatch
	}

	var code model.LobbyID
	for {
		code = model.LobbyID(s.random.String(CodeLength, CodeAlphabet))
		if _, taken := s.lobbies[code]; !taken {
			if _, taken := s.matches[model.MatchID(code)]; !taken {
				break
			}
		}
	}

	s.lobbies[code] = &model.Lobby{
		ID:        code,
		Members:   []model.PlayerID{id},
		CreatorID: id,
		CreatedAt: s.clock.Now(),
	}

	s.logger.Info("lobby created",
		slog.String("lobby_id", string(code)),
		slog.String("player_id", string(id)))

	s.pushLobbyListsLocked()
	s.updateSessionGaugesLocked()
	return nil
}

// JoinLobby resolves, in priority order: a leave-grace rejoin of the
// caller's own match, then joining a real open lobby (filling it starts the
// match atomically).
func (s *Service) JoinLobby(id model.PlayerID, lobbyID model.LobbyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A leave-grace player naming their own match is rejoining it, not
	// joining a lobby.
	if matchID, ok := s.leaving[id]; ok && matchID == model.MatchID(lobbyID) {
		return s.rejoinMatchLocked(id, matchID)
	}

	if s.activeMatchLocked(id) != nil {
		return model.ErrAlreadyInMatch
	}

	lobby, ok := s.lobbies[lobbyID]
	if !ok {
		return model.ErrLobbyNotFound
	}
	if lobby.HasMember(id) {
		return model.ErrAlreadyMember
	}
	if lobby.IsFull() {
		return model.ErrLobbyFull
	}

	lobby.Members = append(lobby.Members, id)

	if lobby.IsFull() {
		// Capacity reached: the lobby is consumed into a match in the same
		// critical section.
		delete(s.lobbies, lobbyID)
		s.startMatchLocked(model.MatchID(lobby.ID), lobby.Members[0], lobby.Members[1])
		return nil
	}

	s.pushLobbyListsLocked()
	return nil
}

// ListLobbies sends the caller a personalized snapshot of open lobbies
func (s *Service) ListLobbies(id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendLobbyListLocked(id)
	return nil
}

// lobbyEntriesLocked builds the personalized open-lobby view for one
// viewer: their leave-grace rejoin entry first, then a one-slot entry for a
// match whose other participant is in leave grace, then open lobbies.
func (s *Service) lobbyEntriesLocked(viewer model.PlayerID) []protocol.LobbyEntry {
	entries := []protocol.LobbyEntry{}

	if matchID, ok := s.leaving[viewer]; ok {
		if m := s.matches[matchID]; m != nil && m.State == model.MatchStateActive {
			opponent, _ := m.Opponent(viewer)
			entries = append(entries, protocol.LobbyEntry{
				ID:              string(matchID),
				CreatorNickname: s.nicknameLocked(opponent),
				Members:         1,
				Capacity:        model.LobbyCapacity,
				IsOwnLobby:      true,
				IsRejoin:        true,
			})
		}
	}

	if m := s.activeMatchLocked(viewer); m != nil {
		if opponent, ok := m.Opponent(viewer); ok {
			if _, opponentLeaving := s.leaving[opponent]; opponentLeaving {
				entries = append(entries, protocol.LobbyEntry{
					ID:              string(m.ID),
					CreatorNickname: s.nicknameLocked(viewer),
					Members:         1,
					Capacity:        model.LobbyCapacity,
					IsOwnLobby:      true,
				})
			}
		}
	}

	for _, lobby := range s.lobbies {
		if lobby.IsFull() {
			continue
		}
		entries = append(entries, protocol.LobbyEntry{
			ID:              string(lobby.ID),
			CreatorNickname: s.nicknameLocked(lobby.CreatorID),
			Members:         len(lobby.Members),
			Capacity:        model.LobbyCapacity,
			IsOwnLobby:      lobby.HasMember(viewer),
		})
	}
	return entries
}

func (s *Service) sendLobbyListLocked(viewer model.PlayerID) {
	s.broadcaster.ToPlayer(viewer, protocol.ServerEvent{
		Kind:    protocol.KindLobbyList,
		Payload: protocol.LobbyListPayload{Entries: s.lobbyEntriesLocked(viewer)},
	})
}

// pushLobbyListsLocked broadcasts personalized lobby snapshots to every
// connected client that is not absorbed in an active match
func (s *Service) pushLobbyListsLocked() {
	for _, id := range s.broadcaster.ConnectedPlayers() {
		m := s.activeMatchLocked(id)
		if m != nil {
			// Matched players still get a push while their opponent is in
			// leave grace (the match shows up as their one-slot lobby).
			opponent, ok := m.Opponent(id)
			if !ok {
				continue
			}
			if _, opponentLeaving := s.leaving[opponent]; !opponentLeaving {
				continue
			}
		}
		s.sendLobbyListLocked(id)
	}
}

// removeFromLobbiesLocked clears a player's lobby memberships (used when
// they enter a match); emptied lobbies are deleted
func (s *Service) removeFromLobbiesLocked(id model.PlayerID) {
	for code, lobby := range s.lobbies {
		if !lobby.HasMember(id) {
			continue
		}
		members := lobby.Members[:0]
		for _, m := range lobby.Members {
			if m != id {
				members = append(members, m)
			}
		}
		lobby.Members = members
		if len(lobby.Members) == 0 {
			delete(s.lobbies, code)
		}
	}
}
