package game

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/protocol"
)

// EstablishIdentity binds a connection to a stable player identity. A prior
// id that resolves to a known identity is reused (nickname is
// last-write-wins); otherwise a fresh identity is minted. The presence side
// of (re)connection is handled by PlayerConnected once the transport has
// registered the connection under the returned id.
func (s *Service) EstablishIdentity(priorID, nickname string) (*model.Player, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, model.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if priorID != "" {
		if player, ok := s.players[model.PlayerID(priorID)]; ok {
			player.Nickname = nickname
			s.savePlayerLocked(player)
			return player, nil
		}
	}

	player := &model.Player{
		ID:        model.PlayerID(s.random.String(PlayerIDLength, CodeAlphabet)),
		Nickname:  nickname,
		CreatedAt: s.clock.Now(),
	}
	s.players[player.ID] = player
	s.savePlayerLocked(player)

	s.logger.Info("identity established",
		slog.String("player_id", string(player.ID)),
		slog.String("nickname", nickname))
	return player, nil
}

func (s *Service) savePlayerLocked(player *model.Player) {
	record := *player
	s.persistAsync("save player", func(ctx context.Context) error {
		return s.storage.SavePlayer(ctx, &record)
	})
}

// PlayerConnected wires presence for a freshly identified connection. A
// live, non-terminal participant is taken down the reconnection path: the
// pending disconnect timer is cancelled, match channel membership is
// restored and the caller receives a full-state resync. A player in leave
// grace is not auto-rejoined (leaving was deliberate); they get the lobby
// list with their rejoin entry instead, like any idle client.
func (s *Service) PlayerConnected(id model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelDisconnectTimerLocked(id)

	if _, isLeaving := s.leaving[id]; !isLeaving {
		if m := s.activeMatchLocked(id); m != nil {
			s.broadcaster.JoinMatch(m.ID, id)
			if opponent, ok := m.Opponent(id); ok {
				s.broadcaster.ToPlayer(opponent, protocol.ServerEvent{
					Kind:    protocol.KindPlayerReconnected,
					Payload: protocol.NoticePayload{Message: s.nicknameLocked(id) + " reconnected"},
				})
			}
			s.broadcaster.ToPlayer(id, protocol.ServerEvent{
				Kind:    protocol.KindMatchStart,
				Payload: s.matchStartPayloadLocked(m, id),
			})
			s.logger.Info("player reconnected to match",
				slog.String("player_id", string(id)),
				slog.String("match_id", string(m.ID)))
			return
		}
	}

	s.sendLobbyListLocked(id)
}

// PlayerDisconnected handles a dropped connection for an identified player.
// Transient transport errors wait a short probe and only count as a
// disconnect if the identity is still unreachable afterwards; genuine drops
// arm the grace timer immediately.
func (s *Service) PlayerDisconnected(id model.PlayerID, transient bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if transient {
		s.clock.AfterFunc(s.cfg.DisconnectProbe, func() {
			s.onDisconnectProbe(id)
		})
		return
	}
	s.armDisconnectTimerLocked(id)
}

func (s *Service) onDisconnectProbe(id model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.broadcaster.IsConnected(id) {
		return
	}
	s.armDisconnectTimerLocked(id)
}
