package game

import (
	"log/slog"

	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/protocol"
)

// Timer supervision. Invariant: at most one live timer per key. Arming a
// duplicate disconnect timer is a no-op; move and leave timers replace the
// prior one after cancellation. Real timers can fire after Stop, so every
// callback revalidates state (and the move timer its turn epoch) under the
// service lock before acting.

// armMoveTimerLocked (re)arms the per-match move clock
func (s *Service) armMoveTimerLocked(m *model.Match) {
	if t, ok := s.moveTimers[m.ID]; ok {
		t.Stop()
	}
	m.TurnEpoch++
	matchID, epoch := m.ID, m.TurnEpoch
	s.moveTimers[matchID] = s.clock.AfterFunc(s.cfg.MoveTimeout, func() {
		s.onMoveTimeout(matchID, epoch)
	})
}

func (s *Service) cancelMoveTimerLocked(matchID model.MatchID) {
	if t, ok := s.moveTimers[matchID]; ok {
		t.Stop()
		delete(s.moveTimers, matchID)
	}
}

// onMoveTimeout forfeits the player on turn when their clock runs out
func (s *Service) onMoveTimeout(matchID model.MatchID, epoch int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.moveTimers, matchID)

	m := s.matches[matchID]
	if m == nil || m.State != model.MatchStateActive || m.TurnEpoch != epoch {
		return
	}

	s.logger.Info("move clock expired",
		slog.String("match_id", string(matchID)),
		slog.String("turn", string(m.Turn)))
	s.endMatchLocked(m, m.Turn.Opponent(), outcomeMoveTimeout)
}

// armDisconnectTimerLocked starts the disconnect grace countdown for a
// matched player and warns the opponent. A second arming attempt while one
// is pending is a no-op.
func (s *Service) armDisconnectTimerLocked(id model.PlayerID) {
	m := s.activeMatchLocked(id)
	if m == nil {
		return
	}
	if _, pending := s.disconnectTimers[id]; pending {
		return
	}

	s.disconnectTimers[id] = s.clock.AfterFunc(s.cfg.DisconnectTimeout, func() {
		s.onDisconnectTimeout(id)
	})

	if opponent, ok := m.Opponent(id); ok {
		s.broadcaster.ToPlayer(opponent, protocol.ServerEvent{
			Kind:    protocol.KindPlayerDisconnected,
			Payload: protocol.NoticePayload{Message: s.nicknameLocked(id) + " disconnected, forfeit countdown started"},
		})
	}

	s.logger.Info("disconnect timer armed",
		slog.String("player_id", string(id)),
		slog.String("match_id", string(m.ID)))
}

func (s *Service) cancelDisconnectTimerLocked(id model.PlayerID) {
	if t, ok := s.disconnectTimers[id]; ok {
		t.Stop()
		delete(s.disconnectTimers, id)
	}
}

// onDisconnectTimeout forfeits a player who never reconnected
func (s *Service) onDisconnectTimeout(id model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, pending := s.disconnectTimers[id]; !pending {
		return
	}
	delete(s.disconnectTimers, id)

	m := s.activeMatchLocked(id)
	if m == nil {
		return
	}
	color, ok := m.ColorOf(id)
	if !ok {
		return
	}

	s.logger.Info("disconnect grace expired",
		slog.String("player_id", string(id)),
		slog.String("match_id", string(m.ID)))
	s.endMatchLocked(m, color.Opponent(), outcomeDisconnect)
}

// armLeaveTimerLocked starts the leave grace countdown, replacing any
// prior one
func (s *Service) armLeaveTimerLocked(id model.PlayerID, matchID model.MatchID) {
	s.cancelLeaveTimerLocked(id)
	s.leaveTimers[id] = s.clock.AfterFunc(s.cfg.LeaveTimeout, func() {
		s.onLeaveTimeout(id, matchID)
	})
}

func (s *Service) cancelLeaveTimerLocked(id model.PlayerID) {
	if t, ok := s.leaveTimers[id]; ok {
		t.Stop()
		delete(s.leaveTimers, id)
	}
}

// onLeaveTimeout ends a match whose leaver never came back. The remaining
// player is credited the win in stored history but receives a neutral
// match-ended notice rather than a game-over.
func (s *Service) onLeaveTimeout(id model.PlayerID, matchID model.MatchID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if leavingFrom, ok := s.leaving[id]; !ok || leavingFrom != matchID {
		return
	}
	delete(s.leaveTimers, id)

	m := s.matches[matchID]
	if m == nil || m.State != model.MatchStateActive {
		return
	}
	color, ok := m.ColorOf(id)
	if !ok {
		return
	}

	s.logger.Info("leave grace expired",
		slog.String("player_id", string(id)),
		slog.String("match_id", string(matchID)))
	s.endMatchLocked(m, color.Opponent(), outcomeAbandoned)
}
