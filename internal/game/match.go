package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/protocol"
	"github.com/jkoster/checkersgame-go/internal/rules"
)

// Match outcomes recorded in metrics and logs
const (
	outcomeWin         = "win"
	outcomeForfeit     = "forfeit"
	outcomeMoveTimeout = "move_timeout"
	outcomeDisconnect  = "disconnect"
	outcomeAbandoned   = "abandoned"
)

// startMatchLocked creates the authoritative session for a bound pair. The
// first player takes red and moves first.
func (s *Service) startMatchLocked(id model.MatchID, redPlayer, blackPlayer model.PlayerID) {
	now := s.clock.Now()
	m := &model.Match{
		ID:    id,
		Board: s.engine.InitialBoard(),
		State: model.MatchStateActive,
		Players: map[rules.Color]model.PlayerID{
			rules.Red:   redPlayer,
			rules.Black: blackPlayer,
		},
		Turn:          rules.Red,
		Captures:      map[rules.Color]int{rules.Red: 0, rules.Black: 0},
		TurnStartedAt: now,
		CreatedAt:     now,
	}

	s.matches[id] = m
	s.playerMatch[redPlayer] = id
	s.playerMatch[blackPlayer] = id
	s.removeFromLobbiesLocked(redPlayer)
	s.removeFromLobbiesLocked(blackPlayer)
	s.broadcaster.JoinMatch(id, redPlayer)
	s.broadcaster.JoinMatch(id, blackPlayer)

	s.armMoveTimerLocked(m)

	// Best-effort match record; on failure the in-memory id keeps working
	record := model.MatchRecord{
		ID:        id,
		PlayerA:   redPlayer,
		PlayerB:   blackPlayer,
		StartedAt: now,
	}
	s.persistAsync("create match", func(ctx context.Context) error {
		return s.storage.CreateMatch(ctx, &record)
	})

	for _, playerID := range []model.PlayerID{redPlayer, blackPlayer} {
		s.broadcaster.ToPlayer(playerID, protocol.ServerEvent{
			Kind:    protocol.KindMatchStart,
			Payload: s.matchStartPayloadLocked(m, playerID),
		})
	}

	s.logger.Info("match started",
		slog.String("match_id", string(id)),
		slog.String("red", string(redPlayer)),
		slog.String("black", string(blackPlayer)))

	s.metrics.MatchesStarted.Inc()
	s.pushLobbyListsLocked()
	s.updateSessionGaugesLocked()
}

// ApplyMove validates and applies a move for the caller. On a capture
// continuation the mover keeps the turn and the clock is not reset;
// otherwise the turn flips and the move clock re-arms. Board and turn are
// mutated together only after the engine has fully validated the move.
func (s *Service) ApplyMove(id model.PlayerID, matchID model.MatchID, from, to rules.Square) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.matches[matchID]
	if m == nil {
		return model.ErrMatchNotFound
	}
	color, ok := m.ColorOf(id)
	if !ok {
		return model.ErrUnauthorized
	}
	if m.State != model.MatchStateActive || m.Winner != nil {
		return model.ErrMatchOver
	}
	if color != m.Turn {
		return model.ErrNotYourTurn
	}

	continuationActive := m.ContinuationFrom != nil
	var continuationFrom rules.Square
	if continuationActive {
		continuationFrom = *m.ContinuationFrom
	}

	validation := s.engine.ValidateMove(m.Board, from, to, color, continuationActive, continuationFrom)
	if !validation.Valid {
		return fmt.Errorf("%w: %s", model.ErrInvalidMove, validation.Reason)
	}

	board, result := s.engine.ApplyMove(m.Board, from, to, color, validation.Captured)

	m.Board = board
	m.Captures[color] += len(result.Captured)
	m.MoveCount++

	move := model.MoveRecord{
		MatchID:  matchID,
		Index:    m.MoveCount,
		From:     from,
		To:       to,
		PlayedAt: s.clock.Now(),
	}
	s.persistAsync("log move", func(ctx context.Context) error {
		return s.storage.AddMove(ctx, &move)
	})

	// Crowning ends the turn even if another jump would be available
	continues := len(result.Captured) > 0 && !result.Crowned &&
		s.engine.CanContinueJump(m.Board, to, color)

	if continues {
		m.ContinuationFrom = &rules.Square{Row: to.Row, Col: to.Col}
	} else {
		m.ContinuationFrom = nil
		m.Turn = color.Opponent()
		m.TurnStartedAt = s.clock.Now()
		s.armMoveTimerLocked(m)
	}

	// A mover owing a continuation jump always has a move; terminal states
	// are only possible for the incoming turn owner.
	if !continues {
		if over, winner := s.engine.CheckGameOver(m.Board, m.Turn); over {
			s.endMatchLocked(m, winner, outcomeWin)
			return nil
		}
	}

	accepted := protocol.ServerEvent{
		Kind: protocol.KindMoveAccepted,
		Payload: protocol.MoveAcceptedPayload{
			MatchID:            string(matchID),
			Board:              m.Board,
			NextTurn:           m.Turn,
			From:               from,
			To:                 to,
			ContinuationActive: continues,
			ContinuationFrom:   m.ContinuationFrom,
			Captures:           copyCaptures(m.Captures),
			MoveTimeRemaining:  s.remainingMoveTimeLocked(m),
		},
	}
	s.broadcaster.ToMatch(matchID, accepted)
	// Also directly to the mover: protects against a channel-membership
	// race immediately after a reconnect.
	s.broadcaster.ToPlayer(id, accepted)
	return nil
}

// Forfeit ends the match immediately with the caller as loser, bypassing
// any grace period
func (s *Service) Forfeit(id model.PlayerID, matchID model.MatchID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.matches[matchID]
	if m == nil {
		return model.ErrMatchNotFound
	}
	color, ok := m.ColorOf(id)
	if !ok {
		return model.ErrUnauthorized
	}
	if m.State != model.MatchStateActive {
		return model.ErrMatchOver
	}

	s.endMatchLocked(m, color.Opponent(), outcomeForfeit)
	return nil
}

// LeaveMatch starts the leave grace period: the caller drops out of the
// match channel but the session stays alive for LeaveTimeout, during which
// a rejoin restores everything
func (s *Service) LeaveMatch(id model.PlayerID, matchID model.MatchID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.matches[matchID]
	if m == nil {
		return model.ErrMatchNotFound
	}
	if !m.IsParticipant(id) {
		return model.ErrUnauthorized
	}
	if m.State != model.MatchStateActive {
		return model.ErrMatchOver
	}

	s.leaving[id] = matchID
	s.broadcaster.LeaveMatch(matchID, id)
	s.armLeaveTimerLocked(id, matchID)

	leaving := protocol.ServerEvent{
		Kind: protocol.KindMatchLeaving,
		Payload: protocol.MatchLeavingPayload{
			MatchID:       string(matchID),
			TimeRemaining: s.cfg.LeaveTimeout.Seconds(),
		},
	}
	s.broadcaster.ToPlayer(id, leaving)
	// Only the opponent remains in the channel at this point
	s.broadcaster.ToMatch(matchID, leaving)

	s.logger.Info("player leaving match",
		slog.String("player_id", string(id)),
		slog.String("match_id", string(matchID)))

	s.pushLobbyListsLocked()
	return nil
}

// RejoinMatch cancels the caller's leave grace period and restores full
// match membership and state
func (s *Service) RejoinMatch(id model.PlayerID, matchID model.MatchID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if leavingFrom, ok := s.leaving[id]; !ok || leavingFrom != matchID {
		return model.ErrUnauthorized
	}
	return s.rejoinMatchLocked(id, matchID)
}

// rejoinMatchLocked completes a rejoin for a player known to be in leave
// grace for this match
func (s *Service) rejoinMatchLocked(id model.PlayerID, matchID model.MatchID) error {
	m := s.matches[matchID]
	if m == nil || m.State != model.MatchStateActive {
		return model.ErrMatchNotFound
	}

	delete(s.leaving, id)
	s.cancelLeaveTimerLocked(id)
	s.broadcaster.JoinMatch(matchID, id)

	s.broadcaster.ToPlayer(id, protocol.ServerEvent{
		Kind:    protocol.KindMatchRejoined,
		Payload: s.matchStartPayloadLocked(m, id),
	})
	if opponent, ok := m.Opponent(id); ok {
		s.broadcaster.ToPlayer(opponent, protocol.ServerEvent{
			Kind:    protocol.KindMatchRejoined,
			Payload: protocol.NoticePayload{Message: s.nicknameLocked(id) + " rejoined the match"},
		})
	}

	s.logger.Info("player rejoined match",
		slog.String("player_id", string(id)),
		slog.String("match_id", string(matchID)))

	s.pushLobbyListsLocked()
	return nil
}

// endMatchLocked is the single terminal transition. It is idempotent: once
// a winner is set every further move and timer firing for the match is a
// no-op. All timers keyed to the match or its participants are cancelled in
// the same critical section, and the player->match index is cleared so no
// stale mapping outlives the session.
func (s *Service) endMatchLocked(m *model.Match, winner rules.Color, outcome string) {
	if m.State != model.MatchStateActive || m.Winner != nil {
		return
	}

	m.State = model.MatchStateGameOver
	winnerCopy := winner
	m.Winner = &winnerCopy

	s.cancelMoveTimerLocked(m.ID)
	for _, playerID := range m.Players {
		s.cancelDisconnectTimerLocked(playerID)
		s.cancelLeaveTimerLocked(playerID)
		delete(s.leaving, playerID)
		delete(s.playerMatch, playerID)
	}

	winnerID := m.Players[winner]
	s.persistAsync("finish match", func(ctx context.Context) error {
		return s.storage.FinishMatch(ctx, m.ID, &winnerID)
	})

	if outcome == outcomeAbandoned {
		// The abandoning player already left the channel; the remaining
		// player gets a neutral notice (the win is still credited in the
		// stored history).
		s.broadcaster.ToMatch(m.ID, protocol.ServerEvent{
			Kind:    protocol.KindMatchEnded,
			Payload: protocol.NoticePayload{Message: "opponent abandoned the match"},
		})
	} else {
		s.broadcaster.ToMatch(m.ID, protocol.ServerEvent{
			Kind: protocol.KindGameOver,
			Payload: protocol.GameOverPayload{
				MatchID: string(m.ID),
				Winner:  winner,
				Reason:  outcome,
			},
		})
	}

	// Keep the finished session around long enough for final messages and
	// rematch ballots, then drop it from memory.
	matchID := m.ID
	s.clock.AfterFunc(s.cfg.RetireDelay, func() {
		s.retire(matchID)
	})

	s.logger.Info("match ended",
		slog.String("match_id", string(m.ID)),
		slog.String("winner", string(winner)),
		slog.String("outcome", outcome))

	s.metrics.MatchesFinished.WithLabelValues(outcome).Inc()
	s.pushLobbyListsLocked()
	s.updateSessionGaugesLocked()
}

// retire removes a finished session from memory
func (s *Service) retire(matchID model.MatchID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.matches[matchID]
	if m == nil || m.State != model.MatchStateGameOver {
		return
	}

	delete(s.matches, matchID)
	delete(s.ballots, matchID)
	s.broadcaster.CloseMatch(matchID)
	s.updateSessionGaugesLocked()

	s.logger.Info("match retired", slog.String("match_id", string(matchID)))
}
