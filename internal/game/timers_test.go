package game

import (
	"time"

	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/protocol"
	"github.com/jkoster/checkersgame-go/internal/rules"
)

// Move timer tests

func (s *ServiceSuite) TestMoveTimeoutForfeitsTurnHolder() {
	red, black, matchID := s.startMatch()

	s.clock.Advance(s.service.cfg.MoveTimeout)

	m := s.service.matches[matchID]
	s.Equal(model.MatchStateGameOver, m.State)
	s.Require().NotNil(m.Winner)
	s.Equal(rules.Black, *m.Winner)

	event, ok := s.broadcaster.lastOfKind(red, protocol.KindGameOver)
	s.Require().True(ok)
	s.Equal("move_timeout", event.Payload.(protocol.GameOverPayload).Reason)
	_, ok = s.broadcaster.lastOfKind(black, protocol.KindGameOver)
	s.True(ok)
}

func (s *ServiceSuite) TestMoveResetsClockForNextTurn() {
	red, black, matchID := s.startMatch()

	s.clock.Advance(s.service.cfg.MoveTimeout - time.Second)
	s.Require().NoError(s.service.ApplyMove(red, matchID,
		rules.Square{Row: 5, Col: 0}, rules.Square{Row: 4, Col: 1}))

	// Red's timer was replaced, black gets a full clock
	s.clock.Advance(s.service.cfg.MoveTimeout - time.Second)
	s.Equal(model.MatchStateActive, s.service.matches[matchID].State)

	s.Require().NoError(s.service.ApplyMove(black, matchID,
		rules.Square{Row: 2, Col: 1}, rules.Square{Row: 3, Col: 0}))
	s.clock.Advance(s.service.cfg.MoveTimeout - time.Second)
	s.Equal(model.MatchStateActive, s.service.matches[matchID].State)
}

func (s *ServiceSuite) TestContinuationDoesNotResetClock() {
	red, _, matchID := s.startMatch()

	m := s.service.matches[matchID]
	var b rules.Board
	b[5][2] = rules.RedMan
	b[4][3] = rules.BlackMan
	b[2][3] = rules.BlackMan
	b[0][1] = rules.BlackMan
	m.Board = b

	s.clock.Advance(s.service.cfg.MoveTimeout - time.Second)
	s.Require().NoError(s.service.ApplyMove(red, matchID,
		rules.Square{Row: 5, Col: 2}, rules.Square{Row: 3, Col: 4}))
	s.Require().NotNil(m.ContinuationFrom)

	// The mover is still on the original clock; it expires mid-continuation
	s.clock.Advance(time.Second)
	s.Equal(model.MatchStateGameOver, m.State)
	s.Equal(rules.Black, *m.Winner)
}

// Disconnect timer tests

func (s *ServiceSuite) TestDisconnectGraceExpiryForfeits() {
	red, black, matchID := s.startMatch()

	s.broadcaster.setConnected(red, false)
	s.service.PlayerDisconnected(red, false)

	_, ok := s.broadcaster.lastOfKind(black, protocol.KindPlayerDisconnected)
	s.True(ok)

	s.clock.Advance(s.service.cfg.DisconnectTimeout)

	m := s.service.matches[matchID]
	s.Equal(model.MatchStateGameOver, m.State)
	s.Equal(rules.Black, *m.Winner)

	event, _ := s.broadcaster.lastOfKind(black, protocol.KindGameOver)
	s.Equal("disconnect", event.Payload.(protocol.GameOverPayload).Reason)
}

func (s *ServiceSuite) TestReconnectWithinGraceCancelsForfeit() {
	red, black, matchID := s.startMatch()

	s.broadcaster.setConnected(red, false)
	s.service.PlayerDisconnected(red, false)
	s.clock.Advance(10 * time.Second)

	s.broadcaster.setConnected(red, true)
	s.service.PlayerConnected(red)

	_, ok := s.broadcaster.lastOfKind(black, protocol.KindPlayerReconnected)
	s.True(ok)
	event, ok := s.broadcaster.lastOfKind(red, protocol.KindMatchStart)
	s.Require().True(ok)
	s.Equal(string(matchID), event.Payload.(protocol.MatchStartPayload).MatchID)

	// The old grace timer must not fire later
	s.clock.Advance(s.service.cfg.DisconnectTimeout)
	s.Equal(model.MatchStateActive, s.service.matches[matchID].State)
}

func (s *ServiceSuite) TestDisconnectIdlePlayerIsNoOp() {
	id := s.connect("alice")

	s.broadcaster.setConnected(id, false)
	s.service.PlayerDisconnected(id, false)

	s.Equal(0, s.clock.PendingTimers())
}

func (s *ServiceSuite) TestTransientDropRecoversBeforeProbe() {
	red, black, matchID := s.startMatch()

	// Connection flaps but is back up by the time the probe fires
	s.service.PlayerDisconnected(red, true)
	s.clock.Advance(s.service.cfg.DisconnectProbe)

	s.Equal(0, s.broadcaster.countOfKind(black, protocol.KindPlayerDisconnected))
	s.clock.Advance(s.service.cfg.DisconnectTimeout)
	s.Equal(model.MatchStateActive, s.service.matches[matchID].State)
}

func (s *ServiceSuite) TestTransientDropStillDownArmsGrace() {
	red, black, matchID := s.startMatch()

	s.broadcaster.setConnected(red, false)
	s.service.PlayerDisconnected(red, true)
	s.clock.Advance(s.service.cfg.DisconnectProbe)

	_, ok := s.broadcaster.lastOfKind(black, protocol.KindPlayerDisconnected)
	s.True(ok)

	s.clock.Advance(s.service.cfg.DisconnectTimeout)
	s.Equal(model.MatchStateGameOver, s.service.matches[matchID].State)
}

func (s *ServiceSuite) TestDuplicateDisconnectKeepsOriginalDeadline() {
	red, _, matchID := s.startMatch()

	s.broadcaster.setConnected(red, false)
	s.service.PlayerDisconnected(red, false)
	s.clock.Advance(20 * time.Second)

	// A second arming attempt must not extend the countdown
	s.service.PlayerDisconnected(red, false)
	s.clock.Advance(10 * time.Second)

	s.Equal(model.MatchStateGameOver, s.service.matches[matchID].State)
}

// Leave timer tests

func (s *ServiceSuite) TestLeaveGraceExpiryEndsMatchNeutrally() {
	red, black, matchID := s.startMatch()

	s.Require().NoError(s.service.LeaveMatch(red, matchID))
	s.clock.Advance(s.service.cfg.LeaveTimeout)

	m := s.service.matches[matchID]
	s.Equal(model.MatchStateGameOver, m.State)
	// The remaining player is credited the win in the record
	s.Require().NotNil(m.Winner)
	s.Equal(rules.Black, *m.Winner)

	// But the broadcast is a neutral ending, not a game-over
	_, ok := s.broadcaster.lastOfKind(black, protocol.KindMatchEnded)
	s.True(ok)
	_, ok = s.broadcaster.lastOfKind(black, protocol.KindGameOver)
	s.False(ok)
}

func (s *ServiceSuite) TestRejoinWithinGraceAvoidsForfeit() {
	red, _, matchID := s.startMatch()

	s.Require().NoError(s.service.LeaveMatch(red, matchID))
	s.clock.Advance(10 * time.Second)
	s.Require().NoError(s.service.RejoinMatch(red, matchID))

	s.clock.Advance(s.service.cfg.LeaveTimeout)
	s.Equal(model.MatchStateActive, s.service.matches[matchID].State)
}

// Timer cleanup tests

func (s *ServiceSuite) TestGameOverCancelsAllMatchTimers() {
	red, _, matchID := s.startMatch()

	s.broadcaster.setConnected(red, false)
	s.service.PlayerDisconnected(red, false)
	s.Require().NoError(s.service.Forfeit(red, matchID))

	s.Empty(s.service.moveTimers)
	s.Empty(s.service.disconnectTimers)
	s.Empty(s.service.leaveTimers)
}
