package game

import (
	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/protocol"
	"github.com/jkoster/checkersgame-go/internal/rules"
)

// ApplyMove tests

func (s *ServiceSuite) TestApplyMoveFlipsTurn() {
	red, black, matchID := s.startMatch()

	err := s.service.ApplyMove(red, matchID, rules.Square{Row: 5, Col: 0}, rules.Square{Row: 4, Col: 1})
	s.Require().NoError(err)

	m := s.service.matches[matchID]
	s.Equal(rules.Black, m.Turn)
	s.Equal(rules.RedMan, m.Board[4][1])
	s.Equal(rules.Empty, m.Board[5][0])
	s.Equal(1, m.MoveCount)

	event, ok := s.broadcaster.lastOfKind(black, protocol.KindMoveAccepted)
	s.Require().True(ok)
	payload := event.Payload.(protocol.MoveAcceptedPayload)
	s.Equal(rules.Black, payload.NextTurn)
	s.False(payload.ContinuationActive)
}

func (s *ServiceSuite) TestApplyMoveRejectsOutOfTurn() {
	_, black, matchID := s.startMatch()

	err := s.service.ApplyMove(black, matchID, rules.Square{Row: 2, Col: 1}, rules.Square{Row: 3, Col: 0})
	s.ErrorIs(err, model.ErrNotYourTurn)
}

func (s *ServiceSuite) TestApplyMoveRejectsIllegalMove() {
	red, _, matchID := s.startMatch()

	err := s.service.ApplyMove(red, matchID, rules.Square{Row: 5, Col: 0}, rules.Square{Row: 3, Col: 2})
	s.ErrorIs(err, model.ErrInvalidMove)

	// State untouched on rejection
	m := s.service.matches[matchID]
	s.Equal(rules.Red, m.Turn)
	s.Equal(0, m.MoveCount)
}

func (s *ServiceSuite) TestApplyMoveRejectsNonParticipant() {
	_, _, matchID := s.startMatch()
	carol := s.connect("carol")

	err := s.service.ApplyMove(carol, matchID, rules.Square{Row: 5, Col: 0}, rules.Square{Row: 4, Col: 1})
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestApplyMoveUnknownMatch() {
	id := s.connect("alice")

	err := s.service.ApplyMove(id, "NOPE42", rules.Square{}, rules.Square{})
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *ServiceSuite) TestCaptureContinuationKeepsTurn() {
	red, black, matchID := s.startMatch()

	m := s.service.matches[matchID]
	var b rules.Board
	b[5][2] = rules.RedMan
	b[4][3] = rules.BlackMan
	b[2][3] = rules.BlackMan
	b[0][1] = rules.BlackMan // keeps black alive after the double jump
	m.Board = b

	err := s.service.ApplyMove(red, matchID, rules.Square{Row: 5, Col: 2}, rules.Square{Row: 3, Col: 4})
	s.Require().NoError(err)

	s.Equal(rules.Red, m.Turn)
	s.NotNil(m.ContinuationFrom)
	s.Equal(rules.Square{Row: 3, Col: 4}, *m.ContinuationFrom)
	s.Equal(1, m.Captures[rules.Red])

	event, _ := s.broadcaster.lastOfKind(red, protocol.KindMoveAccepted)
	payload := event.Payload.(protocol.MoveAcceptedPayload)
	s.True(payload.ContinuationActive)

	// The opponent stays locked out mid-continuation
	err = s.service.ApplyMove(black, matchID, rules.Square{Row: 2, Col: 3}, rules.Square{Row: 3, Col: 2})
	s.ErrorIs(err, model.ErrNotYourTurn)

	// Completing the continuation flips the turn
	err = s.service.ApplyMove(red, matchID, rules.Square{Row: 3, Col: 4}, rules.Square{Row: 1, Col: 2})
	s.Require().NoError(err)
	s.Equal(rules.Black, m.Turn)
	s.Nil(m.ContinuationFrom)
	s.Equal(2, m.Captures[rules.Red])
}

func (s *ServiceSuite) TestContinuationRestrictedToJumpingPiece() {
	red, _, matchID := s.startMatch()

	m := s.service.matches[matchID]
	var b rules.Board
	b[5][2] = rules.RedMan
	b[4][3] = rules.BlackMan
	b[2][3] = rules.BlackMan
	b[6][5] = rules.RedMan
	m.Board = b

	s.Require().NoError(s.service.ApplyMove(red, matchID,
		rules.Square{Row: 5, Col: 2}, rules.Square{Row: 3, Col: 4}))

	// A different piece cannot move while the continuation is pending
	err := s.service.ApplyMove(red, matchID, rules.Square{Row: 6, Col: 5}, rules.Square{Row: 5, Col: 4})
	s.ErrorIs(err, model.ErrInvalidMove)
}

func (s *ServiceSuite) TestCrowningEndsTurnDespiteAvailableJump() {
	red, _, matchID := s.startMatch()

	m := s.service.matches[matchID]
	var b rules.Board
	b[2][2] = rules.RedMan
	b[1][3] = rules.BlackMan
	b[1][5] = rules.BlackMan // would be jumpable if the turn continued
	b[7][0] = rules.BlackMan // keeps black alive and movable
	m.Board = b

	err := s.service.ApplyMove(red, matchID, rules.Square{Row: 2, Col: 2}, rules.Square{Row: 0, Col: 4})
	s.Require().NoError(err)

	s.Equal(rules.RedKing, m.Board[0][4])
	s.Equal(rules.Black, m.Turn)
	s.Nil(m.ContinuationFrom)
}

func (s *ServiceSuite) TestCapturingLastPieceEndsMatch() {
	red, black, matchID := s.startMatch()

	m := s.service.matches[matchID]
	var b rules.Board
	b[3][2] = rules.RedMan
	b[2][1] = rules.BlackMan
	m.Board = b

	err := s.service.ApplyMove(red, matchID, rules.Square{Row: 3, Col: 2}, rules.Square{Row: 1, Col: 0})
	s.Require().NoError(err)

	s.Equal(model.MatchStateGameOver, m.State)
	s.Require().NotNil(m.Winner)
	s.Equal(rules.Red, *m.Winner)

	event, ok := s.broadcaster.lastOfKind(black, protocol.KindGameOver)
	s.Require().True(ok)
	payload := event.Payload.(protocol.GameOverPayload)
	s.Equal(rules.Red, payload.Winner)
	s.Equal("win", payload.Reason)
}

func (s *ServiceSuite) TestMoveAfterGameOverRejected() {
	red, _, matchID := s.startMatch()
	s.Require().NoError(s.service.Forfeit(red, matchID))

	err := s.service.ApplyMove(red, matchID, rules.Square{Row: 5, Col: 0}, rules.Square{Row: 4, Col: 1})
	s.ErrorIs(err, model.ErrMatchOver)
}

// Forfeit tests

func (s *ServiceSuite) TestForfeitCreditsOpponent() {
	red, black, matchID := s.startMatch()

	s.Require().NoError(s.service.Forfeit(red, matchID))

	m := s.service.matches[matchID]
	s.Equal(model.MatchStateGameOver, m.State)
	s.Require().NotNil(m.Winner)
	s.Equal(rules.Black, *m.Winner)

	event, ok := s.broadcaster.lastOfKind(black, protocol.KindGameOver)
	s.Require().True(ok)
	s.Equal("forfeit", event.Payload.(protocol.GameOverPayload).Reason)
}

func (s *ServiceSuite) TestForfeitRejectsNonParticipant() {
	_, _, matchID := s.startMatch()
	carol := s.connect("carol")

	s.ErrorIs(s.service.Forfeit(carol, matchID), model.ErrUnauthorized)
}

func (s *ServiceSuite) TestWinnerImmutableAfterGameOver() {
	red, black, matchID := s.startMatch()

	s.Require().NoError(s.service.Forfeit(red, matchID))
	m := s.service.matches[matchID]
	s.Equal(rules.Black, *m.Winner)

	// A second terminal attempt cannot flip the winner
	s.ErrorIs(s.service.Forfeit(black, matchID), model.ErrMatchOver)
	s.Equal(rules.Black, *m.Winner)
}

// LeaveMatch / RejoinMatch tests

func (s *ServiceSuite) TestLeaveMatchStartsGracePeriod() {
	red, black, matchID := s.startMatch()

	s.Require().NoError(s.service.LeaveMatch(red, matchID))

	s.Equal(matchID, s.service.leaving[red])
	s.False(s.broadcaster.isMember(matchID, red))
	s.True(s.broadcaster.isMember(matchID, black))

	event, ok := s.broadcaster.lastOfKind(red, protocol.KindMatchLeaving)
	s.Require().True(ok)
	payload := event.Payload.(protocol.MatchLeavingPayload)
	s.Equal(string(matchID), payload.MatchID)
	s.InDelta(s.service.cfg.LeaveTimeout.Seconds(), payload.TimeRemaining, 0.01)

	// Session stays alive: no forfeit yet
	s.Equal(model.MatchStateActive, s.service.matches[matchID].State)
}

func (s *ServiceSuite) TestRejoinMatchRestoresMembership() {
	red, black, matchID := s.startMatch()
	s.Require().NoError(s.service.LeaveMatch(red, matchID))

	s.Require().NoError(s.service.RejoinMatch(red, matchID))

	s.NotContains(s.service.leaving, red)
	s.True(s.broadcaster.isMember(matchID, red))

	event, ok := s.broadcaster.lastOfKind(red, protocol.KindMatchRejoined)
	s.Require().True(ok)
	payload := event.Payload.(protocol.MatchStartPayload)
	s.Equal(string(matchID), payload.MatchID)
	s.Equal(rules.Red, payload.Color)

	_, ok = s.broadcaster.lastOfKind(black, protocol.KindMatchRejoined)
	s.True(ok)
}

func (s *ServiceSuite) TestRejoinWithoutLeaveRejected() {
	red, _, matchID := s.startMatch()

	s.ErrorIs(s.service.RejoinMatch(red, matchID), model.ErrUnauthorized)
}

func (s *ServiceSuite) TestJoinLobbyNamingOwnMatchRejoins() {
	red, _, matchID := s.startMatch()
	s.Require().NoError(s.service.LeaveMatch(red, matchID))

	// The rejoin entry carries the match id, so joining it rejoins the match
	s.Require().NoError(s.service.JoinLobby(red, model.LobbyID(matchID)))

	s.NotContains(s.service.leaving, red)
	s.True(s.broadcaster.isMember(matchID, red))
}

func (s *ServiceSuite) TestLeaveMatchRejectsFinishedMatch() {
	red, _, matchID := s.startMatch()
	s.Require().NoError(s.service.Forfeit(red, matchID))

	s.ErrorIs(s.service.LeaveMatch(red, matchID), model.ErrMatchOver)
}

// Retirement tests

func (s *ServiceSuite) TestFinishedMatchRetiresAfterDelay() {
	red, _, matchID := s.startMatch()
	s.Require().NoError(s.service.Forfeit(red, matchID))

	s.clock.Advance(s.service.cfg.RetireDelay)

	s.NotContains(s.service.matches, matchID)
	s.Contains(s.broadcaster.closed, matchID)

	err := s.service.ApplyMove(red, matchID, rules.Square{Row: 5, Col: 0}, rules.Square{Row: 4, Col: 1})
	s.ErrorIs(err, model.ErrMatchNotFound)
}
