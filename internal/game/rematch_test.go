package game

import (
	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/protocol"
	"github.com/jkoster/checkersgame-go/internal/rules"
)

// RequestRematch tests

func (s *ServiceSuite) TestFirstRematchRequestNotifiesOpponent() {
	red, black, matchID := s.startMatch()
	s.Require().NoError(s.service.Forfeit(red, matchID))

	s.Require().NoError(s.service.RequestRematch(red, matchID))

	_, ok := s.broadcaster.lastOfKind(black, protocol.KindRematchRequested)
	s.True(ok)
	s.Len(s.service.matches, 1)
}

func (s *ServiceSuite) TestBothConsentsStartFreshMatch() {
	red, black, matchID := s.startMatch()
	s.Require().NoError(s.service.Forfeit(red, matchID))

	s.Require().NoError(s.service.RequestRematch(red, matchID))
	s.Require().NoError(s.service.RequestRematch(black, matchID))

	s.Require().Len(s.service.matches, 2)

	var rematch *model.Match
	for id, m := range s.service.matches {
		if id != matchID {
			rematch = m
		}
	}
	s.Require().NotNil(rematch)
	s.Equal(model.MatchStateActive, rematch.State)
	s.Equal(rules.Red, rematch.Turn)
	s.Equal(0, rematch.MoveCount)

	// Default policy swaps colors between games
	s.Equal(black, rematch.Players[rules.Red])
	s.Equal(red, rematch.Players[rules.Black])

	event, ok := s.broadcaster.lastOfKind(red, protocol.KindMatchStart)
	s.Require().True(ok)
	s.Equal(string(rematch.ID), event.Payload.(protocol.MatchStartPayload).MatchID)
}

func (s *ServiceSuite) TestRematchKeepsColorsWhenSwapDisabled() {
	s.service.cfg.RematchSwapColors = false

	red, black, matchID := s.startMatch()
	s.Require().NoError(s.service.Forfeit(red, matchID))
	s.Require().NoError(s.service.RequestRematch(red, matchID))
	s.Require().NoError(s.service.RequestRematch(black, matchID))

	var rematch *model.Match
	for id, m := range s.service.matches {
		if id != matchID {
			rematch = m
		}
	}
	s.Require().NotNil(rematch)
	s.Equal(red, rematch.Players[rules.Red])
	s.Equal(black, rematch.Players[rules.Black])
}

func (s *ServiceSuite) TestRematchOnLiveMatchIgnored() {
	red, _, matchID := s.startMatch()

	s.Require().NoError(s.service.RequestRematch(red, matchID))

	s.Empty(s.service.ballots)
	s.Len(s.service.matches, 1)
}

func (s *ServiceSuite) TestRematchFromNonParticipantIgnored() {
	red, black, matchID := s.startMatch()
	carol := s.connect("carol")
	s.Require().NoError(s.service.Forfeit(red, matchID))

	s.Require().NoError(s.service.RequestRematch(carol, matchID))
	s.Require().NoError(s.service.RequestRematch(black, matchID))

	// Carol's request must not count toward the ballot
	s.Len(s.service.matches, 1)
}

func (s *ServiceSuite) TestDuplicateConsentCountsOnce() {
	red, _, matchID := s.startMatch()
	s.Require().NoError(s.service.Forfeit(red, matchID))

	s.Require().NoError(s.service.RequestRematch(red, matchID))
	s.Require().NoError(s.service.RequestRematch(red, matchID))

	s.Len(s.service.matches, 1)
}

func (s *ServiceSuite) TestRematchAfterRetirementIgnored() {
	red, black, matchID := s.startMatch()
	s.Require().NoError(s.service.Forfeit(red, matchID))
	s.clock.Advance(s.service.cfg.RetireDelay)

	s.Require().NoError(s.service.RequestRematch(red, matchID))
	s.Require().NoError(s.service.RequestRematch(black, matchID))

	s.Empty(s.service.matches)
}
