package game

import (
	"strings"

	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/protocol"
)

// Chat tests

func (s *ServiceSuite) TestChatRelayedToBothParticipants() {
	red, black, matchID := s.startMatch()

	s.Require().NoError(s.service.Chat(red, matchID, "  good luck  "))

	for _, id := range []model.PlayerID{red, black} {
		event, ok := s.broadcaster.lastOfKind(id, protocol.KindChatRelay)
		s.Require().True(ok)
		payload := event.Payload.(protocol.ChatRelayPayload)
		s.Equal("alice", payload.SenderNickname)
		s.Equal("good luck", payload.Text)
		s.False(payload.Timestamp.IsZero())
	}
}

func (s *ServiceSuite) TestChatRejectsEmptyText() {
	red, _, matchID := s.startMatch()

	s.ErrorIs(s.service.Chat(red, matchID, "   "), model.ErrValidation)
}

func (s *ServiceSuite) TestChatTruncatesLongText() {
	red, _, matchID := s.startMatch()

	s.Require().NoError(s.service.Chat(red, matchID, strings.Repeat("x", MaxChatLength+50)))

	event, _ := s.broadcaster.lastOfKind(red, protocol.KindChatRelay)
	s.Len(event.Payload.(protocol.ChatRelayPayload).Text, MaxChatLength)
}

func (s *ServiceSuite) TestChatRejectsNonParticipant() {
	_, _, matchID := s.startMatch()
	carol := s.connect("carol")

	s.ErrorIs(s.service.Chat(carol, matchID, "hello"), model.ErrUnauthorized)
}

func (s *ServiceSuite) TestChatStillOpenAfterGameOver() {
	red, black, matchID := s.startMatch()
	s.Require().NoError(s.service.Forfeit(red, matchID))

	s.Require().NoError(s.service.Chat(red, matchID, "rematch?"))

	_, ok := s.broadcaster.lastOfKind(black, protocol.KindChatRelay)
	s.True(ok)
}
