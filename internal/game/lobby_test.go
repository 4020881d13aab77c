package game

import (
	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/protocol"
	"github.com/jkoster/checkersgame-go/internal/rules"
)

// CreateLobby tests

func (s *ServiceSuite) TestCreateLobbySucceeds() {
	id := s.connect("alice")

	s.Require().NoError(s.service.CreateLobby(id))

	s.Len(s.service.lobbies, 1)
	for _, lobby := range s.service.lobbies {
		s.Equal(id, lobby.CreatorID)
		s.Equal([]model.PlayerID{id}, lobby.Members)
	}
}

func (s *ServiceSuite) TestCreateLobbyPushesListToIdlePlayers() {
	alice := s.connect("alice")
	bob := s.connect("bob")

	before := s.broadcaster.countOfKind(bob, protocol.KindLobbyList)
	s.Require().NoError(s.service.CreateLobby(alice))

	s.Equal(before+1, s.broadcaster.countOfKind(bob, protocol.KindLobbyList))

	event, _ := s.broadcaster.lastOfKind(bob, protocol.KindLobbyList)
	entries := event.Payload.(protocol.LobbyListPayload).Entries
	s.Require().Len(entries, 1)
	s.Equal("alice", entries[0].CreatorNickname)
	s.Equal(1, entries[0].Members)
	s.Equal(model.LobbyCapacity, entries[0].Capacity)
	s.False(entries[0].IsOwnLobby)
}

func (s *ServiceSuite) TestCreateLobbyMarksOwnLobbyForCreator() {
	alice := s.connect("alice")
	s.Require().NoError(s.service.CreateLobby(alice))

	event, _ := s.broadcaster.lastOfKind(alice, protocol.KindLobbyList)
	entries := event.Payload.(protocol.LobbyListPayload).Entries
	s.Require().Len(entries, 1)
	s.True(entries[0].IsOwnLobby)
}

func (s *ServiceSuite) TestCreateLobbyRejectedWhileInMatch() {
	red, _, _ := s.startMatch()

	s.ErrorIs(s.service.CreateLobby(red), model.ErrAlreadyInMatch)
}

// JoinLobby tests

func (s *ServiceSuite) TestJoinLobbyFillingStartsMatch() {
	red, black, matchID := s.startMatch()

	// The lobby was consumed into the match atomically
	s.Empty(s.service.lobbies)
	s.Require().Contains(s.service.matches, matchID)

	m := s.service.matches[matchID]
	s.Equal(model.MatchStateActive, m.State)
	s.Equal(red, m.Players[rules.Red])
	s.Equal(black, m.Players[rules.Black])
	s.True(s.broadcaster.isMember(matchID, red))
	s.True(s.broadcaster.isMember(matchID, black))
}

func (s *ServiceSuite) TestJoinLobbyNotFound() {
	id := s.connect("alice")

	s.ErrorIs(s.service.JoinLobby(id, "NOPE42"), model.ErrLobbyNotFound)
}

func (s *ServiceSuite) TestJoinLobbyRejectsCreator() {
	id := s.connect("alice")
	s.Require().NoError(s.service.CreateLobby(id))

	var lobbyID model.LobbyID
	for code := range s.service.lobbies {
		lobbyID = code
	}

	s.ErrorIs(s.service.JoinLobby(id, lobbyID), model.ErrAlreadyMember)
}

func (s *ServiceSuite) TestJoinLobbyRejectedWhileInMatch() {
	_, black, _ := s.startMatch()
	carol := s.connect("carol")
	s.Require().NoError(s.service.CreateLobby(carol))

	var lobbyID model.LobbyID
	for code := range s.service.lobbies {
		lobbyID = code
	}

	s.ErrorIs(s.service.JoinLobby(black, lobbyID), model.ErrAlreadyInMatch)
}

func (s *ServiceSuite) TestMatchStartSentToBothPlayers() {
	red, black, matchID := s.startMatch()

	redEvent, ok := s.broadcaster.lastOfKind(red, protocol.KindMatchStart)
	s.Require().True(ok)
	redPayload := redEvent.Payload.(protocol.MatchStartPayload)

	blackEvent, ok := s.broadcaster.lastOfKind(black, protocol.KindMatchStart)
	s.Require().True(ok)
	blackPayload := blackEvent.Payload.(protocol.MatchStartPayload)

	s.Equal(string(matchID), redPayload.MatchID)
	s.Equal(string(matchID), blackPayload.MatchID)
	s.NotEqual(redPayload.Color, blackPayload.Color)
	s.Equal("bob", redPayload.OpponentNickname)
	s.Equal("alice", blackPayload.OpponentNickname)
	s.InDelta(s.service.cfg.MoveTimeout.Seconds(), redPayload.MoveTimeRemaining, 0.01)
}

// ListLobbies tests

func (s *ServiceSuite) TestListLobbiesSnapshotsOpenLobbies() {
	alice := s.connect("alice")
	bob := s.connect("bob")
	s.Require().NoError(s.service.CreateLobby(alice))

	s.Require().NoError(s.service.ListLobbies(bob))

	event, ok := s.broadcaster.lastOfKind(bob, protocol.KindLobbyList)
	s.Require().True(ok)
	s.Len(event.Payload.(protocol.LobbyListPayload).Entries, 1)
}

func (s *ServiceSuite) TestLeaveGraceShowsRejoinEntry() {
	red, _, matchID := s.startMatch()

	s.Require().NoError(s.service.LeaveMatch(red, matchID))
	s.Require().NoError(s.service.ListLobbies(red))

	event, _ := s.broadcaster.lastOfKind(red, protocol.KindLobbyList)
	entries := event.Payload.(protocol.LobbyListPayload).Entries
	s.Require().NotEmpty(entries)
	s.Equal(string(matchID), entries[0].ID)
	s.True(entries[0].IsRejoin)
	s.Equal("bob", entries[0].CreatorNickname)
}

func (s *ServiceSuite) TestOpponentSeesOneSlotMatchWhileLeaverAway() {
	red, black, matchID := s.startMatch()

	s.Require().NoError(s.service.LeaveMatch(red, matchID))
	s.Require().NoError(s.service.ListLobbies(black))

	event, _ := s.broadcaster.lastOfKind(black, protocol.KindLobbyList)
	entries := event.Payload.(protocol.LobbyListPayload).Entries
	s.Require().NotEmpty(entries)
	s.Equal(string(matchID), entries[0].ID)
	s.Equal(1, entries[0].Members)
	s.True(entries[0].IsOwnLobby)
	s.False(entries[0].IsRejoin)
}
