package game

import (
	"log/slog"

	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/protocol"
	"github.com/jkoster/checkersgame-go/internal/rules"
)

// RequestRematch records the caller's consent to a rematch of a finished
// match. When both participants have consented a fresh session starts
// directly from the pair, bypassing the lobby manager. Requests for live or
// unknown matches and from non-participants are silently ignored.
func (s *Service) RequestRematch(id model.PlayerID, matchID model.MatchID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.matches[matchID]
	if m == nil || m.State != model.MatchStateGameOver {
		return nil
	}
	if !m.IsParticipant(id) {
		return nil
	}

	ballot := s.ballots[matchID]
	if ballot == nil {
		ballot = make(map[model.PlayerID]bool)
		s.ballots[matchID] = ballot
	}
	ballot[id] = true

	if len(ballot) < model.LobbyCapacity {
		if opponent, ok := m.Opponent(id); ok {
			s.broadcaster.ToPlayer(opponent, protocol.ServerEvent{
				Kind:    protocol.KindRematchRequested,
				Payload: protocol.NoticePayload{Message: s.nicknameLocked(id) + " wants a rematch"},
			})
		}
		return nil
	}

	// Both consented: discard the ballot and spawn the new session
	delete(s.ballots, matchID)

	red := m.Players[rules.Red]
	black := m.Players[rules.Black]
	if s.cfg.RematchSwapColors {
		red, black = black, red
	}

	var newID model.MatchID
	for {
		newID = model.MatchID(s.random.String(CodeLength, CodeAlphabet))
		if _, taken := s.matches[newID]; !taken {
			if _, taken := s.lobbies[model.LobbyID(newID)]; !taken {
				break
			}
		}
	}

	s.logger.Info("rematch starting",
		slog.String("finished_match_id", string(matchID)),
		slog.String("match_id", string(newID)))

	s.startMatchLocked(newID, red, black)
	return nil
}
