package game

import (
	"strings"

	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/protocol"
)

// Chat relays a message to the two match participants. The text is trimmed
// and truncated to MaxChatLength runes; chat stays open while a finished
// session awaits retirement.
func (s *Service) Chat(id model.PlayerID, matchID model.MatchID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.matches[matchID]
	if m == nil {
		return model.ErrMatchNotFound
	}
	if !m.IsParticipant(id) {
		return model.ErrUnauthorized
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return model.ErrValidation
	}
	if runes := []rune(text); len(runes) > MaxChatLength {
		text = string(runes[:MaxChatLength])
	}

	s.broadcaster.ToMatch(matchID, protocol.ServerEvent{
		Kind: protocol.KindChatRelay,
		Payload: protocol.ChatRelayPayload{
			SenderNickname: s.nicknameLocked(id),
			Text:           text,
			Timestamp:      s.clock.Now(),
		},
	})
	return nil
}
