package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Useful for development and tests; nothing survives a restart.
type Storage struct {
	mu      sync.RWMutex
	players map[model.PlayerID]*model.Player
	matches map[model.MatchID]*model.MatchRecord
	moves   map[model.MatchID][]*model.MoveRecord
}

// New creates an empty in-memory storage
func New() *Storage {
	return &Storage{
		players: make(map[model.PlayerID]*model.Player),
		matches: make(map[model.MatchID]*model.MatchRecord),
		moves:   make(map[model.MatchID][]*model.MoveRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SavePlayer(_ context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *player
	s.players[player.ID] = &copied
	return nil
}

func (s *Storage) GetPlayer(_ context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	copied := *player
	return &copied, nil
}

func (s *Storage) CreateMatch(_ context.Context, record *model.MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.matches[record.ID] = &copied
	return nil
}

func (s *Storage) FinishMatch(_ context.Context, id model.MatchID, winnerID *model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.matches[id]
	if !ok {
		return model.ErrMatchNotFound
	}
	record.WinnerID = winnerID
	now := time.Now()
	record.FinishedAt = &now
	return nil
}

func (s *Storage) AddMove(_ context.Context, move *model.MoveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *move
	s.moves[move.MatchID] = append(s.moves[move.MatchID], &copied)
	return nil
}

func (s *Storage) GetMoves(_ context.Context, id model.MatchID) ([]*model.MoveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	moves := make([]*model.MoveRecord, len(s.moves[id]))
	for i, m := range s.moves[id] {
		copied := *m
		moves[i] = &copied
	}
	return moves, nil
}

func (s *Storage) GetMatchHistory(_ context.Context, playerID model.PlayerID) ([]*model.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []*model.MatchRecord
	for _, record := range s.matches {
		if record.PlayerA == playerID || record.PlayerB == playerID {
			copied := *record
			records = append(records, &copied)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	return records, nil
}
