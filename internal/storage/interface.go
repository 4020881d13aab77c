package storage

import (
	"context"

	"github.com/jkoster/checkersgame-go/internal/model"
)

// Storage is the persistence gateway consumed by the game core. Every call
// made from game flow is best-effort: failures are logged by the caller and
// never block or corrupt in-memory match state.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)

	// Match record operations
	CreateMatch(ctx context.Context, record *model.MatchRecord) error
	FinishMatch(ctx context.Context, id model.MatchID, winnerID *model.PlayerID) error

	// Move log operations
	AddMove(ctx context.Context, move *model.MoveRecord) error
	GetMoves(ctx context.Context, id model.MatchID) ([]*model.MoveRecord, error)

	// GetMatchHistory returns a player's finished and in-flight match
	// records, most recent first.
	GetMatchHistory(ctx context.Context, playerID model.PlayerID) ([]*model.MatchRecord, error)
}
