package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/storage"
)

// historyLimit caps how many match records GetMatchHistory returns
const historyLimit = 100

// Storage is a Postgres-backed implementation of the storage interface
type Storage struct {
	pool *pgxpool.Pool
}

// New connects to Postgres, verifies the connection and applies the schema
func New(ctx context.Context, url string) (*Storage, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, err
	}

	return &Storage{pool: pool}, nil
}

// NewWithPool creates a Postgres storage with an existing pool (for testing)
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Close releases the connection pool
func (s *Storage) Close() {
	s.pool.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO players (id, nickname, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET nickname = EXCLUDED.nickname`,
		player.ID, player.Nickname, player.CreatedAt)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	err := s.pool.QueryRow(ctx,
		`SELECT id, nickname, created_at FROM players WHERE id = $1`, id).
		Scan(&player.ID, &player.Nickname, &player.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

func (s *Storage) CreateMatch(ctx context.Context, record *model.MatchRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO matches (id, player_a, player_b, winner_id, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		record.ID, record.PlayerA, record.PlayerB, record.WinnerID, record.StartedAt, record.FinishedAt)
	return err
}

func (s *Storage) FinishMatch(ctx context.Context, id model.MatchID, winnerID *model.PlayerID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE matches SET winner_id = $2, finished_at = now() WHERE id = $1`,
		id, winnerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMatchNotFound
	}
	return nil
}

func (s *Storage) AddMove(ctx context.Context, move *model.MoveRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO moves (match_id, move_index, from_row, from_col, to_row, to_col, played_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (match_id, move_index) DO NOTHING`,
		move.MatchID, move.Index, move.From.Row, move.From.Col, move.To.Row, move.To.Col, move.PlayedAt)
	return err
}

func (s *Storage) GetMoves(ctx context.Context, id model.MatchID) ([]*model.MoveRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT match_id, move_index, from_row, from_col, to_row, to_col, played_at
		 FROM moves WHERE match_id = $1 ORDER BY move_index`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var moves []*model.MoveRecord
	for rows.Next() {
		var move model.MoveRecord
		if err := rows.Scan(&move.MatchID, &move.Index,
			&move.From.Row, &move.From.Col, &move.To.Row, &move.To.Col,
			&move.PlayedAt); err != nil {
			return nil, err
		}
		moves = append(moves, &move)
	}
	return moves, rows.Err()
}

func (s *Storage) GetMatchHistory(ctx context.Context, playerID model.PlayerID) ([]*model.MatchRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, player_a, player_b, winner_id, started_at, finished_at
		 FROM matches
		 WHERE player_a = $1 OR player_b = $1
		 ORDER BY started_at DESC
		 LIMIT $2`, playerID, historyLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*model.MatchRecord
	for rows.Next() {
		var record model.MatchRecord
		if err := rows.Scan(&record.ID, &record.PlayerA, &record.PlayerB,
			&record.WinnerID, &record.StartedAt, &record.FinishedAt); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}
