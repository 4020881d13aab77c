package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/storage"
)

// historyLimit caps how many match records GetMatchHistory returns
const historyLimit = 100

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, playerKey(player.ID), data, s.cfg.PlayerTTL).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) CreateMatch(ctx context.Context, record *model.MatchRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	// Pipeline the record save with both players' history index updates
	pipe := s.client.Pipeline()
	pipe.Set(ctx, matchKey(record.ID), data, s.cfg.MatchTTL)
	pipe.LPush(ctx, historyKey(record.PlayerA), string(record.ID))
	pipe.LTrim(ctx, historyKey(record.PlayerA), 0, historyLimit-1)
	pipe.Expire(ctx, historyKey(record.PlayerA), s.cfg.MatchTTL)
	pipe.LPush(ctx, historyKey(record.PlayerB), string(record.ID))
	pipe.LTrim(ctx, historyKey(record.PlayerB), 0, historyLimit-1)
	pipe.Expire(ctx, historyKey(record.PlayerB), s.cfg.MatchTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) FinishMatch(ctx context.Context, id model.MatchID, winnerID *model.PlayerID) error {
	data, err := s.client.Get(ctx, matchKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.ErrMatchNotFound
		}
		return err
	}

	var record model.MatchRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}

	now := time.Now()
	record.WinnerID = winnerID
	record.FinishedAt = &now

	updated, err := json.Marshal(&record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, matchKey(id), updated, s.cfg.MatchTTL).Err()
}

func (s *Storage) AddMove(ctx context.Context, move *model.MoveRecord) error {
	data, err := json.Marshal(move)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, movesKey(move.MatchID), data)
	pipe.Expire(ctx, movesKey(move.MatchID), s.cfg.MatchTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetMoves(ctx context.Context, id model.MatchID) ([]*model.MoveRecord, error) {
	raw, err := s.client.LRange(ctx, movesKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	moves := make([]*model.MoveRecord, 0, len(raw))
	for _, item := range raw {
		var move model.MoveRecord
		if err := json.Unmarshal([]byte(item), &move); err != nil {
			return nil, err
		}
		moves = append(moves, &move)
	}
	return moves, nil
}

func (s *Storage) GetMatchHistory(ctx context.Context, playerID model.PlayerID) ([]*model.MatchRecord, error) {
	ids, err := s.client.LRange(ctx, historyKey(playerID), 0, historyLimit-1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*model.MatchRecord, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, matchKey(model.MatchID(id))).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Record aged out but the index entry survived
				continue
			}
			return nil, err
		}
		var record model.MatchRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, nil
}
