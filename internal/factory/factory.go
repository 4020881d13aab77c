// Package factory wires the application together.
package factory

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jkoster/checkersgame-go/internal/config"
	"github.com/jkoster/checkersgame-go/internal/dependencies/clock"
	"github.com/jkoster/checkersgame-go/internal/dependencies/random"
	"github.com/jkoster/checkersgame-go/internal/game"
	"github.com/jkoster/checkersgame-go/internal/metrics"
	"github.com/jkoster/checkersgame-go/internal/rules"
	"github.com/jkoster/checkersgame-go/internal/storage"
	"github.com/jkoster/checkersgame-go/internal/storage/memory"
	"github.com/jkoster/checkersgame-go/internal/storage/postgres"
	redisstorage "github.com/jkoster/checkersgame-go/internal/storage/redis"
	"github.com/jkoster/checkersgame-go/internal/ws"
)

// App contains all wired application components
type App struct {
	Storage storage.Storage
	Clock   clock.Clock
	Random  random.Random
	Metrics *metrics.Metrics

	Service   *game.Service
	Hub       *ws.Hub
	WSHandler *ws.Handler
}

// New creates a new application with all dependencies wired. The context is
// used for storage backend connection checks.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	gameCfg := game.DefaultConfig()
	gameCfg.MoveTimeout = cfg.MoveTimeout
	gameCfg.DisconnectTimeout = cfg.DisconnectTimeout
	gameCfg.LeaveTimeout = cfg.LeaveTimeout
	gameCfg.RematchSwapColors = cfg.RematchSwapColors

	app := newWithDependencies(gameCfg, store, clock.New(), random.New(), logger)
	app.WSHandler = ws.NewHandler(app.Hub, cfg.AllowedOrigin, logger)
	return app, nil
}

func newStorage(ctx context.Context, cfg config.Config) (storage.Storage, error) {
	switch cfg.StorageType {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		return redisstorage.New(redisCfg)
	case config.StoragePostgres:
		return postgres.New(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("invalid storage type %q", cfg.StorageType)
	}
}

// newWithDependencies wires an App from explicit dependencies (useful for
// testing)
func newWithDependencies(
	gameCfg game.Config,
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *App {
	m := metrics.New()
	engine := rules.NewEngine()
	service := game.NewService(gameCfg, engine, store, clk, rnd, m, logger)
	hub := ws.NewHub(service, m, logger)
	service.AttachBroadcaster(hub)

	return &App{
		Storage: store,
		Clock:   clk,
		Random:  rnd,
		Metrics: m,
		Service: service,
		Hub:     hub,
	}
}
