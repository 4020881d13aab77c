package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jkoster/checkersgame-go/internal/game"
	"github.com/jkoster/checkersgame-go/internal/metrics"
	"github.com/jkoster/checkersgame-go/internal/middleware"
	"github.com/jkoster/checkersgame-go/internal/storage"
	"github.com/jkoster/checkersgame-go/internal/ws"
)

// RouterConfig holds everything the router mounts
type RouterConfig struct {
	Logger    *slog.Logger
	Service   *game.Service
	Hub       *ws.Hub
	WSHandler *ws.Handler
	Storage   storage.Storage
	Metrics   *metrics.Metrics
}

// NewRouter creates the HTTP router: the websocket endpoint, health and
// metrics, and the read-only history API
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	recoveryMiddleware := middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler)
	loggingMiddleware := middleware.Logging(cfg.Logger)

	r.Use(recoveryMiddleware)

	health := newHealthHandler(cfg.Service, cfg.Hub)
	history := newHistoryHandler(cfg.Storage, cfg.Logger)

	// The websocket endpoint skips request logging: one log line per
	// connection lifetime is handled by the gateway itself.
	r.Handle("/ws", cfg.WSHandler)
	r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", health.serve).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(loggingMiddleware)
	api.HandleFunc("/players/{player_id}", history.playerProfile).Methods(http.MethodGet)
	api.HandleFunc("/players/{player_id}/history", history.playerHistory).Methods(http.MethodGet)
	api.HandleFunc("/matches/{match_id}/moves", history.matchMoves).Methods(http.MethodGet)

	return r
}
