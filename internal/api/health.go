package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jkoster/checkersgame-go/internal/game"
	"github.com/jkoster/checkersgame-go/internal/ws"
)

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Connections   int    `json:"connections"`
	ActiveMatches int    `json:"active_matches"`
	OpenLobbies   int    `json:"open_lobbies"`
}

type healthHandler struct {
	service *game.Service
	hub     *ws.Hub
	started time.Time
}

func newHealthHandler(service *game.Service, hub *ws.Hub) *healthHandler {
	return &healthHandler{
		service: service,
		hub:     hub,
		started: time.Now(),
	}
}

func (h *healthHandler) serve(w http.ResponseWriter, _ *http.Request) {
	stats := h.service.Stats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Connections:   h.hub.ConnectionCount(),
		ActiveMatches: stats.ActiveMatches,
		OpenLobbies:   stats.OpenLobbies,
	})
}
