package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/storage"
)

type historyHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func newHistoryHandler(st storage.Storage, logger *slog.Logger) *historyHandler {
	return &historyHandler{storage: st, logger: logger}
}

// playerProfile returns the stored identity record for a player id
func (h *historyHandler) playerProfile(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["player_id"])

	player, err := h.storage.GetPlayer(r.Context(), playerID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		h.logger.Error("player lookup failed",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "player lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, player)
}

// playerHistory returns a player's stored match records, most recent first
func (h *historyHandler) playerHistory(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["player_id"])

	records, err := h.storage.GetMatchHistory(r.Context(), playerID)
	if err != nil {
		h.logger.Error("history lookup failed",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "history lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"matches": records})
}

// matchMoves returns the stored move log for a match in play order
func (h *historyHandler) matchMoves(w http.ResponseWriter, r *http.Request) {
	matchID := model.MatchID(mux.Vars(r)["match_id"])

	moves, err := h.storage.GetMoves(r.Context(), matchID)
	if err != nil {
		h.logger.Error("move log lookup failed",
			slog.String("match_id", string(matchID)),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "move log lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"moves": moves})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
