// Package game implements the session orchestration core: identity and
// presence, lobby matchmaking, authoritative match sessions, timer
// supervision and rematch coordination.
//
// All components share one Service guarded by a single mutex: every inbound
// message handler and every timer callback locks it for its full duration,
// so compound invariants (one winner per match, turn alternation, at most
// one timer per key) hold by construction. Persistence calls are issued
// from fire-and-forget goroutines and never touch in-memory state.
package game

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jkoster/checkersgame-go/internal/dependencies/clock"
	"github.com/jkoster/checkersgame-go/internal/dependencies/random"
	"github.com/jkoster/checkersgame-go/internal/metrics"
	"github.com/jkoster/checkersgame-go/internal/model"
	"github.com/jkoster/checkersgame-go/internal/protocol"
	"github.com/jkoster/checkersgame-go/internal/rules"
	"github.com/jkoster/checkersgame-go/internal/storage"
)

const (
	// PlayerIDLength is the length of minted player ids
	PlayerIDLength = 16
	// CodeLength is the length of generated lobby/match codes
	CodeLength = 6
	// CodeAlphabet is the characters used in generated ids (avoid confusing chars)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// MaxChatLength is the rune limit applied to relayed chat messages
	MaxChatLength = 200
)

// Config holds the tunable timings and policies of the game core
type Config struct {
	// MoveTimeout is the per-turn move clock
	MoveTimeout time.Duration
	// DisconnectTimeout is the grace period after a genuine disconnect
	DisconnectTimeout time.Duration
	// DisconnectProbe is how long to wait after a transient transport error
	// before checking whether the connection is really down
	DisconnectProbe time.Duration
	// LeaveTimeout is the grace period after an explicit leave-match
	LeaveTimeout time.Duration
	// RetireDelay is how long a finished session stays in memory so clients
	// can still receive the final broadcast (and request a rematch)
	RetireDelay time.Duration
	// RematchSwapColors controls color assignment in rematches
	RematchSwapColors bool
}

// DefaultConfig returns the standard timings
func DefaultConfig() Config {
	return Config{
		MoveTimeout:       45 * time.Second,
		DisconnectTimeout: 30 * time.Second,
		DisconnectProbe:   2 * time.Second,
		LeaveTimeout:      30 * time.Second,
		RetireDelay:       60 * time.Second,
		RematchSwapColors: true,
	}
}

// Broadcaster delivers server events. Every identity owns a private channel;
// every active match owns a shared channel joined by its live participants.
// Implementations must not call back into the Service from these methods.
type Broadcaster interface {
	ToPlayer(id model.PlayerID, event protocol.ServerEvent)
	ToMatch(id model.MatchID, event protocol.ServerEvent)
	JoinMatch(matchID model.MatchID, playerID model.PlayerID)
	LeaveMatch(matchID model.MatchID, playerID model.PlayerID)
	CloseMatch(matchID model.MatchID)
	IsConnected(id model.PlayerID) bool
	ConnectedPlayers() []model.PlayerID
}

// Service is the single authoritative owner of all in-memory session state
type Service struct {
	mu sync.Mutex

	cfg     Config
	engine  rules.Engine
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	metrics *metrics.Metrics
	logger  *slog.Logger

	broadcaster Broadcaster

	// Session store: the only holder of cross-match indices
	players     map[model.PlayerID]*model.Player
	lobbies     map[model.LobbyID]*model.Lobby
	matches     map[model.MatchID]*model.Match
	playerMatch map[model.PlayerID]model.MatchID
	leaving     map[model.PlayerID]model.MatchID
	ballots     map[model.MatchID]map[model.PlayerID]bool

	// Timer supervision: at most one live timer per key
	moveTimers       map[model.MatchID]clock.Timer
	disconnectTimers map[model.PlayerID]clock.Timer
	leaveTimers      map[model.PlayerID]clock.Timer
}

// NewService creates the game core. A Broadcaster must be attached before
// any message is dispatched.
func NewService(
	cfg Config,
	engine rules.Engine,
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		cfg:              cfg,
		engine:           engine,
		storage:          store,
		clock:            clk,
		random:           rnd,
		metrics:          m,
		logger:           logger.With(slog.String("component", "game")),
		players:          make(map[model.PlayerID]*model.Player),
		lobbies:          make(map[model.LobbyID]*model.Lobby),
		matches:          make(map[model.MatchID]*model.Match),
		playerMatch:      make(map[model.PlayerID]model.MatchID),
		leaving:          make(map[model.PlayerID]model.MatchID),
		ballots:          make(map[model.MatchID]map[model.PlayerID]bool),
		moveTimers:       make(map[model.MatchID]clock.Timer),
		disconnectTimers: make(map[model.PlayerID]clock.Timer),
		leaveTimers:      make(map[model.PlayerID]clock.Timer),
	}
}

// AttachBroadcaster wires the outbound delivery gateway. The hub and the
// service reference each other, so this runs after both are constructed.
func (s *Service) AttachBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

// Stats is a snapshot of the session store for the liveness endpoint
type Stats struct {
	ActiveMatches int
	OpenLobbies   int
}

// Stats returns current session counts
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	open := 0
	for _, l := range s.lobbies {
		if !l.IsFull() {
			open++
		}
	}
	return Stats{ActiveMatches: len(s.matches), OpenLobbies: open}
}

// persistAsync runs a best-effort storage call off the event path. Failures
// are logged and swallowed: gameplay continues unaffected.
func (s *Service) persistAsync(op string, f func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := f(ctx); err != nil {
			s.logger.Warn("persistence call failed",
				slog.String("op", op),
				slog.String("error", err.Error()))
		}
	}()
}

// nicknameLocked returns the display name for a player id
func (s *Service) nicknameLocked(id model.PlayerID) string {
	if p, ok := s.players[id]; ok {
		return p.Nickname
	}
	return string(id)
}

// activeMatchLocked returns the active match the player is bound to, if any
func (s *Service) activeMatchLocked(id model.PlayerID) *model.Match {
	matchID, ok := s.playerMatch[id]
	if !ok {
		return nil
	}
	m := s.matches[matchID]
	if m == nil || m.State != model.MatchStateActive {
		return nil
	}
	return m
}

// remainingMoveTimeLocked returns the seconds left on the match's move clock
func (s *Service) remainingMoveTimeLocked(m *model.Match) float64 {
	remaining := s.cfg.MoveTimeout - s.clock.Now().Sub(m.TurnStartedAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining.Seconds()
}

// matchStartPayloadLocked builds the full-state resync payload for one viewer
func (s *Service) matchStartPayloadLocked(m *model.Match, viewer model.PlayerID) protocol.MatchStartPayload {
	color, _ := m.ColorOf(viewer)
	opponent := m.Players[color.Opponent()]
	return protocol.MatchStartPayload{
		MatchID:           string(m.ID),
		Color:             color,
		Board:             m.Board,
		Turn:              m.Turn,
		OpponentNickname:  s.nicknameLocked(opponent),
		Captures:          copyCaptures(m.Captures),
		MoveTimeRemaining: s.remainingMoveTimeLocked(m),
	}
}

func copyCaptures(captures map[rules.Color]int) map[rules.Color]int {
	out := make(map[rules.Color]int, len(captures))
	for color, n := range captures {
		out[color] = n
	}
	return out
}

// updateSessionGaugesLocked refreshes the session gauges
func (s *Service) updateSessionGaugesLocked() {
	open := 0
	for _, l := range s.lobbies {
		if !l.IsFull() {
			open++
		}
	}
	s.metrics.ActiveMatches.Set(float64(len(s.matches)))
	s.metrics.OpenLobbies.Set(float64(open))
}
