// Package metrics exposes prometheus instruments for the game server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every instrument the server records
type Metrics struct {
	registry *prometheus.Registry

	ActiveConnections prometheus.Gauge
	ActiveMatches     prometheus.Gauge
	OpenLobbies       prometheus.Gauge

	MessagesReceived *prometheus.CounterVec
	MatchesStarted   prometheus.Counter
	MatchesFinished  *prometheus.CounterVec
}

// New creates a Metrics instance backed by its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "checkers_active_connections",
			Help: "Number of live websocket connections",
		}),
		ActiveMatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "checkers_active_matches",
			Help: "Number of match sessions held in memory",
		}),
		OpenLobbies: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "checkers_open_lobbies",
			Help: "Number of lobbies waiting for a second player",
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkers_messages_received_total",
			Help: "Inbound client messages by kind",
		}, []string{"kind"}),
		MatchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "checkers_matches_started_total",
			Help: "Total matches started",
		}),
		MatchesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkers_matches_finished_total",
			Help: "Finished matches by outcome",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.ActiveConnections,
		m.ActiveMatches,
		m.OpenLobbies,
		m.MessagesReceived,
		m.MatchesStarted,
		m.MatchesFinished,
	)
	return m
}

// Handler returns the scrape endpoint handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
