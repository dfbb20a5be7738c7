package service

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

const metricsNamespace = "game2048"

// Metrics wraps the Prometheus collectors the service updates on every call.
type Metrics struct {
	moves       *prometheus.CounterVec
	merges      prometheus.Counter
	gamesStart  prometheus.Counter
	gamesOver   prometheus.Counter
	victories   prometheus.Counter
	bestTile    prometheus.Histogram
	sessionsNow prometheus.GaugeFunc
}

// NewMetrics creates the collectors and registers them on reg. activeSessions
// is sampled at scrape time.
func NewMetrics(reg prometheus.Registerer, activeSessions func() int) *Metrics {
	m := &Metrics{
		moves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "moves_total",
				Help:      "Moves applied, by direction and whether the board changed",
			},
			[]string{"direction", "effective"},
		),
		merges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "merges_total",
			Help:      "Tile merges performed",
		}),
		gamesStart: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "games_started_total",
			Help:      "Games started, including the first game of each session",
		}),
		gamesOver: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "games_over_total",
			Help:      "Games that reached a terminal board",
		}),
		victories: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "victories_total",
			Help:      "Games that reached the winning tile",
		}),
		bestTile: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "final_best_tile",
			Help:      "Best tile on the board when a game ends",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 16), // 4 to 131072
		}),
		sessionsNow: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held by the session manager",
		}, func() float64 {
			if activeSessions == nil {
				return 0
			}
			return float64(activeSessions())
		}),
	}

	reg.MustRegister(m.moves, m.merges, m.gamesStart, m.gamesOver, m.victories, m.bestTile, m.sessionsNow)
	return m
}

// RecordGameStarted counts a new game
func (m *Metrics) RecordGameStarted() {
	if m == nil {
		return
	}
	m.gamesStart.Inc()
}

// RecordMove counts one applied move. wasVictory is the flag before the move.
func (m *Metrics) RecordMove(outcome engine.MoveOutcome, wasVictory bool, best engine.Tile) {
	if m == nil {
		return
	}
	m.moves.WithLabelValues(string(outcome.Direction), strconv.FormatBool(outcome.Effective)).Inc()
	if !outcome.Effective {
		return
	}
	m.merges.Add(float64(outcome.Merges))
	if outcome.Victory && !wasVictory {
		m.victories.Inc()
	}
	if outcome.GameOver {
		m.gamesOver.Inc()
		m.bestTile.Observe(float64(best))
	}
}
