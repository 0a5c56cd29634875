// Package metrics exposes Prometheus collectors for search progress.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "torus"

// Metrics holds the search collectors. It satisfies search.Recorder.
type Metrics struct {
	StatesVisited     prometheus.Counter
	CandidatesTotal   prometheus.Counter
	CandidatesQueued  prometheus.Counter
	StateScores       prometheus.Histogram
	SearchesCompleted *prometheus.CounterVec
	SearchDuration    prometheus.Histogram
	BestScore         prometheus.Gauge
	JobsRunning       prometheus.Gauge
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		StatesVisited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "states_visited_total",
			Help:      "Configurations expanded and scored.",
		}),
		CandidatesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "candidates_total",
			Help:      "Row-shift candidates proposed.",
		}),
		CandidatesQueued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "candidates_queued_total",
			Help:      "Candidates that were new and entered the frontier.",
		}),
		StateScores: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "state_score",
			Help:      "Neighbor-pair count of visited configurations.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		SearchesCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "completed_total",
			Help:      "Searches run to exhaustion, by whether they improved on the start.",
		}, []string{"improved"}),
		SearchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Wall time of completed searches.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		BestScore: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "best_score",
			Help:      "Best score of the most recently completed search.",
		}),
		JobsRunning: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "running",
			Help:      "Search jobs currently running.",
		}),
	}
}

// ObserveExpansion records one visited configuration.
func (m *Metrics) ObserveExpansion(score, proposed, queued int) {
	m.StatesVisited.Inc()
	m.CandidatesTotal.Add(float64(proposed))
	m.CandidatesQueued.Add(float64(queued))
	m.StateScores.Observe(float64(score))
}

// ObserveSearch records a completed search.
func (m *Metrics) ObserveSearch(elapsed time.Duration, visited, bestScore int, improved bool) {
	label := "false"
	if improved {
		label = "true"
	}
	m.SearchesCompleted.WithLabelValues(label).Inc()
	m.SearchDuration.Observe(elapsed.Seconds())
	m.BestScore.Set(float64(bestScore))
}
