// Package metrics provides Prometheus metrics for repertoire extraction.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/freeeve/repertoire/internal/repertoire"
)

// Extraction outcomes used as the "outcome" label.
const (
	OutcomeOK            = "ok"
	OutcomeNoPlayers     = "no_players"
	OutcomeEmptyFiltered = "empty_filtered"
	OutcomeEmptyOpenings = "empty_openings"
	OutcomeError         = "error"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets the buckets of the duration histogram.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// Manager owns a private registry and the extraction metrics.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	runs            *prometheus.CounterVec
	gamesRead       prometheus.Counter
	gamesUsed       prometheus.Counter
	treeNodes       prometheus.Counter
	branchesSkipped prometheus.Counter
	duration        prometheus.Histogram
}

// NewManager creates a manager with its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "repertoire",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "extractions_total",
		Help:      "Extractions by outcome.",
	}, []string{"outcome"})
	m.gamesRead = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "games_read_total",
		Help:      "Games read from input corpora.",
	})
	m.gamesUsed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "games_merged_total",
		Help:      "Games that contributed moves to an opening tree.",
	})
	m.treeNodes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "tree_nodes_total",
		Help:      "Move nodes created across all opening trees.",
	})
	m.branchesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "branches_skipped_total",
		Help:      "Branches dropped because a move could not be replayed.",
	})
	m.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "extraction_duration_seconds",
		Help:      "Time from loaded games to rendered tree.",
		Buckets:   m.buckets,
	})

	m.registry.MustRegister(m.runs, m.gamesRead, m.gamesUsed, m.treeNodes, m.branchesSkipped, m.duration)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Outcome maps an Extract error to its label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, repertoire.ErrNoPlayersFound):
		return OutcomeNoPlayers
	case errors.Is(err, repertoire.ErrEmptyFilteredSet):
		return OutcomeEmptyFiltered
	case errors.Is(err, repertoire.ErrEmptyOpeningSet):
		return OutcomeEmptyOpenings
	default:
		return OutcomeError
	}
}

// ObserveExtraction records one Extract call over gamesRead input games.
func (m *Manager) ObserveExtraction(gamesRead int, rep *repertoire.Repertoire, err error, elapsed time.Duration) {
	m.runs.WithLabelValues(Outcome(err)).Inc()
	m.gamesRead.Add(float64(gamesRead))
	m.duration.Observe(elapsed.Seconds())
	if rep == nil {
		return
	}
	m.gamesUsed.Add(float64(rep.Games))
	m.treeNodes.Add(float64(rep.Tree.Len() - 1))
	m.branchesSkipped.Add(float64(len(rep.Diagnostics)))
}
