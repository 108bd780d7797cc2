// Package metrics exposes cache activity as prometheus metrics.
package metrics

import (
	"errors"
	"net/http"

	"github.com/always-cache/httpcache/cache"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "httpcache"

// Commit results.
const (
	CommitStored   = "stored"
	CommitRejected = "rejected"
	CommitSkipped  = "skipped"
	CommitOverflow = "overflow"
	CommitError    = "error"
)

// Metrics records cache activity. A nil *Metrics records nothing.
type Metrics struct {
	gatherer         prometheus.Gatherer
	lookups          *prometheus.CounterVec
	commits          *prometheus.CounterVec
	listenerFailures *prometheus.CounterVec
	invalidations    prometheus.Counter
}

// New registers the cache metrics with reg, or with a new registry if reg is nil.
// The provider gauges read stats on every collection; stats may be nil.
// Storages sharing reg share the counters, and the gauges report the provider
// of the first storage registered.
func New(reg prometheus.Registerer, stats func() cache.Stats) *Metrics {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		registry := prometheus.NewRegistry()
		reg, gatherer = registry, registry
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total requests by cache status",
	}, []string{"status"})

	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commits_total",
		Help:      "Total completed responses by commit result",
	}, []string{"result"})

	listenerFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listener_failures_total",
		Help:      "Total failed evaluation listeners",
	}, []string{"event"})

	invalidations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invalidations_total",
		Help:      "Total entries invalidated by unsafe requests",
	})

	lookups = register(reg, lookups)
	commits = register(reg, commits)
	listenerFailures = register(reg, listenerFailures)
	invalidations = register(reg, invalidations)

	if stats != nil {
		register(reg, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entries",
			Help:      "Number of stored entries",
		}, func() float64 { return float64(stats().Entries) }))
		register(reg, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stored_bytes",
			Help:      "Bytes accounted to stored entries",
		}, func() float64 { return float64(stats().Bytes) }))
		register(reg, prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Total entries evicted to stay within the byte budget",
		}, func() float64 { return float64(stats().Evictions) }))
	}

	return &Metrics{
		gatherer:         gatherer,
		lookups:          lookups,
		commits:          commits,
		listenerFailures: listenerFailures,
		invalidations:    invalidations,
	}
}

// register registers c with reg. If an equal collector is already registered,
// as when several storages share a registerer, the existing one is returned
// and keeps counting for all of them.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}

// Handler serves the metrics in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(status string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveCommit(result string) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveListenerFailure(event string) {
	if m == nil {
		return
	}
	m.listenerFailures.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveInvalidations(n int) {
	if m == nil {
		return
	}
	m.invalidations.Add(float64(n))
}
