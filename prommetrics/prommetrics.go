// Package prommetrics exports index metrics to Prometheus.
package prommetrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	leven "github.com/canisaugustinus/latin-leven"
)

// Namespace prefixes every metric name.
const Namespace = "leven"

// Outcome label values.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeExhausted = "exhausted"
	OutcomeCanceled  = "canceled"
)

// Collector implements leven.MetricsCollector with Prometheus metrics.
// Register it on a registry before use.
type Collector struct {
	searches       *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	visited        prometheus.Counter
	pruned         prometheus.Counter
	cache          *prometheus.CounterVec
	entries        prometheus.Gauge
}

var _ leven.MetricsCollector = (*Collector)(nil)

// New creates an unregistered collector.
func New() *Collector {
	return &Collector{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "searches_total",
			Help:      "Total number of searches by mode and outcome",
		}, []string{"mode", "outcome"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_duration_seconds",
			Help:      "Histogram of search durations in seconds by mode",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs up to ~1.6s
		}, []string{"mode"}),
		visited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "entries_visited_total",
			Help:      "Total number of dictionary entries scored",
		}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "entries_pruned_total",
			Help:      "Total number of distance computations stopped early",
		}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_requests_total",
			Help:      "Total number of result cache lookups by result",
		}, []string{"result"}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "dictionary_entries",
			Help:      "Current number of dictionary entries",
		}),
	}
}

// Register adds the collector's metrics to reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, m := range []prometheus.Collector{c.searches, c.searchDuration, c.visited, c.pruned, c.cache, c.entries} {
		if err := reg.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// RecordSearch implements leven.MetricsCollector.
func (c *Collector) RecordSearch(stats leven.SearchStats, d time.Duration, err error) {
	mode := stats.Mode.String()
	c.searches.WithLabelValues(mode, outcome(err)).Inc()
	c.searchDuration.WithLabelValues(mode).Observe(d.Seconds())
	c.visited.Add(float64(stats.Visited))
	c.pruned.Add(float64(stats.Pruned))
}

// RecordCacheHit implements leven.MetricsCollector.
func (c *Collector) RecordCacheHit() { c.cache.WithLabelValues("hit").Inc() }

// RecordCacheMiss implements leven.MetricsCollector.
func (c *Collector) RecordCacheMiss() { c.cache.WithLabelValues("miss").Inc() }

// SetEntries sets the dictionary size gauge.
func (c *Collector) SetEntries(n int) { c.entries.Set(float64(n)) }

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, leven.ErrResourceExhausted):
		return OutcomeExhausted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
