package leven

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// prommetrics provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordSearch is called after each search operation.
	// duration is the total time taken, err is nil if successful.
	RecordSearch(stats SearchStats, duration time.Duration, err error)

	// RecordCacheHit is called when a search is answered from the result cache.
	RecordCacheHit()

	// RecordCacheMiss is called when a cacheable search misses the result cache.
	RecordCacheMiss()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(SearchStats, time.Duration, error) {}
func (NoopMetricsCollector) RecordCacheHit()                                {}
func (NoopMetricsCollector) RecordCacheMiss()                               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount         atomic.Int64
	ParallelSearchCount atomic.Int64
	SearchErrors        atomic.Int64
	SearchTotalNanos    atomic.Int64
	EntriesVisited      atomic.Int64
	EntriesPruned       atomic.Int64
	CacheHits           atomic.Int64
	CacheMisses         atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(stats SearchStats, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	if stats.Mode == Parallel {
		b.ParallelSearchCount.Add(1)
	}
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	b.EntriesVisited.Add(int64(stats.Visited))
	b.EntriesPruned.Add(int64(stats.Pruned))
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordCacheHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheHit() { b.CacheHits.Add(1) }

// RecordCacheMiss implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheMiss() { b.CacheMisses.Add(1) }

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearchCount:         b.SearchCount.Load(),
		ParallelSearchCount: b.ParallelSearchCount.Load(),
		SearchErrors:        b.SearchErrors.Load(),
		SearchAvgNanos:      b.getAvgSearchNanos(),
		EntriesVisited:      b.EntriesVisited.Load(),
		EntriesPruned:       b.EntriesPruned.Load(),
		CacheHits:           b.CacheHits.Load(),
		CacheMisses:         b.CacheMisses.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount         int64
	ParallelSearchCount int64
	SearchErrors        int64
	SearchAvgNanos      int64
	EntriesVisited      int64
	EntriesPruned       int64
	CacheHits           int64
	CacheMisses         int64
}

// PruneRate returns the fraction of visited entries whose distance
// computation stopped early.
func (s BasicMetricsStats) PruneRate() float64 {
	if s.EntriesVisited == 0 {
		return 0
	}
	return float64(s.EntriesPruned) / float64(s.EntriesVisited)
}
