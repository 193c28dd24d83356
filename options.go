package leven

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/canisaugustinus/latin-leven/cost"
)

type options struct {
	matrix           cost.Matrix
	workers          int
	metricsCollector MetricsCollector
	logger           *Logger

	cacheBytes int64

	maxConcurrent int64
	searchRate    float64
	searchBurst   int
	failFast      bool
	memoryLimit   int64
}

func defaultOptions() options {
	return options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
}

func (o *options) validate() error {
	switch {
	case o.workers < 0:
		return &ErrInvalidOption{Name: "workers", Value: o.workers}
	case o.cacheBytes < 0:
		return &ErrInvalidOption{Name: "result cache bytes", Value: o.cacheBytes}
	case o.maxConcurrent < 0:
		return &ErrInvalidOption{Name: "max concurrent searches", Value: o.maxConcurrent}
	case o.searchRate < 0:
		return &ErrInvalidOption{Name: "search rate", Value: o.searchRate}
	case o.searchBurst < 0:
		return &ErrInvalidOption{Name: "search burst", Value: o.searchBurst}
	case o.memoryLimit < 0:
		return &ErrInvalidOption{Name: "memory limit", Value: o.memoryLimit}
	}
	return nil
}

// Option configures Index construction.
type Option func(*options)

// WithCostMatrix sets the substitution matrix used when key costing is
// enabled in the cost configuration. The index keeps its own copy.
func WithCostMatrix(m cost.Matrix) Option {
	return func(o *options) {
		o.matrix = m
	}
}

// WithWorkers sets the number of workers for parallel searches.
// 0 (the default) uses GOMAXPROCS. Negative values are rejected by New.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metricsCollector = m
	}
}

// WithResultCache enables an LRU cache of result lists bounded by
// capacityBytes. Searches with a filter bypass the cache.
func WithResultCache(capacityBytes int64) Option {
	return func(o *options) {
		o.cacheBytes = capacityBytes
	}
}

// WithMemoryLimit caps the memory the result cache may hold across all of
// its entries, independent of its own capacity.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMaxConcurrentSearches bounds the number of searches running at once.
// Extra callers wait unless WithFailFast is set.
func WithMaxConcurrentSearches(n int64) Option {
	return func(o *options) {
		o.maxConcurrent = n
	}
}

// WithSearchRateLimit throttles how often searches may start.
// burst 0 defaults to max(1, perSecond).
func WithSearchRateLimit(perSecond float64, burst int) Option {
	return func(o *options) {
		o.searchRate = perSecond
		o.searchBurst = burst
	}
}

// WithFailFast makes searches return ErrResourceExhausted instead of waiting
// for a concurrency slot or rate token.
func WithFailFast() Option {
	return func(o *options) {
		o.failFast = true
	}
}

type searchOptions struct {
	filter  *roaring.Bitmap
	noCache bool
}

// SearchOption configures a single search call.
type SearchOption func(*searchOptions)

// WithFilter restricts a search to the dictionary positions in bm.
// The bitmap must not be modified while the search runs.
func WithFilter(bm *roaring.Bitmap) SearchOption {
	return func(o *searchOptions) {
		o.filter = bm
	}
}

// WithPositions restricts a search to the given dictionary positions.
func WithPositions(positions ...uint32) SearchOption {
	return WithFilter(roaring.BitmapOf(positions...))
}

// WithoutCache skips the result cache for this call.
func WithoutCache() SearchOption {
	return func(o *searchOptions) {
		o.noCache = true
	}
}
