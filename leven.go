package leven

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/canisaugustinus/latin-leven/cost"
	"github.com/canisaugustinus/latin-leven/distance"
	"github.com/canisaugustinus/latin-leven/internal/cache"
	"github.com/canisaugustinus/latin-leven/internal/engine"
	"github.com/canisaugustinus/latin-leven/internal/resource"
	"github.com/canisaugustinus/latin-leven/internal/topk"
	"github.com/canisaugustinus/latin-leven/model"
)

// Mode selects how a search scans the dictionary.
type Mode uint8

const (
	// Sequential scans on the calling goroutine.
	Sequential Mode = iota
	// Parallel scans contiguous chunks on several workers.
	Parallel
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// Result is one ranked dictionary entry.
type Result struct {
	// Index is the entry's position in the dictionary.
	Index int
	// Sequence is a copy of the entry.
	Sequence model.Sequence
	// Score is the weighted edit distance from the query.
	Score float64
}

// SearchStats describes one search call.
type SearchStats struct {
	Mode    Mode
	K       int // after clamping
	Results int
	Visited int
	Pruned  int
	Workers int
	Cached  bool
}

// Index searches a fixed dictionary. It is safe for concurrent use.
type Index struct {
	dict  []model.Sequence
	model *cost.Model
	coord *engine.Coordinator

	cache    *cache.LRUResultCache // nil if disabled
	rc       *resource.Controller  // nil if unlimited
	failFast bool

	logger  *Logger
	metrics MetricsCollector
	closed  atomic.Bool
}

// New builds an index over keys.
//
// Entries are copied; later changes to keys do not affect the index. The
// cost configuration and matrix (see WithCostMatrix) are validated and
// ErrInvalidConfiguration is returned for negative costs.
func New(keys []model.Sequence, cfg cost.Config, opts ...Option) (*Index, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	m, err := cost.New(cfg, o.matrix)
	if err != nil {
		return nil, err
	}

	dict := make([]model.Sequence, len(keys))
	for i, k := range keys {
		dict[i] = k.Clone()
	}

	ix := &Index{
		dict:     dict,
		model:    m,
		failFast: o.failFast,
		logger:   o.logger,
		metrics:  o.metricsCollector,
	}

	ix.coord = engine.New(dict, m,
		engine.WithWorkers(o.workers),
		engine.WithLogger(o.logger.Logger),
	)

	if o.maxConcurrent > 0 || o.searchRate > 0 || o.memoryLimit > 0 {
		ix.rc = resource.NewController(resource.Config{
			MemoryLimitBytes:      o.memoryLimit,
			MaxConcurrentSearches: o.maxConcurrent,
			SearchesPerSecond:     o.searchRate,
			SearchBurst:           o.searchBurst,
		})
	}
	if o.cacheBytes > 0 {
		ix.cache = cache.NewLRUResultCache(o.cacheBytes, ix.rc)
	}

	ix.logger.LogBuild(context.Background(), len(dict), ix.coord.Workers(), m.KeyCost())
	return ix, nil
}

// Len returns the number of dictionary entries.
func (ix *Index) Len() int { return len(ix.dict) }

// Entry returns a copy of the dictionary entry at position i.
func (ix *Index) Entry(i int) model.Sequence { return ix.dict[i].Clone() }

// CostModel returns the index's cost model.
func (ix *Index) CostModel() *cost.Model { return ix.model }

// Workers returns the number of workers used by parallel searches.
func (ix *Index) Workers() int { return ix.coord.Workers() }

// Distance returns the exact weighted distance between query and candidate
// under the index's cost model.
func (ix *Index) Distance(query, candidate model.Sequence) float64 {
	return distance.Weighted(ix.model, query, candidate)
}

// Search returns up to k entries closest to query, ascending by score with
// ties in dictionary order. k is clamped to [1, Len()].
func (ix *Index) Search(ctx context.Context, query model.Sequence, k int, opts ...SearchOption) ([]Result, error) {
	return ix.search(ctx, Sequential, query, k, opts)
}

// SearchParallel is like Search but scans the dictionary on several workers.
// It returns exactly what Search returns.
func (ix *Index) SearchParallel(ctx context.Context, query model.Sequence, k int, opts ...SearchOption) ([]Result, error) {
	return ix.search(ctx, Parallel, query, k, opts)
}

// SearchBest returns the closest entry. It fails with ErrEmptyResult if the
// dictionary (or the filter) admits no entry.
func (ix *Index) SearchBest(ctx context.Context, query model.Sequence, opts ...SearchOption) (Result, error) {
	return ix.best(ctx, Sequential, query, opts)
}

// SearchBestParallel is the parallel form of SearchBest.
func (ix *Index) SearchBestParallel(ctx context.Context, query model.Sequence, opts ...SearchOption) (Result, error) {
	return ix.best(ctx, Parallel, query, opts)
}

// Close drops cached results. Searches after Close fail with ErrClosed.
func (ix *Index) Close() error {
	if ix == nil || !ix.closed.CompareAndSwap(false, true) {
		return nil
	}
	if ix.cache != nil {
		ix.cache.Purge()
	}
	return nil
}

func (ix *Index) best(ctx context.Context, mode Mode, query model.Sequence, opts []SearchOption) (Result, error) {
	res, err := ix.search(ctx, mode, query, 1, opts)
	if err != nil {
		return Result{}, err
	}
	if len(res) == 0 {
		return Result{}, ErrEmptyResult
	}
	return res[0], nil
}

func (ix *Index) search(ctx context.Context, mode Mode, query model.Sequence, k int, opts []SearchOption) (results []Result, err error) {
	start := time.Now()
	stats := SearchStats{Mode: mode, K: ix.coord.ClampK(k)}

	defer func() {
		stats.Results = len(results)
		ix.metrics.RecordSearch(stats, time.Since(start), err)
		ix.logger.LogSearch(ctx, stats, err)
	}()

	if ix.closed.Load() {
		return nil, ErrClosed
	}

	var so searchOptions
	for _, opt := range opts {
		opt(&so)
	}

	if stats.K == 0 {
		return []Result{}, nil
	}

	if err := ix.admit(ctx); err != nil {
		return nil, translateError(err)
	}
	defer ix.rc.ReleaseSearch()

	useCache := ix.cache != nil && so.filter == nil && !so.noCache
	var key cache.Key
	if useCache {
		key = cache.NewKey(query, stats.K)
		if entries, ok := ix.cache.Get(key); ok {
			ix.metrics.RecordCacheHit()
			stats.Cached = true
			return ix.materialize(entries), nil
		}
		ix.metrics.RecordCacheMiss()
	}

	var (
		entries []topk.Entry
		es      engine.Stats
	)
	if mode == Parallel {
		entries, es, err = ix.coord.Parallel(ctx, query, stats.K, so.filter)
	} else {
		entries, es, err = ix.coord.Sequential(ctx, query, stats.K, so.filter)
	}
	if err != nil {
		return nil, err
	}
	stats.Visited, stats.Pruned, stats.Workers = es.Visited, es.Pruned, es.Workers

	if useCache {
		ix.cache.Set(key, entries)
	}
	return ix.materialize(entries), nil
}

func (ix *Index) admit(ctx context.Context) error {
	if ix.failFast {
		if !ix.rc.TryAcquireSearch() {
			return resource.ErrSearchLimitExceeded
		}
		return nil
	}
	return ix.rc.AcquireSearch(ctx)
}

func (ix *Index) materialize(entries []topk.Entry) []Result {
	out := make([]Result, len(entries))
	for i, e := range entries {
		out[i] = Result{
			Index:    e.Index,
			Sequence: ix.dict[e.Index].Clone(),
			Score:    e.Score,
		}
	}
	return out
}
