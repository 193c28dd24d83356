package engine

import (
	"context"
	"log/slog"
	"runtime"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/canisaugustinus/latin-leven/cost"
	"github.com/canisaugustinus/latin-leven/internal/searcher"
	"github.com/canisaugustinus/latin-leven/internal/topk"
	"github.com/canisaugustinus/latin-leven/model"
)

// Stats describes the work done by one search.
type Stats struct {
	// Visited is the number of distance computations.
	Visited int
	// Pruned is the number of computations that stopped early.
	Pruned int
	// Workers is the number of scans that ran.
	Workers int
}

func (s *Stats) add(o Stats) {
	s.Visited += o.Visited
	s.Pruned += o.Pruned
	s.Workers += o.Workers
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWorkers sets the parallel worker count. Values below 1 select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Coordinator) {
		c.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// Coordinator runs searches over a fixed dictionary. It is safe for concurrent use.
type Coordinator struct {
	dict    []model.Sequence
	model   *cost.Model
	pool    *searcher.Pool
	workers int
	logger  *slog.Logger
}

// New creates a coordinator. dict is read, never modified.
func New(dict []model.Sequence, m *cost.Model, opts ...Option) *Coordinator {
	c := &Coordinator{
		dict:   dict,
		model:  m,
		pool:   searcher.NewPool(m),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers < 1 {
		c.workers = max(runtime.GOMAXPROCS(0), 1)
	}

	c.logger.Debug("coordinator ready", "entries", len(dict), "workers", c.workers)
	return c
}

// Len returns the dictionary size.
func (c *Coordinator) Len() int { return len(c.dict) }

// Workers returns the configured parallel worker count.
func (c *Coordinator) Workers() int { return c.workers }

// ClampK limits k to [1, Len()]. It returns 0 for an empty dictionary.
func (c *Coordinator) ClampK(k int) int {
	if len(c.dict) == 0 {
		return 0
	}
	return min(max(k, 1), len(c.dict))
}

// Sequential scans the dictionary in order and returns the k best entries.
// A nil filter admits every entry.
func (c *Coordinator) Sequential(ctx context.Context, query model.Sequence, k int, filter *roaring.Bitmap) ([]topk.Entry, Stats, error) {
	k = c.ClampK(k)
	if k == 0 {
		return []topk.Entry{}, Stats{}, nil
	}

	s := c.pool.Acquire(k)
	defer c.pool.Release(s)

	if err := c.scan(ctx, s, query, 0, len(c.dict), filter); err != nil {
		return nil, Stats{}, err
	}

	out := slices.Clone(s.Acc.Entries())
	return out, Stats{Visited: s.Visited, Pruned: s.Pruned, Workers: 1}, nil
}

// Parallel splits the dictionary into contiguous chunks, scans them
// concurrently with private thresholds and merges the local results.
func (c *Coordinator) Parallel(ctx context.Context, query model.Sequence, k int, filter *roaring.Bitmap) ([]topk.Entry, Stats, error) {
	k = c.ClampK(k)
	if k == 0 {
		return []topk.Entry{}, Stats{}, nil
	}

	n := len(c.dict)
	workers := min(c.workers, n)
	if workers == 1 {
		return c.Sequential(ctx, query, k, filter)
	}

	lists := make([][]topk.Entry, workers)
	stats := make([]Stats, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for w := range workers {
		lo, hi := w*n/workers, (w+1)*n/workers
		g.Go(func() error {
			s := c.pool.Acquire(k)
			defer c.pool.Release(s)

			if err := c.scan(gctx, s, query, lo, hi, filter); err != nil {
				return err
			}
			lists[w] = slices.Clone(s.Acc.Entries())
			stats[w] = Stats{Visited: s.Visited, Pruned: s.Pruned, Workers: 1}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	var total Stats
	for _, st := range stats {
		total.add(st)
	}
	return topk.Merge(k, lists...), total, nil
}

// scan offers entries [lo, hi) to the searcher's accumulator.
func (c *Coordinator) scan(ctx context.Context, s *searcher.Searcher, query model.Sequence, lo, hi int, filter *roaring.Bitmap) error {
	done := ctx.Done()
	for i := lo; i < hi; i++ {
		select {
		case <-done:
			return ctx.Err()
		default:
		}

		if filter != nil && !filter.Contains(uint32(i)) {
			continue
		}

		score, pruned := s.Calc.Bounded(query, c.dict[i], s.Acc.Threshold())
		s.Visited++
		if pruned {
			s.Pruned++
		}
		s.Acc.Offer(i, score)
	}
	return nil
}
