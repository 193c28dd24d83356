package searcher

import (
	"sync"

	"github.com/canisaugustinus/latin-leven/cost"
	"github.com/canisaugustinus/latin-leven/distance"
	"github.com/canisaugustinus/latin-leven/internal/topk"
)

// Searcher is a reusable execution context for one scan.
//
// Searcher is NOT thread-safe. It is intended to be owned by a single goroutine
// during a search operation.
type Searcher struct {
	// Calc computes distances and owns the DP rows.
	Calc *distance.Calculator

	// Acc holds the local top-K and its threshold.
	Acc *topk.Accumulator

	// Visited counts distance computations.
	Visited int

	// Pruned counts computations that stopped early.
	Pruned int
}

// Pool hands out Searchers for a fixed cost model.
type Pool struct {
	pool sync.Pool
}

// NewPool creates a pool whose searchers compute distances under m.
func NewPool(m *cost.Model) *Pool {
	p := &Pool{}
	p.pool.New = func() any {
		return &Searcher{
			Calc: distance.NewCalculator(m),
			Acc:  topk.New(1),
		}
	}
	return p
}

// Acquire returns a searcher with an empty accumulator for k entries.
func (p *Pool) Acquire(k int) *Searcher {
	s := p.pool.Get().(*Searcher)
	s.Acc.Reset(k)
	s.Visited = 0
	s.Pruned = 0
	return s
}

// Release returns s to the pool. s must not be used afterwards.
func (p *Pool) Release(s *Searcher) {
	if s == nil {
		return
	}
	p.pool.Put(s)
}
