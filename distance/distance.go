package distance

import (
	"github.com/canisaugustinus/latin-leven/cost"
	"github.com/canisaugustinus/latin-leven/model"
)

// NoThreshold disables pruning.
const NoThreshold = -1.0

// Calculator computes distances under one cost model.
// It is not safe for concurrent use.
type Calculator struct {
	model *cost.Model
	cfg   cost.Config

	// rolling rows i-2, i-1 and i
	prev2 []float64
	prev  []float64
	curr  []float64
}

// NewCalculator returns a Calculator for m.
func NewCalculator(m *cost.Model) *Calculator {
	return &Calculator{
		model: m,
		cfg:   m.Config(),
	}
}

// Model returns the cost model the calculator uses.
func (c *Calculator) Model() *cost.Model { return c.model }

// Distance returns the weighted edit distance turning query into candidate.
//
// If threshold is non-negative and the distance cannot come out below it,
// the computation may stop early and return threshold+1.
func (c *Calculator) Distance(query, candidate model.Sequence, threshold float64) float64 {
	d, _ := c.Bounded(query, candidate, threshold)
	return d
}

// Bounded is like Distance and also reports whether the computation was cut short.
func (c *Calculator) Bounded(query, candidate model.Sequence, threshold float64) (float64, bool) {
	len1, len2 := len(query), len(candidate)
	c.grow(len2 + 1)

	prev2, prev, curr := c.prev2[:len2+1], c.prev[:len2+1], c.curr[:len2+1]
	cfg := &c.cfg
	bounded := threshold >= 0

	prev[0] = 0
	for j := 1; j <= len2; j++ {
		prev[j] = prev[j-1] + c.insertion(j, len1)
	}
	// minimum of the row above the current one; row 0 starts at D[0][0] = 0
	prevMin := 0.0

	for i := 1; i <= len1; i++ {
		qi := query[i-1]
		curr[0] = float64(i) * cfg.Delete
		rowMin := curr[0]

		for j := 1; j <= len2; j++ {
			cj := candidate[j-1]

			best := prev[j] + cfg.Delete
			if v := curr[j-1] + c.insertion(j, len1); v < best {
				best = v
			}
			if v := prev[j-1] + c.model.Substitution(qi, cj); v < best {
				best = v
			}
			if i > 1 && j > 1 && qi == candidate[j-2] && query[i-2] == cj {
				if v := prev2[j-2] + cfg.Transpose; v < best {
					best = v
				}
			}

			curr[j] = best
			if best < rowMin {
				rowMin = best
			}
		}

		// Later cells come from this row, or from the row above via one
		// transposition, so neither can drop below this bound.
		if bounded {
			lower := rowMin
			if v := prevMin + cfg.Transpose; v < lower {
				lower = v
			}
			if lower >= threshold {
				return threshold + 1, true
			}
		}

		prevMin = rowMin
		prev2, prev, curr = prev, curr, prev2
	}

	return prev[len2], false
}

// insertion returns the cost of inserting the candidate symbol at column j.
func (c *Calculator) insertion(j, len1 int) float64 {
	if j <= len1 {
		return c.cfg.Insert
	}
	return c.cfg.Append
}

func (c *Calculator) grow(n int) {
	if cap(c.curr) >= n {
		return
	}
	c.prev2 = make([]float64, n)
	c.prev = make([]float64, n)
	c.curr = make([]float64, n)
}

// Weighted returns the exact distance between query and candidate under m.
func Weighted(m *cost.Model, query, candidate model.Sequence) float64 {
	return NewCalculator(m).Distance(query, candidate, NoThreshold)
}
