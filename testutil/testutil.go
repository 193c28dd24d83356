package testutil

import (
	"math/rand"
	"slices"
	"sync"

	"github.com/canisaugustinus/latin-leven/cost"
	"github.com/canisaugustinus/latin-leven/model"
)

// Scored is one entry of a reference ranking.
type Scored struct {
	Index int
	Score float64
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Sequence returns a random sequence with length in [minLen, maxLen] and
// symbols in [0, alphabet).
func (r *RNG) Sequence(minLen, maxLen, alphabet int) model.Sequence {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sequenceLocked(minLen, maxLen, alphabet)
}

// Sequences generates n random sequences. Duplicates are possible and
// useful: they produce score ties.
func (r *RNG) Sequences(n, minLen, maxLen, alphabet int) []model.Sequence {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Sequence, n)
	for i := range out {
		out[i] = r.sequenceLocked(minLen, maxLen, alphabet)
	}
	return out
}

func (r *RNG) sequenceLocked(minLen, maxLen, alphabet int) model.Sequence {
	n := minLen
	if maxLen > minLen {
		n += r.rand.Intn(maxLen - minLen + 1)
	}
	s := make(model.Sequence, n)
	for i := range s {
		s[i] = model.Symbol(r.rand.Intn(alphabet))
	}
	return s
}

// Mutate applies up to edits random single-symbol edits (substitute, insert,
// delete, swap neighbours) to a copy of s.
func (r *RNG) Mutate(s model.Sequence, edits, alphabet int) model.Sequence {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := s.Clone()
	for range edits {
		switch op := r.rand.Intn(4); {
		case op == 0 && len(out) > 0:
			out[r.rand.Intn(len(out))] = model.Symbol(r.rand.Intn(alphabet))
		case op == 1:
			pos := r.rand.Intn(len(out) + 1)
			out = slices.Insert(out, pos, model.Symbol(r.rand.Intn(alphabet)))
		case op == 2 && len(out) > 0:
			pos := r.rand.Intn(len(out))
			out = slices.Delete(out, pos, pos+1)
		case op == 3 && len(out) > 1:
			pos := r.rand.Intn(len(out) - 1)
			out[pos], out[pos+1] = out[pos+1], out[pos]
		}
	}
	return out
}

// Costs returns a random valid cost configuration. Values are drawn from a
// small grid so that ties are common.
func (r *RNG) Costs(keyCost bool) cost.Config {
	r.mu.Lock()
	defer r.mu.Unlock()

	pick := func() float64 { return float64(r.rand.Intn(8)) * 0.5 }
	return cost.Config{
		Replace:   pick(),
		Insert:    pick(),
		Append:    pick(),
		Delete:    pick(),
		Transpose: pick(),
		KeyCost:   keyCost,
	}
}

// Matrix returns a random n x n substitution matrix with a zero diagonal.
func (r *RNG) Matrix(n int) cost.Matrix {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := make(cost.Matrix, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			if i != j {
				m[i][j] = float64(r.rand.Intn(6)) * 0.5
			}
		}
	}
	return m
}

// BruteForceTopK scores every entry of dict without pruning and returns the
// k best, ordered by score and then by dictionary index.
func BruteForceTopK(query model.Sequence, dict []model.Sequence, k int, dist func(a, b model.Sequence) float64) []Scored {
	all := make([]Scored, len(dict))
	for i, c := range dict {
		all[i] = Scored{Index: i, Score: dist(query, c)}
	}

	slices.SortStableFunc(all, func(a, b Scored) int {
		switch {
		case a.Score < b.Score:
			return -1
		case a.Score > b.Score:
			return 1
		}
		return a.Index - b.Index
	})

	if k < len(all) {
		all = all[:k]
	}
	return all
}

// Scores extracts the scores of a reference ranking.
func Scores(s []Scored) []float64 {
	out := make([]float64, len(s))
	for i, e := range s {
		out[i] = e.Score
	}
	return out
}

// Indices extracts the dictionary indices of a reference ranking.
func Indices(s []Scored) []int {
	out := make([]int, len(s))
	for i, e := range s {
		out[i] = e.Index
	}
	return out
}
