package topk

import "sort"

// NoThreshold is returned by Threshold while fewer than K entries are held.
const NoThreshold = -1.0

// Entry is a scored dictionary position.
type Entry struct {
	Index int
	Score float64
}

// Less orders entries by score, then by dictionary index.
func Less(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Index < b.Index
}

// Accumulator maintains the K lowest scoring entries offered so far.
// It is not safe for concurrent use.
type Accumulator struct {
	k         int
	entries   []Entry
	threshold float64
	active    bool
}

// New returns an accumulator for k entries. k below 1 is treated as 1.
func New(k int) *Accumulator {
	if k < 1 {
		k = 1
	}
	return &Accumulator{
		k:         k,
		entries:   make([]Entry, 0, k+1),
		threshold: NoThreshold,
	}
}

// Reset empties the accumulator and sets a new capacity.
func (a *Accumulator) Reset(k int) {
	if k < 1 {
		k = 1
	}
	a.k = k
	a.entries = a.entries[:0]
	a.threshold = NoThreshold
	a.active = false
}

// K returns the capacity.
func (a *Accumulator) K() int { return a.k }

// Len returns the number of entries currently held.
func (a *Accumulator) Len() int { return len(a.entries) }

// Threshold returns the score an entry must beat to be kept, or NoThreshold
// while the accumulator holds fewer than K entries.
func (a *Accumulator) Threshold() float64 {
	if !a.active {
		return NoThreshold
	}
	return a.threshold
}

// Offer adds the entry if it can still be among the K best.
// It reports whether the entry was kept.
func (a *Accumulator) Offer(index int, score float64) bool {
	if a.active && score >= a.threshold {
		return false
	}

	e := Entry{Index: index, Score: score}
	pos := sort.Search(len(a.entries), func(i int) bool {
		return Less(e, a.entries[i])
	})
	a.entries = append(a.entries, Entry{})
	copy(a.entries[pos+1:], a.entries[pos:])
	a.entries[pos] = e

	if len(a.entries) >= a.k {
		// anything past K can never come back once the threshold is set
		a.entries = a.entries[:a.k]
		a.threshold = a.entries[a.k-1].Score
		a.active = true
	}
	return true
}

// Entries returns the held entries in ascending order. The slice is owned by
// the accumulator and is only valid until the next Offer or Reset.
func (a *Accumulator) Entries() []Entry {
	return a.entries
}

// Merge combines ascending lists into the k best entries overall. Each input
// must already be sorted by Less. The result is a new slice.
func Merge(k int, lists ...[]Entry) []Entry {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	if k > total {
		k = total
	}

	out := make([]Entry, 0, k)
	heads := make([]int, len(lists))
	for len(out) < k {
		best := -1
		for i, l := range lists {
			if heads[i] == len(l) {
				continue
			}
			if best < 0 || Less(l[heads[i]], lists[best][heads[best]]) {
				best = i
			}
		}
		out = append(out, lists[best][heads[best]])
		heads[best]++
	}
	return out
}
