package model

import (
	"fmt"
	"strings"
)

// Symbol is the integer code of one alphabet unit.
type Symbol uint32

// Sequence is an ordered list of symbols.
type Sequence []Symbol

// Len returns the number of symbols in s.
func (s Sequence) Len() int { return len(s) }

// Clone returns a copy of s that shares no memory with it.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Equal reports whether s and o hold the same symbols in the same order.
func (s Sequence) Equal(o Sequence) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// String returns a compact representation such as "[0 1 2]".
func (s Sequence) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, sym := range s {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", sym)
	}
	b.WriteByte(']')
	return b.String()
}

// Ints converts a slice of ints into a Sequence.
// Negative values are not valid symbols and cause an error.
func Ints(values []int) (Sequence, error) {
	out := make(Sequence, len(values))
	for i, v := range values {
		if v < 0 {
			return nil, fmt.Errorf("symbol %d at position %d is negative", v, i)
		}
		out[i] = Symbol(v)
	}
	return out, nil
}

// MustInts is like Ints but panics on negative values. Intended for tests and literals.
func MustInts(values ...int) Sequence {
	s, err := Ints(values)
	if err != nil {
		panic(err)
	}
	return s
}
