// Package alphabet maps text to symbol sequences and back.
//
// Characters that appear in the cost matrix receive the lowest codes so the
// matrix can be indexed directly by symbol. Every other character seen in the
// dictionary follows in first-seen order. Space is always part of the
// alphabet and unknown characters encode to it.
package alphabet
