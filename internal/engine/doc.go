// Package engine drives a search over the whole dictionary.
//
// The Coordinator scans dictionary entries, computes each distance against
// the current threshold of a top-K accumulator and feeds the score back.
//
// # Modes
//
//   - Sequential: one scan in dictionary order.
//   - Parallel: the dictionary is split into contiguous chunks, one per
//     worker. Each worker owns its accumulator and threshold; nothing is
//     shared while distances are computed. After all workers finish, a single
//     goroutine merges the local lists by (score, dictionary index).
//
// Both modes return the same entries in the same order. Cancellation is
// checked between dictionary entries only.
package engine
