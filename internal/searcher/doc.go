// Package searcher provides pooled scan contexts for zero-allocation queries.
//
// A Searcher owns the scratch memory one goroutine needs to scan part of the
// dictionary: the distance calculator's rolling rows and a top-K accumulator.
// Searchers are handed out by a Pool bound to one cost model and reused
// across queries.
package searcher
