// Package topk keeps the K best scored dictionary entries.
//
// Accumulator is a sorted slice sized by the expected small K. New entries go
// in at the strict upper bound of (score, index), so among equal scores the
// entry that appears first in the dictionary wins. Once K entries are held,
// the K-th score becomes the pruning threshold; it only ever decreases.
//
// Merge combines several ascending lists (one per parallel worker) into one,
// ordered by score and then by dictionary index.
package topk
