// Package testutil provides testing utilities for the search packages.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random symbol sequences and cost
// settings, and a brute-force reference ranking.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	dict := rng.Sequences(500, 1, 8, 12) // 500 entries, length 1..8, alphabet of 12
//	query := rng.Mutate(dict[3], 2, 12)
//
// # Exact Search (Ground Truth)
//
//	want := testutil.BruteForceTopK(query, dict, k, func(a, b model.Sequence) float64 {
//	    return distance.Weighted(m, a, b)
//	})
package testutil
