// Package leven provides weighted Damerau-Levenshtein top-K search over a
// fixed dictionary of symbol sequences.
//
// An Index is built once from encoded dictionary entries and a cost
// configuration. Queries return the K entries with the smallest edit
// distance, computed exactly. Distance computations are pruned against the
// current K-th best score, so most entries stop after a few rows.
//
// # Quick Start
//
//	alpha := alphabet.New(cost.KeyboardRunes(), words)
//	keys := alpha.EncodeAll(words)
//
//	idx, err := leven.New(keys, cost.DefaultConfig(),
//	    leven.WithCostMatrix(cost.KeyboardMatrix(alpha.Code)),
//	)
//	if err != nil {
//	    return err
//	}
//
//	results, err := idx.SearchParallel(ctx, alpha.EncodeQuery("amicus"), 10)
//	for _, r := range results {
//	    fmt.Println(alpha.Decode(r.Sequence), r.Score)
//	}
//
// # Cost Model
//
// Substitutions cost Replace unless key costing is enabled and both symbols
// index into the cost matrix. Insertions within the query's length cost
// Insert; insertions past its end cost Append, which lets short queries
// match longer entries cheaply. Deletions cost Delete and swapping two
// adjacent symbols costs Transpose. Negative costs are rejected with
// ErrInvalidConfiguration.
//
// # Search Modes
//
//   - Search: scans the dictionary in order on the calling goroutine.
//   - SearchParallel: scans contiguous chunks on GOMAXPROCS workers (see
//     WithWorkers), each with private pruning state, then merges.
//
// Both modes return identical results: ascending by score, ties broken by
// dictionary position. k is clamped to [1, Len()]; an empty dictionary
// yields an empty result, and SearchBest reports ErrEmptyResult.
//
// # Observability
//
// Use WithLogger for structured logs (charmbracelet/log under slog) and
// WithMetricsCollector to export counters; package prommetrics provides a
// Prometheus collector.
package leven
