// Package distance computes weighted Damerau-Levenshtein distances.
//
// The recurrence is the restricted (adjacent transposition) variant with a
// cost model from package cost. Insertions past the end of the query are
// charged the Append cost instead of Insert, which lets a short query prefer
// longer entries that start with it.
//
// # Pruning
//
// Calculator.Distance accepts a threshold ("score to beat"). While filling
// the table row by row it tracks a lower bound for every cell that is still
// to come. Once that bound reaches the threshold the computation stops and
// returns threshold+1, a value strictly worse than the threshold whose exact
// size carries no meaning. Pass NoThreshold to always get the exact value.
//
// # Usage
//
//	calc := distance.NewCalculator(model)
//	d := calc.Distance(query, candidate, distance.NoThreshold)
//
// A Calculator reuses its row buffers and must not be shared between
// goroutines. Weighted is a one-shot helper that allocates its own.
package distance
