// Package model defines the core types shared by the search packages.
//
// # Symbols and Sequences
//
//   - Symbol: non-negative code for one alphabet unit (uint32)
//   - Sequence: ordered list of Symbols, either a dictionary entry or a query
//
// The search core never interprets symbol values beyond equality and, when
// key costing is enabled, as indices into the substitution cost matrix.
// Turning text into sequences is the job of the alphabet package.
package model
