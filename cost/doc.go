// Package cost resolves the price of each edit operation.
//
// A Model combines scalar costs (Config) with an optional square
// substitution matrix. When key costing is enabled and both symbols index
// into the matrix, the matrix cell is the substitution cost; otherwise the
// flat Replace cost applies. Symbols outside the matrix are a normal
// condition, not an error.
//
//	m, err := cost.New(cost.DefaultConfig(), cost.KeyboardMatrix(alpha.Code))
//	if err != nil {
//	    // errors.Is(err, cost.ErrInvalidConfiguration)
//	}
//	c := m.Substitution(a, b)
//
// All costs must be non-negative. Distance pruning depends on edit costs
// never decreasing a partial score, so New rejects negative values.
package cost
