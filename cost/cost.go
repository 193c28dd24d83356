package cost

import (
	"math"

	"github.com/canisaugustinus/latin-leven/model"
)

// Config holds the scalar edit costs.
//
// Replace is the flat substitution cost and the fallback when a symbol lies
// outside the matrix. Insert is charged for insertions within the query's
// length, Append for insertions past it.
type Config struct {
	Replace   float64 `toml:"replace" json:"replace" msgpack:"replace"`
	Insert    float64 `toml:"insert" json:"insert" msgpack:"insert"`
	Append    float64 `toml:"append" json:"append" msgpack:"append"`
	Delete    float64 `toml:"delete" json:"delete" msgpack:"delete"`
	Transpose float64 `toml:"transpose" json:"transpose" msgpack:"transpose"`

	// KeyCost enables matrix based substitution costs.
	KeyCost bool `toml:"key_cost" json:"key_cost" msgpack:"key_cost"`
}

// DefaultConfig returns costs tuned for typo correction on a QWERTY keyboard.
// Appending costs the same as inserting, so a query matches whole words.
func DefaultConfig() Config {
	return Config{
		Replace:   10,
		Insert:    3,
		Append:    3,
		Delete:    3,
		Transpose: 2,
		KeyCost:   true,
	}
}

// SuggestConfig is DefaultConfig with nearly free appends, so a partially
// typed word ranks its completions first.
func SuggestConfig() Config {
	c := DefaultConfig()
	c.Append = 0.1
	return c
}

// Uniform returns a config where every operation costs c and key costing is off.
func Uniform(c float64) Config {
	return Config{Replace: c, Insert: c, Append: c, Delete: c, Transpose: c}
}

// Validate checks that every cost is a non-negative number.
func (c Config) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"replace", c.Replace},
		{"insert", c.Insert},
		{"append", c.Append},
		{"delete", c.Delete},
		{"transpose", c.Transpose},
	}
	for _, f := range fields {
		if invalidCost(f.value) {
			return &ErrNegativeCost{Field: f.name, Value: f.value}
		}
	}
	return nil
}

// Matrix is a square substitution cost table indexed by symbol codes.
type Matrix [][]float64

// Size returns the number of rows.
func (m Matrix) Size() int { return len(m) }

// Validate checks that m is square and holds only non-negative numbers.
func (m Matrix) Validate() error {
	n := len(m)
	for i, row := range m {
		if len(row) != n {
			return &ErrMatrixShape{Row: i, Len: len(row), Want: n}
		}
		for j, v := range row {
			if invalidCost(v) {
				return &ErrNegativeMatrixCost{Row: i, Col: j, Value: v}
			}
		}
	}
	return nil
}

// Clone returns a deep copy of m.
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Model resolves edit costs. It is immutable and safe for concurrent use.
type Model struct {
	cfg  Config
	size int
	// row-major copy of the matrix
	cells []float64
}

// New validates cfg and m and returns a Model.
//
// m may be nil. It is consulted only when cfg.KeyCost is set. The model keeps
// its own copy, so later changes to m have no effect.
func New(cfg Config, m Matrix) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	n := len(m)
	cells := make([]float64, n*n)
	for i, row := range m {
		copy(cells[i*n:(i+1)*n], row)
	}

	return &Model{cfg: cfg, size: n, cells: cells}, nil
}

// MustNew is like New but panics on error.
func MustNew(cfg Config, m Matrix) *Model {
	mod, err := New(cfg, m)
	if err != nil {
		panic(err)
	}
	return mod
}

// Substitution returns the cost of replacing a with b.
func (m *Model) Substitution(a, b model.Symbol) float64 {
	if a == b {
		return 0
	}
	if m.cfg.KeyCost && uint64(a) < uint64(m.size) && uint64(b) < uint64(m.size) {
		return m.cells[int(a)*m.size+int(b)]
	}
	return m.cfg.Replace
}

// Config returns the scalar costs.
func (m *Model) Config() Config { return m.cfg }

// KeyCost reports whether matrix substitution costs are enabled.
func (m *Model) KeyCost() bool { return m.cfg.KeyCost }

// MatrixSize returns the matrix dimension (0 without a matrix).
func (m *Model) MatrixSize() int { return m.size }

// Matrix returns a copy of the substitution matrix.
func (m *Model) Matrix() Matrix {
	if m.size == 0 {
		return nil
	}
	out := make(Matrix, m.size)
	for i := range out {
		out[i] = append([]float64(nil), m.cells[i*m.size:(i+1)*m.size]...)
	}
	return out
}

func invalidCost(v float64) bool {
	return v < 0 || math.IsNaN(v)
}
