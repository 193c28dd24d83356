package cost

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is returned when costs or the cost matrix are unusable.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrNegativeCost reports a scalar cost that is negative or NaN.
type ErrNegativeCost struct {
	Field string
	Value float64
}

func (e *ErrNegativeCost) Error() string {
	return fmt.Sprintf("invalid configuration: %s cost must be a non-negative number, got %g", e.Field, e.Value)
}

func (e *ErrNegativeCost) Unwrap() error { return ErrInvalidConfiguration }

// ErrMatrixShape reports a cost matrix row whose length differs from the row count.
type ErrMatrixShape struct {
	Row  int
	Len  int
	Want int
}

func (e *ErrMatrixShape) Error() string {
	return fmt.Sprintf("invalid configuration: cost matrix row %d has %d columns, want %d", e.Row, e.Len, e.Want)
}

func (e *ErrMatrixShape) Unwrap() error { return ErrInvalidConfiguration }

// ErrNegativeMatrixCost reports a matrix cell that is negative or NaN.
type ErrNegativeMatrixCost struct {
	Row   int
	Col   int
	Value float64
}

func (e *ErrNegativeMatrixCost) Error() string {
	return fmt.Sprintf("invalid configuration: cost matrix cell [%d][%d] must be a non-negative number, got %g", e.Row, e.Col, e.Value)
}

func (e *ErrNegativeMatrixCost) Unwrap() error { return ErrInvalidConfiguration }
