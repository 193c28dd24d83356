package leven

import (
	"errors"
	"fmt"

	"github.com/canisaugustinus/latin-leven/cost"
	"github.com/canisaugustinus/latin-leven/internal/resource"
)

var (
	// ErrEmptyResult is returned by the best-match searches when no entry qualifies.
	ErrEmptyResult = errors.New("empty result")

	// ErrInvalidConfiguration is returned for negative costs, malformed cost
	// matrices and invalid option values.
	ErrInvalidConfiguration = cost.ErrInvalidConfiguration

	// ErrClosed is returned when searching a closed index.
	ErrClosed = errors.New("index closed")

	// ErrResourceExhausted is returned when a search limit refuses a non-blocking admission.
	ErrResourceExhausted = errors.New("resource exhausted")
)

// ErrNegativeCost reports a negative or NaN scalar cost.
type ErrNegativeCost = cost.ErrNegativeCost

// ErrMatrixShape reports a non-square cost matrix.
type ErrMatrixShape = cost.ErrMatrixShape

// ErrNegativeMatrixCost reports a negative or NaN cost matrix cell.
type ErrNegativeMatrixCost = cost.ErrNegativeMatrixCost

// ErrInvalidOption indicates an option value outside its allowed range.
//
// It matches ErrInvalidConfiguration via errors.Is.
type ErrInvalidOption struct {
	Name  string
	Value any
}

func (e *ErrInvalidOption) Error() string {
	return fmt.Sprintf("invalid configuration: option %s has invalid value %v", e.Name, e.Value)
}

func (e *ErrInvalidOption) Unwrap() error { return ErrInvalidConfiguration }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, resource.ErrSearchLimitExceeded) || errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrResourceExhausted, err)
	}

	return err
}
