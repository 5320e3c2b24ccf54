package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of every error caused by a caller handing in
// something the registry or the controller cannot accept.
var ErrValidation = errors.New("validation error")

var (
	ErrInvalidPlace       = fmt.Errorf("%w: invalid place", ErrValidation)
	ErrInvalidPermutation = fmt.Errorf("%w: invalid permutation", ErrValidation)
	ErrTooManyPlaces      = fmt.Errorf("%w: too many places to optimize", ErrValidation)
	ErrNoPendingPlace     = fmt.Errorf("%w: no place waiting for a position", ErrValidation)
)

// ErrMalformedRecord is returned by ParseRecord. Registry loads swallow it.
var ErrMalformedRecord = errors.New("malformed place record")

// ErrNonFiniteCoordinate rejects NaN or infinite coordinates before routing.
var ErrNonFiniteCoordinate = errors.New("non-finite coordinate")

// ErrNotFound is returned for unknown input tags and missing stored lists.
var ErrNotFound = errors.New("not found")

// ErrNoStore is returned by save and load when no place store is configured.
var ErrNoStore = errors.New("no place store configured")
