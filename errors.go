package pcp

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownBody is returned when a body is not part of the supported bodies.
	ErrUnknownBody = errors.New("unknown body")
	// ErrSameBody is returned when the departure and arrival bodies are identical.
	ErrSameBody = errors.New("departure and arrival bodies must differ")
	// ErrInvalidStep is returned when the sampling step is not strictly positive.
	ErrInvalidStep = errors.New("sampling step must be strictly positive")
	// ErrEmptyGrid is returned when a window yields no samples.
	ErrEmptyGrid = errors.New("empty grid: lower bound must be strictly less than upper bound")
	// ErrInvalidWindow is returned when a window bound is not a finite number.
	ErrInvalidWindow = errors.New("window bounds must be finite")
	// ErrGridTooLarge is returned when a grid has more than MaxCells samples.
	ErrGridTooLarge = errors.New("grid too large")
	// ErrNoFeasibleTransfer is returned when no cell of a scan has a transfer solution.
	ErrNoFeasibleTransfer = errors.New("no feasible transfer found")
	// ErrNegativeEpoch is returned for MJD2000 values before the reference epoch.
	ErrNegativeEpoch = errors.New("MJD2000 value must be non-negative")
	// ErrNonFiniteEpoch is returned for infinite or NaN MJD2000 values.
	ErrNonFiniteEpoch = errors.New("MJD2000 value must be finite")
	// ErrEphemerisRange is returned when an epoch is outside the validity of an ephemeris.
	ErrEphemerisRange = errors.New("epoch out of ephemeris range")
)

// CellError is the failure of the cost evaluation of one grid cell.
type CellError struct {
	I, J   int // epoch and duration indexes
	Sample Sample
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("cell (%d, %d) departure %.3f MJD2000 flight %.3f days: %s", e.I, e.J, e.Sample.Epoch, e.Sample.Duration, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}
