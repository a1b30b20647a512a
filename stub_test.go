package pcp

import (
	"errors"
	"math"
	"sync/atomic"
)

// linearEphemeris places every body on the X axis at its epoch, at rest.
type linearEphemeris struct {
	calls int64
}

func (e *linearEphemeris) State(obj CelestialObject, epoch float64) (R, V []float64, err error) {
	atomic.AddInt64(&e.calls, 1)
	return []float64{epoch, 0, 0}, []float64{0, 0, 0}, nil
}

var errStubSolver = errors.New("stub solver: no solution")

// bowlSolver produces a cost of |epoch-20| + |duration-110| with the linear ephemeris.
type bowlSolver struct {
	// fail returns whether the sample of this departure epoch and duration has no solution.
	fail func(epoch, duration float64) bool
}

func (s bowlSolver) Solve(Ri, Rf []float64, tof, μ float64) ([]Transfer, error) {
	days := tof / secondsPerDay
	if s.fail != nil && s.fail(Ri[0], days) {
		return nil, errStubSolver
	}
	return []Transfer{
		{Vi: []float64{Ri[0] - 20, 0, 0}, Vf: []float64{days - 110, 0, 0}, Type: TTypeAuto},
		{Vi: []float64{1e6, 0, 0}, Vf: []float64{1e6, 0, 0}, Type: TType3},
	}, nil
}

type emptySolver struct{}

func (emptySolver) Solve(Ri, Rf []float64, tof, μ float64) ([]Transfer, error) {
	return nil, nil
}

func bowl(epoch, duration float64) float64 {
	return math.Abs(epoch-20) + math.Abs(duration-110)
}

func stubBodies(ephem EphemerisProvider) (Body, Body) {
	return Body{Earth, ephem}, Body{Mars, ephem}
}
