package pcp

import (
	"errors"
	"fmt"
	"math"
)

// Sample is one point of a porkchop plot.
type Sample struct {
	Epoch    float64 // Departure epoch in MJD2000
	Duration float64 // Time of flight in days
}

// Cost is the Δv budget of a sample, in km/s.
type Cost struct {
	Departure float64 // Departure Δv, after the window start adjustment
	Arrival   float64 // Arrival Δv
	Total     float64
}

// CostEvaluator computes the Δv cost of individual samples between two bodies.
type CostEvaluator struct {
	Departure, Arrival Body
	Solver             TransferSolver
	// WindowStart is the lower bound of the departure window being scanned. It is subtracted
	// from the departure Δv of every sample, and the result is clamped at zero.
	WindowStart float64
}

// Evaluate returns the cost of the zero revolution transfer of the provided sample.
func (e CostEvaluator) Evaluate(s Sample) (Cost, error) {
	Ri, Vi, err := e.Departure.Eph(s.Epoch)
	if err != nil {
		return Cost{}, fmt.Errorf("%s ephemeris: %w", e.Departure, err)
	}
	Rf, Vf, err := e.Arrival.Eph(s.Epoch + s.Duration)
	if err != nil {
		return Cost{}, fmt.Errorf("%s ephemeris: %w", e.Arrival, err)
	}
	transfers, err := e.Solver.Solve(Ri, Rf, s.Duration*secondsPerDay, e.Departure.MuCentralBody())
	if err != nil {
		return Cost{}, fmt.Errorf("transfer: %w", err)
	}
	if len(transfers) == 0 {
		return Cost{}, errors.New("transfer: solver returned no solution")
	}
	zeroRev := transfers[0]
	dv1 := deltaV(Vi, zeroRev.Vi)
	dv2 := deltaV(Vf, zeroRev.Vf)
	dv1 = math.Max(0, dv1-e.WindowStart)
	return Cost{Departure: dv1, Arrival: dv2, Total: dv1 + dv2}, nil
}
