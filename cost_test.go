package pcp

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestCostEvaluator(t *testing.T) {
	dep, arr := stubBodies(&linearEphemeris{})
	eval := CostEvaluator{Departure: dep, Arrival: arr, Solver: bowlSolver{}}
	for _, s := range []Sample{{0, 100}, {20, 110}, {25, 120}, {45.5, 3}} {
		cost, err := eval.Evaluate(s)
		if err != nil {
			t.Fatal(err)
		}
		if !scalar.EqualWithinAbs(cost.Total, bowl(s.Epoch, s.Duration), 1e-9) {
			t.Fatalf("%+v: cost %f expected %f", s, cost.Total, bowl(s.Epoch, s.Duration))
		}
		if cost.Total != cost.Departure+cost.Arrival {
			t.Fatalf("%+v: total is not the sum", s)
		}
	}
}

func TestCostEvaluatorWindowStart(t *testing.T) {
	// The departure Δv is reduced by the window start, never below zero.
	dep, arr := stubBodies(&linearEphemeris{})
	eval := CostEvaluator{Departure: dep, Arrival: arr, Solver: bowlSolver{}, WindowStart: 3}
	for _, tc := range []struct {
		s   Sample
		dv1 float64
	}{
		{Sample{0, 110}, 17},
		{Sample{18, 110}, 0},
		{Sample{20, 110}, 0},
		{Sample{30, 110}, 7},
	} {
		cost, err := eval.Evaluate(tc.s)
		if err != nil {
			t.Fatal(err)
		}
		if !scalar.EqualWithinAbs(cost.Departure, tc.dv1, 1e-9) {
			t.Fatalf("%+v: dv1=%f expected %f", tc.s, cost.Departure, tc.dv1)
		}
	}
}

func TestCostEvaluatorErrors(t *testing.T) {
	dep, arr := stubBodies(&linearEphemeris{})
	eval := CostEvaluator{Departure: dep, Arrival: arr, Solver: bowlSolver{fail: func(e, d float64) bool { return true }}}
	if _, err := eval.Evaluate(Sample{0, 100}); !errors.Is(err, errStubSolver) {
		t.Fatalf("expected the solver error, got %v", err)
	}
	eval.Solver = emptySolver{}
	if _, err := eval.Evaluate(Sample{0, 100}); err == nil || !strings.Contains(err.Error(), "no solution") {
		t.Fatalf("expected an error without transfers, got %v", err)
	}
	eval = CostEvaluator{Departure: Body{Earth, JPLLowPrecision{}}, Arrival: Body{Mars, JPLLowPrecision{}}, Solver: LambertSolver{}}
	if _, err := eval.Evaluate(Sample{18000, 400}); !errors.Is(err, ErrEphemerisRange) {
		t.Fatalf("expected ErrEphemerisRange for the arrival, got %v", err)
	}
}

func TestCostEvaluatorEarthMars(t *testing.T) {
	eval := CostEvaluator{Departure: Body{Earth, JPLLowPrecision{}}, Arrival: Body{Mars, JPLLowPrecision{}}, Solver: LambertSolver{}}
	cost, err := eval.Evaluate(Sample{Epoch: 5000, Duration: 200})
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(cost.Total) || cost.Total <= 0 || cost.Departure < 0 || cost.Arrival < 0 {
		t.Fatalf("unexpected cost %+v", cost)
	}
}
