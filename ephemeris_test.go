package pcp

import (
	"errors"
	"math"
	"os"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestJPLLowPrecision(t *testing.T) {
	ephem := JPLLowPrecision{}
	for _, tc := range []struct {
		obj      CelestialObject
		a        float64 // AU at J2000
		min, max float64 // distance bounds, AU
	}{
		{Mercury, 0.38709927, 0.30, 0.47},
		{Venus, 0.72333566, 0.71, 0.73},
		{Earth, 1.00000261, 0.98, 1.02},
		{Mars, 1.52371034, 1.38, 1.67},
		{Jupiter, 5.20288700, 4.95, 5.46},
		{Neptune, 30.06992276, 29.8, 30.4},
		{Pluto, 39.48211675, 29.6, 49.4},
	} {
		for _, epoch := range []float64{-5000, 0, 3652.5, 9000} {
			R, V, err := ephem.State(tc.obj, epoch)
			if err != nil {
				t.Fatalf("%s@%f: %s", tc.obj, epoch, err)
			}
			r := norm(R) / AU
			if r < tc.min || r > tc.max {
				t.Fatalf("%s@%f: r=%f AU out of [%f, %f]", tc.obj, epoch, r, tc.min, tc.max)
			}
			// Vis viva: the energy must match the semi major axis.
			v := norm(V)
			ξ := v*v/2 - Sun.GM()/norm(R)
			aGot := -Sun.GM() / (2 * ξ) / AU
			if !scalar.EqualWithinRel(aGot, tc.a, 1e-3) {
				t.Fatalf("%s@%f: a=%f AU expected ~%f AU", tc.obj, epoch, aGot, tc.a)
			}
		}
	}
}

func TestJPLLowPrecisionEarth(t *testing.T) {
	// Earth is close to perihelion in early January, on the -X side of the ecliptic frame.
	R, V, err := JPLLowPrecision{}.State(Earth, 0)
	if err != nil {
		t.Fatal(err)
	}
	if r := norm(R) / AU; !scalar.EqualWithinAbs(r, 0.9833, 1e-3) {
		t.Fatalf("r=%f AU", r)
	}
	if R[0] > 0 {
		t.Fatalf("Earth should be on the -X side on 2000-01-01, got %v", R)
	}
	if v := norm(V); !scalar.EqualWithinAbs(v, 30.29, 0.05) {
		t.Fatalf("v=%f km/s", v)
	}
	if math.Abs(R[2]) > 1e4 {
		t.Fatalf("Earth should be in the ecliptic plane, z=%f km", R[2])
	}
}

func TestJPLLowPrecisionErrors(t *testing.T) {
	ephem := JPLLowPrecision{}
	for _, epoch := range []float64{-80000, jplLPMin, jplLPMax, 20000} {
		if _, _, err := ephem.State(Earth, epoch); !errors.Is(err, ErrEphemerisRange) {
			t.Fatalf("epoch %f: expected ErrEphemerisRange, got %v", epoch, err)
		}
	}
	if _, _, err := ephem.State(Sun, 0); !errors.Is(err, ErrUnknownBody) {
		t.Fatalf("expected ErrUnknownBody for the Sun, got %v", err)
	}
}

func TestVSOP87(t *testing.T) {
	dir := os.Getenv("VSOP87")
	if dir == "" {
		t.Skip("VSOP87 environment variable not set to the directory of the VSOP87B files")
	}
	vsop := NewVSOP87(dir)
	for _, obj := range []CelestialObject{Earth, Mars, Jupiter, Pluto} {
		Rv, Vv, err := vsop.State(obj, 3000)
		if err != nil {
			t.Fatalf("%s: %s", obj, err)
		}
		Rj, Vj, err := JPLLowPrecision{}.State(obj, 3000)
		if err != nil {
			t.Fatal(err)
		}
		// Both models agree within a fraction of a percent of the orbit radius.
		ΔR := []float64{Rv[0] - Rj[0], Rv[1] - Rj[1], Rv[2] - Rj[2]}
		if norm(ΔR)/norm(Rj) > 5e-3 {
			t.Fatalf("%s: VSOP87 %v and JPL %v positions disagree", obj, Rv, Rj)
		}
		if math.Abs(norm(Vv)-norm(Vj))/norm(Vj) > 1e-2 {
			t.Fatalf("%s: VSOP87 %f and JPL %f speeds disagree", obj, norm(Vv), norm(Vj))
		}
	}
	if _, _, err := vsop.State(Sun, 0); !errors.Is(err, ErrUnknownBody) {
		t.Fatalf("expected ErrUnknownBody for the Sun, got %v", err)
	}
}

func TestTrueAnomaly(t *testing.T) {
	for _, e := range []float64{0, 0.1, 0.5, 0.9} {
		for M := -math.Pi; M < math.Pi; M += 0.25 {
			ν := TrueAnomaly(M, e)
			// Back to the mean anomaly.
			E := 2 * math.Atan(math.Sqrt((1-e)/(1+e))*math.Tan(ν/2))
			Mgot := E - e*math.Sin(E)
			if !scalar.EqualWithinAbs(Mgot, M, 1e-9) {
				t.Fatalf("e=%f M=%f: got M=%f", e, M, Mgot)
			}
		}
	}
}
