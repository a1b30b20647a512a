package pcp

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestMJD2000ToDate(t *testing.T) {
	for _, tc := range []struct {
		value       float64
		year, month int
		day         float64
	}{
		{0, 2000, 1, 1},
		{10.5, 2000, 1, 11.5},
		{30, 2000, 1, 31},
		{31, 2000, 2, 1},
		{59, 2000, 2, 29}, // leap year
		{60, 2000, 3, 1},
		{366, 2001, 1, 1},
		{424, 2001, 2, 28},
		{425, 2001, 3, 1}, // common year
		{36525, 2100, 1, 1},
		{36584, 2100, 3, 1}, // 2100 is not a leap year
	} {
		year, month, day, err := MJD2000ToDate(tc.value)
		if err != nil {
			t.Fatalf("%f: %s", tc.value, err)
		}
		if year != tc.year || month != tc.month || !scalar.EqualWithinAbs(day, tc.day, 1e-9) {
			t.Fatalf("%f: got %d-%d-%f expected %d-%d-%f", tc.value, year, month, day, tc.year, tc.month, tc.day)
		}
	}
	for _, value := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		if _, _, _, err := MJD2000ToDate(value); !errors.Is(err, ErrNonFiniteEpoch) {
			t.Fatalf("%f: expected ErrNonFiniteEpoch, got %v", value, err)
		}
	}
	if _, _, _, err := MJD2000ToDate(-1); !errors.Is(err, ErrNegativeEpoch) {
		t.Fatalf("expected ErrNegativeEpoch, got %v", err)
	}
}

func TestMJD2000ToDateMatchesJulian(t *testing.T) {
	// Whole days must agree with the meeus calendar conversion.
	for value := 0.0; value < 20000; value += 97 {
		year, month, day, err := MJD2000ToDate(value)
		if err != nil {
			t.Fatal(err)
		}
		y, m, d := julian.JDToCalendar(value + MJD2000Offset)
		if y != year || m != month || !scalar.EqualWithinAbs(d, day, 1e-6) {
			t.Fatalf("%f: got %d-%d-%f, meeus %d-%d-%f", value, year, month, day, y, m, d)
		}
	}
}

func TestMJD2000Time(t *testing.T) {
	ref := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := MJD2000ToTime(0); !got.Equal(ref) {
		t.Fatalf("MJD2000 0 is %s", got)
	}
	if got := TimeToMJD2000(ref.Add(36 * time.Hour)); !scalar.EqualWithinAbs(got, 1.5, 1e-9) {
		t.Fatalf("expected 1.5, got %f", got)
	}
	for _, value := range []float64{-3000, 0, 123.25, 9000} {
		if got := TimeToMJD2000(MJD2000ToTime(value)); !scalar.EqualWithinAbs(got, value, 1e-6) {
			t.Fatalf("%f became %f", value, got)
		}
	}
}
