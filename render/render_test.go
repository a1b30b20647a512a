package render

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ChristopherRabotin/pcp"
	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func result(cost [][]float64, best pcp.Minimum) *pcp.ScanResult {
	epochs := make([]float64, len(cost))
	for i := range epochs {
		epochs[i] = float64(i) * 15
	}
	durations := make([]float64, len(cost[0]))
	for j := range durations {
		durations[j] = 100 + float64(j)*15
	}
	res := &pcp.ScanResult{
		Departure: pcp.Body{Object: pcp.Earth},
		Arrival:   pcp.Body{Object: pcp.Mars},
		Config:    pcp.ScanConfig{Departure: pcp.Window{From: 0, Until: 15 * float64(len(epochs))}, Flight: pcp.Window{From: 100, Until: 100 + 15*float64(len(durations))}, Step: 15},
		Epochs:    epochs,
		Durations: durations,
		Cost:      cost,
		Best:      best,
	}
	for i := range cost {
		for j, c := range cost[i] {
			if math.IsInf(c, 1) {
				res.Failures = append(res.Failures, &pcp.CellError{I: i, J: j, Sample: pcp.Sample{Epoch: epochs[i], Duration: durations[j]}, Err: errors.New("did not converge")})
			}
		}
	}
	return res
}

func TestSummary(t *testing.T) {
	inf := math.Inf(1)
	res := result([][]float64{{12.5, 8.25}, {inf, 9}}, pcp.Minimum{Cost: 8.25, I: 0, J: 1})
	var buf bytes.Buffer
	if err := Summary(&buf, res); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, exp := range []string{
		"Earth -> Mars",
		"warning: 1 of 4 cells have no transfer solution",
		"did not converge",
		"Minimum ΔV: 8.250000 km/s",
		"Launch epoch: 0.000 MJD2000",
		"Launch date: 2000-01-01",
		"Mission duration: 115.000 days",
	} {
		if !strings.Contains(out, exp) {
			t.Fatalf("%q not in summary:\n%s", exp, out)
		}
	}
}

func TestSummaryInfeasible(t *testing.T) {
	inf := math.Inf(1)
	cost := make([][]float64, 3)
	for i := range cost {
		cost[i] = []float64{inf, inf, inf}
	}
	res := result(cost, pcp.Minimum{Cost: inf})
	var buf bytes.Buffer
	if err := Summary(&buf, res); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "no feasible transfer found") {
		t.Fatalf("missing infeasible message:\n%s", out)
	}
	if !strings.Contains(out, "... and 4 more") {
		t.Fatalf("failures should be truncated:\n%s", out)
	}
	if strings.Contains(out, "Minimum ΔV") {
		t.Fatal("no minimum should be reported")
	}
	if err := Contour(&buf, res, DefaultContourOptions()); !errors.Is(err, pcp.ErrNoFeasibleTransfer) {
		t.Fatalf("expected ErrNoFeasibleTransfer, got %v", err)
	}
}

func TestContour(t *testing.T) {
	inf := math.Inf(1)
	res := result([][]float64{{12, 8, 9}, {inf, 7, 10}, {11, 15, 6000}}, pcp.Minimum{Cost: 7, I: 1, J: 1})
	var png bytes.Buffer
	if err := Contour(&png, res, DefaultContourOptions()); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")) {
		t.Fatal("expected a PNG image")
	}
	opts := DefaultContourOptions()
	opts.Format = "svg"
	var svg bytes.Buffer
	if err := Contour(&svg, res, opts); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(svg.String(), "<svg") {
		t.Fatal("expected an SVG image")
	}
	opts.Format = "gif"
	if err := Contour(&svg, res, opts); err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
	small := result([][]float64{{1, 2}}, pcp.Minimum{Cost: 1})
	if err := Contour(&png, small, DefaultContourOptions()); err == nil {
		t.Fatal("expected an error for a 1x2 grid")
	}
}

func TestLevelRange(t *testing.T) {
	inf := math.Inf(1)
	for _, tc := range []struct {
		cost      [][]float64
		best      pcp.Minimum
		ceiling   float64
		low, high float64
	}{
		// Infeasible and expensive cells are clipped to the ceiling.
		{[][]float64{{12, 8}, {inf, 7}, {11, 6000}}, pcp.Minimum{Cost: 7, I: 1, J: 1}, DefaultCeiling, 7, DefaultCeiling},
		// Levels stop at the highest cost below the ceiling.
		{[][]float64{{3, 4}, {5, 6}}, pcp.Minimum{Cost: 3}, DefaultCeiling, 3, 6},
		// A ceiling below the best cost is raised to the highest finite cost.
		{[][]float64{{30, 40}, {inf, 60}}, pcp.Minimum{Cost: 30}, DefaultCeiling, 30, 60},
		// Flat surfaces still get distinct levels.
		{[][]float64{{2, 2}, {2, 2}}, pcp.Minimum{Cost: 2}, DefaultCeiling, 2, 3},
	} {
		grid, low, high := levelRange(result(tc.cost, tc.best), tc.ceiling)
		if low != tc.low || high != tc.high {
			t.Fatalf("%v: levels [%f, %f] expected [%f, %f]", tc.cost, low, high, tc.low, tc.high)
		}
		c, r := grid.Dims()
		for i := 0; i < c; i++ {
			for j := 0; j < r; j++ {
				if z := grid.Z(i, j); math.IsInf(z, 0) || math.IsNaN(z) || z > grid.ceiling {
					t.Fatalf("%v: cell (%d, %d) not clipped: %f", tc.cost, i, j, z)
				}
			}
		}
	}
}
