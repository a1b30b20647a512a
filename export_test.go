package pcp

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
)

func scanBowl(t *testing.T, fail func(e, d float64) bool) *ScanResult {
	t.Helper()
	dep, arr := stubBodies(&linearEphemeris{})
	res, err := NewScanner(bowlSolver{fail: fail}).Scan(context.Background(), dep, arr, bowlConfig)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestDatFiles(t *testing.T) {
	res := scanBowl(t, func(e, d float64) bool { return e == 0 && d == 100 })
	files := res.DatFiles("lab4pcp0")
	for _, suffix := range []string{DatCost, DatDepartureΔv, DatArrivalΔv, DatGrid} {
		if _, found := files[DatFileName("lab4pcp0", suffix)]; !found {
			t.Fatalf("missing %s", DatFileName("lab4pcp0", suffix))
		}
	}
	if len(files) != 4 {
		t.Fatalf("expected 4 files, got %d", len(files))
	}
	cost := strings.Split(strings.TrimSpace(string(files["contour-lab4pcp0-cost.dat"])), "\n")
	if !strings.HasPrefix(cost[0], "% Earth -> Mars") {
		t.Fatalf("unexpected header %s", cost[0])
	}
	// Two comment lines then one line per departure epoch.
	if len(cost) != 2+len(res.Epochs) {
		t.Fatalf("expected %d lines, got %d", 2+len(res.Epochs), len(cost))
	}
	first := strings.Split(cost[2], ",")
	if len(first) != len(res.Durations) || first[0] != "+Inf" || first[1] != "25.000000" {
		t.Fatalf("unexpected first row %v", first)
	}
	grid := strings.Split(strings.TrimSpace(string(files["contour-lab4pcp0-grid.dat"])), "\n")
	if grid[len(grid)-2] != "0.000000,5.000000,10.000000,15.000000,20.000000,25.000000" {
		t.Fatalf("unexpected epochs %s", grid[len(grid)-2])
	}
	if grid[len(grid)-1] != "100.000000,105.000000,110.000000,115.000000,120.000000,125.000000" {
		t.Fatalf("unexpected durations %s", grid[len(grid)-1])
	}
}

func TestWriteCSV(t *testing.T) {
	res := scanBowl(t, nil)
	var buf bytes.Buffer
	if err := res.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1+res.Cells() {
		t.Fatalf("expected %d records, got %d", 1+res.Cells(), len(records))
	}
	if strings.Join(records[0], ",") != "epoch,duration,dv_departure,dv_arrival,cost" {
		t.Fatalf("unexpected header %v", records[0])
	}
	// Row major: the best cell (20, 110) is the 4th epoch and 3rd duration.
	best := records[1+4*len(res.Durations)+2]
	if best[0] != "20.000000" || best[1] != "110.000000" || best[4] != "0.000000" {
		t.Fatalf("unexpected best record %v", best)
	}
}
