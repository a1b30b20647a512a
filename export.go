package pcp

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Dat file suffixes.
const (
	DatCost        = "cost"
	DatDepartureΔv = "dv-departure"
	DatArrivalΔv   = "dv-arrival"
	DatGrid        = "grid"
)

// DatFileName returns the name of a contour data file.
func DatFileName(prefix, suffix string) string {
	return fmt.Sprintf("contour-%s-%s.dat", prefix, suffix)
}

// DatFiles returns the contour data files of this plot, to be plotted in Matlab or Octave, keyed by file name.
// Each data line is a departure epoch and each column a duration. Infeasible cells are written as Inf and NaN.
func (r *ScanResult) DatFiles(prefix string) map[string][]byte {
	header := fmt.Sprintf("%% %s -> %s\n%% departure epochs as new lines, durations as new columns", r.Departure, r.Arrival)
	files := make(map[string][]byte, 4)
	for suffix, surface := range map[string][][]float64{
		DatCost:        r.Cost,
		DatDepartureΔv: r.DepartureΔv,
		DatArrivalΔv:   r.ArrivalΔv,
	} {
		var buf bytes.Buffer
		buf.WriteString(header)
		for _, row := range surface {
			buf.WriteString("\n")
			for j, val := range row {
				if j > 0 {
					buf.WriteString(",")
				}
				buf.WriteString(fmt.Sprintf("%f", val))
			}
		}
		buf.WriteString("\n")
		files[DatFileName(prefix, suffix)] = buf.Bytes()
	}
	// The grid file holds the axes.
	var grid bytes.Buffer
	grid.WriteString(header)
	grid.WriteString(fmt.Sprintf("\n%%departure: %s\n%%step: %g days\n", r.Config.Departure, r.Config.Step))
	for _, axis := range [][]float64{r.Epochs, r.Durations} {
		for i, val := range axis {
			if i > 0 {
				grid.WriteString(",")
			}
			grid.WriteString(fmt.Sprintf("%f", val))
		}
		grid.WriteString("\n")
	}
	files[DatFileName(prefix, DatGrid)] = grid.Bytes()
	return files
}

// WriteCSV writes one line per cell: epoch, duration, departure Δv, arrival Δv and cost.
func (r *ScanResult) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"epoch", "duration", "dv_departure", "dv_arrival", "cost"}); err != nil {
		return err
	}
	ff := func(v float64) string {
		return strconv.FormatFloat(v, 'f', 6, 64)
	}
	for i, epoch := range r.Epochs {
		for j, duration := range r.Durations {
			if err := cw.Write([]string{ff(epoch), ff(duration), ff(r.DepartureΔv[i][j]), ff(r.ArrivalΔv[i][j]), ff(r.Cost[i][j])}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
