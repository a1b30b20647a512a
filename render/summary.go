// Package render presents porkchop plots: contour images and textual summaries.
package render

import (
	"fmt"
	"io"

	"github.com/ChristopherRabotin/pcp"
	"github.com/fatih/color"
)

var (
	bold       = color.New(color.Bold).SprintFunc()
	dim        = color.New(color.Faint).SprintFunc()
	boldGreen  = color.New(color.Bold, color.FgGreen).SprintFunc()
	boldRed    = color.New(color.Bold, color.FgRed).SprintFunc()
	boldYellow = color.New(color.Bold, color.FgYellow).SprintFunc()
	cyan       = color.New(color.FgCyan).SprintFunc()
)

// maxListedFailures is the number of infeasible cells listed individually in a summary.
const maxListedFailures = 5

// Summary writes the best transfer of the provided plot, or a clear message if there is none.
func Summary(w io.Writer, res *pcp.ScanResult) error {
	fmt.Fprintf(w, "%s %s -> %s, departure %s MJD2000, flight %s days, step %g days (%d cells)\n",
		bold("Porkchop plot"), cyan(res.Departure), cyan(res.Arrival), res.Config.Departure, res.Config.Flight, res.Config.Step, res.Cells())
	if n := len(res.Failures); n > 0 {
		fmt.Fprintf(w, "%s %d of %d cells have no transfer solution\n", boldYellow("warning:"), n, res.Cells())
		for i, f := range res.Failures {
			if i == maxListedFailures {
				fmt.Fprintf(w, "  %s\n", dim(fmt.Sprintf("... and %d more", n-maxListedFailures)))
				break
			}
			fmt.Fprintf(w, "  %s\n", dim(f.Error()))
		}
	}
	if !res.Feasible() {
		_, err := fmt.Fprintf(w, "%s\n", boldRed(pcp.ErrNoFeasibleTransfer.Error()))
		return err
	}
	best := res.BestSample()
	fmt.Fprintf(w, "Minimum ΔV: %s km/s\n", boldGreen(fmt.Sprintf("%.6f", res.Best.Cost)))
	fmt.Fprintf(w, "Launch epoch: %.3f MJD2000\n", best.Epoch)
	if y, m, d, err := pcp.MJD2000ToDate(best.Epoch); err == nil {
		fmt.Fprintf(w, "Launch date: %04d-%02d-%02d (%s)\n", y, m, int(d), pcp.MJD2000ToTime(best.Epoch).Format(pcp.DateFormat))
	} else {
		fmt.Fprintf(w, "Launch date: %s\n", pcp.MJD2000ToTime(best.Epoch).Format(pcp.DateFormat))
	}
	_, err := fmt.Fprintf(w, "Mission duration: %.3f days\n", best.Duration)
	return err
}
