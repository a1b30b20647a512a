package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/ChristopherRabotin/pcp"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

// DefaultCeiling is the highest contour level, in km/s.
const DefaultCeiling = 20.0

// ContourOptions configures a contour plot.
type ContourOptions struct {
	Format  string  // png or svg
	Ceiling float64 // highest level; costs above it are clipped
	Levels  int
	Width   vg.Length
	Height  vg.Length
}

// DefaultContourOptions returns a 20 cm by 15 cm PNG with ten levels.
func DefaultContourOptions() ContourOptions {
	return ContourOptions{Format: "png", Ceiling: DefaultCeiling, Levels: 10, Width: 20 * vg.Centimeter, Height: 15 * vg.Centimeter}
}

// costGrid is the cost surface seen as a plotter.GridXYZ: columns are departure epochs, rows durations.
type costGrid struct {
	res     *pcp.ScanResult
	ceiling float64
}

func (g costGrid) Dims() (c, r int) { return len(g.res.Epochs), len(g.res.Durations) }
func (g costGrid) X(c int) float64  { return g.res.Epochs[c] }
func (g costGrid) Y(r int) float64  { return g.res.Durations[r] }

// Z clips infeasible cells to the ceiling.
func (g costGrid) Z(c, r int) float64 {
	v := g.res.Cost[c][r]
	if math.IsNaN(v) || v > g.ceiling {
		return g.ceiling
	}
	return v
}

// Contour draws the filled contour plot of the total ΔV of the provided plot.
func Contour(w io.Writer, res *pcp.ScanResult, opts ContourOptions) error {
	if len(res.Epochs) < 2 || len(res.Durations) < 2 {
		return fmt.Errorf("contour plot needs at least a 2x2 grid, got %dx%d", len(res.Epochs), len(res.Durations))
	}
	if !res.Feasible() {
		return pcp.ErrNoFeasibleTransfer
	}
	if opts.Ceiling <= 0 {
		opts.Ceiling = DefaultCeiling
	}
	if opts.Levels < 2 {
		opts.Levels = 2
	}
	grid, low, high := levelRange(res, opts.Ceiling)

	cm := moreland.ExtendedBlackBody()
	cm.SetMin(low)
	cm.SetMax(high)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - %s Total ΔV Requirements", res.Departure, res.Arrival)
	p.X.Label.Text = "Launch Date (MJD2000)"
	p.Y.Label.Text = "Mission Duration (days)"

	hm := plotter.NewHeatMap(grid, cm.Palette(255))
	hm.Min, hm.Max = low, high
	p.Add(hm)

	levels := make([]float64, opts.Levels)
	floats.Span(levels, low, high)
	ct := plotter.NewContour(grid, levels, nil)
	ct.LineStyles = []draw.LineStyle{{Color: color.Black, Width: vg.Points(0.5)}}
	p.Add(ct)

	bar := &plotter.ColorBar{ColorMap: cm, Vertical: true}
	barPlot := plot.New()
	barPlot.HideX()
	barPlot.Y.Label.Text = "ΔV (km/s)"
	barPlot.Add(bar)

	var canvas vg.CanvasWriterTo
	switch strings.ToLower(opts.Format) {
	case "", "png":
		canvas = vgimg.PngCanvas{Canvas: vgimg.New(opts.Width, opts.Height)}
	case "svg":
		canvas = vgsvg.New(opts.Width, opts.Height)
	default:
		return errors.New("unsupported plot format " + opts.Format)
	}
	dc := draw.New(canvas)
	barWidth := opts.Width / 8
	p.Draw(draw.Crop(dc, 0, -barWidth, 0, 0))
	barPlot.Draw(draw.Crop(dc, opts.Width-barWidth, 0, 0, 0))
	_, err := canvas.WriteTo(w)
	return err
}

// levelRange returns the clipped grid and the range of its levels: from the best cost to the ceiling, or to
// the highest cost if it is lower. A ceiling below the best cost is raised to the highest finite cost.
func levelRange(res *pcp.ScanResult, ceiling float64) (grid costGrid, low, high float64) {
	low = res.Best.Cost
	if ceiling <= low {
		ceiling = finiteMax(res.Cost)
	}
	grid = costGrid{res: res, ceiling: ceiling}
	high = ceiling
	if maxZ := gridMax(grid); maxZ < high {
		high = maxZ
	}
	if high <= low {
		high = low + 1
	}
	return grid, low, high
}

func finiteMax(surface [][]float64) float64 {
	max := math.Inf(-1)
	for _, row := range surface {
		for _, v := range row {
			if !math.IsInf(v, 0) && !math.IsNaN(v) && v > max {
				max = v
			}
		}
	}
	return max
}

func gridMax(g costGrid) float64 {
	c, r := g.Dims()
	max := math.Inf(-1)
	for i := 0; i < c; i++ {
		for j := 0; j < r; j++ {
			if z := g.Z(i, j); z > max {
				max = z
			}
		}
	}
	return max
}
