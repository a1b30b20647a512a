package pcp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/ChristopherRabotin/pcp/metrics"
	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/floats"
)

const (
	// CoarseStep is the sampling step in days of the first scan of a session.
	CoarseStep = 15.0
	// FineStep is the sampling step in days of the zoomed scans.
	FineStep = 1.0
	// MaxCells is the largest number of samples of a grid, and of each of its axes.
	MaxCells = 1 << 20
)

// Window is a half open interval [From, Until).
type Window struct {
	From, Until float64
}

// Empty returns whether this window contains no value.
func (w Window) Empty() bool {
	return !(w.From < w.Until)
}

func (w Window) finite() bool {
	return !math.IsNaN(w.From) && !math.IsInf(w.From, 0) && !math.IsNaN(w.Until) && !math.IsInf(w.Until, 0)
}

func (w Window) String() string {
	return fmt.Sprintf("[%g, %g)", w.From, w.Until)
}

// Arange returns the values from `from` (included) to `until` (excluded) every `step`.
// It returns nil if the step is not strictly positive, the interval is empty, or there would be more
// than MaxCells values.
// When (until-from)/step rounds just above an integer, the last value from+(n-1)*step may round to until
// and is dropped: Arange(1, 1.3, 0.1) returns three values.
func Arange(from, until, step float64) []float64 {
	if !(step > 0) || !(from < until) {
		return nil
	}
	count := math.Ceil((until - from) / step)
	if !(count <= MaxCells) {
		return nil
	}
	n := int(count)
	vals := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		v := from + float64(i)*step
		if v >= until {
			break
		}
		vals = append(vals, v)
	}
	return vals
}

// ScanConfig defines the grid of a porkchop plot.
type ScanConfig struct {
	Departure Window  // Departure epochs, MJD2000
	Flight    Window  // Times of flight, days
	Step      float64 // Sampling step of both axes, days
}

// Validate returns an error if this configuration would not produce any sample, or more than MaxCells.
func (c ScanConfig) Validate() error {
	if !(c.Step > 0) || math.IsInf(c.Step, 1) {
		return fmt.Errorf("%w: got %g", ErrInvalidStep, c.Step)
	}
	for _, w := range []struct {
		name   string
		window Window
	}{{"departure", c.Departure}, {"flight", c.Flight}} {
		if !w.window.finite() {
			return fmt.Errorf("%s window %s: %w", w.name, w.window, ErrInvalidWindow)
		}
		if w.window.Empty() {
			return fmt.Errorf("%s window %s: %w", w.name, w.window, ErrEmptyGrid)
		}
	}
	epochs := math.Ceil((c.Departure.Until - c.Departure.From) / c.Step)
	durations := math.Ceil((c.Flight.Until - c.Flight.From) / c.Step)
	if cells := epochs * durations; !(cells <= MaxCells) {
		return fmt.Errorf("%w: %g departures by %g durations exceeds %d cells", ErrGridTooLarge, epochs, durations, MaxCells)
	}
	return nil
}

// Epochs returns the departure epochs of this grid.
func (c ScanConfig) Epochs() []float64 {
	return Arange(c.Departure.From, c.Departure.Until, c.Step)
}

// Durations returns the times of flight of this grid.
func (c ScanConfig) Durations() []float64 {
	return Arange(c.Flight.From, c.Flight.Until, c.Step)
}

// FailurePolicy defines what a scan does when a cell has no transfer solution.
type FailurePolicy uint8

const (
	// SkipInfeasible stores an infinite cost for the cell and carries on.
	SkipInfeasible FailurePolicy = iota
	// AbortOnFailure stops the scan on the first failing cell.
	AbortOnFailure
)

func (p FailurePolicy) String() string {
	switch p {
	case SkipInfeasible:
		return "skip"
	case AbortOnFailure:
		return "abort"
	default:
		return "unknown"
	}
}

// ParseFailurePolicy returns the policy from its name.
func ParseFailurePolicy(name string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "skip":
		return SkipInfeasible, nil
	case "abort":
		return AbortOnFailure, nil
	default:
		return SkipInfeasible, fmt.Errorf("unknown failure policy '%s' (expected skip or abort)", name)
	}
}

// Minimum is the smallest cost of a surface and its location.
type Minimum struct {
	Cost float64
	I, J int // Departure epoch and duration indexes
}

// Reduce returns the minimum of the provided surface. The minimum of each row is computed first,
// then the row of the smallest minimum is searched for its column. ErrNoFeasibleTransfer is returned
// along with the first cell if no cell is finite.
func Reduce(surface [][]float64) (Minimum, error) {
	if len(surface) == 0 || len(surface[0]) == 0 {
		return Minimum{}, ErrEmptyGrid
	}
	rowMins := make([]float64, len(surface))
	for i, row := range surface {
		rowMins[i] = floats.Min(row)
	}
	i := floats.MinIdx(rowMins)
	j := floats.MinIdx(surface[i])
	best := Minimum{Cost: surface[i][j], I: i, J: j}
	if math.IsInf(best.Cost, 1) || math.IsNaN(best.Cost) {
		return best, ErrNoFeasibleTransfer
	}
	return best, nil
}

// ScanResult is a porkchop plot: the Δv of every sample of a grid.
type ScanResult struct {
	Departure, Arrival Body
	Config             ScanConfig
	Epochs, Durations  []float64
	// Cost is the total Δv, indexed by epoch then duration. Infeasible cells are +Inf.
	Cost        [][]float64
	DepartureΔv [][]float64
	ArrivalΔv   [][]float64
	Failures    []*CellError
	Best        Minimum
}

// Cells returns the number of samples of this grid.
func (r *ScanResult) Cells() int {
	return len(r.Epochs) * len(r.Durations)
}

// Feasible returns whether at least one cell has a transfer solution.
func (r *ScanResult) Feasible() bool {
	return r.Cells() > 0 && !math.IsInf(r.Best.Cost, 1) && !math.IsNaN(r.Best.Cost)
}

// BestSample returns the departure epoch and duration of the minimum.
func (r *ScanResult) BestSample() Sample {
	return r.sample(r.Best.I, r.Best.J)
}

func (r *ScanResult) sample(i, j int) Sample {
	return Sample{Epoch: r.Epochs[i], Duration: r.Durations[j]}
}

func newScanResult(departure, arrival Body, cfg ScanConfig) *ScanResult {
	r := &ScanResult{Departure: departure, Arrival: arrival, Config: cfg, Epochs: cfg.Epochs(), Durations: cfg.Durations()}
	r.Cost = make([][]float64, len(r.Epochs))
	r.DepartureΔv = make([][]float64, len(r.Epochs))
	r.ArrivalΔv = make([][]float64, len(r.Epochs))
	for i := range r.Epochs {
		r.Cost[i] = make([]float64, len(r.Durations))
		r.DepartureΔv[i] = make([]float64, len(r.Durations))
		r.ArrivalΔv[i] = make([]float64, len(r.Durations))
	}
	return r
}

// cellResult is the outcome of the evaluation of one grid cell.
type cellResult struct {
	i, j int
	cost Cost
	err  *CellError
}

func (r *ScanResult) record(c cellResult) {
	if c.err != nil {
		r.Cost[c.i][c.j] = math.Inf(1)
		r.DepartureΔv[c.i][c.j] = math.NaN()
		r.ArrivalΔv[c.i][c.j] = math.NaN()
		r.Failures = append(r.Failures, c.err)
		return
	}
	r.Cost[c.i][c.j] = c.cost.Total
	r.DepartureΔv[c.i][c.j] = c.cost.Departure
	r.ArrivalΔv[c.i][c.j] = c.cost.Arrival
}

// Scanner evaluates the cost of every sample of a grid. It holds no state between scans.
type Scanner struct {
	solver  TransferSolver
	workers int
	policy  FailurePolicy
	logger  kitlog.Logger
}

// ScanOption configures a Scanner.
type ScanOption func(*Scanner)

// WithWorkers sets the number of goroutines evaluating cells. One or fewer scans sequentially.
func WithWorkers(n int) ScanOption {
	return func(s *Scanner) {
		s.workers = n
	}
}

// WithFailurePolicy sets the behavior of the scan when a cell has no transfer solution.
func WithFailurePolicy(p FailurePolicy) ScanOption {
	return func(s *Scanner) {
		s.policy = p
	}
}

// WithLogger sets the logger of the scanner.
func WithLogger(l kitlog.Logger) ScanOption {
	return func(s *Scanner) {
		s.logger = l
	}
}

// NewScanner returns a sequential scanner which skips infeasible cells.
func NewScanner(solver TransferSolver, opts ...ScanOption) *Scanner {
	s := &Scanner{solver: solver, workers: 1, policy: SkipInfeasible, logger: kitlog.NewNopLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan computes the porkchop plot of the provided configuration.
// If no cell is feasible, the result is returned along with ErrNoFeasibleTransfer.
func (s *Scanner) Scan(ctx context.Context, departure, arrival Body, cfg ScanConfig) (*ScanResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if departure.Object.Equals(arrival.Object) {
		return nil, fmt.Errorf("%w: %s", ErrSameBody, departure)
	}
	res := newScanResult(departure, arrival, cfg)
	if res.Cells() == 0 {
		return nil, ErrEmptyGrid
	}
	eval := CostEvaluator{Departure: departure, Arrival: arrival, Solver: s.solver, WindowStart: cfg.Departure.From}
	s.logger.Log("level", "info", "subsys", "scan", "departure", departure, "arrival", arrival, "epochs", len(res.Epochs), "durations", len(res.Durations), "step", cfg.Step, "workers", s.workers, "policy", s.policy)
	start := time.Now()
	var err error
	if s.workers > 1 {
		err = s.scanParallel(ctx, eval, res)
	} else {
		err = s.scanSequential(ctx, eval, res)
	}
	if err != nil {
		metrics.ObserveScan(s.policy.String(), metrics.StatusError, time.Since(start))
		s.logger.Log("level", "critical", "subsys", "scan", "status", "failed", "err", err)
		return nil, err
	}
	res.Best, err = Reduce(res.Cost)
	if err != nil {
		metrics.ObserveScan(s.policy.String(), metrics.StatusInfeasible, time.Since(start))
		s.logger.Log("level", "warning", "subsys", "scan", "status", "infeasible", "failures", len(res.Failures))
		return res, err
	}
	metrics.ObserveScan(s.policy.String(), metrics.StatusOK, time.Since(start))
	best := res.BestSample()
	s.logger.Log("level", "notice", "subsys", "scan", "status", "finished", "duration", time.Since(start), "Δv(km/s)", res.Best.Cost, "epoch", best.Epoch, "tof(days)", best.Duration, "failures", len(res.Failures))
	return res, nil
}

func (s *Scanner) evaluate(eval CostEvaluator, smp Sample, i, j int) cellResult {
	cost, err := eval.Evaluate(smp)
	if err == nil && (math.IsNaN(cost.Total) || math.IsInf(cost.Total, 0)) {
		err = errors.New("non finite cost")
	}
	if err != nil {
		metrics.CellEvaluated(metrics.OutcomeInfeasible)
		s.logger.Log("level", "warning", "subsys", "scan", "epoch", smp.Epoch, "tof(days)", smp.Duration, "err", err)
		return cellResult{i: i, j: j, err: &CellError{I: i, J: j, Sample: smp, Err: err}}
	}
	metrics.CellEvaluated(metrics.OutcomeFeasible)
	return cellResult{i: i, j: j, cost: cost}
}

func (s *Scanner) scanSequential(ctx context.Context, eval CostEvaluator, res *ScanResult) error {
	for i := range res.Epochs {
		for j := range res.Durations {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("scan interrupted at departure %.3f MJD2000: %w", res.Epochs[i], err)
			}
			c := s.evaluate(eval, res.sample(i, j), i, j)
			if c.err != nil && s.policy == AbortOnFailure {
				return c.err
			}
			res.record(c)
		}
	}
	return nil
}

// cellJob is a unit of work for the worker pool.
type cellJob struct {
	i, j int
}

// scanParallel evaluates the cells with a fixed number of goroutines. Only this goroutine writes to the
// result, so the surface layout does not depend on the order of completion. On abort, the cells already
// handed to the workers are still evaluated and the first failing cell in row-major order is returned,
// as in the sequential scan.
func (s *Scanner) scanParallel(ctx context.Context, eval CostEvaluator, res *ScanResult) error {
	feedCtx, stopFeeding := context.WithCancel(ctx)
	defer stopFeeding()

	jobs := make(chan cellJob, s.workers*2)
	results := make(chan cellResult, s.workers*2)

	// Start workers.
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				c := s.evaluate(eval, res.sample(job.i, job.j), job.i, job.j)
				select {
				case results <- c:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Feed jobs in row-major order.
	go func() {
		defer close(jobs)
		for i := range res.Epochs {
			for j := range res.Durations {
				select {
				case jobs <- cellJob{i, j}:
				case <-feedCtx.Done():
					return
				}
			}
		}
	}()

	// Close results when all workers are done.
	go func() {
		wg.Wait()
		close(results)
	}()

	var abortErr *CellError
	recorded := 0
	for c := range results {
		if c.err != nil && s.policy == AbortOnFailure {
			if abortErr == nil || c.i < abortErr.I || (c.i == abortErr.I && c.j < abortErr.J) {
				abortErr = c.err
			}
			stopFeeding()
			continue
		}
		if abortErr != nil {
			continue // drain
		}
		res.record(c)
		recorded++
	}
	if err := ctx.Err(); err != nil && recorded < res.Cells() {
		return fmt.Errorf("scan interrupted after %d of %d cells: %w", recorded, res.Cells(), err)
	}
	if abortErr != nil {
		return abortErr
	}
	if recorded < res.Cells() {
		return fmt.Errorf("scan interrupted after %d of %d cells", recorded, res.Cells())
	}
	return nil
}
