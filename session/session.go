package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChristopherRabotin/pcp"
	kitlog "github.com/go-kit/kit/log"
)

// Reporter presents the result of each pass of a session.
type Reporter interface {
	Report(ctx context.Context, pass int, res *pcp.ScanResult) error
}

// ReporterFunc is a function implementing Reporter.
type ReporterFunc func(ctx context.Context, pass int, res *pcp.ScanResult) error

// Report implements the Reporter interface.
func (f ReporterFunc) Report(ctx context.Context, pass int, res *pcp.ScanResult) error {
	return f(ctx, pass, res)
}

// Session is one interactive porkchop plot run: a coarse scan followed by any number of refined scans of
// the same bodies.
type Session struct {
	Prompter  *Prompter
	Scanner   *pcp.Scanner
	Ephemeris pcp.EphemerisProvider
	Reporter  Reporter
	Logger    kitlog.Logger
}

// Run runs the session until the user declines a refinement or the input ends.
func (s *Session) Run(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	depName, arrName, err := s.Prompter.Bodies()
	if err != nil {
		return err
	}
	departure, err := pcp.NewBody(depName, s.Ephemeris)
	if err != nil {
		return err
	}
	arrival, err := pcp.NewBody(arrName, s.Ephemeris)
	if err != nil {
		return err
	}
	step := pcp.CoarseStep
	for pass := 0; ; pass++ {
		res, err := s.scan(ctx, departure, arrival, pass > 0, step)
		switch {
		case err == nil, errors.Is(err, pcp.ErrNoFeasibleTransfer):
			if rerr := s.Reporter.Report(ctx, pass, res); rerr != nil {
				return rerr
			}
		default:
			logger.Log("level", "critical", "subsys", "session", "pass", pass, "err", err)
			return err
		}
		zoom, err := s.Prompter.Refine()
		if errors.Is(err, ErrEndOfInput) || (err == nil && !zoom) {
			fmt.Fprintln(s.Prompter.out, "Program ended.")
			return nil
		}
		if err != nil {
			return err
		}
		step = pcp.FineStep
	}
}

// scan asks for both windows and scans them, asking again while the windows do not make a usable grid.
func (s *Session) scan(ctx context.Context, departure, arrival pcp.Body, refined bool, step float64) (*pcp.ScanResult, error) {
	for {
		depWindow, err := s.Prompter.DepartureWindow(refined)
		if err != nil {
			return nil, err
		}
		flightWindow, err := s.Prompter.FlightWindow(refined)
		if err != nil {
			return nil, err
		}
		cfg := pcp.ScanConfig{Departure: depWindow, Flight: flightWindow, Step: step}
		res, err := s.Scanner.Scan(ctx, departure, arrival, cfg)
		if isUsageError(err) {
			fmt.Fprintf(s.Prompter.out, "%s %s\n", warn("Invalid input:"), err)
			continue
		}
		return res, err
	}
}

func isUsageError(err error) bool {
	for _, target := range []error{pcp.ErrEmptyGrid, pcp.ErrInvalidStep, pcp.ErrInvalidWindow, pcp.ErrGridTooLarge} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
