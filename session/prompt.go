// Package session runs the interactive porkchop plot protocol: bodies, windows, coarse scan, then zooms.
package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChristopherRabotin/pcp"
	"github.com/fatih/color"
)

// ErrEndOfInput is returned when the input is exhausted while a value is expected.
var ErrEndOfInput = errors.New("end of input")

var (
	warn   = color.New(color.FgYellow).SprintFunc()
	prompt = color.New(color.Bold).SprintFunc()
)

// Prompter asks the user for the scan parameters, re-prompting on invalid answers.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter returns a prompter reading answers from in and writing questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

func (p *Prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, prompt(question))
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", ErrEndOfInput
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *Prompter) askFloat(question string) (float64, error) {
	answer, err := p.ask(question)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(answer, 64)
}

// Bodies returns the departure and arrival body names. Unknown names and identical bodies are rejected.
func (p *Prompter) Bodies() (departure, arrival string, err error) {
	for {
		if departure, err = p.ask("Enter initial planet: "); err != nil {
			return
		}
		if arrival, err = p.ask("Enter destination planet: "); err != nil {
			return
		}
		departure, arrival = strings.ToLower(departure), strings.ToLower(arrival)
		if departure == arrival {
			fmt.Fprintln(p.out, warn("Incorrect input. Initial and destination planets cannot be the same."))
			continue
		}
		_, derr := pcp.CelestialObjectFromString(departure)
		_, aerr := pcp.CelestialObjectFromString(arrival)
		if derr != nil || aerr != nil {
			fmt.Fprintf(p.out, "%s (expected one of %s)\n", warn("Unknown planet name."), strings.Join(pcp.SupportedBodies(), ", "))
			continue
		}
		return departure, arrival, nil
	}
}

// window asks for both bounds of a window until they are numbers and the window is not empty.
func (p *Prompter) window(first, second, confirm string) (pcp.Window, error) {
	for {
		from, err := p.askFloat(first)
		if errors.Is(err, ErrEndOfInput) {
			return pcp.Window{}, err
		}
		var until float64
		if err == nil {
			until, err = p.askFloat(second)
			if errors.Is(err, ErrEndOfInput) {
				return pcp.Window{}, err
			}
		}
		if err != nil {
			fmt.Fprintln(p.out, warn("Invalid input."))
			continue
		}
		w := pcp.Window{From: from, Until: until}
		if w.Empty() {
			fmt.Fprintf(p.out, "%s %s\n", warn("Invalid input: empty window"), w)
			continue
		}
		fmt.Fprintf(p.out, confirm+"\n", from, until)
		return w, nil
	}
}

// DepartureWindow asks for the departure epochs, in MJD2000.
func (p *Prompter) DepartureWindow(refined bool) (pcp.Window, error) {
	if refined {
		return p.window("Enter the updated first departure epoch in MJD2000: ", "Enter the updated latest departure epoch in MJD2000: ", "Departure window is from %g to %g (MJD2000)")
	}
	return p.window("Enter first departure epoch in MJD2000: ", "Enter latest departure epoch in MJD2000: ", "Departure window is from %g to %g (MJD2000)")
}

// FlightWindow asks for the flight durations, in days.
func (p *Prompter) FlightWindow(refined bool) (pcp.Window, error) {
	if refined {
		return p.window("Enter the updated minimum flight time in days: ", "Enter the updated maximum flight time in days: ", "Total mission duration is from %g to %g (days)")
	}
	return p.window("Enter minimum flight time in days: ", "Enter maximum flight time in days: ", "Total mission duration is from %g to %g (days)")
}

// Refine asks whether to sample again with a finer resolution. Empty answers are asked again.
func (p *Prompter) Refine() (bool, error) {
	for {
		answer, err := p.ask("Would you like to sample with a finer resolution? (Y/N) ")
		if err != nil {
			return false, err
		}
		if answer == "" {
			continue
		}
		return strings.ToUpper(answer[:1]) == "Y", nil
	}
}
