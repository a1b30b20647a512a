package pcp

import (
	"fmt"
	"math"
	"sync"

	"github.com/soniakeys/meeus/v3/planetposition"
	"github.com/soniakeys/meeus/v3/pluto"
)

const (
	// MJD2000Offset is the Julian date of the MJD2000 reference epoch (2000-01-01 00:00).
	MJD2000Offset = 2451544.5
	j2000         = 2451545.0
	jplLPMin      = -73048.0 // 1800-01-01 in MJD2000
	jplLPMax      = 18263.0  // 2050-01-01 in MJD2000
)

// EphemerisProvider locates a celestial object.
type EphemerisProvider interface {
	// State returns the heliocentric ecliptic J2000 position (km) and velocity (km/s) of the object at
	// the provided MJD2000 epoch.
	State(obj CelestialObject, epoch float64) (R, V []float64, err error)
}

// eleRate is an orbital element and its rate per Julian century.
type eleRate struct {
	ele, rate float64
}

func (e eleRate) at(tCen float64) float64 {
	return e.ele + e.rate*tCen
}

// jplElements are the Keplerian elements and rates of a body, valid from 1800 to 2050.
// Angles are in degrees, a in AU.
type jplElements struct {
	a, e, i, L, ϖ, Ω eleRate
}

// Table 1 of "Keplerian Elements for Approximate Positions of the Major Planets", E M Standish.
// Earth uses the Earth-Moon barycenter.
var jplTable = map[string]jplElements{
	"Mercury": {
		eleRate{0.38709927, 0.00000037}, eleRate{0.20563593, 0.00001906}, eleRate{7.00497902, -0.00594749},
		eleRate{252.25032350, 149472.67411175}, eleRate{77.45779628, 0.16047689}, eleRate{48.33076593, -0.12534081}},
	"Venus": {
		eleRate{0.72333566, 0.00000390}, eleRate{0.00677672, -0.00004107}, eleRate{3.39467605, -0.00078890},
		eleRate{181.97909950, 58517.81538729}, eleRate{131.60246718, 0.00268329}, eleRate{76.67984255, -0.27769418}},
	"Earth": {
		eleRate{1.00000261, 0.00000562}, eleRate{0.01671123, -0.00004392}, eleRate{-0.00001531, -0.01294668},
		eleRate{100.46457166, 35999.37244981}, eleRate{102.93768193, 0.32327364}, eleRate{0.0, 0.0}},
	"Mars": {
		eleRate{1.52371034, 0.00001847}, eleRate{0.09339410, 0.00007882}, eleRate{1.84969142, -0.00813131},
		eleRate{-4.55343205, 19140.30268499}, eleRate{-23.94362959, 0.44441088}, eleRate{49.55953891, -0.29257343}},
	"Jupiter": {
		eleRate{5.20288700, -0.00011607}, eleRate{0.04838624, -0.00013253}, eleRate{1.30439695, -0.00183714},
		eleRate{34.39644051, 3034.74612775}, eleRate{14.72847983, 0.21252668}, eleRate{100.47390909, 0.20469106}},
	"Saturn": {
		eleRate{9.53667594, -0.00125060}, eleRate{0.05386179, -0.00050991}, eleRate{2.48599187, 0.00193609},
		eleRate{49.95424423, 1222.49362201}, eleRate{92.59887831, -0.41897216}, eleRate{113.66242448, -0.28867794}},
	"Uranus": {
		eleRate{19.18916464, -0.00196176}, eleRate{0.04725744, -0.00004397}, eleRate{0.77263783, -0.00242939},
		eleRate{313.23810451, 428.48202785}, eleRate{170.95427630, 0.40805281}, eleRate{74.01692503, 0.04240589}},
	"Neptune": {
		eleRate{30.06992276, 0.00026291}, eleRate{0.00859048, 0.00005105}, eleRate{1.77004347, 0.00035372},
		eleRate{-55.12002969, 218.45945325}, eleRate{44.96476227, -0.32241464}, eleRate{131.78422574, -0.00508664}},
	"Pluto": {
		eleRate{39.48211675, -0.00031596}, eleRate{0.24882730, 0.00005170}, eleRate{17.14001206, 0.00004818},
		eleRate{238.92903833, 145.20780515}, eleRate{224.06891629, -0.04062942}, eleRate{110.30393684, -0.01183482}},
}

// JPLLowPrecision computes planetary states from the JPL approximate Keplerian elements. It needs no data
// files but is only valid between 1800 and 2050.
type JPLLowPrecision struct{}

// Orbit returns the heliocentric osculating orbit of the object at the given MJD2000 epoch.
func (JPLLowPrecision) Orbit(obj CelestialObject, epoch float64) (*Orbit, error) {
	elts, found := jplTable[obj.Name]
	if !found {
		return nil, fmt.Errorf("%w: no JPL elements for %s", ErrUnknownBody, obj.Name)
	}
	if epoch <= jplLPMin || epoch >= jplLPMax {
		return nil, fmt.Errorf("%w: %.3f MJD2000 is outside [1800, 2050]", ErrEphemerisRange, epoch)
	}
	tCen := (epoch + MJD2000Offset - j2000) / 36525
	a := elts.a.at(tCen) * AU
	e := elts.e.at(tCen)
	i := elts.i.at(tCen)
	L := elts.L.at(tCen)
	ϖ := elts.ϖ.at(tCen)
	Ω := elts.Ω.at(tCen)
	ν := TrueAnomaly((L-ϖ)*deg2rad, e) / deg2rad
	return NewOrbitFromOE(a, e, i, Ω, ϖ-Ω, ν, Sun), nil
}

// State implements the EphemerisProvider interface.
func (p JPLLowPrecision) State(obj CelestialObject, epoch float64) (R, V []float64, err error) {
	orbit, err := p.Orbit(obj, epoch)
	if err != nil {
		return nil, nil, err
	}
	R, V = orbit.RV()
	return R, V, nil
}

// VSOP87 computes planetary states from the VSOP87B series files of the provided directory. Pluto is not
// part of VSOP87 and uses the Meeus chapter 37 series instead. Velocities are computed by central differences.
type VSOP87 struct {
	Dir     string
	mu      sync.Mutex
	planets map[string]*planetposition.V87Planet
}

// NewVSOP87 returns a VSOP87 ephemeris reading its files from the provided directory.
func NewVSOP87(dir string) *VSOP87 {
	return &VSOP87{Dir: dir, planets: make(map[string]*planetposition.V87Planet)}
}

// vsop87Δt is the half step in days used for the velocity central differences.
const vsop87Δt = 0.01

func (p *VSOP87) planet(obj CelestialObject) (*planetposition.V87Planet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pp, loaded := p.planets[obj.Name]; loaded {
		return pp, nil
	}
	var vsopPosition int
	switch obj.Name {
	case "Mercury":
		vsopPosition = planetposition.Mercury
	case "Venus":
		vsopPosition = planetposition.Venus
	case "Earth":
		vsopPosition = planetposition.Earth
	case "Mars":
		vsopPosition = planetposition.Mars
	case "Jupiter":
		vsopPosition = planetposition.Jupiter
	case "Saturn":
		vsopPosition = planetposition.Saturn
	case "Uranus":
		vsopPosition = planetposition.Uranus
	case "Neptune":
		vsopPosition = planetposition.Neptune
	default:
		return nil, fmt.Errorf("%w: %s is not in VSOP87", ErrUnknownBody, obj.Name)
	}
	pp, err := planetposition.LoadPlanetPath(vsopPosition, p.Dir)
	if err != nil {
		return nil, fmt.Errorf("could not load %s from %s: %w", obj.Name, p.Dir, err)
	}
	p.planets[obj.Name] = pp
	return pp, nil
}

// position returns the heliocentric position in km at the given Julian date.
func (p *VSOP87) position(obj CelestialObject, jd float64) ([]float64, error) {
	var l, b, r float64
	if obj.Name == "Pluto" {
		// Special case in Sonia Keys' Meeus
		lA, bA, rAU := pluto.Heliocentric(jd)
		l, b, r = lA.Rad(), bA.Rad(), rAU
	} else {
		pp, err := p.planet(obj)
		if err != nil {
			return nil, err
		}
		lA, bA, rAU := pp.Position2000(jd)
		l, b, r = lA.Rad(), bA.Rad(), rAU
	}
	r *= AU
	// Get the Cartesian coordinates from L,B,R.
	R := make([]float64, 3)
	sB, cB := math.Sincos(b)
	sL, cL := math.Sincos(l)
	R[0] = r * cB * cL
	R[1] = r * cB * sL
	R[2] = r * sB
	return R, nil
}

// State implements the EphemerisProvider interface.
func (p *VSOP87) State(obj CelestialObject, epoch float64) (R, V []float64, err error) {
	jd := epoch + MJD2000Offset
	if R, err = p.position(obj, jd); err != nil {
		return nil, nil, err
	}
	before, err := p.position(obj, jd-vsop87Δt)
	if err != nil {
		return nil, nil, err
	}
	after, err := p.position(obj, jd+vsop87Δt)
	if err != nil {
		return nil, nil, err
	}
	V = make([]float64, 3)
	for i := 0; i < 3; i++ {
		V[i] = (after[i] - before[i]) / (2 * vsop87Δt * secondsPerDay)
	}
	return R, V, nil
}
