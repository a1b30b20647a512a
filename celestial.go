package pcp

import (
	"fmt"
	"strings"
)

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
)

// CelestialObject defines a celestial object.
type CelestialObject struct {
	Name   string
	Radius float64
	a      float64
	μ      float64
}

// GM returns μ (which is unexported because it's a lowercase letter)
func (c CelestialObject) GM() float64 {
	return c.μ
}

// String implements the Stringer interface.
func (c CelestialObject) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided celestial object is the same.
func (c CelestialObject) Equals(b CelestialObject) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.a == b.a && c.μ == b.μ
}

// supported is the allow-list of departure and arrival bodies, in heliocentric order.
var supported = []CelestialObject{Mercury, Venus, Earth, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}

// SupportedBodies returns the lower case names of all the bodies a porkchop plot can be generated for.
func SupportedBodies() []string {
	names := make([]string, len(supported))
	for i, obj := range supported {
		names[i] = strings.ToLower(obj.Name)
	}
	return names
}

// CelestialObjectFromString returns the object from its name
func CelestialObjectFromString(name string) (CelestialObject, error) {
	name = strings.TrimSpace(name)
	for _, obj := range supported {
		if strings.EqualFold(obj.Name, name) {
			return obj, nil
		}
	}
	return CelestialObject{}, fmt.Errorf("%w: '%s'", ErrUnknownBody, name)
}

// Body is a celestial object bound to the ephemeris provider which locates it.
type Body struct {
	Object    CelestialObject
	Ephemeris EphemerisProvider
}

// NewBody returns the body of the provided name, located by the provided ephemeris.
func NewBody(name string, ephem EphemerisProvider) (Body, error) {
	obj, err := CelestialObjectFromString(name)
	if err != nil {
		return Body{}, err
	}
	return Body{obj, ephem}, nil
}

// Eph returns the heliocentric position (km) and velocity (km/s) of this body at the MJD2000 epoch.
func (b Body) Eph(epoch float64) (R, V []float64, err error) {
	return b.Ephemeris.State(b.Object, epoch)
}

// MuCentralBody returns the gravitational parameter of the Sun, around which all the transfers happen.
func (b Body) MuCentralBody() float64 {
	return Sun.μ
}

func (b Body) String() string {
	return b.Object.Name
}

/* Definitions */

// Sun is our closest star.
var Sun = CelestialObject{"Sun", 695700, -1, 1.32712440017987e11}

// Mercury is the closest to the Sun.
var Mercury = CelestialObject{"Mercury", 2439.7, 57909226.5, 2.2031780e4}

// Venus is poisonous.
var Venus = CelestialObject{"Venus", 6051.8, 108208601, 3.24858599e5}

// Earth is home.
var Earth = CelestialObject{"Earth", 6378.1363, 149598023, 3.98600433e5}

// Mars is the vacation place.
var Mars = CelestialObject{"Mars", 3396.19, 227939282.5616, 4.28283100e4}

// Jupiter is big.
var Jupiter = CelestialObject{"Jupiter", 71492.0, 778298361, 1.266865361e8}

// Saturn floats and that's really cool.
var Saturn = CelestialObject{"Saturn", 60268.0, 1429394133, 3.7931208e7}

// Uranus is no joke.
var Uranus = CelestialObject{"Uranus", 25559.0, 2875038615, 5.7939513e6}

// Neptune is windy.
var Neptune = CelestialObject{"Neptune", 24764.0, 4504449769, 6.836527e6}

// Pluto is not a planet and had that down ranking coming. It should have stayed in its lane.
var Pluto = CelestialObject{"Pluto", 1151.0, 5915799000, 9. * 1e2}
