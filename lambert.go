package pcp

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// TransferType defines the type of Lambert transfer
type TransferType uint8

// Longway returns whether or not this is the long way.
func (t TransferType) Longway() bool {
	switch t {
	case TType1:
		fallthrough
	case TType3:
		return false
	case TType2:
		fallthrough
	case TType4:
		return true
	default:
		panic(fmt.Errorf("cannot determine whether long or short way for %s", t))
	}
}

// Revs returns the number of revolutions given the type.
func (t TransferType) Revs() float64 {
	switch t {
	case TTypeAuto:
		fallthrough // auto-revs is limited to zero revolutions
	case TType1:
		fallthrough
	case TType2:
		return 0
	case TType3:
		fallthrough
	case TType4:
		return 1
	default:
		panic("unknown transfer type")
	}
}

func (t TransferType) String() string {
	switch t {
	case TTypeAuto:
		return "auto-revs"
	case TType1:
		return "type-1"
	case TType2:
		return "type-2"
	case TType3:
		return "type-3"
	case TType4:
		return "type-4"
	default:
		return fmt.Sprintf("type-unknown(%d)", uint8(t))
	}
}

const (
	// TTypeAuto lets the Lambert solver determine the type
	TTypeAuto TransferType = iota + 1
	// TType1 is transfer of type 1 (zero revolution, short way)
	TType1
	// TType2 is transfer of type 2 (zero revolution, long way)
	TType2
	// TType3 is transfer of type 3 (one revolutions, short way)
	TType3
	// TType4 is transfer of type 4 (one revolutions, long way)
	TType4
	lambertε         = 1e-4                   // General epsilon
	lambertTlambertε = 1e-4                   // Time epsilon
	lambertνlambertε = (5e-5 / 180) * math.Pi // 0.00005 degrees
	lambertMaxIter   = 10000
)

// Lambert solves the Lambert boundary problem:
// Given the initial and final radii and a central body, it returns the needed initial and final velocities
// along with φ which is the square of the difference in eccentric anomaly. Note that the direction of motion
// is computed directly in this function to simplify the generation of Pork chop plots.
func Lambert(Ri, Rf *mat.VecDense, Δt0 time.Duration, ttype TransferType, μ float64) (Vi, Vf *mat.VecDense, φ float64, err error) {
	// Initialize return variables
	Vi = mat.NewVecDense(3, nil)
	Vf = mat.NewVecDense(3, nil)
	// Sanity checks
	if Ri.Len() != Rf.Len() || Ri.Len() != 3 {
		err = errors.New("initial and final radii must be 3x1 vectors")
		return
	}
	Δt0Sec := Δt0.Seconds()
	if Δt0Sec <= 0 {
		err = fmt.Errorf("time of flight must be positive, got %s", Δt0)
		return
	}
	rI := mat.Norm(Ri, 2)
	rF := mat.Norm(Rf, 2)
	cosΔν := mat.Dot(Ri, Rf) / (rI * rF)
	// Compute the direction of motion
	νI := math.Atan2(Ri.AtVec(1), Ri.AtVec(0))
	νF := math.Atan2(Rf.AtVec(1), Rf.AtVec(0))
	dm := 1.0
	if ttype == TTypeAuto {
		Δν := νF - νI
		if Δν > 2*math.Pi {
			Δν -= 2 * math.Pi
		} else if Δν < 0 {
			Δν += 2 * math.Pi
		}
		if Δν > math.Pi {
			dm = -1.0
		} // We don't do the < math.Pi case because that's the initial value anyway.
	} else if ttype.Longway() {
		dm = -1.0
	}

	A := dm * math.Sqrt(rI*rF*(1+cosΔν))
	if νF-νI < lambertνlambertε && scalar.EqualWithinAbs(A, 0, lambertε) {
		err = errors.New("cannot compute trajectory: Δν ~=0 and A ~=0")
		return
	}

	φup := 4 * math.Pow(math.Pi, 2) * math.Pow(ttype.Revs()+1, 2)
	φlow := -4 * math.Pi

	if ttype.Revs() > 0 {
		// Generate a bunch of φ
		Δtmin := 4000 * 24 * 3600.0
		φBound := 0.0

		for φP := 15.; φP < φup; φP += 0.1 {
			c2 := (1 - math.Cos(math.Sqrt(φP))) / φP
			c3 := (math.Sqrt(φP) - math.Sin(math.Sqrt(φP))) / math.Sqrt(math.Pow(φP, 3))
			y := rI + rF + A*(φP*c3-1)/math.Sqrt(c2)
			χ := math.Sqrt(y / c2)
			Δt := (math.Pow(χ, 3)*c3 + A*math.Sqrt(y)) / math.Sqrt(μ)
			if Δtmin > Δt {
				Δtmin = Δt
				φBound = φP
			}
		}

		// Determine whether we are going up or down bounds.
		if ttype == TType3 {
			φlow = φup
			φup = φBound
		} else if ttype == TType4 {
			φlow = φBound
		}
		φ = (φup + φlow) / 2
	}
	// Initial guesses for c2 and c3
	c2, c3 := stumpff(φ)
	var Δt, y float64
	var iteration uint
	for math.Abs(Δt-Δt0Sec) > lambertTlambertε {
		if iteration > lambertMaxIter {
			err = fmt.Errorf("did not converge after %d iterations", lambertMaxIter)
			return
		}
		iteration++
		y = rI + rF + A*(φ*c3-1)/math.Sqrt(c2)
		if A > 0 && y < 0 {
			tmpIt := 0
			for y < 0 {
				φ += 0.1
				y = rI + rF + A*(φ*c3-1)/math.Sqrt(c2)
				if tmpIt > lambertMaxIter {
					err = fmt.Errorf("did not converge after %d attempts to increase φ", lambertMaxIter)
					return
				}
				tmpIt++
			}
		}
		χ := math.Sqrt(y / c2)
		Δt = (math.Pow(χ, 3)*c3 + A*math.Sqrt(y)) / math.Sqrt(μ)
		if ttype != TType3 {
			if Δt <= Δt0Sec {
				φlow = φ
			} else {
				φup = φ
			}
		} else {
			if Δt >= Δt0Sec {
				φlow = φ
			} else {
				φup = φ
			}
		}
		φ = (φup + φlow) / 2
		c2, c3 = stumpff(φ)
	}
	f := 1 - y/rI
	gDot := 1 - y/rF
	g := (A * math.Sqrt(y/μ))
	// Compute velocities
	Rf2 := mat.NewVecDense(3, nil)
	Vi.AddScaledVec(Rf, -f, Ri)
	Vi.ScaleVec(1/g, Vi)
	Rf2.ScaleVec(gDot, Rf)
	Vf.AddScaledVec(Rf2, -1, Ri)
	Vf.ScaleVec(1/g, Vf)
	if math.IsNaN(mat.Norm(Vi, 2)) || math.IsNaN(mat.Norm(Vf, 2)) {
		err = errors.New("cannot compute trajectory: velocities are not finite")
	}
	return
}

// stumpff returns the c2 and c3 Stumpff functions of φ.
func stumpff(φ float64) (c2, c3 float64) {
	if φ > lambertε {
		sφ := math.Sqrt(φ)
		ssφ, csφ := math.Sincos(sφ)
		c2 = (1 - csφ) / φ
		c3 = (sφ - ssφ) / math.Sqrt(math.Pow(φ, 3))
	} else if φ < -lambertε {
		sφ := math.Sqrt(-φ)
		c2 = (1 - math.Cosh(sφ)) / φ
		c3 = (math.Sinh(sφ) - sφ) / math.Sqrt(math.Pow(-φ, 3))
	} else {
		c2 = 1 / 2.
		c3 = 1 / 6.
	}
	return
}

// Transfer is one solution of the Lambert problem.
type Transfer struct {
	Vi, Vf []float64 // Departure and arrival velocities, km/s
	Type   TransferType
}

// TransferSolver solves the two-body boundary value problem between two positions.
type TransferSolver interface {
	// Solve returns the candidate transfers ordered by revolution count, the first one being the
	// zero revolution transfer. The time of flight is in seconds.
	Solve(Ri, Rf []float64, tof, μ float64) ([]Transfer, error)
}

// LambertSolver is the universal variable Lambert solver. The zero revolution solution uses the
// automatic direction of motion; one revolution solutions are appended if MaxRevs is at least one.
type LambertSolver struct {
	MaxRevs int
}

// Solve implements the TransferSolver interface.
func (s LambertSolver) Solve(Ri, Rf []float64, tof, μ float64) ([]Transfer, error) {
	if len(Ri) != 3 || len(Rf) != 3 {
		return nil, errors.New("initial and final radii must be 3x1 vectors")
	}
	if tof <= 0 || math.IsNaN(tof) || math.IsInf(tof, 0) {
		return nil, fmt.Errorf("time of flight must be positive and finite, got %f s", tof)
	}
	RiVec := mat.NewVecDense(3, []float64{Ri[0], Ri[1], Ri[2]})
	RfVec := mat.NewVecDense(3, []float64{Rf[0], Rf[1], Rf[2]})
	Δt := time.Duration(tof * float64(time.Second))
	Vi, Vf, _, err := Lambert(RiVec, RfVec, Δt, TTypeAuto, μ)
	if err != nil {
		return nil, err
	}
	transfers := []Transfer{{Vi: Vi.RawVector().Data, Vf: Vf.RawVector().Data, Type: TTypeAuto}}
	if s.MaxRevs < 1 {
		return transfers, nil
	}
	for _, ttype := range []TransferType{TType3, TType4} {
		Vi, Vf, _, err := Lambert(RiVec, RfVec, Δt, ttype, μ)
		if err != nil {
			// Multi revolution solutions do not exist for all geometries.
			continue
		}
		transfers = append(transfers, Transfer{Vi: Vi.RawVector().Data, Vf: Vf.RawVector().Data, Type: ttype})
	}
	return transfers, nil
}
