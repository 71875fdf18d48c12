package tracking

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"go.viam.com/autonav/waypoint"
)

// SpeedProfile computes the commanded speed at the target from the turn angle
// between the incoming and outgoing segments.
type SpeedProfile struct {
	// DefaultCruise is the speed commanded on a straight-through leg, m/s.
	DefaultCruise float64
	// CornerSpeed90 is the speed commanded into a 90 degree corner, m/s.
	CornerSpeed90 float64
}

// SpeedAtTarget returns the commanded speed at the set's target waypoint.
// legSpeed is the per-leg cruise override from the navigator, NaN when unset;
// a finite positive override wins over the computed profile.
//
// The profile is a cosine ramp: 0° of turn commands DefaultCruise, 90° or
// sharper commands CornerSpeed90, and the interpolation in between is
// continuous and monotone. The exact curve shape is a tunable, not a
// contract; only monotonicity and the endpoint values are.
func (p SpeedProfile) SpeedAtTarget(set waypoint.LocalSet, legSpeed float64) float64 {
	if !math.IsNaN(legSpeed) && !math.IsInf(legSpeed, 0) && legSpeed > 0 {
		return legSpeed
	}

	in := xy(set.Target).Sub(xy(set.Previous))
	out := xy(set.Next).Sub(xy(set.Target))

	if scalar.EqualWithinAbs(out.Norm(), 0, degenerateDist) {
		// No distinct leg after the target: stop there unless the waypoint
		// type keeps the vehicle moving anyway.
		if set.Type.FlyThrough() {
			return p.DefaultCruise
		}
		return 0
	}
	if scalar.EqualWithinAbs(in.Norm(), 0, degenerateDist) {
		return p.DefaultCruise
	}

	cosTurn := in.Dot(out) / (in.Norm() * out.Norm())
	return p.speedFromAngle(cosTurn)
}

func (p SpeedProfile) speedFromAngle(cosTurn float64) float64 {
	if cosTurn < 0 {
		cosTurn = 0
	}
	return p.CornerSpeed90 + (p.DefaultCruise-p.CornerSpeed90)*cosTurn
}
