// Package waypoint defines the globally and locally referenced waypoint types
// handled by the auto-navigation pipeline and evaluates navigator triplets
// into the local frame.
package waypoint

import (
	"math"
	"time"

	"github.com/golang/geo/r3"
)

// Type describes what the vehicle should do at the current waypoint.
type Type uint8

// The set of known waypoint types.
const (
	TypePosition Type = iota
	TypeVelocity
	TypeLoiter
	TypeTakeoff
	TypeLand
	TypeIdle
	TypeFollowTarget
)

func (t Type) String() string {
	switch t {
	case TypePosition:
		return "position"
	case TypeVelocity:
		return "velocity"
	case TypeLoiter:
		return "loiter"
	case TypeTakeoff:
		return "takeoff"
	case TypeLand:
		return "land"
	case TypeIdle:
		return "idle"
	case TypeFollowTarget:
		return "follow_target"
	}
	return "unknown"
}

// FlyThrough reports whether the vehicle keeps cruising at the target rather
// than braking to a stop there.
func (t Type) FlyThrough() bool {
	switch t {
	case TypeLoiter, TypeIdle, TypeFollowTarget:
		return true
	default:
		return false
	}
}

// SpeedUnset marks an absent per-leg cruise speed or loiter radius.
func SpeedUnset() float64 { return math.NaN() }

// GlobalWaypoint is one geodetic leg of a navigator triplet. CruiseSpeed and
// LoiterRadius are NaN when the navigator did not set them.
type GlobalWaypoint struct {
	Latitude     float64
	Longitude    float64
	Altitude     float64
	Type         Type
	Valid        bool
	CruiseSpeed  float64
	LoiterRadius float64
}

// Usable reports whether the leg is flagged valid and all of its geodetic
// fields are finite. A leg flagged valid but carrying a non-finite field is
// treated as invalid.
func (w GlobalWaypoint) Usable() bool {
	return w.Valid && finite(w.Latitude) && finite(w.Longitude) && finite(w.Altitude)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Triplet is the previous/current/next waypoint snapshot from the navigator.
// It is read-only to this pipeline.
type Triplet struct {
	Previous  GlobalWaypoint
	Current   GlobalWaypoint
	Next      GlobalWaypoint
	Timestamp time.Time
}

// LocalSet is the locally referenced waypoint quadruple handed downstream.
// PrevPrev is best-effort and reserved for trajectory smoothing; nothing in
// the pipeline consumes it yet.
type LocalSet struct {
	PrevPrev r3.Vector
	Previous r3.Vector
	Target   r3.Vector
	Next     r3.Vector

	Type          Type
	SpeedAtTarget float64
}
