package waypoint

import (
	"github.com/golang/geo/r3"

	"go.viam.com/autonav/geodetic"
)

// Evaluate projects a navigator triplet into the local frame.
//
// It returns false when no navigable target can be produced this tick: the
// reference frame is not anchored, or the current leg is invalid or carries a
// non-finite field. Missing adjacent legs are recovered locally: an invalid
// previous leg becomes the vehicle's current position (the vehicle starts the
// segment from here) and an invalid next leg collapses onto the target (no
// distinct corner ahead).
func Evaluate(ref *geodetic.Reference, trip Triplet, vehicle r3.Vector) (LocalSet, bool) {
	if !ref.Valid() || !trip.Current.Usable() {
		return LocalSet{}, false
	}

	target, err := ref.ToLocal(trip.Current.Latitude, trip.Current.Longitude, trip.Current.Altitude)
	if err != nil {
		return LocalSet{}, false
	}

	prev := vehicle
	if trip.Previous.Usable() {
		if p, err := ref.ToLocal(trip.Previous.Latitude, trip.Previous.Longitude, trip.Previous.Altitude); err == nil {
			prev = p
		}
	}

	next := target
	if trip.Next.Usable() {
		if n, err := ref.ToLocal(trip.Next.Latitude, trip.Next.Longitude, trip.Next.Altitude); err == nil {
			next = n
		}
	}

	return LocalSet{
		PrevPrev: prev,
		Previous: prev,
		Target:   target,
		Next:     next,
		Type:     trip.Current.Type,
	}, true
}
