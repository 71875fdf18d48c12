// Package geodetic manages the local tangent-plane reference frame used to
// project globally referenced waypoints into Cartesian coordinates and back.
//
// The local frame is NED-like: X points north, Y points east, Z points down,
// all in meters. Because the projection of a point on a spheroid onto a plane
// is nonlinear, it is linearized about the current anchor; accuracy degrades
// gracefully with distance from the anchor and is well under a centimeter
// within the normal operating radius of a multicopter mission.
package geodetic

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	geo "github.com/kellydunn/golang-geo"
	"github.com/pkg/errors"
)

const kmToM = 1e3

// ErrNoReference is returned when a projection is attempted before any valid
// home position has been received.
var ErrNoReference = errors.New("no geodetic reference has been anchored")

// HomePosition is a snapshot of the vehicle's home point as reported by the
// upstream position source.
type HomePosition struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  float64   `json:"altitude_m"`
	Timestamp time.Time `json:"timestamp"`
}

// Finite reports whether all geodetic fields of the home position are finite.
func (h HomePosition) Finite() bool {
	return finite(h.Latitude) && finite(h.Longitude) && finite(h.Altitude)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Reference anchors the local frame at a geodetic origin and carries the
// altitude everything in the local frame is measured against.
type Reference struct {
	clk clock.Clock

	origin   *geo.Point
	altitude float64

	// sourceStamp is the timestamp the home source reported for the current
	// anchor; updatedAt is our own clock at the last Update call.
	sourceStamp time.Time
	updatedAt   time.Time
}

// NewReference returns an unanchored reference using the wall clock.
func NewReference() *Reference {
	return NewReferenceWithClock(clock.New())
}

// NewReferenceWithClock returns an unanchored reference using the given clock
// for staleness bookkeeping.
func NewReferenceWithClock(clk clock.Clock) *Reference {
	return &Reference{clk: clk}
}

// Valid reports whether an anchor has ever been established.
func (r *Reference) Valid() bool {
	return r != nil && r.origin != nil
}

// IsStale reports whether the anchor was last refreshed more than maxAge ago.
// An unanchored reference is always stale.
func (r *Reference) IsStale(maxAge time.Duration) bool {
	if !r.Valid() {
		return true
	}
	return r.clk.Now().Sub(r.updatedAt) > maxAge
}

// anchorMovedM is how far the reported home must move, in meters, before the
// frame is re-anchored without a newer source timestamp.
const anchorMovedM = 1.0

// Update re-anchors the frame at the given home position. Anchoring happens on
// the first valid home position and again whenever the source reports a newer
// timestamp or a materially moved anchor; identical snapshots only refresh the
// staleness bookkeeping.
func (r *Reference) Update(home HomePosition) error {
	if !home.Finite() {
		return errors.Errorf("home position has non-finite fields: %+v", home)
	}
	if r.origin == nil || home.Timestamp.After(r.sourceStamp) || r.anchorMoved(home) {
		r.origin = geo.NewPoint(home.Latitude, home.Longitude)
		r.altitude = home.Altitude
		r.sourceStamp = home.Timestamp
	}
	r.updatedAt = r.clk.Now()
	return nil
}

func (r *Reference) anchorMoved(home HomePosition) bool {
	moved := kmToM * r.origin.GreatCircleDistance(geo.NewPoint(home.Latitude, home.Longitude))
	return moved > anchorMovedM || math.Abs(home.Altitude-r.altitude) > anchorMovedM
}

// Origin returns the geodetic anchor, or nil if none has been set.
func (r *Reference) Origin() *geo.Point {
	if r == nil {
		return nil
	}
	return r.origin
}

// Altitude returns the reference altitude in meters AMSL.
func (r *Reference) Altitude() float64 {
	return r.altitude
}

// ToLocal projects a geodetic position into the local frame.
func (r *Reference) ToLocal(lat, lng, alt float64) (r3.Vector, error) {
	if !r.Valid() {
		return r3.Vector{}, ErrNoReference
	}
	if !finite(lat) || !finite(lng) || !finite(alt) {
		return r3.Vector{}, errors.Errorf("cannot project non-finite position (%f, %f, %f)", lat, lng, alt)
	}
	pt := geo.NewPoint(lat, lng)

	// Split the great-circle distance into components through an intermediate
	// point sharing the origin's longitude, then recover the signs from the
	// bearing quadrant.
	mid := geo.NewPoint(pt.Lat(), r.origin.Lng())
	north := kmToM * r.origin.GreatCircleDistance(mid)
	east := kmToM * pt.GreatCircleDistance(mid)

	azimuth := r.origin.BearingTo(pt)
	switch {
	case azimuth > 90 && azimuth <= 180:
		north = -north
	case azimuth >= -90 && azimuth < 0:
		east = -east
	case azimuth < -90:
		north, east = -north, -east
	}

	return r3.Vector{X: north, Y: east, Z: -(alt - r.altitude)}, nil
}

// earthRadiusM is the radius, in meters, of the sphere golang-geo measures
// great-circle distances on, recovered from the library itself so both
// projection directions share the same model.
var earthRadiusM = kmToM * 180 / math.Pi *
	geo.NewPoint(-0.5, 0).GreatCircleDistance(geo.NewPoint(0.5, 0))

// ToGlobal is the inverse of ToLocal for the current anchor: it undoes the
// north/east great-circle decomposition component by component, so a position
// projected into the local frame and back reproduces the original coordinates
// to numerical precision.
func (r *Reference) ToGlobal(v r3.Vector) (lat, lng, alt float64, err error) {
	if !r.Valid() {
		return 0, 0, 0, ErrNoReference
	}
	latRad := r.origin.Lat()*math.Pi/180 + v.X/earthRadiusM
	lat = latRad * 180 / math.Pi

	// The east component was measured along the target's parallel, where a
	// longitude offset dLng spans 2*R*asin(cos(lat)*sin(dLng/2)) meters.
	var dLng float64
	if cosLat := math.Cos(latRad); cosLat > 1e-12 {
		s := math.Sin(math.Abs(v.Y)/(2*earthRadiusM)) / cosLat
		if s > 1 {
			s = 1
		}
		dLng = 2 * math.Asin(s) * 180 / math.Pi
	}
	if v.Y < 0 {
		dLng = -dLng
	}
	return lat, r.origin.Lng() + dLng, r.altitude - v.Z, nil
}
