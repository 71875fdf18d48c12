// Package tracking classifies the vehicle's relation to the active track
// segment and derives the waypoints, cruise speed, and heading handed to the
// trajectory generator.
package tracking

import (
	"math"

	"github.com/golang/geo/r2"
)

// State describes the vehicle's relation to the previous→target segment.
type State uint8

// The four tracking states, in priority order for borderline geometry.
const (
	// StateOfftrack means the vehicle is laterally further from the track
	// line than the offtrack distance.
	StateOfftrack State = iota
	// StatePreviousInfront means the vehicle has not yet reached the previous
	// waypoint along the track direction.
	StatePreviousInfront
	// StateTargetBehind means the vehicle has passed the target along the
	// track direction.
	StateTargetBehind
	// StateNone is normal tracking between previous and target.
	StateNone
)

func (s State) String() string {
	switch s {
	case StateOfftrack:
		return "offtrack"
	case StateTargetBehind:
		return "target_behind"
	case StatePreviousInfront:
		return "previous_infront"
	case StateNone:
		return "none"
	}
	return "unknown"
}

// degenerateDist is the segment length below which track geometry is treated
// as a single point.
const degenerateDist = 1e-9

// Classify projects the vehicle onto the infinite line through prev→target
// and buckets the geometry into a State. offtrackDist is the cross-track
// distance beyond which the vehicle counts as offtrack; borderline values
// resolve offtrack first, then previousInfront, then targetBehind.
func Classify(vehicle, prev, target r2.Point, offtrackDist float64) State {
	track := target.Sub(prev)
	trackLen := track.Norm()
	if trackLen <= degenerateDist {
		return StateNone
	}

	toVehicle := vehicle.Sub(prev)
	along := toVehicle.Dot(track) / (trackLen * trackLen)
	crossTrack := math.Abs(track.Cross(toVehicle)) / trackLen

	switch {
	case offtrackDist > 0 && crossTrack >= offtrackDist:
		return StateOfftrack
	case along < 0:
		return StatePreviousInfront
	case along > 1:
		return StateTargetBehind
	default:
		return StateNone
	}
}
