package tracking

import (
	"encoding/json"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/autonav/waypoint"
)

// YawMode selects how the target heading is derived from the resolved
// waypoints. Headings are radians from local north (X), positive toward
// east (Y).
type YawMode uint8

// The set of known yaw modes.
const (
	// YawTowardsWaypoint keeps the nose pointed at the target waypoint.
	YawTowardsWaypoint YawMode = iota
	// YawAlongTrajectory aligns the nose with the track direction.
	YawAlongTrajectory
	// YawLockWhenClose behaves like YawTowardsWaypoint until the vehicle
	// enters the acceptance radius, then holds the heading captured there.
	YawLockWhenClose
	// YawUnconstrained leaves heading to the downstream controller.
	YawUnconstrained
)

func (m YawMode) String() string {
	switch m {
	case YawTowardsWaypoint:
		return "towards_waypoint"
	case YawAlongTrajectory:
		return "along_trajectory"
	case YawLockWhenClose:
		return "lock_when_close"
	case YawUnconstrained:
		return "unconstrained"
	}
	return "unknown"
}

// ParseYawMode is the inverse of String.
func ParseYawMode(s string) (YawMode, error) {
	for _, m := range []YawMode{YawTowardsWaypoint, YawAlongTrajectory, YawLockWhenClose, YawUnconstrained} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, errors.Errorf("unknown yaw mode %q", s)
}

// MarshalJSON encodes the mode as its string name.
func (m YawMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes the mode from its string name.
func (m *YawMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseYawMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// YawLock caches the heading captured when the vehicle first enters the
// acceptance radius of the target. It carries tick-to-tick memory and must be
// invalidated when a materially different triplet arrives.
type YawLock struct {
	locked  bool
	heading float64
}

// Locked reports whether a heading is currently held.
func (l *YawLock) Locked() bool { return l.locked }

// Heading returns the held heading; only meaningful while Locked.
func (l *YawLock) Heading() float64 { return l.heading }

// Invalidate clears the lock.
func (l *YawLock) Invalidate() {
	l.locked = false
	l.heading = 0
}

func (l *YawLock) engage(heading float64) {
	l.locked = true
	l.heading = heading
}

// minHeadingVecNorm guards heading extraction against vanishing vectors; a
// shorter vector has no meaningful direction.
const minHeadingVecNorm = 1e-3

// HeadingFromVector converts a local-frame 2D direction into a heading.
// It returns false when the vector is too short to carry a direction.
func HeadingFromVector(v r2.Point) (float64, bool) {
	if v.Norm() <= minHeadingVecNorm {
		return 0, false
	}
	return math.Atan2(v.Y, v.X), true
}

// DesiredHeading derives the commanded heading from the resolved waypoint set
// according to mode. currentYaw is the vehicle's present heading and is what
// gets captured when the yaw lock engages. The second return is false when
// the mode or geometry leaves heading unconstrained this tick. lock is
// consulted and updated only in YawLockWhenClose mode.
func DesiredHeading(
	set waypoint.LocalSet,
	vehicle r3.Vector,
	currentYaw float64,
	mode YawMode,
	lock *YawLock,
	acceptanceRadius float64,
) (float64, bool) {
	switch mode {
	case YawTowardsWaypoint:
		return HeadingFromVector(xy(set.Target).Sub(xy(vehicle)))
	case YawAlongTrajectory:
		return HeadingFromVector(xy(set.Target).Sub(xy(set.Previous)))
	case YawLockWhenClose:
		if lock.Locked() {
			return lock.Heading(), true
		}
		toTarget := xy(set.Target).Sub(xy(vehicle))
		if toTarget.Norm() <= acceptanceRadius {
			lock.engage(currentYaw)
			return currentYaw, true
		}
		return HeadingFromVector(toTarget)
	case YawUnconstrained:
		return 0, false
	}
	return 0, false
}
