package tracking

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/autonav/waypoint"
)

func profileSet(turnDeg float64) waypoint.LocalSet {
	rad := turnDeg * math.Pi / 180
	return waypoint.LocalSet{
		Previous: r3.Vector{X: -100, Y: 0},
		Target:   r3.Vector{X: 0, Y: 0},
		Next:     r3.Vector{X: 100 * math.Cos(rad), Y: 100 * math.Sin(rad)},
		Type:     waypoint.TypePosition,
	}
}

func TestSpeedAtTargetAngles(t *testing.T) {
	p := SpeedProfile{DefaultCruise: 10, CornerSpeed90: 3}
	unset := waypoint.SpeedUnset()

	test.That(t, p.SpeedAtTarget(profileSet(0), unset), test.ShouldAlmostEqual, 10, 1e-9)
	test.That(t, p.SpeedAtTarget(profileSet(90), unset), test.ShouldAlmostEqual, 3, 1e-9)
	test.That(t, p.SpeedAtTarget(profileSet(180), unset), test.ShouldAlmostEqual, 3, 1e-9)

	mid := p.SpeedAtTarget(profileSet(45), unset)
	test.That(t, mid, test.ShouldBeLessThan, 10)
	test.That(t, mid, test.ShouldBeGreaterThan, 3)
}

func TestSpeedAtTargetMonotone(t *testing.T) {
	p := SpeedProfile{DefaultCruise: 10, CornerSpeed90: 3}
	last := math.Inf(1)
	for deg := 0.0; deg <= 90; deg += 5 {
		speed := p.SpeedAtTarget(profileSet(deg), waypoint.SpeedUnset())
		test.That(t, speed, test.ShouldBeLessThanOrEqualTo, last)
		test.That(t, speed, test.ShouldBeLessThanOrEqualTo, 10)
		test.That(t, speed, test.ShouldBeGreaterThanOrEqualTo, 3)
		last = speed
	}
}

func TestSpeedAtTargetNoFurtherLeg(t *testing.T) {
	p := SpeedProfile{DefaultCruise: 10, CornerSpeed90: 3}
	set := profileSet(0)
	set.Next = set.Target

	test.That(t, p.SpeedAtTarget(set, waypoint.SpeedUnset()), test.ShouldEqual, 0.0)

	set.Type = waypoint.TypeLoiter
	test.That(t, p.SpeedAtTarget(set, waypoint.SpeedUnset()), test.ShouldEqual, 10.0)
}

func TestSpeedAtTargetDegenerateInbound(t *testing.T) {
	p := SpeedProfile{DefaultCruise: 10, CornerSpeed90: 3}
	set := profileSet(0)
	set.Previous = set.Target
	test.That(t, p.SpeedAtTarget(set, waypoint.SpeedUnset()), test.ShouldEqual, 10.0)
}

func TestSpeedAtTargetLegOverride(t *testing.T) {
	p := SpeedProfile{DefaultCruise: 10, CornerSpeed90: 3}
	set := profileSet(90)

	test.That(t, p.SpeedAtTarget(set, 7.5), test.ShouldEqual, 7.5)
	// Non-positive and non-finite overrides fall back to the profile.
	test.That(t, p.SpeedAtTarget(set, 0), test.ShouldAlmostEqual, 3, 1e-9)
	test.That(t, p.SpeedAtTarget(set, -2), test.ShouldAlmostEqual, 3, 1e-9)
	test.That(t, p.SpeedAtTarget(set, math.Inf(1)), test.ShouldAlmostEqual, 3, 1e-9)
}
