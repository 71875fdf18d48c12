package tracking

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/autonav/waypoint"
)

func rawSet() waypoint.LocalSet {
	return waypoint.LocalSet{
		Previous: r3.Vector{X: 0, Y: 0, Z: -10},
		Target:   r3.Vector{X: 200, Y: 0, Z: -10},
		Next:     r3.Vector{X: 200, Y: 200, Z: -10},
		Type:     waypoint.TypePosition,
	}
}

func TestResolveNone(t *testing.T) {
	raw := rawSet()
	resolved := Resolve(StateNone, raw, r3.Vector{X: 100, Y: 1, Z: -12})
	test.That(t, resolved, test.ShouldResemble, raw)
}

func TestResolvePreviousInfront(t *testing.T) {
	raw := rawSet()
	vehicle := r3.Vector{X: -40, Y: 3, Z: -15}
	resolved := Resolve(StatePreviousInfront, raw, vehicle)
	test.That(t, resolved.Previous, test.ShouldResemble, vehicle)
	test.That(t, resolved.Target, test.ShouldResemble, raw.Target)
	test.That(t, resolved.Next, test.ShouldResemble, raw.Next)
}

func TestResolveTargetBehind(t *testing.T) {
	raw := rawSet()
	// Past the target: the closest segment point is the target itself.
	resolved := Resolve(StateTargetBehind, raw, r3.Vector{X: 260, Y: 10, Z: -12})
	test.That(t, resolved.Previous.X, test.ShouldAlmostEqual, 200)
	test.That(t, resolved.Previous.Y, test.ShouldAlmostEqual, 0)
	test.That(t, resolved.Previous.Z, test.ShouldAlmostEqual, -10)

	// Degenerate segment: substitute the target.
	degenerate := raw
	degenerate.Previous = raw.Target
	resolved = Resolve(StateTargetBehind, degenerate, r3.Vector{X: 260, Y: 10, Z: -12})
	test.That(t, resolved.Previous.X, test.ShouldAlmostEqual, raw.Target.X)
	test.That(t, resolved.Previous.Y, test.ShouldAlmostEqual, raw.Target.Y)
}

func TestClosestPointDiagonal(t *testing.T) {
	a := r2.Point{X: 0, Y: 0}
	b := r2.Point{X: 100, Y: 100}

	// Perpendicular foot on a 45 degree segment.
	cp := closestOnLine(r2.Point{X: 60, Y: 40}, a, b)
	test.That(t, cp.X, test.ShouldAlmostEqual, 50)
	test.That(t, cp.Y, test.ShouldAlmostEqual, 50)

	// The line projection runs past the endpoint; the segment one clamps.
	cp = closestOnLine(r2.Point{X: 160, Y: 140}, a, b)
	test.That(t, cp.X, test.ShouldAlmostEqual, 150)
	cp = closestOnSegment(r2.Point{X: 160, Y: 140}, a, b)
	test.That(t, cp.X, test.ShouldAlmostEqual, 100)
	test.That(t, cp.Y, test.ShouldAlmostEqual, 100)
}

func TestResolveOfftrack(t *testing.T) {
	raw := rawSet()
	// 50 m to the side of the 200 m segment: previous becomes the foot of the
	// perpendicular on the line.
	resolved := Resolve(StateOfftrack, raw, r3.Vector{X: 80, Y: 50, Z: -10})
	test.That(t, resolved.Previous.X, test.ShouldAlmostEqual, 80)
	test.That(t, resolved.Previous.Y, test.ShouldAlmostEqual, 0)
	test.That(t, resolved.Previous.Z, test.ShouldAlmostEqual, -10)

	// Offtrack beyond the target end projects past the target on the
	// infinite line, unlike the clamped targetBehind case.
	resolved = Resolve(StateOfftrack, raw, r3.Vector{X: 260, Y: 50, Z: -10})
	test.That(t, resolved.Previous.X, test.ShouldAlmostEqual, 260)
	test.That(t, resolved.Previous.Y, test.ShouldAlmostEqual, 0)
}
