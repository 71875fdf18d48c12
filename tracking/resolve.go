package tracking

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/autonav/waypoint"
)

// Resolve derives the waypoints actually handed downstream from the raw
// evaluated set. Depending on the tracking state the previous waypoint is
// substituted so the generated path starts from somewhere the vehicle can
// actually fly:
//
//   - none: the raw set passes through unchanged.
//   - previousInfront: previous becomes the vehicle position, so "here" is
//     the start of the segment.
//   - targetBehind: previous becomes the closest point on the segment,
//     biasing the path toward a direct approach to the target.
//   - offtrack: previous becomes the closest point on the infinite track
//     line, so the path re-converges onto the intended line instead of
//     re-tracing the original segment.
//
// Substituted points keep the raw previous waypoint's Z so the vertical
// profile still tracks the planned leg.
func Resolve(state State, raw waypoint.LocalSet, vehicle r3.Vector) waypoint.LocalSet {
	resolved := raw
	switch state {
	case StatePreviousInfront:
		resolved.Previous = vehicle
	case StateTargetBehind:
		cp := closestOnSegment(xy(vehicle), xy(raw.Previous), xy(raw.Target))
		resolved.Previous = r3.Vector{X: cp.X, Y: cp.Y, Z: raw.Previous.Z}
	case StateOfftrack:
		cp := closestOnLine(xy(vehicle), xy(raw.Previous), xy(raw.Target))
		resolved.Previous = r3.Vector{X: cp.X, Y: cp.Y, Z: raw.Previous.Z}
	case StateNone:
	}
	return resolved
}

func xy(v r3.Vector) r2.Point {
	return r2.Point{X: v.X, Y: v.Y}
}

// closestOnLine returns the projection of pos onto the infinite line through
// a→b, or b when the segment is degenerate.
func closestOnLine(pos, a, b r2.Point) r2.Point {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq <= degenerateDist*degenerateDist {
		return b
	}
	t := pos.Sub(a).Dot(ab) / lenSq
	return a.Add(ab.Mul(t))
}

// closestOnSegment is closestOnLine clamped to the segment endpoints.
func closestOnSegment(pos, a, b r2.Point) r2.Point {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq <= degenerateDist*degenerateDist {
		return b
	}
	t := pos.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Mul(t))
}
