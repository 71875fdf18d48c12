package geodetic

import (
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestReferenceValidity(t *testing.T) {
	r := NewReference()
	test.That(t, r.Valid(), test.ShouldBeFalse)
	test.That(t, r.IsStale(time.Hour), test.ShouldBeTrue)

	_, err := r.ToLocal(47.3977, 8.5456, 488)
	test.That(t, err, test.ShouldBeError, ErrNoReference)
	_, _, _, err = r.ToGlobal(r3.Vector{})
	test.That(t, err, test.ShouldBeError, ErrNoReference)

	err = r.Update(HomePosition{Latitude: math.NaN(), Longitude: 8.5456, Altitude: 488})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, r.Valid(), test.ShouldBeFalse)

	err = r.Update(HomePosition{Latitude: 47.3977, Longitude: 8.5456, Altitude: 488})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Valid(), test.ShouldBeTrue)
	test.That(t, r.Altitude(), test.ShouldEqual, 488.0)
}

func TestReferenceStaleness(t *testing.T) {
	clk := clock.NewMock()
	r := NewReferenceWithClock(clk)

	err := r.Update(HomePosition{Latitude: 47.3977, Longitude: 8.5456, Altitude: 488})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.IsStale(5*time.Second), test.ShouldBeFalse)

	clk.Add(10 * time.Second)
	test.That(t, r.IsStale(5*time.Second), test.ShouldBeTrue)

	err = r.Update(HomePosition{Latitude: 47.3977, Longitude: 8.5456, Altitude: 488})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.IsStale(5*time.Second), test.ShouldBeFalse)
}

func TestReferenceReanchor(t *testing.T) {
	clk := clock.NewMock()
	r := NewReferenceWithClock(clk)
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	err := r.Update(HomePosition{Latitude: 47.0, Longitude: 8.0, Altitude: 100, Timestamp: t0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Origin().Lat(), test.ShouldEqual, 47.0)

	// An older snapshot at a nearby position must not move the anchor.
	err = r.Update(HomePosition{Latitude: 47.0000001, Longitude: 8.0, Altitude: 100, Timestamp: t0.Add(-time.Minute)})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Origin().Lat(), test.ShouldEqual, 47.0)

	// A newer snapshot re-anchors even for a tiny move.
	err = r.Update(HomePosition{Latitude: 47.0000001, Longitude: 8.0, Altitude: 100, Timestamp: t0.Add(time.Minute)})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Origin().Lat(), test.ShouldEqual, 47.0000001)

	// A materially moved anchor re-anchors regardless of timestamps.
	err = r.Update(HomePosition{Latitude: 47.1, Longitude: 8.0, Altitude: 100, Timestamp: t0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Origin().Lat(), test.ShouldEqual, 47.1)
}

func TestToLocalQuadrants(t *testing.T) {
	r := NewReference()
	test.That(t, r.Update(HomePosition{Latitude: 0, Longitude: 0, Altitude: 0}), test.ShouldBeNil)

	// 9e-6 degrees of arc is almost exactly one meter on the sphere.
	testCases := []struct {
		lat, lng float64
		want     r3.Vector
	}{
		{9e-6, 9e-6, r3.Vector{X: 1, Y: 1}},
		{9e-6, 0, r3.Vector{X: 1, Y: 0}},
		{9e-6, -9e-6, r3.Vector{X: 1, Y: -1}},
		{0, 9e-6, r3.Vector{X: 0, Y: 1}},
		{0, 0, r3.Vector{}},
		{0, -9e-6, r3.Vector{X: 0, Y: -1}},
		{-9e-6, 9e-6, r3.Vector{X: -1, Y: 1}},
		{-9e-6, 0, r3.Vector{X: -1, Y: 0}},
		{-9e-6, -9e-6, r3.Vector{X: -1, Y: -1}},
	}
	for _, tc := range testCases {
		v, err := r.ToLocal(tc.lat, tc.lng, 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v.X, test.ShouldAlmostEqual, tc.want.X, .01)
		test.That(t, v.Y, test.ShouldAlmostEqual, tc.want.Y, .01)
		test.That(t, v.Z, test.ShouldAlmostEqual, 0, 1e-9)
	}
}

func TestToLocalAltitude(t *testing.T) {
	r := NewReference()
	test.That(t, r.Update(HomePosition{Latitude: 47.3977, Longitude: 8.5456, Altitude: 488}), test.ShouldBeNil)

	v, err := r.ToLocal(47.3977, 8.5456, 500)
	test.That(t, err, test.ShouldBeNil)
	// Z is down, so being above the reference altitude means negative Z.
	test.That(t, v.Z, test.ShouldAlmostEqual, -12, 1e-9)

	_, err = r.ToLocal(47.3977, math.Inf(1), 500)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRoundTrip(t *testing.T) {
	r := NewReference()
	test.That(t, r.Update(HomePosition{Latitude: 47.3977, Longitude: 8.5456, Altitude: 488}), test.ShouldBeNil)

	testCases := []struct {
		name          string
		lat, lng, alt float64
	}{
		{"origin", 47.3977, 8.5456, 488},
		{"close", 47.39775, 8.54566, 500},
		{"north", 47.41, 8.5456, 450},
		{"southwest", 47.38, 8.52, 610},
		{"ten km out", 47.31, 8.49, 488},
		{"fifty km out", 47.0, 8.1, 520},
	}
	// The inverse projection is exact, so the round trip only accumulates
	// floating point error: hold it to well under a millimeter of latitude
	// or longitude even tens of kilometers from the anchor.
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := r.ToLocal(tc.lat, tc.lng, tc.alt)
			test.That(t, err, test.ShouldBeNil)
			lat, lng, alt, err := r.ToGlobal(v)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, lat, test.ShouldAlmostEqual, tc.lat, 1e-9)
			test.That(t, lng, test.ShouldAlmostEqual, tc.lng, 1e-9)
			test.That(t, alt, test.ShouldAlmostEqual, tc.alt, 1e-6)
		})
	}
}
