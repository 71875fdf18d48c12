package waypoint

import (
	"github.com/golang/geo/r3"
	geo "github.com/kellydunn/golang-geo"
	"github.com/pkg/errors"
	commonpb "go.viam.com/api/common/v1"

	"go.viam.com/autonav/geodetic"
)

// GeoWaypoint is a single waypoint in geodetic form, as exposed to the
// avoidance collaborator.
type GeoWaypoint struct {
	Point    *geo.Point
	Altitude float64
}

// GeoSet is the geodetic form of a resolved LocalSet.
type GeoSet struct {
	Previous GeoWaypoint
	Target   GeoWaypoint
	Next     GeoWaypoint
	Type     Type
}

// ToGeo converts the set back into geodetic form using the given reference.
func (s LocalSet) ToGeo(ref *geodetic.Reference) (GeoSet, error) {
	out := GeoSet{Type: s.Type}
	var err error
	if out.Previous, err = toGeo(ref, s.Previous); err != nil {
		return GeoSet{}, err
	}
	if out.Target, err = toGeo(ref, s.Target); err != nil {
		return GeoSet{}, err
	}
	if out.Next, err = toGeo(ref, s.Next); err != nil {
		return GeoSet{}, err
	}
	return out, nil
}

func toGeo(ref *geodetic.Reference, v r3.Vector) (GeoWaypoint, error) {
	lat, lng, alt, err := ref.ToGlobal(v)
	if err != nil {
		return GeoWaypoint{}, err
	}
	return GeoWaypoint{Point: geo.NewPoint(lat, lng), Altitude: alt}, nil
}

// ToProto converts the waypoint into its wire representation. Altitude is not
// part of the common GeoPoint message and travels separately.
func (g GeoWaypoint) ToProto() *commonpb.GeoPoint {
	return &commonpb.GeoPoint{Latitude: g.Point.Lat(), Longitude: g.Point.Lng()}
}

// GeoWaypointFromProto converts the wire representation back into a struct.
func GeoWaypointFromProto(p *commonpb.GeoPoint, altitude float64) (GeoWaypoint, error) {
	if p == nil {
		return GeoWaypoint{}, errors.New("cannot convert nil geo point")
	}
	return GeoWaypoint{Point: geo.NewPoint(p.GetLatitude(), p.GetLongitude()), Altitude: altitude}, nil
}

// ToProto converts the set into its wire representation, ordered previous,
// target, next.
func (g GeoSet) ToProto() []*commonpb.GeoPoint {
	return []*commonpb.GeoPoint{g.Previous.ToProto(), g.Target.ToProto(), g.Next.ToProto()}
}
