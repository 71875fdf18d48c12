package navigator

import (
	"go.viam.com/autonav/waypoint"
)

// avoidanceOverride is the collaborator's substitute target/next pair,
// applied on the tick after it is set and kept until a new triplet arrives.
type avoidanceOverride struct {
	target waypoint.GeoWaypoint
	next   waypoint.GeoWaypoint
}

// AvoidanceWaypoints returns the geodetic-form waypoint set published by the
// most recent tick, for hand-off to an external avoidance collaborator. The
// second return is false before the first successful tick.
func (n *Navigator) AvoidanceWaypoints() (waypoint.GeoSet, bool) {
	n.avoidanceMu.Lock()
	defer n.avoidanceMu.Unlock()
	if n.published == nil {
		return waypoint.GeoSet{}, false
	}
	return *n.published, true
}

// SetAvoidanceOverride replaces the target and next waypoints for following
// ticks. Calls are last-value-wins; the override is dropped as soon as a new
// triplet is consumed. There is no retry or acknowledgment: a collaborator
// that never responds simply leaves the internally computed waypoints in
// effect.
func (n *Navigator) SetAvoidanceOverride(target, next waypoint.GeoWaypoint) {
	n.avoidanceMu.Lock()
	defer n.avoidanceMu.Unlock()
	n.override = &avoidanceOverride{target: target, next: next}
}

func (n *Navigator) clearOverride() {
	n.avoidanceMu.Lock()
	defer n.avoidanceMu.Unlock()
	n.override = nil
}

// applyOverride projects a pending collaborator override into the local frame
// and substitutes it into the raw waypoint set before classification. A stale
// override that no longer projects cleanly is discarded.
func (n *Navigator) applyOverride(raw *waypoint.LocalSet) {
	n.avoidanceMu.Lock()
	ovr := n.override
	n.avoidanceMu.Unlock()
	if ovr == nil {
		return
	}

	target, err := n.ref.ToLocal(ovr.target.Point.Lat(), ovr.target.Point.Lng(), ovr.target.Altitude)
	if err != nil {
		n.logger.Debugw("dropping unprojectable avoidance override", "error", err)
		n.clearOverride()
		return
	}
	next, err := n.ref.ToLocal(ovr.next.Point.Lat(), ovr.next.Point.Lng(), ovr.next.Altitude)
	if err != nil {
		n.logger.Debugw("dropping unprojectable avoidance override", "error", err)
		n.clearOverride()
		return
	}
	raw.Target = target
	raw.Next = next
}

// publishAvoidance converts the resolved set back to geodetic form and makes
// it available to the collaborator. Conversion failure only skips this tick's
// publication.
func (n *Navigator) publishAvoidance(resolved waypoint.LocalSet) {
	geoSet, err := resolved.ToGeo(n.ref)
	if err != nil {
		n.logger.Debugw("cannot publish avoidance waypoints", "error", err)
		return
	}
	n.avoidanceMu.Lock()
	n.published = &geoSet
	n.avoidanceMu.Unlock()
}
