package navigator

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/autonav/geodetic"
	"go.viam.com/autonav/tracking"
	"go.viam.com/autonav/waypoint"
)

// TickInput is the immutable snapshot of upstream state read at the start of
// a tick.
type TickInput struct {
	Home            geodetic.HomePosition
	Triplet         waypoint.Triplet
	VehiclePosition r3.Vector
	VehicleYaw      float64
}

// Setpoint is what a tick hands to the trajectory generator.
type Setpoint struct {
	Waypoints     waypoint.LocalSet
	State         tracking.State
	SpeedAtTarget float64
	Heading       float64
	HeadingValid  bool
	// Hold is set when no navigable target could be produced this tick and
	// the waypoints command holding the current position instead.
	Hold bool
}

// Navigator owns the per-tick pipeline state: the geodetic reference, the
// yaw lock, and the avoidance hand-off slot. Tick itself is single-threaded;
// only the avoidance slot may be touched from another goroutine.
type Navigator struct {
	cfg     Config
	logger  golog.Logger
	ref     *geodetic.Reference
	speed   tracking.SpeedProfile
	yawLock tracking.YawLock

	tripletStamp time.Time
	haveTriplet  bool
	lastTarget   r3.Vector
	lastState    tracking.State

	avoidanceMu sync.Mutex
	published   *waypoint.GeoSet
	override    *avoidanceOverride

	loopMu                  sync.Mutex
	cancel                  func()
	activeBackgroundWorkers sync.WaitGroup
}

// New returns a navigator with a validated config.
func New(cfg Config, logger golog.Logger) (*Navigator, error) {
	return newWithClock(cfg, logger, clock.New())
}

func newWithClock(cfg Config, logger golog.Logger, clk clock.Clock) (*Navigator, error) {
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	return &Navigator{
		cfg:       cfg,
		logger:    logger,
		ref:       geodetic.NewReferenceWithClock(clk),
		speed:     tracking.SpeedProfile{DefaultCruise: cfg.DefaultCruiseSpeed, CornerSpeed90: cfg.CornerSpeed90},
		lastState: tracking.StateNone,
	}, nil
}

// Activate anchors the geodetic reference from the home source. Activation
// fails when no valid reference can be established; a later tick may still
// recover once a valid home position arrives.
func (n *Navigator) Activate(home geodetic.HomePosition) error {
	if err := n.ref.Update(home); err != nil {
		return errors.Wrap(err, "cannot activate without a geodetic reference")
	}
	return nil
}

// State returns the tracking state of the last tick.
func (n *Navigator) State() tracking.State {
	return n.lastState
}

// Tick runs the full pipeline once against the given snapshot.
//
// An unusable triplet is not an error: the returned setpoint commands holding
// the current position. The error return is reserved for an unanchored
// reference frame, which the activation contract should have ruled out.
func (n *Navigator) Tick(in TickInput) (Setpoint, error) {
	if err := n.ensureReference(in.Home); err != nil {
		return n.holdSetpoint(in), err
	}

	n.consumeTriplet(in.Triplet)

	raw, ok := waypoint.Evaluate(n.ref, in.Triplet, in.VehiclePosition)
	if !ok {
		n.logger.Debugw("no navigable target this tick, holding position",
			"triplet_stamp", in.Triplet.Timestamp)
		return n.holdSetpoint(in), nil
	}
	n.applyOverride(&raw)

	state := tracking.Classify(
		xy(in.VehiclePosition), xy(raw.Previous), xy(raw.Target), n.cfg.OfftrackDistance())
	if state != n.lastState {
		n.logger.Debugw("tracking state changed", "from", n.lastState, "to", state)
		n.lastState = state
	}

	resolved := tracking.Resolve(state, raw, in.VehiclePosition)
	resolved.SpeedAtTarget = n.speed.SpeedAtTarget(resolved, in.Triplet.Current.CruiseSpeed)

	heading, headingValid := tracking.DesiredHeading(
		resolved, in.VehiclePosition, in.VehicleYaw, n.cfg.YawMode, &n.yawLock, n.cfg.AcceptanceRadius)

	n.publishAvoidance(resolved)

	return Setpoint{
		Waypoints:     resolved,
		State:         state,
		SpeedAtTarget: resolved.SpeedAtTarget,
		Heading:       heading,
		HeadingValid:  headingValid,
	}, nil
}

// ensureReference re-derives the anchor from the latest home snapshot. The
// home topic is last-value-wins: an absent or non-finite snapshot is not an
// error as long as an anchor was ever established, it only lets the cached
// reference age.
func (n *Navigator) ensureReference(home geodetic.HomePosition) error {
	if home.Finite() {
		if err := n.ref.Update(home); err != nil {
			return errors.Wrap(err, "updating geodetic reference")
		}
	}
	if !n.ref.Valid() {
		return errors.New("no geodetic reference")
	}
	if n.ref.IsStale(n.cfg.referenceMaxAge()) {
		n.logger.Debugw("geodetic reference is stale", "max_age", n.cfg.referenceMaxAge())
	}
	return nil
}

// consumeTriplet tracks triplet turnover: a new triplet drops any avoidance
// override, and one whose target moved materially clears the yaw lock.
func (n *Navigator) consumeTriplet(trip waypoint.Triplet) {
	if n.haveTriplet && trip.Timestamp.Equal(n.tripletStamp) {
		return
	}
	n.tripletStamp = trip.Timestamp
	n.clearOverride()

	if !trip.Current.Usable() || !n.ref.Valid() {
		return
	}
	target, err := n.ref.ToLocal(trip.Current.Latitude, trip.Current.Longitude, trip.Current.Altitude)
	if err != nil {
		return
	}
	if n.haveTriplet && target.Sub(n.lastTarget).Norm() > n.cfg.AcceptanceRadius {
		n.yawLock.Invalidate()
	}
	n.lastTarget = target
	n.haveTriplet = true
}

// holdSetpoint degrades to a safe hold at the vehicle's current position
// rather than propagating an unusable target downstream.
func (n *Navigator) holdSetpoint(in TickInput) Setpoint {
	pos := in.VehiclePosition
	return Setpoint{
		Waypoints: waypoint.LocalSet{
			PrevPrev: pos,
			Previous: pos,
			Target:   pos,
			Next:     pos,
			Type:     waypoint.TypeLoiter,
		},
		State:   tracking.StateNone,
		Heading: in.VehicleYaw,
		Hold:    true,
	}
}

func xy(v r3.Vector) r2.Point {
	return r2.Point{X: v.X, Y: v.Y}
}
