// Package main contains a command to fly a simulated vehicle through a
// waypoint mission and print the setpoints the navigation pipeline produces.
package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/autonav/geodetic"
	"go.viam.com/autonav/navigator"
	"go.viam.com/autonav/waypoint"
)

var logger = golog.NewDevelopmentLogger("navsim")

// maxHoldTicks bounds how many consecutive hold setpoints the simulation
// tolerates before declaring the mission stalled. A held vehicle never moves,
// so a hold that persists this long can never clear on its own.
const maxHoldTicks = 250

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	MissionFile string `flag:"0,required,usage=mission JSON file"`
	Realtime    bool   `flag:"realtime,usage=pace the simulation at the configured tick frequency"`
}

type missionWaypoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude_m"`
	Speed     float64 `json:"speed_m_per_sec,omitempty"`
}

type missionFile struct {
	Home      geodetic.HomePosition `json:"home"`
	Config    navigator.Config      `json:"config"`
	Waypoints []missionWaypoint     `json:"waypoints"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	data, err := os.ReadFile(argsParsed.MissionFile)
	if err != nil {
		return errors.Wrap(err, "reading mission file")
	}
	var mission missionFile
	if err := json.Unmarshal(data, &mission); err != nil {
		return errors.Wrap(err, "parsing mission file")
	}
	if len(mission.Waypoints) == 0 {
		return errors.New("mission has no waypoints")
	}

	return fly(ctx, mission, argsParsed.Realtime, logger)
}

func (w missionWaypoint) toLeg() waypoint.GlobalWaypoint {
	speed := w.Speed
	if speed == 0 {
		speed = waypoint.SpeedUnset()
	}
	return waypoint.GlobalWaypoint{
		Latitude:     w.Latitude,
		Longitude:    w.Longitude,
		Altitude:     w.Altitude,
		Type:         waypoint.TypePosition,
		Valid:        true,
		CruiseSpeed:  speed,
		LoiterRadius: waypoint.SpeedUnset(),
	}
}

// tripletAt assembles the navigator triplet around mission index i. Legs off
// either end of the mission stay invalid, exercising the evaluator's
// substitution paths.
func tripletAt(mission missionFile, i int, stamp time.Time) waypoint.Triplet {
	trip := waypoint.Triplet{Current: mission.Waypoints[i].toLeg(), Timestamp: stamp}
	if i > 0 {
		trip.Previous = mission.Waypoints[i-1].toLeg()
	}
	if i+1 < len(mission.Waypoints) {
		trip.Next = mission.Waypoints[i+1].toLeg()
	}
	return trip
}

func fly(ctx context.Context, mission missionFile, realtime bool, logger golog.Logger) error {
	nav, err := navigator.New(mission.Config, logger)
	if err != nil {
		return err
	}
	if err := nav.Activate(mission.Home); err != nil {
		return err
	}

	dt := time.Second / 50
	start := time.Now()
	vehicle := r3.Vector{}
	yaw := 0.0
	lastState := nav.State()
	holdTicks := 0

	for i := 0; i < len(mission.Waypoints); {
		if realtime {
			if !utils.SelectContextOrWait(ctx, dt) {
				return ctx.Err()
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}

		stamp := start.Add(time.Duration(i) * time.Second)
		sp, err := nav.Tick(navigator.TickInput{
			Home:            mission.Home,
			Triplet:         tripletAt(mission, i, stamp),
			VehiclePosition: vehicle,
			VehicleYaw:      yaw,
		})
		if err != nil {
			return err
		}
		if sp.Hold {
			if holdTicks == 0 {
				logger.Warnw("holding position", "waypoint", i)
			}
			holdTicks++
			if holdTicks >= maxHoldTicks {
				return errors.Errorf("mission stalled at waypoint %d: still holding position after %d ticks", i, holdTicks)
			}
			continue
		}
		holdTicks = 0
		if sp.State != lastState {
			logger.Infow("tracking state changed", "state", sp.State, "waypoint", i)
			lastState = sp.State
		}
		if sp.HeadingValid {
			yaw = sp.Heading
		}

		toTarget := sp.Waypoints.Target.Sub(vehicle)
		dist := toTarget.Norm()
		if dist <= mission.Config.AcceptanceRadius {
			logger.Infow("waypoint reached",
				"waypoint", i,
				"position", vehicle,
				"speed_at_target", sp.SpeedAtTarget)
			i++
			continue
		}

		// Fly straight at the target at cruise speed, slowing to the
		// commanded speed over the last stretch before the corner.
		speed := mission.Config.DefaultCruiseSpeed
		if brakeDist := 3 * mission.Config.AcceptanceRadius; dist < brakeDist && sp.SpeedAtTarget < speed {
			if sp.SpeedAtTarget > 1 {
				speed = sp.SpeedAtTarget
			} else {
				speed = 1
			}
		}
		step := speed * dt.Seconds()
		if step > dist {
			step = dist
		}
		vehicle = vehicle.Add(toTarget.Mul(step / dist))
	}

	logger.Infow("mission complete", "final_position", vehicle, "elapsed", time.Since(start))
	return nil
}
