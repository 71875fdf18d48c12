// Package navigator runs the tick-driven auto-navigation pipeline: anchor the
// geodetic reference, evaluate the navigator triplet into the local frame,
// classify the tracking state, resolve the internal waypoints, and derive the
// commanded speed and heading for the trajectory generator.
package navigator

import (
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/autonav/tracking"
)

const (
	defaultTickFrequencyHz = 50.0
	defaultReferenceMaxAge = 5 * time.Second
)

// Config carries the externally supplied tracking parameters. It is read-only
// to the pipeline.
type Config struct {
	// DefaultCruiseSpeed is the commanded speed on a straight leg, m/s.
	DefaultCruiseSpeed float64 `json:"default_cruise_speed_m_per_sec"`
	// CornerSpeed90 is the commanded speed into a 90 degree corner, m/s.
	CornerSpeed90 float64 `json:"corner_speed_90_m_per_sec"`
	// AcceptanceRadius is the arrival distance around the target, m.
	AcceptanceRadius float64          `json:"acceptance_radius_m"`
	YawMode          tracking.YawMode `json:"yaw_mode"`

	// TickFrequencyHz drives the optional background loop; defaults to 50.
	TickFrequencyHz float64 `json:"tick_frequency_hz,omitempty"`
	// ReferenceMaxAgeSec is how old the geodetic anchor may grow before a
	// tick re-derives it from the home source; defaults to 5s.
	ReferenceMaxAgeSec float64 `json:"reference_max_age_sec,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.DefaultCruiseSpeed == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "default_cruise_speed_m_per_sec")
	}
	if cfg.DefaultCruiseSpeed < 0 {
		return utils.NewConfigValidationError(path, errors.New("default_cruise_speed_m_per_sec must be positive"))
	}
	if cfg.CornerSpeed90 < 0 || cfg.CornerSpeed90 > cfg.DefaultCruiseSpeed {
		return utils.NewConfigValidationError(path,
			errors.New("corner_speed_90_m_per_sec must be between zero and default_cruise_speed_m_per_sec"))
	}
	if cfg.AcceptanceRadius == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "acceptance_radius_m")
	}
	if cfg.AcceptanceRadius < 0 {
		return utils.NewConfigValidationError(path, errors.New("acceptance_radius_m must be positive"))
	}
	if cfg.TickFrequencyHz < 0 || cfg.TickFrequencyHz > 200 {
		return utils.NewConfigValidationError(path, errors.New("tick_frequency_hz shouldn't be negative or above 200"))
	}
	if cfg.ReferenceMaxAgeSec < 0 {
		return utils.NewConfigValidationError(path, errors.New("reference_max_age_sec must be positive"))
	}
	return nil
}

// OfftrackDistance is the cross-track distance beyond which the vehicle is
// classified offtrack: one default cruise speed's worth of meters away from
// the track line. The formula is a documented tunable rule, not physics.
func (cfg Config) OfftrackDistance() float64 {
	return cfg.DefaultCruiseSpeed
}

func (cfg Config) tickPeriod() time.Duration {
	freq := cfg.TickFrequencyHz
	if freq == 0 {
		freq = defaultTickFrequencyHz
	}
	return time.Duration(float64(time.Second) / freq)
}

func (cfg Config) referenceMaxAge() time.Duration {
	if cfg.ReferenceMaxAgeSec == 0 {
		return defaultReferenceMaxAge
	}
	return time.Duration(cfg.ReferenceMaxAgeSec * float64(time.Second))
}
