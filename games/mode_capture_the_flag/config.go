package mode_capture_the_flag

import (
	"time"

	"github.com/lowpolygames/skirmish-server/errors"
	"github.com/lowpolygames/skirmish-server/games"
	"github.com/lowpolygames/skirmish-server/messages"
)

// Defaults for Config.
const (
	// DefaultPickupRadius is the default radius around a flag in which it can be
	// taken or returned.
	DefaultPickupRadius = 2.5
	// DefaultCaptureRadius is the default radius around the own base in which a
	// carried flag can be captured.
	DefaultCaptureRadius = 3.5
	// DefaultTakeCooldown is the default cooldown after a flag transition that
	// suppresses immediate re-triggering.
	DefaultTakeCooldown = 2 * time.Second
	// DefaultDroppedPickupCooldown is the default cooldown before a dropped flag
	// can be picked up again.
	DefaultDroppedPickupCooldown = 5 * time.Second
	// DefaultAutoReturnAfter is the default timeout after which an untouched
	// dropped flag returns to its base.
	DefaultAutoReturnAfter = 30 * time.Second
	// DefaultTickInterval is the default period for Match.Tick.
	DefaultTickInterval = 500 * time.Millisecond
)

// Config for a Match.
type Config struct {
	// Teams are the definitions for the red and the blue team.
	Teams []games.TeamDefinition
	// JoinTeam is the team that players are assigned to on join. The join-default
	// differs between installations, so it is a policy and not a constant.
	JoinTeam messages.TeamID
	// PickupRadius is the radius around a flag in which it can be taken or
	// returned.
	PickupRadius float64
	// CaptureRadius is the radius around the own base in which a carried flag can
	// be captured.
	CaptureRadius float64
	// TakeCooldown suppresses further transitions on a flag right after it was
	// taken.
	TakeCooldown time.Duration
	// DroppedPickupCooldown suppresses re-pickup right after a flag was dropped.
	DroppedPickupCooldown time.Duration
	// AutoReturnAfter is the timeout after which an untouched dropped flag returns
	// to its base.
	AutoReturnAfter time.Duration
	// TickInterval is the period Match.Tick is meant to be invoked with.
	TickInterval time.Duration
}

// applyDefaults fills all zero fields with the default values.
func (config Config) applyDefaults() Config {
	if config.JoinTeam == "" {
		config.JoinTeam = messages.TeamSpectator
	}
	if config.PickupRadius == 0 {
		config.PickupRadius = DefaultPickupRadius
	}
	if config.CaptureRadius == 0 {
		config.CaptureRadius = DefaultCaptureRadius
	}
	if config.TakeCooldown == 0 {
		config.TakeCooldown = DefaultTakeCooldown
	}
	if config.DroppedPickupCooldown == 0 {
		config.DroppedPickupCooldown = DefaultDroppedPickupCooldown
	}
	if config.AutoReturnAfter == 0 {
		config.AutoReturnAfter = DefaultAutoReturnAfter
	}
	if config.TickInterval == 0 {
		config.TickInterval = DefaultTickInterval
	}
	return config
}

// ValidateConfig assures that the given Config allows starting a match. Team
// definitions are validated by games.NewTeamRegistry.
func ValidateConfig(config Config) error {
	switch config.JoinTeam {
	case messages.TeamRed, messages.TeamBlue, messages.TeamSpectator:
	default:
		return errors.NewInvalidMatchConfigError("unknown join team",
			errors.Details{"join_team": config.JoinTeam})
	}
	if config.PickupRadius < 0 || config.CaptureRadius < 0 {
		return errors.NewInvalidMatchConfigError("radii must not be negative", errors.Details{
			"pickup_radius":  config.PickupRadius,
			"capture_radius": config.CaptureRadius,
		})
	}
	if config.TakeCooldown < 0 || config.DroppedPickupCooldown < 0 ||
		config.AutoReturnAfter < 0 || config.TickInterval < 0 {
		return errors.NewInvalidMatchConfigError("durations must not be negative", nil)
	}
	return nil
}
