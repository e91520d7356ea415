package mode_capture_the_flag

import (
	"time"

	"github.com/lowpolygames/skirmish-server/messages"
	"github.com/lowpolygames/skirmish-server/world"
)

// FlagStatus is the status of a Flag. The set is exhaustive.
type FlagStatus string

const (
	// FlagStatusAtBase is the initial status while the flag rests at its base.
	FlagStatusAtBase FlagStatus = "at-base"
	// FlagStatusTaken is used while an enemy player carries the flag. This is the
	// only status in which a carrier is bound.
	FlagStatusTaken FlagStatus = "taken"
	// FlagStatusDropped is used while the flag lies in the field after its carrier
	// died or disconnected.
	FlagStatusDropped FlagStatus = "dropped"
	// FlagStatusCaptured is momentary: it is assumed when a carried flag is scored
	// home and immediately replaced by FlagStatusAtBase within the same controller
	// step.
	FlagStatusCaptured FlagStatus = "captured"
	// FlagStatusCarrierDied is transient: it is set when a client reports the
	// carrier's death and converted to FlagStatusDropped by the next controller
	// tick. It never persists across a controller step.
	FlagStatusCarrierDied FlagStatus = "carrier-died"
	// FlagStatusReturning is momentary like FlagStatusCaptured and is assumed
	// while a dropped flag goes back to its base.
	FlagStatusReturning FlagStatus = "returning"
)

// Flag is the objective object owned by a team. It is created at match start,
// bound 1:1 to its owning team, and only mutated by the owning Match under the
// match lock.
type Flag struct {
	// team is the owning team.
	team messages.TeamID
	// base is where the flag rests and respawns.
	base world.Point3
	// status is the current FlagStatus.
	status FlagStatus
	// position is the current world position. While taken, the carrier's
	// last-known position takes precedence for observers.
	position world.Point3
	// carrier is the player currently carrying the flag. Invariant: carrier is
	// bound if and only if status is FlagStatusTaken.
	carrier messages.PlayerID
	// cooldownUntil suppresses transitions until strictly after this instant.
	cooldownUntil time.Time
	// autoReturnUntil is the deadline after which a dropped flag returns home.
	autoReturnUntil time.Time
}

func newFlag(team messages.TeamID, base world.Point3) *Flag {
	return &Flag{
		team:     team,
		base:     base,
		status:   FlagStatusAtBase,
		position: base,
		carrier:  messages.PlayerNone,
	}
}

// Team returns the owning team.
func (f *Flag) Team() messages.TeamID {
	return f.team
}

// Status returns the current FlagStatus.
func (f *Flag) Status() FlagStatus {
	return f.status
}

// Carrier returns the player currently carrying the flag or
// messages.PlayerNone.
func (f *Flag) Carrier() messages.PlayerID {
	return f.carrier
}

// canBeTakenAt reports whether the flag is up for grabs: resting at its base or
// dropped in the field, with its cooldown strictly expired.
func (f *Flag) canBeTakenAt(now time.Time) bool {
	if f.status != FlagStatusAtBase && f.status != FlagStatusDropped {
		return false
	}
	return now.After(f.cooldownUntil)
}

// take binds the given carrier and sets the re-trigger cooldown.
func (f *Flag) take(carrier messages.PlayerID, now time.Time, cooldown time.Duration) {
	f.status = FlagStatusTaken
	f.carrier = carrier
	f.cooldownUntil = now.Add(cooldown)
	f.autoReturnUntil = time.Time{}
}

// markCarrierDied records the advisory death of the carrier at the given
// position. The carrier is unbound right away so the carrier-iff-taken
// invariant holds; the dropped cooldown and auto-return deadlines are stamped
// by the tick that performs the conversion to FlagStatusDropped.
func (f *Flag) markCarrierDied(at world.Point3) {
	f.status = FlagStatusCarrierDied
	f.carrier = messages.PlayerNone
	f.position = at
}

// drop puts the flag down at the given position with the re-pickup cooldown
// and the auto-return deadline stamped relative to now.
func (f *Flag) drop(at world.Point3, now time.Time, pickupCooldown time.Duration, autoReturnAfter time.Duration) {
	f.status = FlagStatusDropped
	f.carrier = messages.PlayerNone
	f.position = at
	f.cooldownUntil = now.Add(pickupCooldown)
	f.autoReturnUntil = now.Add(autoReturnAfter)
}

// returnHome resets the flag to its base. No score is involved.
func (f *Flag) returnHome() {
	f.status = FlagStatusAtBase
	f.carrier = messages.PlayerNone
	f.position = f.base
	f.cooldownUntil = time.Time{}
	f.autoReturnUntil = time.Time{}
}
