// Package games holds the mode-independent parts of the authoritative match
// core: team registry, player assignments and the controller contract that the
// session gateway drives. The actual rules live in the game mode packages.
package games

import (
	"github.com/lowpolygames/skirmish-server/messages"
	"github.com/lowpolygames/skirmish-server/world"
)

// EventKind is the kind of an Event emitted by a match controller.
type EventKind string

const (
	// EventPlayerJoined is emitted when a player has joined the match.
	EventPlayerJoined EventKind = "player-joined"
	// EventPlayerLeft is emitted when a player has left the match.
	EventPlayerLeft EventKind = "player-left"
	// EventTeamSwitched is emitted when a player has switched teams.
	EventTeamSwitched EventKind = "team-switched"
	// EventFlagTaken is emitted when a flag was taken by an enemy player.
	EventFlagTaken EventKind = "flag-taken"
	// EventFlagDropped is emitted when a carried flag was dropped.
	EventFlagDropped EventKind = "flag-dropped"
	// EventFlagReturned is emitted when a dropped flag went back to its base,
	// either by an own-team player or by auto-return.
	EventFlagReturned EventKind = "flag-returned"
	// EventFlagCaptured is emitted when a carried flag was captured at the
	// carrier's own base.
	EventFlagCaptured EventKind = "flag-captured"
	// EventScoreChanged is emitted when a team's score changed.
	EventScoreChanged EventKind = "score-changed"
	// EventPlayerEliminated is emitted in team deathmatch when a player is out of
	// lives.
	EventPlayerEliminated EventKind = "player-eliminated"
	// EventMatchEnded is emitted when the match has reached its end phase.
	EventMatchEnded EventKind = "match-ended"
)

// Event describes a state change that a match controller performed. Events are
// the outcome of controller operations: an empty event list means that no
// transition was applied.
type Event struct {
	// Kind is the kind of the event.
	Kind EventKind
	// Team is the team the event relates to, if any.
	Team messages.TeamID
	// Player is the player the event relates to, if any.
	Player messages.PlayerID
	// Score is the new team score for EventScoreChanged.
	Score int
	// Notification is the human-readable text for distribution to clients.
	Notification string
}

// PositionProvider supplies last-known world positions for players. Positions
// originate from clients, so they are advisory input to guard conditions and
// never authoritative state by themselves.
type PositionProvider interface {
	// PlayerPosition returns the last known position of the given player. False is
	// returned if no position is known, in which case all distance guards must
	// fail closed.
	PlayerPosition(player messages.PlayerID) (world.Point3, bool)
}

// PositionProviderFunc allows using a plain function as PositionProvider.
type PositionProviderFunc func(player messages.PlayerID) (world.Point3, bool)

func (fn PositionProviderFunc) PlayerPosition(player messages.PlayerID) (world.Point3, bool) {
	return fn(player)
}

// Match is the controller contract the session gateway drives. All operations
// are serialized by the implementation: no two of them ever observe or mutate
// match state concurrently. Every operation returns a definite outcome as an
// event list. Guards that are not met simply yield no events and never an
// error, because inbound intents are untrusted.
type Match interface {
	// ID identifies the match.
	ID() messages.MatchID
	// Mode is the game mode the match uses.
	Mode() messages.GameMode
	// OnPlayerJoin assigns the default team to the given player. No events are
	// returned if the player has already joined.
	OnPlayerJoin(player messages.PlayerID) []Event
	// RequestAction is the single entry point for flag interaction attempts. At
	// most one transition per flag is applied per call.
	RequestAction(player messages.PlayerID) []Event
	// OnPlayerTeamSwitch reassigns the player's team. This has no immediate flag
	// effect.
	OnPlayerTeamSwitch(player messages.PlayerID, team messages.TeamID) []Event
	// OnReportDeath handles a client-reported player death. The claimed killer is
	// corroborated before anything is awarded.
	OnReportDeath(victim messages.PlayerID, claimedKiller messages.PlayerID) []Event
	// OnPlayerDisconnect removes the player from the match. Carried flags are
	// dropped immediately at their last known position.
	OnPlayerDisconnect(player messages.PlayerID) []Event
	// Tick applies all time-driven transitions. It must be invoked on a fixed
	// period and requires no player input.
	Tick() []Event
	// Status produces an immutable view of all non-spectator teams for
	// distribution to observers.
	Status() messages.MessageMatchStatus
	// ShutDown ends the match. All further operations are no-ops.
	ShutDown()
}
