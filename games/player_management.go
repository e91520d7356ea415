package games

import (
	"sync"

	"github.com/lowpolygames/skirmish-server/messages"
)

// AssignmentUpdate is an update that is published from PlayerAssignments when
// a player joins, switches teams or leaves.
type AssignmentUpdate struct {
	// Player is the id of the player that joined, switched or left.
	Player messages.PlayerID
	// Team is the team the Player is now assigned to. For leaves this is the team
	// the player belonged to.
	Team messages.TeamID
	// IsActive is true while the player remains in the match. For leaves it is
	// false.
	IsActive bool
}

// AssignedPlayer is used for retrieving active players with
// PlayerAssignments.ActivePlayers and PlayersInTeam.
type AssignedPlayer struct {
	// Player is the id of the player.
	Player messages.PlayerID
	// Team is the team the player is assigned to.
	Team messages.TeamID
}

// PlayerAssignments maps each active player to exactly one team and allows
// concurrent access. Every player joins on the configured default team; the
// join-default is a policy decision, not a constant. It also allows receiving
// updates for joins, switches and leaves.
type PlayerAssignments struct {
	// defaultTeam is the team assigned on join.
	defaultTeam messages.TeamID
	// assigned holds all active players along with their assigned team.
	assigned map[messages.PlayerID]messages.TeamID
	// m locks assigned.
	m sync.RWMutex
	// updates is an optional update channel that sends an AssignmentUpdate when an
	// assignment changes.
	updates chan AssignmentUpdate
}

// NewPlayerAssignments creates a new PlayerAssignments with the given join
// default. The passed update channel is optional.
func NewPlayerAssignments(defaultTeam messages.TeamID, updates chan AssignmentUpdate) *PlayerAssignments {
	return &PlayerAssignments{
		defaultTeam: defaultTeam,
		assigned:    make(map[messages.PlayerID]messages.TeamID),
		updates:     updates,
	}
}

// Join assigns the default team to the given player. If the player is already
// active, false is returned and nothing changes.
func (pa *PlayerAssignments) Join(player messages.PlayerID) (messages.TeamID, bool) {
	pa.m.Lock()
	defer pa.m.Unlock()
	if _, ok := pa.assigned[player]; ok {
		return "", false
	}
	pa.assigned[player] = pa.defaultTeam
	if pa.updates != nil {
		pa.updates <- AssignmentUpdate{
			Player:   player,
			Team:     pa.defaultTeam,
			IsActive: true,
		}
	}
	return pa.defaultTeam, true
}

// SwitchTeam reassigns the given player. If the player is unknown or already on
// the given team, false is returned and nothing changes.
func (pa *PlayerAssignments) SwitchTeam(player messages.PlayerID, team messages.TeamID) bool {
	pa.m.Lock()
	defer pa.m.Unlock()
	current, ok := pa.assigned[player]
	if !ok || current == team {
		return false
	}
	pa.assigned[player] = team
	if pa.updates != nil {
		pa.updates <- AssignmentUpdate{
			Player:   player,
			Team:     team,
			IsActive: true,
		}
	}
	return true
}

// Remove removes the given player from the active ones and returns the team the
// player belonged to. If the player is unknown, false is returned.
func (pa *PlayerAssignments) Remove(player messages.PlayerID) (messages.TeamID, bool) {
	pa.m.Lock()
	defer pa.m.Unlock()
	team, ok := pa.assigned[player]
	if !ok {
		return "", false
	}
	delete(pa.assigned, player)
	if pa.updates != nil {
		pa.updates <- AssignmentUpdate{
			Player:   player,
			Team:     team,
			IsActive: false,
		}
	}
	return team, true
}

// TeamOf returns the team the given player is assigned to.
func (pa *PlayerAssignments) TeamOf(player messages.PlayerID) (messages.TeamID, bool) {
	pa.m.RLock()
	defer pa.m.RUnlock()
	team, ok := pa.assigned[player]
	return team, ok
}

// IsActive checks if the player with the given id is active.
func (pa *PlayerAssignments) IsActive(player messages.PlayerID) bool {
	pa.m.RLock()
	defer pa.m.RUnlock()
	_, ok := pa.assigned[player]
	return ok
}

// PlayersInTeam returns the players assigned to the team with the given id.
func (pa *PlayerAssignments) PlayersInTeam(team messages.TeamID) []AssignedPlayer {
	pa.m.RLock()
	defer pa.m.RUnlock()
	players := make([]AssignedPlayer, 0)
	for player, assigned := range pa.assigned {
		if assigned == team {
			players = append(players, AssignedPlayer{
				Player: player,
				Team:   team,
			})
		}
	}
	return players
}

// ActivePlayers returns a list of all active players.
func (pa *PlayerAssignments) ActivePlayers() []AssignedPlayer {
	pa.m.RLock()
	defer pa.m.RUnlock()
	players := make([]AssignedPlayer, 0, len(pa.assigned))
	for player, team := range pa.assigned {
		players = append(players, AssignedPlayer{
			Player: player,
			Team:   team,
		})
	}
	return players
}
