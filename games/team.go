package games

import (
	"fmt"
	"sync"

	"github.com/lowpolygames/skirmish-server/errors"
	"github.com/lowpolygames/skirmish-server/messages"
	"github.com/lowpolygames/skirmish-server/world"
)

// TeamDefinition is the fixed identity of a team as provided by match
// configuration.
type TeamDefinition struct {
	// ID identifies the team.
	ID messages.TeamID `json:"id"`
	// Name is the display name of the team.
	Name string `json:"name"`
	// Base is the home location of the team, used for spawning and as the
	// flag-capture destination.
	Base world.Point3 `json:"base"`
	// FlagColor is the color of the team's flag.
	FlagColor world.RGB `json:"flag_color"`
}

// Team is a team participating in a match. Identity fields are immutable after
// creation; only the score changes and only through TeamRegistry.AddScore.
type Team struct {
	TeamDefinition
	// score is the current score. Guarded by the owning TeamRegistry.
	score int
}

// TeamRegistry is a read-mostly store of the fixed team metadata plus the
// mutable score counters. The spectator placeholder team is always present but
// never listed as a scoring team.
type TeamRegistry struct {
	// ordered holds the scoring teams in registration order. The order is
	// observable through Leading's tie-break.
	ordered []*Team
	// byID provides access by team id, including the spectator placeholder.
	byID map[messages.TeamID]*Team
	// m locks score access.
	m sync.RWMutex
}

// NewTeamRegistry creates a TeamRegistry from the given definitions. Exactly
// the red and the blue team must be defined. The spectator placeholder is added
// automatically. Malformed definitions are a fatal configuration error.
func NewTeamRegistry(defs ...TeamDefinition) (*TeamRegistry, error) {
	r := &TeamRegistry{
		ordered: make([]*Team, 0, len(defs)),
		byID:    make(map[messages.TeamID]*Team),
	}
	for _, def := range defs {
		switch def.ID {
		case messages.TeamRed, messages.TeamBlue:
		case messages.TeamSpectator:
			return nil, errors.NewInvalidMatchConfigError("spectator team must not be defined explicitly", nil)
		default:
			return nil, errors.NewInvalidMatchConfigError(fmt.Sprintf("unknown team id: %s", def.ID),
				errors.Details{"team_id": def.ID})
		}
		if _, ok := r.byID[def.ID]; ok {
			return nil, errors.NewInvalidMatchConfigError(fmt.Sprintf("duplicate team id: %s", def.ID),
				errors.Details{"team_id": def.ID})
		}
		if def.Name == "" {
			return nil, errors.NewInvalidMatchConfigError(fmt.Sprintf("team %s is missing a name", def.ID),
				errors.Details{"team_id": def.ID})
		}
		team := &Team{TeamDefinition: def}
		r.ordered = append(r.ordered, team)
		r.byID[def.ID] = team
	}
	if len(r.ordered) != 2 {
		return nil, errors.NewInvalidMatchConfigError("exactly the red and the blue team must be defined",
			errors.Details{"team_count": len(r.ordered)})
	}
	r.byID[messages.TeamSpectator] = &Team{TeamDefinition: TeamDefinition{
		ID:   messages.TeamSpectator,
		Name: "Spectators",
	}}
	return r, nil
}

// ByID returns the Team with the given id.
func (r *TeamRegistry) ByID(id messages.TeamID) (*Team, bool) {
	team, ok := r.byID[id]
	return team, ok
}

// Opposing returns the opposing scoring team. For the spectator team or unknown
// ids an error is returned as there is no opposing team.
func (r *TeamRegistry) Opposing(id messages.TeamID) (*Team, error) {
	for i, team := range r.ordered {
		if team.ID == id {
			return r.ordered[(i+1)%len(r.ordered)], nil
		}
	}
	return nil, errors.Error{
		Code:    errors.ErrInternal,
		Kind:    errors.KindSpectatorTeam,
		Message: fmt.Sprintf("no opposing team for %s", id),
		Details: errors.Details{"team_id": id},
	}
}

// ScoringTeams returns the scoring teams in registration order.
func (r *TeamRegistry) ScoringTeams() []*Team {
	teams := make([]*Team, len(r.ordered))
	copy(teams, r.ordered)
	return teams
}

// Score returns the current score of the team with the given id.
func (r *TeamRegistry) Score(id messages.TeamID) int {
	r.m.RLock()
	defer r.m.RUnlock()
	if team, ok := r.byID[id]; ok {
		return team.score
	}
	return 0
}

// AddScore adds the given delta to the team's score and returns the new score.
// The spectator team never accrues score.
func (r *TeamRegistry) AddScore(id messages.TeamID, delta int) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	team, ok := r.byID[id]
	if !ok {
		return 0, errors.Error{
			Code:    errors.ErrInternal,
			Kind:    errors.KindUnknownTeam,
			Message: fmt.Sprintf("unknown team: %s", id),
			Details: errors.Details{"team_id": id},
		}
	}
	if team.ID == messages.TeamSpectator {
		return 0, errors.Error{
			Code:    errors.ErrInternal,
			Kind:    errors.KindSpectatorTeam,
			Message: "spectator team cannot score",
		}
	}
	team.score += delta
	return team.score, nil
}

// Leading returns the scoring team with the highest score. Ties go to the team
// that was registered first.
func (r *TeamRegistry) Leading() *Team {
	r.m.RLock()
	defer r.m.RUnlock()
	var leading *Team
	for _, team := range r.ordered {
		if leading == nil || team.score > leading.score {
			leading = team
		}
	}
	return leading
}
