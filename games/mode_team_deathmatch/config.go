package mode_team_deathmatch

import (
	"fmt"
	"time"

	"github.com/lowpolygames/skirmish-server/errors"
	"github.com/lowpolygames/skirmish-server/games"
	"github.com/lowpolygames/skirmish-server/messages"
)

// Defaults for zero Config fields.
const (
	// DefaultLivesPerPlayer is the default for Config.LivesPerPlayer.
	DefaultLivesPerPlayer = 3
	// DefaultTickInterval is the default for Config.TickInterval.
	DefaultTickInterval = 500 * time.Millisecond
)

// Config for a Match.
type Config struct {
	// Teams holds the definitions of the scoring teams.
	Teams []games.TeamDefinition `json:"teams"`
	// JoinTeam is the team newly joined players are assigned to. Defaults to the
	// spectator team.
	JoinTeam messages.TeamID `json:"join_team"`
	// LivesPerPlayer determines how many lives each player owns. Matchmaking
	// might increase lives for certain players in order to create a fair match.
	LivesPerPlayer int `json:"lives_per_player"`
	// TickInterval is the period time-driven transitions are applied with.
	TickInterval time.Duration `json:"tick_interval"`
}

// applyDefaults returns a copy of the Config with zero fields replaced by
// defaults.
func (config Config) applyDefaults() Config {
	if config.JoinTeam == "" {
		config.JoinTeam = messages.TeamSpectator
	}
	if config.LivesPerPlayer == 0 {
		config.LivesPerPlayer = DefaultLivesPerPlayer
	}
	if config.TickInterval == 0 {
		config.TickInterval = DefaultTickInterval
	}
	return config
}

// ValidateConfig assures that the given Config describes a playable match.
func ValidateConfig(config Config) error {
	if config.JoinTeam != messages.TeamSpectator {
		found := false
		for _, team := range config.Teams {
			if team.ID == config.JoinTeam {
				found = true
				break
			}
		}
		if !found {
			return errors.NewInvalidMatchConfigError(fmt.Sprintf("unknown join team: %s", config.JoinTeam),
				errors.Details{"join_team": config.JoinTeam})
		}
	}
	if config.LivesPerPlayer < 0 {
		return errors.NewInvalidMatchConfigError("lives per player must not be negative",
			errors.Details{"lives_per_player": config.LivesPerPlayer})
	}
	if config.TickInterval < 0 {
		return errors.NewInvalidMatchConfigError("tick interval must not be negative",
			errors.Details{"tick_interval": config.TickInterval})
	}
	return nil
}
