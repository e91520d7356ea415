package mode_team_deathmatch

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lowpolygames/skirmish-server/errors"
	"github.com/lowpolygames/skirmish-server/games"
	"github.com/lowpolygames/skirmish-server/logging"
	"github.com/lowpolygames/skirmish-server/messages"
	"go.uber.org/zap"
)

// Match is the authoritative team-deathmatch match controller. Players own a
// fixed amount of lives; each corroborated death costs one and credits the
// killer's team. A team whose players are all eliminated loses the match. All
// public operations are serialized by one match lock.
type Match struct {
	// id identifies the match.
	id messages.MatchID
	// config is the validated match configuration.
	config Config
	// clock supplies the current time.
	clock clockwork.Clock
	// teams holds the fixed team metadata and the score counters.
	teams *games.TeamRegistry
	// assignments maps active players to their teams.
	assignments *games.PlayerAssignments
	// lives holds the remaining lives per active player. Players on a scoring
	// team with zero remaining lives are eliminated.
	lives map[messages.PlayerID]int
	// kills holds the corroborated kill count per active player.
	kills map[messages.PlayerID]int
	// phase is the current match phase.
	phase messages.MatchPhase
	// start is the start timestamp of the match.
	start time.Time
	// m serializes all match operations.
	m sync.Mutex
	// isShutDown is set once ShutDown was called. All further operations are
	// no-ops.
	isShutDown bool
}

// NewMatch creates a Match from the given Config. Zero config fields are filled
// with defaults. Malformed configuration is fatal: the match refuses to start
// instead of running partially initialized.
func NewMatch(config Config, clock clockwork.Clock) (*Match, error) {
	config = config.applyDefaults()
	if err := ValidateConfig(config); err != nil {
		return nil, errors.Wrap(err, "validate config", nil)
	}
	teams, err := games.NewTeamRegistry(config.Teams...)
	if err != nil {
		return nil, errors.Wrap(err, "create team registry", nil)
	}
	match := &Match{
		id:          messages.MatchID(uuid.NewString()),
		config:      config,
		clock:       clock,
		teams:       teams,
		assignments: games.NewPlayerAssignments(config.JoinTeam, nil),
		lives:       make(map[messages.PlayerID]int),
		kills:       make(map[messages.PlayerID]int),
		phase:       messages.MatchPhaseRunning,
		start:       clock.Now(),
	}
	logging.GamesLogger.Info("team-deathmatch match created",
		zap.String("match_id", string(match.id)),
		zap.Int("lives_per_player", config.LivesPerPlayer))
	return match, nil
}

// ID identifies the match.
func (match *Match) ID() messages.MatchID {
	return match.id
}

// Mode returns messages.GameModeTeamDeathmatch.
func (match *Match) Mode() messages.GameMode {
	return messages.GameModeTeamDeathmatch
}

// TickInterval is the period Tick is meant to be invoked with.
func (match *Match) TickInterval() time.Duration {
	return match.config.TickInterval
}

// OnPlayerJoin assigns the configured default team to the given player and
// grants the configured lives.
func (match *Match) OnPlayerJoin(player messages.PlayerID) []games.Event {
	match.m.Lock()
	defer match.m.Unlock()
	if match.isShutDown || match.phase == messages.MatchPhaseEnd {
		return nil
	}
	team, ok := match.assignments.Join(player)
	if !ok {
		// Already joined.
		return nil
	}
	match.lives[player] = match.config.LivesPerPlayer
	return []games.Event{{
		Kind:         games.EventPlayerJoined,
		Team:         team,
		Player:       player,
		Notification: fmt.Sprintf("A player joined the %s.", match.teamName(team)),
	}}
}

// OnPlayerTeamSwitch reassigns the player's team. Remaining lives and kill
// credit travel with the player.
func (match *Match) OnPlayerTeamSwitch(player messages.PlayerID, team messages.TeamID) []games.Event {
	match.m.Lock()
	defer match.m.Unlock()
	if match.isShutDown || match.phase == messages.MatchPhaseEnd {
		return nil
	}
	if _, ok := match.teams.ByID(team); !ok {
		return nil
	}
	if !match.assignments.SwitchTeam(player, team) {
		return nil
	}
	return []games.Event{{
		Kind:         games.EventTeamSwitched,
		Team:         team,
		Player:       player,
		Notification: fmt.Sprintf("A player switched to the %s.", match.teamName(team)),
	}}
}

// RequestAction has no meaning in team-deathmatch as there is no objective to
// interact with.
func (match *Match) RequestAction(_ messages.PlayerID) []games.Event {
	return nil
}

// OnReportDeath handles a client-reported death. The victim loses a life in any
// case. The claimed killer is only credited when the claim is corroborated: the
// killer must be an active player on the opposing scoring team who is not
// eliminated himself. Corroborated kills score a point for the killer's team.
// Running out of lives eliminates the victim; a fully eliminated team loses the
// match.
func (match *Match) OnReportDeath(victim messages.PlayerID, claimedKiller messages.PlayerID) []games.Event {
	match.m.Lock()
	defer match.m.Unlock()
	if match.isShutDown || match.phase == messages.MatchPhaseEnd {
		return nil
	}
	victimTeam, ok := match.assignments.TeamOf(victim)
	if !ok || victimTeam == messages.TeamSpectator {
		return nil
	}
	if match.lives[victim] <= 0 {
		// Already eliminated.
		return nil
	}
	match.lives[victim]--
	var events []games.Event
	if killerTeam, ok := match.corroborateKiller(claimedKiller, victimTeam); ok {
		match.kills[claimedKiller]++
		newScore, err := match.teams.AddScore(killerTeam, 1)
		if err != nil {
			errors.Log(logging.GamesLogger, errors.Wrap(err, "add kill score", nil))
		} else {
			events = append(events, games.Event{
				Kind:         games.EventScoreChanged,
				Team:         killerTeam,
				Player:       claimedKiller,
				Score:        newScore,
				Notification: fmt.Sprintf("The %s scored a kill.", match.teamName(killerTeam)),
			})
		}
	}
	if match.lives[victim] == 0 {
		events = append(events, games.Event{
			Kind:         games.EventPlayerEliminated,
			Team:         victimTeam,
			Player:       victim,
			Notification: fmt.Sprintf("A player of the %s was eliminated!", match.teamName(victimTeam)),
		})
		events = append(events, match.checkTeamEliminated(victimTeam)...)
	}
	return events
}

// OnPlayerDisconnect removes the player from the match together with his lives
// and kill credit. If the leavers were the last breathing players of their
// team, the match ends.
func (match *Match) OnPlayerDisconnect(player messages.PlayerID) []games.Event {
	match.m.Lock()
	defer match.m.Unlock()
	if match.isShutDown {
		return nil
	}
	team, ok := match.assignments.Remove(player)
	if !ok {
		return nil
	}
	delete(match.lives, player)
	delete(match.kills, player)
	events := []games.Event{{
		Kind:         games.EventPlayerLeft,
		Team:         team,
		Player:       player,
		Notification: fmt.Sprintf("A player left the %s.", match.teamName(team)),
	}}
	if match.phase == messages.MatchPhaseRunning {
		events = append(events, match.checkTeamEliminated(team)...)
	}
	return events
}

// Tick is a no-op: team-deathmatch has no time-driven transitions.
func (match *Match) Tick() []games.Event {
	return nil
}

// Status produces an immutable view of all non-spectator teams with their
// players and remaining lives.
func (match *Match) Status() messages.MessageMatchStatus {
	match.m.Lock()
	defer match.m.Unlock()
	teams := match.teams.ScoringTeams()
	teamViews := make([]messages.TeamView, 0, len(teams))
	for _, team := range teams {
		teamViews = append(teamViews, messages.TeamView{
			ID:        team.ID,
			Name:      team.Name,
			Base:      team.Base,
			FlagColor: team.FlagColor,
			Score:     match.teams.Score(team.ID),
			Players:   match.playerViews(team.ID),
		})
	}
	return messages.MessageMatchStatus{
		Match:      match.id,
		GameMode:   messages.GameModeTeamDeathmatch,
		MatchPhase: match.phase,
		Start:      match.start,
		Teams:      teamViews,
	}
}

// LeadingTeam returns the id of the scoring team currently in the lead. Ties
// go to the first registered team.
func (match *Match) LeadingTeam() messages.TeamID {
	return match.teams.Leading().ID
}

// ShutDown ends the match; all further operations are no-ops.
func (match *Match) ShutDown() {
	match.m.Lock()
	defer match.m.Unlock()
	if match.isShutDown {
		return
	}
	match.isShutDown = true
	match.phase = messages.MatchPhaseEnd
	logging.GamesLogger.Info("team-deathmatch match shut down", zap.String("match_id", string(match.id)))
}

// corroborateKiller checks whether the claimed killer may be credited for a
// kill of a player on the given victim team.
func (match *Match) corroborateKiller(claimedKiller messages.PlayerID,
	victimTeam messages.TeamID) (messages.TeamID, bool) {
	if claimedKiller == messages.PlayerNone {
		return "", false
	}
	killerTeam, ok := match.assignments.TeamOf(claimedKiller)
	if !ok {
		return "", false
	}
	opposing, err := match.teams.Opposing(victimTeam)
	if err != nil || killerTeam != opposing.ID {
		return "", false
	}
	if match.lives[claimedKiller] <= 0 {
		// Eliminated players do not shoot.
		return "", false
	}
	return killerTeam, true
}

// checkTeamEliminated ends the match if all players of the given team are
// eliminated. Teams without any players never lose this way.
func (match *Match) checkTeamEliminated(team messages.TeamID) []games.Event {
	players := match.assignments.PlayersInTeam(team)
	if len(players) == 0 {
		return nil
	}
	for _, player := range players {
		if match.lives[player.Player] > 0 {
			return nil
		}
	}
	winner, err := match.teams.Opposing(team)
	if err != nil {
		return nil
	}
	match.phase = messages.MatchPhaseEnd
	logging.GamesLogger.Info("team-deathmatch match ended",
		zap.String("match_id", string(match.id)),
		zap.String("winner", string(winner.ID)))
	return []games.Event{{
		Kind:         games.EventMatchEnded,
		Team:         winner.ID,
		Notification: fmt.Sprintf("The %s won the match!", winner.Name),
	}}
}

// teamName returns the display name for notifications.
func (match *Match) teamName(id messages.TeamID) string {
	if team, ok := match.teams.ByID(id); ok {
		return team.Name
	}
	return string(id)
}

// playerViews converts the team's players to sorted wire views including their
// remaining lives.
func (match *Match) playerViews(team messages.TeamID) []messages.PlayerView {
	players := match.assignments.PlayersInTeam(team)
	sort.Slice(players, func(i, j int) bool {
		return players[i].Player < players[j].Player
	})
	views := make([]messages.PlayerView, 0, len(players))
	for _, player := range players {
		views = append(views, messages.PlayerView{ID: player.Player, Lives: match.lives[player.Player]})
	}
	return views
}
