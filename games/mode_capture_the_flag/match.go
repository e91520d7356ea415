package mode_capture_the_flag

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lowpolygames/skirmish-server/errors"
	"github.com/lowpolygames/skirmish-server/games"
	"github.com/lowpolygames/skirmish-server/logging"
	"github.com/lowpolygames/skirmish-server/messages"
	"github.com/lowpolygames/skirmish-server/world"
	"go.uber.org/zap"
)

// Match is the authoritative capture-the-flag match controller. It owns the
// team registry, the player assignments and both flags. All public operations
// are serialized by one match lock, so no two of them ever observe or mutate a
// flag concurrently. The clock is injected: cooldowns and auto-return deadlines
// are data on that clock, not execution timeouts.
type Match struct {
	// id identifies the match.
	id messages.MatchID
	// config is the validated match configuration.
	config Config
	// clock supplies the current time for all deadline stamps.
	clock clockwork.Clock
	// teams holds the fixed team metadata and the score counters.
	teams *games.TeamRegistry
	// assignments maps active players to their teams.
	assignments *games.PlayerAssignments
	// flags holds the flag for each scoring team.
	flags map[messages.TeamID]*Flag
	// positions supplies advisory last-known player positions.
	positions games.PositionProvider
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
func NewMatch(config Config, positions games.PositionProvider, clock clockwork.Clock) (*Match, error) {
	config = config.applyDefaults()
	if err := ValidateConfig(config); err != nil {
		return nil, errors.Wrap(err, "validate config", nil)
	}
	teams, err := games.NewTeamRegistry(config.Teams...)
	if err != nil {
		return nil, errors.Wrap(err, "create team registry", nil)
	}
	flags := make(map[messages.TeamID]*Flag, 2)
	for _, team := range teams.ScoringTeams() {
		flags[team.ID] = newFlag(team.ID, team.Base)
	}
	match := &Match{
		id:          messages.MatchID(uuid.NewString()),
		config:      config,
		clock:       clock,
		teams:       teams,
		assignments: games.NewPlayerAssignments(config.JoinTeam, nil),
		flags:       flags,
		positions:   positions,
		phase:       messages.MatchPhaseRunning,
		start:       clock.Now(),
	}
	logging.GamesLogger.Info("capture-the-flag match created",
		zap.String("match_id", string(match.id)),
		zap.String("join_team", string(config.JoinTeam)))
	return match, nil
}

// ID identifies the match.
func (match *Match) ID() messages.MatchID {
	return match.id
}

// Mode returns messages.GameModeCaptureTheFlag.
func (match *Match) Mode() messages.GameMode {
	return messages.GameModeCaptureTheFlag
}

// TickInterval is the period Tick is meant to be invoked with.
func (match *Match) TickInterval() time.Duration {
	return match.config.TickInterval
}

// OnPlayerJoin assigns the configured default team to the given player.
func (match *Match) OnPlayerJoin(player messages.PlayerID) []games.Event {
	match.m.Lock()
	defer match.m.Unlock()
	if match.isShutDown {
		return nil
	}
	team, ok := match.assignments.Join(player)
	if !ok {
		// Already joined.
		return nil
	}
	return []games.Event{{
		Kind:         games.EventPlayerJoined,
		Team:         team,
		Player:       player,
		Notification: fmt.Sprintf("A player joined the %s.", match.teamName(team)),
	}}
}

// OnPlayerTeamSwitch reassigns the player's team. There is no immediate flag
// effect: a carried flag stays bound until the carrier dies, disconnects or
// captures.
func (match *Match) OnPlayerTeamSwitch(player messages.PlayerID, team messages.TeamID) []games.Event {
	match.m.Lock()
	defer match.m.Unlock()
	if match.isShutDown {
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

// RequestAction is the single entry point for flag interaction attempts. The
// take, capture and return branches are mutually exclusive and evaluated in
// that priority order, so a single call applies at most one transition per
// flag. All guards fail closed: an ineligible attempt yields no events. Rapid
// repeated calls are safe because re-triggering is suppressed by the flag
// cooldown alone.
func (match *Match) RequestAction(player messages.PlayerID) []games.Event {
	match.m.Lock()
	defer match.m.Unlock()
	if match.isShutDown {
		return nil
	}
	team, ok := match.assignments.TeamOf(player)
	if !ok || team == messages.TeamSpectator {
		return nil
	}
	position, ok := match.positions.PlayerPosition(player)
	if !ok {
		// Without a known position no distance guard can pass.
		return nil
	}
	ownTeam, ok := match.teams.ByID(team)
	if !ok {
		return nil
	}
	enemyTeam, err := match.teams.Opposing(team)
	if err != nil {
		return nil
	}
	now := match.clock.Now()
	enemyFlag := match.flags[enemyTeam.ID]
	ownFlag := match.flags[team]
	// Take: the enemy flag is up for grabs within pickup range.
	if enemyFlag.canBeTakenAt(now) && position.WithinRadius(enemyFlag.position, match.config.PickupRadius) {
		enemyFlag.take(player, now, match.config.TakeCooldown)
		return []games.Event{{
			Kind:         games.EventFlagTaken,
			Team:         enemyTeam.ID,
			Player:       player,
			Notification: fmt.Sprintf("The %s flag was taken!", enemyTeam.Name),
		}}
	}
	// Capture: the player carries the enemy flag, stands at the own base and the
	// own flag rests at home.
	if enemyFlag.status == FlagStatusTaken && enemyFlag.carrier == player &&
		ownFlag.status == FlagStatusAtBase &&
		position.WithinRadius(ownTeam.Base, match.config.CaptureRadius) {
		newScore, err := match.teams.AddScore(team, 1)
		if err != nil {
			errors.Log(logging.GamesLogger, errors.Wrap(err, "add capture score", nil))
			return nil
		}
		enemyFlag.status = FlagStatusCaptured
		events := []games.Event{
			{
				Kind:         games.EventFlagCaptured,
				Team:         enemyTeam.ID,
				Player:       player,
				Notification: fmt.Sprintf("The %s captured the %s flag!", ownTeam.Name, enemyTeam.Name),
			},
			{
				Kind:         games.EventScoreChanged,
				Team:         team,
				Score:        newScore,
				Notification: match.scoreNotification(),
			},
		}
		enemyFlag.returnHome()
		return events
	}
	// Return: the own flag lies dropped within pickup range.
	if ownFlag.status == FlagStatusDropped && position.WithinRadius(ownFlag.position, match.config.PickupRadius) {
		ownFlag.status = FlagStatusReturning
		ownFlag.returnHome()
		return []games.Event{{
			Kind:         games.EventFlagReturned,
			Team:         team,
			Player:       player,
			Notification: fmt.Sprintf("The %s flag was returned to its base.", ownTeam.Name),
		}}
	}
	return nil
}

// OnReportDeath handles a client-reported death. If the victim carries a flag,
// the flag assumes the transient carrier-died status at the victim's last-known
// position and is converted to dropped by the next Tick. The claimed killer is
// irrelevant in capture-the-flag and ignored.
func (match *Match) OnReportDeath(victim messages.PlayerID, _ messages.PlayerID) []games.Event {
	match.m.Lock()
	defer match.m.Unlock()
	if match.isShutDown {
		return nil
	}
	if !match.assignments.IsActive(victim) {
		return nil
	}
	flag, ok := match.carriedFlag(victim)
	if !ok {
		return nil
	}
	flag.markCarrierDied(match.lastKnownPosition(victim, flag.position))
	return nil
}

// OnPlayerDisconnect removes the player from the match. A carried flag is
// dropped immediately at its last known position: this also recovers states
// where no death report was ever received for the carrier.
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
	events := []games.Event{{
		Kind:         games.EventPlayerLeft,
		Team:         team,
		Player:       player,
		Notification: fmt.Sprintf("A player left the %s.", match.teamName(team)),
	}}
	if flag, carried := match.carriedFlag(player); carried {
		now := match.clock.Now()
		flag.drop(match.lastKnownPosition(player, flag.position), now,
			match.config.DroppedPickupCooldown, match.config.AutoReturnAfter)
		owner, _ := match.teams.ByID(flag.team)
		events = append(events, games.Event{
			Kind:         games.EventFlagDropped,
			Team:         flag.team,
			Player:       player,
			Notification: fmt.Sprintf("The %s flag was dropped!", owner.Name),
		})
	}
	return events
}

// Tick applies all time-driven transitions: transient carrier-died statuses
// are converted to dropped and auto-return deadlines are enforced. Tick is pure
// time-driven and requires no player input.
func (match *Match) Tick() []games.Event {
	match.m.Lock()
	defer match.m.Unlock()
	if match.isShutDown {
		return nil
	}
	now := match.clock.Now()
	var events []games.Event
	for _, team := range match.teams.ScoringTeams() {
		flag := match.flags[team.ID]
		switch flag.status {
		case FlagStatusCarrierDied:
			flag.drop(flag.position, now, match.config.DroppedPickupCooldown, match.config.AutoReturnAfter)
			events = append(events, games.Event{
				Kind:         games.EventFlagDropped,
				Team:         flag.team,
				Notification: fmt.Sprintf("The %s flag was dropped!", team.Name),
			})
		case FlagStatusDropped:
			if now.After(flag.autoReturnUntil) {
				flag.status = FlagStatusReturning
				flag.returnHome()
				events = append(events, games.Event{
					Kind:         games.EventFlagReturned,
					Team:         flag.team,
					Notification: fmt.Sprintf("The %s flag returned to its base.", team.Name),
				})
			}
		}
	}
	return events
}

// Status produces an immutable view of all non-spectator teams with their
// flags for distribution to observers.
func (match *Match) Status() messages.MessageMatchStatus {
	match.m.Lock()
	defer match.m.Unlock()
	teams := match.teams.ScoringTeams()
	teamViews := make([]messages.TeamView, 0, len(teams))
	for _, team := range teams {
		var flagView *messages.FlagView
		if flag, ok := match.flags[team.ID]; ok {
			flagView = &messages.FlagView{
				Status:   messages.FlagStatusView(flag.status),
				Position: flag.position,
				Carrier:  flag.carrier,
			}
			if flag.status == FlagStatusTaken {
				// Observers see the flag where its carrier was last known to be.
				if carrierPosition, ok := match.positions.PlayerPosition(flag.carrier); ok {
					flagView.Position = carrierPosition
				}
			}
		}
		teamViews = append(teamViews, messages.TeamView{
			ID:        team.ID,
			Name:      team.Name,
			Base:      team.Base,
			FlagColor: team.FlagColor,
			Score:     match.teams.Score(team.ID),
			Flag:      flagView,
			Players:   playerViews(match.assignments.PlayersInTeam(team.ID)),
		})
	}
	return messages.MessageMatchStatus{
		Match:      match.id,
		GameMode:   messages.GameModeCaptureTheFlag,
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

// ShutDown ends the match. Both flags are destroyed together with the match;
// all further operations are no-ops.
func (match *Match) ShutDown() {
	match.m.Lock()
	defer match.m.Unlock()
	if match.isShutDown {
		return
	}
	match.isShutDown = true
	match.phase = messages.MatchPhaseEnd
	match.flags = make(map[messages.TeamID]*Flag)
	logging.GamesLogger.Info("capture-the-flag match shut down", zap.String("match_id", string(match.id)))
}

// carriedFlag returns the flag the given player currently carries.
func (match *Match) carriedFlag(player messages.PlayerID) (*Flag, bool) {
	for _, flag := range match.flags {
		if flag.status == FlagStatusTaken && flag.carrier == player {
			return flag, true
		}
	}
	return nil, false
}

// lastKnownPosition returns the advisory last-known position of the given
// player or the fallback if none is known.
func (match *Match) lastKnownPosition(player messages.PlayerID, fallback world.Point3) world.Point3 {
	if position, ok := match.positions.PlayerPosition(player); ok {
		return position
	}
	return fallback
}

// teamName returns the display name for notifications.
func (match *Match) teamName(id messages.TeamID) string {
	if team, ok := match.teams.ByID(id); ok {
		return team.Name
	}
	return string(id)
}

// scoreNotification builds the human-readable score line including the leading
// team.
func (match *Match) scoreNotification() string {
	teams := match.teams.ScoringTeams()
	leading := match.teams.Leading()
	parts := make([]string, 0, len(teams))
	for _, team := range teams {
		parts = append(parts, fmt.Sprintf("%s %d", team.Name, match.teams.Score(team.ID)))
	}
	return fmt.Sprintf("%s lead the match. %s.", leading.Name, strings.Join(parts, " : "))
}

// playerViews converts assigned players to sorted wire views. Sorting keeps
// snapshots deterministic.
func playerViews(players []games.AssignedPlayer) []messages.PlayerView {
	sort.Slice(players, func(i, j int) bool {
		return players[i].Player < players[j].Player
	})
	views := make([]messages.PlayerView, 0, len(players))
	for _, player := range players {
		views = append(views, messages.PlayerView{ID: player.Player})
	}
	return views
}
