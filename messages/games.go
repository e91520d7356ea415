package messages

import (
	"time"

	"github.com/lowpolygames/skirmish-server/world"
)

// GameMode is the type of game mode.
type GameMode string

// Game modes.
const (
	// GameModeTeamDeathmatch is the classic deathmatch where each player has a
	// limited amount of lives and the last team surviving wins.
	GameModeTeamDeathmatch GameMode = "team-deathmatch"
	// GameModeCaptureTheFlag is the mode where each team owns a flag that must be
	// taken from the enemy base and carried home in order to score.
	GameModeCaptureTheFlag GameMode = "capture-the-flag"
)

// MatchPhase is a fixed phase type for being used in matches.
type MatchPhase string

const (
	// MatchPhaseInit is used while the match is initializing like setting up
	// configs.
	MatchPhaseInit MatchPhase = "init"
	// MatchPhaseRunning is used while the match is running.
	MatchPhaseRunning MatchPhase = "running"
	// MatchPhaseEnd is used when a match has ended.
	MatchPhaseEnd MatchPhase = "end"
)

// Game message types.
const (
	// MessageTypeRequestAction is received when a player attempts a flag
	// interaction (take, capture or return). The server resolves which one based
	// on current state. Used with MessageRequestAction.
	MessageTypeRequestAction MessageType = "request-action"
	// MessageTypeTeamSwitch is received when a player wants to switch to another
	// team. Used with MessageTeamSwitch.
	MessageTypeTeamSwitch MessageType = "team-switch"
	// MessageTypeReportDeath is received when a client reports that its player
	// died. The contained killer is advisory and verified server-side. Used with
	// MessageReportDeath.
	MessageTypeReportDeath MessageType = "report-death"
	// MessageTypePositionUpdate is received when a client reports the current
	// position of its player. Used with MessagePositionUpdate.
	MessageTypePositionUpdate MessageType = "position-update"
	// MessageTypeMatchStatus is sent with MessageMatchStatus whenever match state
	// changes.
	MessageTypeMatchStatus MessageType = "match-status"
	// MessageTypeNotification is sent with MessageNotification for human-readable
	// match events.
	MessageTypeNotification MessageType = "notification"
	// MessageTypeScoreUpdate is sent with MessageScoreUpdate when a team's score
	// changed.
	MessageTypeScoreUpdate MessageType = "score-update"
)

// MessageRequestAction is used with MessageTypeRequestAction.
type MessageRequestAction struct {
	// Position is the client-reported position at the time of the attempt. It is
	// advisory input to the distance guards.
	Position world.Point3 `json:"position"`
}

// MessageTeamSwitch is used with MessageTypeTeamSwitch.
type MessageTeamSwitch struct {
	// Team is the team the player wants to switch to.
	Team TeamID `json:"team"`
}

// MessageReportDeath is used with MessageTypeReportDeath.
type MessageReportDeath struct {
	// Killer is the player the client claims to be responsible. May be empty and
	// is always corroborated server-side before any score is awarded.
	Killer PlayerID `json:"killer,omitempty"`
	// Position is the position the player died at.
	Position world.Point3 `json:"position"`
}

// MessagePositionUpdate is used with MessageTypePositionUpdate.
type MessagePositionUpdate struct {
	// Position is the current position of the player.
	Position world.Point3 `json:"position"`
}

// MessageNotification is used with MessageTypeNotification.
type MessageNotification struct {
	// Text is the human-readable notification text.
	Text string `json:"text"`
}

// MessageScoreUpdate is used with MessageTypeScoreUpdate.
type MessageScoreUpdate struct {
	// Team is the team whose score changed.
	Team TeamID `json:"team"`
	// Score is the new score of the team.
	Score int `json:"score"`
}

// FlagStatusView is the wire representation of a flag's status.
type FlagStatusView string

// FlagView is the wire representation of a flag in MessageMatchStatus.
type FlagView struct {
	// Status is the current status of the flag.
	Status FlagStatusView `json:"status"`
	// Position is the current position of the flag.
	Position world.Point3 `json:"position"`
	// Carrier is the player currently carrying the flag or empty.
	Carrier PlayerID `json:"carrier,omitempty"`
}

// PlayerView is the wire representation of a player in TeamView.
type PlayerView struct {
	// ID identifies the player.
	ID PlayerID `json:"id"`
	// Name is the display name of the player.
	Name string `json:"name,omitempty"`
	// Lives is the remaining life count. Only used in team deathmatch.
	Lives int `json:"lives,omitempty"`
}

// TeamView is the wire representation of a team in MessageMatchStatus.
type TeamView struct {
	// ID identifies the team.
	ID TeamID `json:"id"`
	// Name is the display name of the team.
	Name string `json:"name"`
	// Base is the base position of the team.
	Base world.Point3 `json:"base"`
	// FlagColor is the color of the team's flag.
	FlagColor world.RGB `json:"flag_color"`
	// Score is the current score of the team.
	Score int `json:"score"`
	// Flag is the team's flag. Not set in modes without flags.
	Flag *FlagView `json:"flag,omitempty"`
	// Players are the players currently assigned to the team.
	Players []PlayerView `json:"players"`
}

// MessageMatchStatus is used with MessageTypeMatchStatus. It holds the full
// observable match state for distribution to clients.
type MessageMatchStatus struct {
	// Match is the id of the match.
	Match MatchID `json:"match"`
	// GameMode is the mode the match uses.
	GameMode GameMode `json:"game_mode"`
	// MatchPhase is the phase the match is currently in.
	MatchPhase MatchPhase `json:"match_phase"`
	// Start is the start timestamp of the match.
	Start time.Time `json:"start"`
	// Teams are the non-spectator teams with their flags and players.
	Teams []TeamView `json:"teams"`
}
