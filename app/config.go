package app

import (
	"fmt"
	"os"
	"time"

	"github.com/gobuffalo/nulls"
	"github.com/lowpolygames/skirmish-server/errors"
	"github.com/lowpolygames/skirmish-server/games"
	"github.com/lowpolygames/skirmish-server/games/mode_capture_the_flag"
	"github.com/lowpolygames/skirmish-server/games/mode_team_deathmatch"
	"github.com/lowpolygames/skirmish-server/messages"
	"github.com/lowpolygames/skirmish-server/util"
	"github.com/lowpolygames/skirmish-server/web_server"
	"go.uber.org/zap/zapcore"
)

// Config is the configuration needed in order to boot an App.
type Config struct {
	// Log is the configuration for logging.
	Log LogConfig `json:"log"`
	// ServeAddr is the address, the app will listen for connections on.
	ServeAddr string `json:"serve_addr"`
	// MQTTAddr is the address of an optional MQTT broker match events are
	// published to. No MQTT bridge is run when not set.
	MQTTAddr nulls.String `json:"mqtt_addr"`
	// Game is the configuration for the match to run.
	Game GameConfig `json:"game"`
}

// LogConfig is the configuration for logging used in Config.
type LogConfig struct {
	// StdoutLogLevel is the minimum level for log entries that are passed to
	// stdout.
	StdoutLogLevel zapcore.Level `json:"stdout_log_level"`
	// HighPriorityOutput is the filename for where to output log entries with high
	// priority.
	HighPriorityOutput nulls.String `json:"high_priority_output"`
	// DebugOutput is the filename for where to output debug log entries.
	DebugOutput nulls.String `json:"debug_output"`
	// MaxSize is the maximum size for log files in megabytes.
	MaxSize int `json:"max_size"`
	// KeepDays is the amount of days to keep log files.
	KeepDays int `json:"keep_days"`
}

// GameConfig describes the match the App runs. Optional fields fall back to
// the game mode's defaults.
type GameConfig struct {
	// Mode is the game mode to run.
	Mode messages.GameMode `json:"mode"`
	// Teams are the definitions of the scoring teams.
	Teams []games.TeamDefinition `json:"teams"`
	// JoinTeam is the team newly joined players are assigned to.
	JoinTeam messages.TeamID `json:"join_team"`
	// LivesPerPlayer is the amount of lives per player in team deathmatch.
	LivesPerPlayer nulls.Int `json:"lives_per_player"`
	// PickupRadius is the radius for flag pickup in capture-the-flag.
	PickupRadius nulls.Float64 `json:"pickup_radius"`
	// CaptureRadius is the radius around the own base for capturing.
	CaptureRadius nulls.Float64 `json:"capture_radius"`
	// TakeCooldownMS is the flag take cooldown in milliseconds.
	TakeCooldownMS nulls.Int `json:"take_cooldown_ms"`
	// DroppedPickupCooldownMS is the re-pickup cooldown for dropped flags in
	// milliseconds.
	DroppedPickupCooldownMS nulls.Int `json:"dropped_pickup_cooldown_ms"`
	// AutoReturnAfterMS is the auto-return deadline for dropped flags in
	// milliseconds.
	AutoReturnAfterMS nulls.Int `json:"auto_return_after_ms"`
	// TickIntervalMS is the match tick period in milliseconds.
	TickIntervalMS nulls.Int `json:"tick_interval_ms"`
}

// ServeAddrOrDefault returns the configured serve address or
// web_server.DefaultServeAddr when not set.
func (config Config) ServeAddrOrDefault() string {
	if config.ServeAddr == "" {
		return web_server.DefaultServeAddr
	}
	return config.ServeAddr
}

// TickInterval returns the configured tick period or the mode default.
func (config GameConfig) TickInterval() time.Duration {
	if config.TickIntervalMS.Valid && config.TickIntervalMS.Int > 0 {
		return time.Duration(config.TickIntervalMS.Int) * time.Millisecond
	}
	if config.Mode == messages.GameModeTeamDeathmatch {
		return mode_team_deathmatch.DefaultTickInterval
	}
	return mode_capture_the_flag.DefaultTickInterval
}

// ParseConfigFromFile reads the Config from the file at the given path.
func ParseConfigFromFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Error{
			Code:    errors.ErrFatal,
			Err:     err,
			Message: "read config file",
			Details: errors.Details{"path": path},
		}
	}
	var config Config
	if err := util.DecodeAsJSON(raw, &config); err != nil {
		return Config{}, errors.Wrap(err, "decode config file", errors.Details{"path": path})
	}
	return config, nil
}

// ValidateConfig assures that the given Config allows booting an App. An
// empty serve address is fine as Config.ServeAddrOrDefault covers it.
func ValidateConfig(config Config) error {
	switch config.Game.Mode {
	case messages.GameModeCaptureTheFlag, messages.GameModeTeamDeathmatch:
	default:
		return errors.NewInvalidMatchConfigError(fmt.Sprintf("unknown game mode: %s", config.Game.Mode),
			errors.Details{"game_mode": config.Game.Mode})
	}
	return nil
}
