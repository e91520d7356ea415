package app

import (
	"context"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lowpolygames/skirmish-server/errors"
	"github.com/lowpolygames/skirmish-server/games"
	"github.com/lowpolygames/skirmish-server/games/mode_capture_the_flag"
	"github.com/lowpolygames/skirmish-server/games/mode_team_deathmatch"
	"github.com/lowpolygames/skirmish-server/gateway"
	"github.com/lowpolygames/skirmish-server/logging"
	"github.com/lowpolygames/skirmish-server/messages"
	"github.com/lowpolygames/skirmish-server/mqttbridge"
	"github.com/lowpolygames/skirmish-server/web_server"
	"github.com/lowpolygames/skirmish-server/ws"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
)

// App is a complete skirmish server instance.
type App struct {
	// config is the main config used for the App.
	config Config
	// webServer is used for http requests and websocket connections.
	webServer *web_server.WebServer
	// wsHub is the hub for websocket connections.
	wsHub *ws.Hub
	// gateway is the session layer between clients and the match.
	gateway *gateway.Gateway
	// match is the authoritative match controller.
	match games.Match
	// mqttBridge is used for publishing match events to a MQTT-server.
	mqttBridge mqttbridge.Bridge
}

func NewApp(config Config) *App {
	return &App{
		config: config,
	}
}

// Boot sets everything up based on the set config and boots.
func (app *App) Boot(ctx context.Context) error {
	// Validate config.
	err := ValidateConfig(app.config)
	if err != nil {
		return errors.Error{
			Code:    errors.ErrFatal,
			Err:     err,
			Message: "invalid config",
		}
	}
	// Setup logger.
	logger := setupLogging(app.config.Log)
	logging.ApplyToGlobalLoggers(logger)
	defer func() {
		_ = logger.Sync()
	}()
	// Boot.
	err = app.boot(ctx)
	if err != nil {
		err = errors.Wrap(err, "boot", nil)
		errors.Log(logging.AppLogger, err)
		return err
	}
	return nil
}

func (app *App) boot(ctx context.Context) error {
	logging.AppLogger.Warn("booting up")
	clock := clockwork.NewRealClock()
	// Create gateway. It supplies player positions, so the match needs it first.
	app.gateway = gateway.NewGateway(app.config.Game.TickInterval(), clock)
	// Create match.
	match, err := createMatch(app.config.Game, app.gateway, clock)
	if err != nil {
		return errors.Wrap(err, "create match", nil)
	}
	app.match = match
	app.gateway.SetMatch(match)
	// Create MQTT bridge if address is provided.
	if app.config.MQTTAddr.Valid {
		app.mqttBridge = mqttbridge.NewBridge(mqttbridge.Config{MQTTAddr: app.config.MQTTAddr.String})
		app.gateway.AddEventSink(app.mqttBridge)
	}
	// Create websocket hub.
	app.wsHub = ws.NewHub(app.gateway)
	// Create web server.
	webServer, err := web_server.NewWebServer(web_server.Config{
		ServeAddr:    app.config.ServeAddrOrDefault(),
		WriteTimeout: web_server.DefaultWriteTimeout,
		ReadTimeout:  web_server.DefaultReadTimeout,
	})
	if err != nil {
		return errors.Wrap(err, "create web server", nil)
	}
	app.webServer = webServer
	logging.AppLogger.Debug("setup completed. booting...")
	// Boot everything.
	wg, lifetime := errgroup.WithContext(ctx)
	wg.Go(func() error {
		app.wsHub.Run(lifetime)
		return nil
	})
	wg.Go(func() error {
		app.gateway.Run(lifetime)
		return nil
	})
	if app.mqttBridge != nil {
		wg.Go(func() error {
			if err := app.mqttBridge.Run(lifetime); err != nil && lifetime.Err() == nil {
				return errors.Wrap(err, "run mqtt bridge", nil)
			}
			return nil
		})
	}
	app.webServer.PopulateRoutes(app.wsHub, app.gateway, lifetime)
	wg.Go(func() error {
		if err := app.webServer.Run(lifetime); err != nil {
			return errors.Wrap(err, "run web server", nil)
		}
		return nil
	})
	logging.AppLogger.Warn("completed issuing boot commands")
	// Wait for exit.
	<-lifetime.Done()
	logging.AppLogger.Warn("shutting down")
	app.match.ShutDown()
	return wg.Wait()
}

// createMatch creates the match controller for the configured game mode.
func createMatch(config GameConfig, positions games.PositionProvider,
	clock clockwork.Clock) (games.Match, error) {
	switch config.Mode {
	case messages.GameModeTeamDeathmatch:
		matchConfig := mode_team_deathmatch.Config{
			Teams:        config.Teams,
			JoinTeam:     config.JoinTeam,
			TickInterval: config.TickInterval(),
		}
		if config.LivesPerPlayer.Valid {
			matchConfig.LivesPerPlayer = config.LivesPerPlayer.Int
		}
		return mode_team_deathmatch.NewMatch(matchConfig, clock)
	case messages.GameModeCaptureTheFlag:
		matchConfig := mode_capture_the_flag.Config{
			Teams:        config.Teams,
			JoinTeam:     config.JoinTeam,
			TickInterval: config.TickInterval(),
		}
		if config.PickupRadius.Valid {
			matchConfig.PickupRadius = config.PickupRadius.Float64
		}
		if config.CaptureRadius.Valid {
			matchConfig.CaptureRadius = config.CaptureRadius.Float64
		}
		if config.TakeCooldownMS.Valid {
			matchConfig.TakeCooldown = time.Duration(config.TakeCooldownMS.Int) * time.Millisecond
		}
		if config.DroppedPickupCooldownMS.Valid {
			matchConfig.DroppedPickupCooldown = time.Duration(config.DroppedPickupCooldownMS.Int) * time.Millisecond
		}
		if config.AutoReturnAfterMS.Valid {
			matchConfig.AutoReturnAfter = time.Duration(config.AutoReturnAfterMS.Int) * time.Millisecond
		}
		return mode_capture_the_flag.NewMatch(matchConfig, positions, clock)
	}
	return nil, errors.NewInvalidMatchConfigError("unknown game mode",
		errors.Details{"game_mode": config.Mode})
}

// setupLogging builds the zap.Logger from the given LogConfig.
func setupLogging(config LogConfig) *zap.Logger {
	encConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	cores := make([]zapcore.Core, 0)
	// Setup stdout logger with colorful level output.
	stdOutEncConfig := encConfig
	stdOutEncConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores = append(cores, zapcore.NewCore(
		zapcore.NewConsoleEncoder(stdOutEncConfig),
		zapcore.Lock(os.Stdout),
		zap.LevelEnablerFunc(func(level zapcore.Level) bool {
			return level >= config.StdoutLogLevel
		})))
	// Setup error logger.
	cores = append(cores, zapcore.NewCore(
		zapcore.NewConsoleEncoder(encConfig),
		zapcore.Lock(os.Stderr),
		zap.LevelEnablerFunc(func(level zapcore.Level) bool {
			return level >= zap.ErrorLevel
		})))
	// Setup high priority logger.
	if config.HighPriorityOutput.Valid {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename: config.HighPriorityOutput.String,
				MaxSize:  config.MaxSize,
				MaxAge:   config.KeepDays,
			}),
			zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level >= zap.WarnLevel
			})))
	}
	// Setup debug logger.
	if config.DebugOutput.Valid {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename: config.DebugOutput.String,
				MaxSize:  config.MaxSize,
				MaxAge:   config.KeepDays,
			}),
			zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level >= zap.DebugLevel
			})))
	}
	// Combine.
	return zap.New(zapcore.NewTee(cores...))
}
