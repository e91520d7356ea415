package logging

import "go.uber.org/zap"

// Loggers.
var (
	// AppLogger is the main app.App logger.
	AppLogger *zap.Logger
	// GamesLogger is the logger for package games and the game mode packages.
	GamesLogger *zap.Logger
	// GatewayLogger is the logger for the session gateway.
	GatewayLogger *zap.Logger
	// WebServerLogger is used for all stuff regarding web servers.
	WebServerLogger *zap.Logger
	// WSLogger is used for all stuff regarding websocket connections.
	WSLogger *zap.Logger
	// MQTTLogger is the logger for all MQTT stuff.
	MQTTLogger *zap.Logger
	// MQTTMessageLogger is the logger for incoming and outgoing MQTT messages.
	MQTTMessageLogger *zap.Logger
)

func init() {
	// Assure usable loggers even if ApplyToGlobalLoggers was not called yet, for
	// example in tests.
	ApplyToGlobalLoggers(zap.NewNop())
}

// ApplyToGlobalLoggers sets up all global loggers as named children of the
// given zap.Logger.
func ApplyToGlobalLoggers(logger *zap.Logger) {
	AppLogger = logger.Named("app")
	GamesLogger = logger.Named("games")
	GatewayLogger = logger.Named("gateway")
	WebServerLogger = logger.Named("web-server")
	WSLogger = logger.Named("ws")
	MQTTLogger = logger.Named("mqtt")
	MQTTMessageLogger = logger.Named("mqtt-message")
}
