// Package mqttbridge publishes match events to an MQTT broker so that arena
// hardware like scoreboards and light installations can react to them without
// speaking the websocket protocol.
package mqttbridge

import (
	"context"
	"fmt"
	"strconv"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/lowpolygames/skirmish-server/errors"
	"github.com/lowpolygames/skirmish-server/games"
	"github.com/lowpolygames/skirmish-server/logging"
	"go.uber.org/zap"
)

const mqttQOS = 0

// mqttBuffer is the size of the publish buffer. Events are dropped when the
// broker cannot keep up.
const mqttBuffer = 256

// Topics match events are published to.
const (
	// TopicNotifications receives the human-readable notification texts.
	TopicNotifications = "skirmish/notifications"
	// TopicScorePrefix is the prefix for per-team score topics.
	TopicScorePrefix = "skirmish/score/"
	// TopicMatchEnded receives the winning team id when the match ends.
	TopicMatchEnded = "skirmish/match-ended"
)

// Config is the config for the Bridge.
type Config struct {
	// MQTTAddr is the address where the MQTT-server is found.
	MQTTAddr string
}

// Bridge publishes match events to MQTT. Register it as event sink with the
// gateway and run it with Run.
type Bridge interface {
	// Run runs the Bridge. Never call it twice!
	Run(ctx context.Context) error
	// HandleEvents publishes the given match events.
	HandleEvents(events []games.Event)
}

type mqttMessage struct {
	topic   string
	payload string
}

// netBridge is the implementation of Bridge.
type netBridge struct {
	// config is the configuration to use for connecting.
	config Config
	// publish is the buffered channel of outgoing messages.
	publish chan mqttMessage
}

// NewBridge creates a new Bridge. Run it with Bridge.Run.
func NewBridge(config Config) Bridge {
	return &netBridge{
		config:  config,
		publish: make(chan mqttMessage, mqttBuffer),
	}
}

func (bridge *netBridge) Run(ctx context.Context) error {
	clientOptions := mqtt.NewClientOptions().AddBroker(bridge.config.MQTTAddr).
		SetClientID("skirmish-server")
	c := mqtt.NewClient(clientOptions)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return errors.Error{
			Code:    errors.ErrInternal,
			Err:     token.Error(),
			Message: "connect to mqtt",
			Details: errors.Details{"mqtt_addr": bridge.config.MQTTAddr},
		}
	}
	logging.MQTTLogger.Info("connected to mqtt server",
		zap.String("mqtt_addr", bridge.config.MQTTAddr))
	// Start message forwarding.
	go forwardMQTT(ctx, bridge.publish, c)
	// Wait for ctx finished.
	<-ctx.Done()
	// Wait a maximum of 5 seconds for finishing up.
	c.Disconnect(5000)
	return errors.NewContextAbortedError("run mqtt bridge")
}

// HandleEvents enqueues the publishable parts of the given events.
func (bridge *netBridge) HandleEvents(events []games.Event) {
	for _, event := range events {
		if event.Notification != "" {
			bridge.enqueue(mqttMessage{topic: TopicNotifications, payload: event.Notification})
		}
		switch event.Kind {
		case games.EventScoreChanged:
			bridge.enqueue(mqttMessage{
				topic:   fmt.Sprintf("%s%s", TopicScorePrefix, event.Team),
				payload: strconv.Itoa(event.Score),
			})
		case games.EventMatchEnded:
			bridge.enqueue(mqttMessage{topic: TopicMatchEnded, payload: string(event.Team)})
		}
	}
}

// enqueue passes the message to the publish channel. Messages are dropped when
// the buffer is full instead of stalling the caller.
func (bridge *netBridge) enqueue(message mqttMessage) {
	select {
	case bridge.publish <- message:
	default:
		logging.MQTTLogger.Warn("dropping mqtt message due to full publish buffer",
			zap.String("message_topic", message.topic))
	}
}

// forwardMQTT pumps messages from the given channel to the mqtt.Client.
func forwardMQTT(ctx context.Context, from chan mqttMessage, to mqtt.Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-from:
			logging.MQTTMessageLogger.Debug(message.payload,
				zap.String("message_topic", message.topic))
			token := to.Publish(message.topic, mqttQOS, false, message.payload)
			token.Wait()
			if err := token.Error(); err != nil {
				errors.Log(logging.MQTTLogger, errors.NewInternalErrorFromErr(err, "publish mqtt message",
					errors.Details{
						"message_topic":   message.topic,
						"message_payload": message.payload,
					}))
			}
		}
	}
}
