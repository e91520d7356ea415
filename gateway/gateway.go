// Package gateway is the session layer between connected clients and the
// authoritative match controller. It parses inbound message containers,
// forwards the contained intents to the match and distributes resulting events
// and state snapshots to all connected clients.
package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lowpolygames/skirmish-server/client"
	"github.com/lowpolygames/skirmish-server/errors"
	"github.com/lowpolygames/skirmish-server/games"
	"github.com/lowpolygames/skirmish-server/logging"
	"github.com/lowpolygames/skirmish-server/messages"
	"github.com/lowpolygames/skirmish-server/util"
	"github.com/lowpolygames/skirmish-server/world"
	"go.uber.org/zap"
)

// EventSink receives every event batch the Gateway distributes. Sinks must not
// block.
type EventSink interface {
	// HandleEvents is called with every non-empty event batch.
	HandleEvents(events []games.Event)
}

// session is the per-client state the Gateway keeps.
type session struct {
	// client is the connection the session belongs to.
	client *client.Client
	// m serializes message handling with departure and guards the fields
	// below.
	m sync.Mutex
	// departed is set once the session was removed. Handlers drop all
	// messages that were still buffered when the client disconnected.
	departed bool
	// player is the id assigned after a successful hello. PlayerNone until then.
	player messages.PlayerID
	// name is the display name from the hello message.
	name string
}

// Gateway accepts clients from the ws.Hub, speaks the message protocol with
// them and drives the match controller. It also records client-reported
// positions and therefore acts as the games.PositionProvider for the match.
// Run powers the periodic match tick.
type Gateway struct {
	// match is the controller all intents are forwarded to.
	match games.Match
	// tickInterval is the period match ticks are applied with.
	tickInterval time.Duration
	// clock supplies the tick ticker.
	clock clockwork.Clock
	// m guards sessions, positions and names.
	m sync.RWMutex
	// sessions holds the session for each connected client.
	sessions map[messages.ClientID]*session
	// positions holds the last client-reported position per joined player.
	positions map[messages.PlayerID]world.Point3
	// names holds the display name per joined player for status decoration.
	names map[messages.PlayerID]string
	// sinks receive all distributed event batches.
	sinks []EventSink
}

// NewGateway creates a Gateway for the given match. Pass the Gateway to
// games.Match construction as position provider and run it with Gateway.Run.
func NewGateway(tickInterval time.Duration, clock clockwork.Clock) *Gateway {
	return &Gateway{
		tickInterval: tickInterval,
		clock:        clock,
		sessions:     make(map[messages.ClientID]*session),
		positions:    make(map[messages.PlayerID]world.Point3),
		names:        make(map[messages.PlayerID]string),
	}
}

// SetMatch sets the match the Gateway drives. Must be called before any client
// is accepted: the Gateway is the match's position provider, so the two are
// created in this order.
func (g *Gateway) SetMatch(match games.Match) {
	g.match = match
}

// AddEventSink registers an additional receiver for distributed event batches.
// Must be called before any client is accepted.
func (g *Gateway) AddEventSink(sink EventSink) {
	g.sinks = append(g.sinks, sink)
}

// PlayerPosition returns the last client-reported position of the given
// player.
func (g *Gateway) PlayerPosition(player messages.PlayerID) (world.Point3, bool) {
	g.m.RLock()
	defer g.m.RUnlock()
	position, ok := g.positions[player]
	return position, ok
}

// MatchStatus returns the current match status with player names filled in.
func (g *Gateway) MatchStatus() messages.MessageMatchStatus {
	return g.decorateStatus(g.match.Status())
}

// Run powers the periodic match tick. It blocks so you need to start a
// goroutine.
func (g *Gateway) Run(ctx context.Context) {
	ticker := g.clock.NewTicker(g.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			g.broadcastEvents(g.match.Tick())
		}
	}
}

// AcceptClient registers the client and pumps its inbound messages until the
// context is done or the receive channel is closed. The session departs when
// the pump stops in case the hub said goodbye before the session existed.
func (g *Gateway) AcceptClient(ctx context.Context, c *client.Client) {
	sess := &session{client: c, player: messages.PlayerNone}
	g.m.Lock()
	g.sessions[c.ID] = sess
	g.m.Unlock()
	defer g.depart(c.ID)
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-c.Receive:
			if !ok {
				// The read pump closed the channel. The connection is gone.
				return
			}
			g.handleMessage(sess, raw)
		}
	}
}

// SayGoodbyeToClient removes the client's session. A joined player leaves the
// match, which drops carried flags immediately.
func (g *Gateway) SayGoodbyeToClient(_ context.Context, c *client.Client) {
	g.depart(c.ID)
}

// depart removes the session with the given client id. The first caller wins:
// departure is triggered both by the hub saying goodbye and by the accept loop
// terminating. Waits for an in-flight handler to finish, so a hello that was
// still being processed leaves the match properly instead of lingering.
func (g *Gateway) depart(id messages.ClientID) {
	g.m.Lock()
	sess, ok := g.sessions[id]
	if !ok {
		g.m.Unlock()
		return
	}
	delete(g.sessions, id)
	g.m.Unlock()
	sess.m.Lock()
	sess.departed = true
	player := sess.player
	sess.m.Unlock()
	if player == messages.PlayerNone {
		return
	}
	events := g.match.OnPlayerDisconnect(player)
	g.m.Lock()
	delete(g.positions, player)
	delete(g.names, player)
	g.m.Unlock()
	g.broadcastEvents(events)
}

// handleMessage parses and dispatches a single inbound message container.
// Messages of departed sessions are dropped.
func (g *Gateway) handleMessage(sess *session, raw []byte) {
	sess.m.Lock()
	defer sess.m.Unlock()
	if sess.departed {
		logging.GatewayLogger.Debug("dropping message of departed client",
			zap.String("client_id", string(sess.client.ID)))
		return
	}
	var container messages.MessageContainer
	if err := util.DecodeAsJSON(raw, &container); err != nil {
		g.sendError(sess.client, errors.Wrap(err, "decode message container", nil))
		return
	}
	if container.MessageType == messages.MessageTypeHello {
		g.handleHello(sess, container)
		return
	}
	if sess.player == messages.PlayerNone {
		g.sendError(sess.client, errors.Error{
			Code:    errors.ErrProtocolViolation,
			Kind:    errors.KindPlayerNotJoined,
			Message: "hello required before any other message",
			Details: errors.Details{"message_type": container.MessageType},
		})
		return
	}
	switch container.MessageType {
	case messages.MessageTypeRequestAction:
		var message messages.MessageRequestAction
		if err := util.DecodeAsJSON(container.Content, &message); err != nil {
			g.sendError(sess.client, err)
			return
		}
		g.recordPosition(sess.player, message.Position)
		g.broadcastEvents(g.match.RequestAction(sess.player))
	case messages.MessageTypeTeamSwitch:
		var message messages.MessageTeamSwitch
		if err := util.DecodeAsJSON(container.Content, &message); err != nil {
			g.sendError(sess.client, err)
			return
		}
		events := g.match.OnPlayerTeamSwitch(sess.player, message.Team)
		if len(events) == 0 {
			g.sendError(sess.client, errors.NewResourceNotFoundError("team switch rejected",
				errors.Details{"team": message.Team}))
			return
		}
		g.send(sess.client, messages.MessageTypeOK, struct{}{})
		g.broadcastEvents(events)
	case messages.MessageTypeReportDeath:
		var message messages.MessageReportDeath
		if err := util.DecodeAsJSON(container.Content, &message); err != nil {
			g.sendError(sess.client, err)
			return
		}
		g.recordPosition(sess.player, message.Position)
		g.broadcastEvents(g.match.OnReportDeath(sess.player, message.Killer))
	case messages.MessageTypePositionUpdate:
		var message messages.MessagePositionUpdate
		if err := util.DecodeAsJSON(container.Content, &message); err != nil {
			g.sendError(sess.client, err)
			return
		}
		g.recordPosition(sess.player, message.Position)
	default:
		g.sendError(sess.client, errors.Error{
			Code:    errors.ErrProtocolViolation,
			Kind:    errors.KindUnknownMessageType,
			Message: "unknown message type",
			Details: errors.Details{"message_type": container.MessageType},
		})
	}
}

// handleHello assigns a player id and joins the match.
func (g *Gateway) handleHello(sess *session, container messages.MessageContainer) {
	if sess.player != messages.PlayerNone {
		g.sendError(sess.client, errors.Error{
			Code:    errors.ErrProtocolViolation,
			Kind:    errors.KindPlayerAlreadyJoined,
			Message: "already said hello",
		})
		return
	}
	var message messages.MessageHello
	if err := util.DecodeAsJSON(container.Content, &message); err != nil {
		g.sendError(sess.client, err)
		return
	}
	player := messages.PlayerID(uuid.NewString())
	events := g.match.OnPlayerJoin(player)
	if len(events) == 0 {
		g.sendError(sess.client, errors.Error{
			Code:    errors.ErrBadRequest,
			Kind:    errors.KindMatchShutDown,
			Message: "cannot join match",
		})
		return
	}
	sess.player = player
	sess.name = message.Name
	g.m.Lock()
	g.names[player] = message.Name
	g.m.Unlock()
	logging.GatewayLogger.Info("player joined",
		zap.String("client_id", string(sess.client.ID)),
		zap.String("player_id", string(player)),
		zap.String("player_name", message.Name))
	g.send(sess.client, messages.MessageTypeWelcome, messages.MessageWelcome{
		Player: player,
		Match:  g.match.ID(),
	})
	g.broadcastEvents(events)
}

// recordPosition stores the client-reported player position.
func (g *Gateway) recordPosition(player messages.PlayerID, position world.Point3) {
	g.m.Lock()
	defer g.m.Unlock()
	g.positions[player] = position
}

// broadcastEvents distributes notifications and score updates for the given
// events followed by a fresh match status. No events mean no state change, so
// nothing is sent.
func (g *Gateway) broadcastEvents(events []games.Event) {
	if len(events) == 0 {
		return
	}
	for _, sink := range g.sinks {
		sink.HandleEvents(events)
	}
	for _, event := range events {
		if event.Notification != "" {
			g.broadcast(messages.MessageTypeNotification, messages.MessageNotification{Text: event.Notification})
		}
		if event.Kind == games.EventScoreChanged {
			g.broadcast(messages.MessageTypeScoreUpdate, messages.MessageScoreUpdate{
				Team:  event.Team,
				Score: event.Score,
			})
		}
	}
	g.broadcast(messages.MessageTypeMatchStatus, g.MatchStatus())
}

// decorateStatus fills in the player names the match controller does not know.
func (g *Gateway) decorateStatus(status messages.MessageMatchStatus) messages.MessageMatchStatus {
	g.m.RLock()
	defer g.m.RUnlock()
	for i := range status.Teams {
		for j := range status.Teams[i].Players {
			status.Teams[i].Players[j].Name = g.names[status.Teams[i].Players[j].ID]
		}
	}
	return status
}

// broadcast sends the given message to all connected clients.
func (g *Gateway) broadcast(messageType messages.MessageType, content interface{}) {
	g.m.RLock()
	clients := make([]*client.Client, 0, len(g.sessions))
	for _, sess := range g.sessions {
		clients = append(clients, sess.client)
	}
	g.m.RUnlock()
	for _, c := range clients {
		g.send(c, messageType, content)
	}
}

// send marshals the message into a container and passes it to the client's
// send channel. Clients with a full send buffer miss the message instead of
// stalling the gateway.
func (g *Gateway) send(c *client.Client, messageType messages.MessageType, content interface{}) {
	encodedContent, err := util.EncodeAsJSON(content)
	if err != nil {
		errors.Log(logging.GatewayLogger, errors.Wrap(err, "encode message content", nil))
		return
	}
	raw, err := util.EncodeAsJSON(messages.MessageContainer{
		MessageType: messageType,
		Content:     encodedContent,
	})
	if err != nil {
		errors.Log(logging.GatewayLogger, errors.Wrap(err, "encode message container", nil))
		return
	}
	select {
	case c.Send <- raw:
	default:
		logging.GatewayLogger.Warn("dropping message for client with full send buffer",
			zap.String("client_id", string(c.ID)),
			zap.String("message_type", string(messageType)))
	}
}

// sendError reports the given error to the client. Internal details are hidden
// unless the client is to blame.
func (g *Gateway) sendError(c *client.Client, err error) {
	errors.Log(logging.GatewayLogger, err)
	g.send(c, messages.MessageTypeError, messages.MessageErrorFromError(err))
}
