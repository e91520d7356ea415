// Provide basic message functionality.

package messages

import (
	"encoding/json"

	"github.com/lowpolygames/skirmish-server/errors"
)

// MessageType is the type of message and serves for using the correct parsing
// method.
type MessageType string

// ClientID is a UUID that is used to identify a connected client.
type ClientID string

// PlayerID is a UUID that is used to identify a player within a match.
type PlayerID string

// PlayerNone is the zero PlayerID. It is used for flags without a carrier.
const PlayerNone PlayerID = ""

// MatchID is used in order to identify a running match.
type MatchID string

// TeamID identifies one of the fixed teams.
type TeamID string

const (
	// TeamRed is the red scoring team.
	TeamRed TeamID = "red"
	// TeamBlue is the blue scoring team.
	TeamBlue TeamID = "blue"
	// TeamSpectator is the placeholder team for unassigned players. It never owns
	// a flag and never accrues score.
	TeamSpectator TeamID = "spectator"
)

// MessageContainer is a container for all messages that are sent and received.
// It holds some meta information as well as the actual payload.
type MessageContainer struct {
	// MessageType is the type of the message.
	MessageType MessageType `json:"message_type"`
	// Content is the actual message content.
	Content json.RawMessage `json:"content,omitempty"`
}

// General message types.
const (
	// MessageTypeError is used for error messages. The content is being set to the
	// detailed error.
	MessageTypeError MessageType = "error"
	// MessageTypeHello is received with MessageHello for saying hello to the
	// server.
	MessageTypeHello MessageType = "hello"
	// MessageTypeOK is used only for confirmation of actions that do not require a
	// detailed response.
	MessageTypeOK MessageType = "ok"
	// MessageTypeWelcome is sent to the client when he is welcomed at the server.
	// Used with MessageWelcome.
	MessageTypeWelcome MessageType = "welcome"
)

// MessageHello is used with MessageTypeHello for a client introducing itself.
type MessageHello struct {
	// Name is the display name the client wants to use.
	Name string `json:"name"`
}

// MessageWelcome is used with MessageTypeWelcome after a successful
// MessageTypeHello.
type MessageWelcome struct {
	// Player is the id that was assigned to the joined player.
	Player PlayerID `json:"player"`
	// Match is the id of the match the player joined.
	Match MatchID `json:"match"`
}

// MessageError is used with MessageTypeError for errors that need to be sent to
// clients.
type MessageError struct {
	// Code is the error code from errors.Error.
	Code string `json:"code"`
	// Kind is the error kind from errors.Error.
	Kind string `json:"kind,omitempty"`
	// Err is the error from errors.Error.
	Err string `json:"err,omitempty"`
	// Message is the message from errors.Error.
	Message string `json:"message"`
	// Details are error details from errors.Error.
	Details map[string]interface{} `json:"details,omitempty"`
}

// MessageErrorFromError creates a MessageError from the given error.
func MessageErrorFromError(err error) MessageError {
	e, _ := errors.Cast(err)
	if !errors.BlameUser(err) {
		return MessageError{
			Code:    string(e.Code),
			Message: "internal server error",
		}
	}
	return MessageError{
		Code:    string(e.Code),
		Kind:    string(e.Kind),
		Err:     e.Error(),
		Message: e.Message,
		Details: e.Details,
	}
}
