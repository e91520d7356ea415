package client

import (
	"context"

	"github.com/lowpolygames/skirmish-server/messages"
)

// Client holds the connection channels and is used by gateway.Gateway as well
// as ws.Hub.
type Client struct {
	// ID is a temporary id assigned to the Client.
	ID messages.ClientID
	// Send is the channel outgoing messages are passed to.
	Send chan []byte
	// Receive is the channel for incoming messages.
	Receive chan []byte
}

// Listener provides methods for accepting new clients and unregister events.
type Listener interface {
	// AcceptClient is called when a new Client connects.
	AcceptClient(ctx context.Context, client *Client)
	// SayGoodbyeToClient is called when a Client's connection has been closed.
	SayGoodbyeToClient(ctx context.Context, client *Client)
}
