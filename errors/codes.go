package errors

type Code string

const (
	ErrAborted           Code = "aborted"
	ErrBadRequest        Code = "bad-request"
	ErrCommunication     Code = "communication"
	ErrProtocolViolation Code = "protocol-violation"
	ErrFatal             Code = "fatal"
	ErrNotFound          Code = "not-found"
	ErrInternal          Code = "internal"
	ErrUnexpected        Code = "unexpected"
)

type Kind string

const (
	// KindContextAborted is used when we were currently performing an operation but
	// the context got aborted.
	KindContextAborted Kind = "context-aborted"
	KindDecodeJSON     Kind = "parse-request-body-as-json"
	KindEncodeJSON     Kind = "encode-json"
	// KindInvalidMatchConfig is used when an invalid config is passed to match
	// creation. Matches refuse to start with an invalid config.
	KindInvalidMatchConfig Kind = "invalid-match-config"
	// KindMatchShutDown is used when operations are performed on a match that has
	// already been shut down.
	KindMatchShutDown Kind = "match-shut-down"
	// KindPlayerAlreadyJoined is used when a player wants to join a match but has
	// already joined.
	KindPlayerAlreadyJoined Kind = "player-already-joined"
	// KindPlayerNotJoined is used when a player has not joined the match yet.
	KindPlayerNotJoined  Kind = "player-not-joined"
	KindResourceNotFound Kind = "resource-not-found"
	// KindSpectatorTeam is used when an operation requires a scoring team but was
	// given the spectator placeholder team.
	KindSpectatorTeam Kind = "spectator-team"
	KindUnexpected    Kind = "unexpected"
	// KindUnknownMessageType is used when a message with an unknown type is
	// received.
	KindUnknownMessageType Kind = "unknown-message-type"
	// KindUnknownTeam is used when an unknown team is being requested.
	KindUnknownTeam Kind = "unknown-team"
)
