package web_server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lowpolygames/skirmish-server/errors"
	"github.com/lowpolygames/skirmish-server/logging"
	"github.com/lowpolygames/skirmish-server/messages"
	"github.com/lowpolygames/skirmish-server/ws"
)

// MatchStatusProvider supplies the current observable match state for the
// read-only API.
type MatchStatusProvider interface {
	// MatchStatus returns the current match status.
	MatchStatus() messages.MessageMatchStatus
}

// PopulateRoutes populates the WebServer with the routes.
func (server *WebServer) PopulateRoutes(hub *ws.Hub, statusProvider MatchStatusProvider, wsCtx context.Context) {
	// Websocket stuff.
	server.router.HandleFunc("/ws", ws.HandleWS(hub, wsCtx))
	// API stuff.
	apiRouter := server.router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/matches/current", handleGetMatchStatus(statusProvider)).Methods(http.MethodGet)
}

// handleGetMatchStatus serves the current match status as JSON.
func handleGetMatchStatus(statusProvider MatchStatusProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(statusProvider.MatchStatus())
		if err != nil {
			errors.Log(logging.WebServerLogger, errors.Wrap(err, "encode match status", nil))
		}
	}
}
