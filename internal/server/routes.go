// Package server wires the relay hub into HTTP.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/relay"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,

	// Possession of a room code is the only access control; origin
	// checks belong to the deployment's proxy layer.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWs returns an http.HandlerFunc that upgrades requests to
// websocket connections and hands them to the hub.
func ServeWs(hub *relay.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("failed to upgrade connection", "err", err)
			return
		}
		hub.Attach(conn)
	}
}

// Routes builds the server mux: the websocket endpoint and a health
// check.
func Routes(hub *relay.Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Relay server is healthy."))
	})
	mux.HandleFunc("/ws", ServeWs(hub))
	return mux
}
