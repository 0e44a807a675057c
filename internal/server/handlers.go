// Package server exposes the HTTP handlers: the WebSocket bridge upgrade and
// the health check.
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// WebSocketHandler upgrades an HTTP request and runs the upgraded connection
// through the same per-connection handler as raw TCP clients, with one
// WebSocket text message carrying one protocol frame.
func (srv *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     srv.origins.check,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	srv.wg.Add(1)
	go func() {
		defer srv.wg.Done()
		srv.handleConnection(newWSConn(conn, srv.cfg.MaxFrameSize))
	}()
}

// HealthHandler provides a simple health check endpoint that returns relay
// status as plain text.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Chat relay is running!")
}
