// Package server wires HTTP handlers into a ServeMux for the relay's bridge,
// health, and metrics endpoints.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures and returns an HTTP ServeMux with all application
// routes: health check, WebSocket bridge, and Prometheus metrics.
func (srv *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.HandleFunc("/ws", srv.WebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
