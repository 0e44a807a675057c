// Package server exports Prometheus metrics describing relay activity.
package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_connections_total",
		Help: "Total transport connections accepted.",
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatrelay_active_sessions",
		Help: "Authenticated sessions currently connected.",
	})

	broadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_broadcasts_total",
		Help: "Messages appended to room history and fanned out.",
	})

	deliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_delivery_failures_total",
		Help: "Per-recipient deliveries dropped due to a full or closed outbound queue.",
	})

	privateMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_private_messages_total",
		Help: "Direct messages routed between sessions.",
	})

	uploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_uploads_total",
		Help: "Files stored by the relay.",
	})
)
