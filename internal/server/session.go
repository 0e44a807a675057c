// Package server manages individual client sessions, handling the outbound
// write pump and delivery bookkeeping for each connection.
package server

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// sendBufferSize bounds the per-session outbound queue so one slow client
// cannot stall a broadcasting caller.
const sendBufferSize = 256

// sendFailureLimit is the number of consecutive delivery failures after which
// a session is evicted from its room.
const sendFailureLimit = 3

// Session represents one client connection in the relay. The username is
// immutable once authentication succeeds, and the session belongs to at most
// one room at a time. The owning connection handler is the only goroutine
// that touches room and authenticated; other goroutines interact with a
// session exclusively through its outbound queue.
type Session struct {
	id            string
	conn          frameConn
	username      string
	authenticated bool
	room          *Room

	out      chan []byte
	pumpDone chan struct{}
	mu       sync.Mutex
	closed   bool
	failures atomic.Int32
}

// NewSession wraps a transport connection in a fresh unauthenticated session.
func NewSession(conn frameConn) *Session {
	return &Session{
		id:       uuid.NewString(),
		conn:     conn,
		out:      make(chan []byte, sendBufferSize),
		pumpDone: make(chan struct{}),
	}
}

// ID returns the opaque connection identifier.
func (s *Session) ID() string {
	return s.id
}

// Username returns the authenticated username, or "" before authentication.
func (s *Session) Username() string {
	return s.username
}

// send marshals v and queues it for delivery. It reports false when the
// session is closed, the queue is full, or v cannot be marshaled.
func (s *Session) send(v any) bool {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling frame for %s: %v", s.conn.RemoteAddr(), err)
		return false
	}
	return s.trySend(payload)
}

// trySend queues a raw frame without blocking.
func (s *Session) trySend(payload []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.out <- payload:
		return true
	default:
		return false
	}
}

// deliver queues a per-recipient message copy and tracks consecutive
// failures. It reports whether the session has exceeded its failure limit
// and should be evicted from the room.
func (s *Session) deliver(m Message) (evict bool) {
	if s.send(m) {
		s.failures.Store(0)
		return false
	}

	deliveryFailures.Inc()
	return s.failures.Add(1) >= sendFailureLimit
}

// writePump drains the outbound queue onto the transport. It exits when the
// queue is closed and drained or a write fails, signalling pumpDone so
// cleanup can close the transport without cutting off queued frames.
func (s *Session) writePump() {
	defer close(s.pumpDone)

	for payload := range s.out {
		if err := s.conn.WriteFrame(payload); err != nil {
			if !isExpectedCloseError(err) {
				log.Printf("Error writing frame to %s: %v", s.conn.RemoteAddr(), err)
			}
			return
		}
	}
}

// closeOutbound shuts the outbound queue exactly once. Subsequent trySend
// calls fail instead of panicking on a closed channel.
func (s *Session) closeOutbound() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.out)
	}
}
