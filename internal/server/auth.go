// Package server enforces the authentication gate that every connection must
// pass before any other request is accepted.
package server

import (
	"log"
	"strings"
	"unicode/utf8"
)

// maxUsernameLen is the longest display name the gate accepts.
const maxUsernameLen = 20

// AuthGate validates the mandatory first exchange on a connection and
// registers accepted sessions into the default room.
type AuthGate struct {
	registry *Registry
}

// NewAuthGate creates a gate backed by the given registry.
func NewAuthGate(registry *Registry) *AuthGate {
	return &AuthGate{registry: registry}
}

// Authenticate processes a single auth request for an unauthenticated
// session. On rejection it replies with auth_error and leaves the connection
// open so the client can retry. On success it marks the session
// authenticated, places it in the default room, replies auth_success,
// notifies the other members, and replays recent history to the new session
// only. It reports whether the session is now authenticated.
func (g *AuthGate) Authenticate(s *Session, req Request) bool {
	// Surrounding whitespace is not part of the name; the length limit
	// counts characters, not bytes.
	username := strings.TrimSpace(req.Username)

	if username == "" || utf8.RuneCountInString(username) > maxUsernameLen {
		s.send(newAuthError("Invalid username (1-20 characters)"))
		return false
	}

	if !g.registry.Register(username, s) {
		s.send(newAuthError("Username already taken"))
		return false
	}

	s.username = username
	s.authenticated = true

	room := g.registry.DefaultRoom()
	room.AddMember(s)
	s.room = room

	s.send(newAuthSuccess(username))
	room.BroadcastToOthers(systemNotice(username+" joined the room"), s)
	room.Replay(s, replayCount)

	activeSessions.Inc()
	log.Printf("Session %s authenticated as %q", s.ID(), username)
	return true
}
