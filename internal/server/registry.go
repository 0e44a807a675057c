// Package server tracks the directory of rooms and the index of
// authenticated usernames shared by every connection handler.
package server

import (
	"sort"
	"sync"
)

// defaultRoomName is the room every freshly authenticated session joins.
const defaultRoomName = "general"

// Registry owns the name-to-room directory and the global index of
// authenticated sessions. Rooms are created on first reference and never
// removed, so an emptied room keeps its history for future members. The
// username index guarantees at most one authenticated session per username.
type Registry struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	sessions map[string]*Session
}

// NewRegistry creates a registry pre-populated with the default room.
func NewRegistry() *Registry {
	reg := &Registry{
		rooms:    make(map[string]*Room),
		sessions: make(map[string]*Session),
	}
	reg.rooms[defaultRoomName] = NewRoom(defaultRoomName)
	return reg
}

// Room returns the room with the given name, creating it on first reference.
func (reg *Registry) Room(name string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[name]
	if !ok {
		room = NewRoom(name)
		reg.rooms[name] = room
	}
	return room
}

// DefaultRoom returns the room new sessions are placed in after
// authentication.
func (reg *Registry) DefaultRoom() *Room {
	return reg.Room(defaultRoomName)
}

// RoomNames returns a sorted snapshot of every room name known to the
// registry.
func (reg *Registry) RoomNames() []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	names := make([]string, 0, len(reg.rooms))
	for name := range reg.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register claims a username for the given session. It reports false when
// another live session already holds the exact username.
func (reg *Registry) Register(username string, s *Session) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, taken := reg.sessions[username]; taken {
		return false
	}
	reg.sessions[username] = s
	return true
}

// Unregister releases a username, but only if it is still held by the given
// session. This keeps a stale cleanup from evicting a newer session that
// reclaimed the name.
func (reg *Registry) Unregister(username string, s *Session) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if current, ok := reg.sessions[username]; ok && current == s {
		delete(reg.sessions, username)
	}
}

// Lookup resolves a username to its live authenticated session.
func (reg *Registry) Lookup(username string) (*Session, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	s, ok := reg.sessions[username]
	return s, ok
}
