// Package server coordinates room membership, bounded message history, and
// broadcast fan-out for the chat relay via the Room type.
package server

import (
	"log"
	"sync"
)

// historyLimit caps a room's message history; the oldest entry is evicted
// first once the cap is reached.
const historyLimit = 100

// replayCount is how many trailing history entries a newly joined session
// receives.
const replayCount = 10

// Room is a named group of sessions sharing broadcast scope and message
// history. A single mutex covers membership reads and mutations, history
// appends, and fan-out enqueues so a broadcast never interleaves with a
// concurrent join or leave on the same room.
type Room struct {
	name    string
	mu      sync.Mutex
	members map[*Session]struct{}
	history []Message
}

// NewRoom constructs an empty room with the given name.
func NewRoom(name string) *Room {
	return &Room{
		name:    name,
		members: make(map[*Session]struct{}),
	}
}

// Name returns the room's unique name.
func (r *Room) Name() string {
	return r.name
}

// AddMember inserts a session into the room's member set.
func (r *Room) AddMember(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[s] = struct{}{}
}

// RemoveMember deletes a session from the member set. Removing a session
// that is not a member is a no-op.
func (r *Room) RemoveMember(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members, s)
}

// MemberCount returns the number of sessions currently in the room.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.members)
}

// HistoryLen returns the current length of the room history.
func (r *Room) HistoryLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.history)
}

// Broadcast stamps a timestamp on msg, appends a sender-neutral copy to the
// room history, and delivers a per-recipient copy to every current member,
// with is_self set to true only on the copy delivered to sender.
func (r *Room) Broadcast(msg Message, sender *Session) {
	r.broadcast(msg, sender, true)
}

// BroadcastToOthers behaves like Broadcast except the sender itself receives
// no copy. The history append still occurs. Used for join/leave notices.
func (r *Room) BroadcastToOthers(msg Message, sender *Session) {
	r.broadcast(msg, sender, false)
}

// broadcast performs the shared append-and-fan-out under the room lock.
// Per-recipient sends are issued concurrently and waited on; each
// recipient's outcome is independent, so one stalled member never blocks
// delivery to the others. A member that accumulates too many consecutive
// delivery failures is evicted from the room.
func (r *Room) broadcast(msg Message, sender *Session, includeSender bool) {
	msg.stamp()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = append(r.history, msg)
	if len(r.history) > historyLimit {
		r.history = r.history[len(r.history)-historyLimit:]
	}
	broadcastsTotal.Inc()

	var (
		wg       sync.WaitGroup
		evictMu  sync.Mutex
		evictees []*Session
	)

	for member := range r.members {
		if member == sender && !includeSender {
			continue
		}

		delivery := msg
		if includeSender && sender != nil {
			delivery = withSelf(msg, member == sender)
		}

		wg.Add(1)
		go func(member *Session, delivery Message) {
			defer wg.Done()
			if member.deliver(delivery) {
				evictMu.Lock()
				evictees = append(evictees, member)
				evictMu.Unlock()
			}
		}(member, delivery)
	}

	wg.Wait()

	for _, member := range evictees {
		delete(r.members, member)
		log.Printf("Evicted %s from room %s after repeated delivery failures", member.Username(), r.name)
	}
}

// Replay sends the room's last n history entries to a single session. The
// is_self flag is computed at delivery time: it is set on chat, private, and
// file entries whose stored sender matches the recipient's username.
func (r *Room) Replay(s *Session, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := len(r.history) - n
	if start < 0 {
		start = 0
	}

	for _, msg := range r.history[start:] {
		if msg.Type != ResponseSystem {
			msg = withSelf(msg, msg.Username == s.Username())
		}
		s.send(msg)
	}
}
