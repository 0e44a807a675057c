// Package server runs the per-connection control loop: it reads framed
// requests, gates unauthenticated sessions, and dispatches each request kind
// to the room, routing, and relay components.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"
)

// handleConnection owns one client connection from accept to cleanup. It is
// run on its own goroutine per connection; a failure here never affects any
// other connection.
func (srv *Server) handleConnection(conn frameConn) {
	connectionsTotal.Inc()
	log.Printf("New connection from %s", conn.RemoteAddr())

	s := NewSession(conn)
	srv.trackSession(s)
	defer srv.cleanup(s)

	go s.writePump()

	limiter := newRateLimiter(srv.cfg.RateLimit)

	for {
		payload, err := conn.ReadFrame()
		if err != nil {
			if errors.Is(err, errFrameTooLarge) {
				// The byte stream cannot be resynchronized once a record
				// overruns the cap, so the connection ends after the reply.
				log.Printf("Frame from %s exceeded maximum size of %d bytes", conn.RemoteAddr(), srv.cfg.MaxFrameSize)
				s.send(newError("Frame exceeds maximum size"))
			} else if !errors.Is(err, io.EOF) && !isExpectedCloseError(err) {
				log.Printf("Read error from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}

		var req Request
		if err := json.Unmarshal(payload, &req); err != nil {
			log.Printf("Invalid frame from %s: %v", conn.RemoteAddr(), err)
			s.send(newError("Error processing message"))
			continue
		}

		if limiter != nil && !limiter.allow() {
			s.send(newError("Rate limit exceeded"))
			continue
		}

		if !s.authenticated {
			if req.Type == RequestAuth {
				srv.gate.Authenticate(s, req)
			} else {
				s.send(newError("Authentication required"))
			}
			continue
		}

		srv.dispatch(s, req)
	}
}

// dispatch routes a single authenticated request to its handler. Unknown or
// incomplete requests get a generic error reply and the connection lives on.
func (srv *Server) dispatch(s *Session, req Request) {
	switch req.Type {
	case RequestAuth:
		s.send(newError("Already authenticated"))

	case RequestMessage:
		if req.Message == "" {
			s.send(newError("Message text required"))
			return
		}
		if s.room != nil {
			s.room.Broadcast(Message{
				Type:     ResponseMessage,
				Username: s.username,
				Body:     req.Message,
			}, s)
		}

	case RequestJoinRoom:
		if req.Room == "" {
			s.send(newError("Room name required"))
			return
		}
		srv.changeRoom(s, req.Room)

	case RequestListRooms:
		s.send(newRoomList(srv.registry.RoomNames()))

	case RequestPrivateMessage:
		if req.Target == "" || req.Message == "" {
			s.send(newError("Target and message required"))
			return
		}
		srv.router.Route(s, req.Target, req.Message)

	case RequestUploadFile:
		if req.Filename == "" || req.Data == "" {
			s.send(newError("Filename and data required"))
			return
		}
		srv.handleUpload(s, req)

	default:
		s.send(newError("Unknown message type"))
	}
}

// changeRoom moves a session between rooms: leave notice to the old room's
// other members, membership swap, join notice to the new room's other
// members, history replay to the mover, then the room_changed ack.
func (srv *Server) changeRoom(s *Session, name string) {
	if s.room != nil {
		s.room.BroadcastToOthers(systemNotice(s.username+" left the room"), s)
		s.room.RemoveMember(s)
	}

	room := srv.registry.Room(name)
	room.AddMember(s)
	s.room = room

	room.BroadcastToOthers(systemNotice(s.username+" joined the room"), s)
	room.Replay(s, replayCount)
	s.send(newRoomChanged(name))

	log.Printf("Session %s (%s) moved to room %s", s.ID(), s.username, name)
}

// handleUpload stores the payload and announces it to the uploader's room.
// Storage failures are reported to the uploader only.
func (srv *Server) handleUpload(s *Session, req Request) {
	name, err := srv.relay.Store(req.Filename, req.Data)
	if err != nil {
		log.Printf("Upload from %s failed: %v", s.username, err)
		s.send(newError("File upload failed: " + err.Error()))
		return
	}

	if s.room != nil {
		s.room.Broadcast(Message{
			Type:     ResponseFileUpload,
			Username: s.username,
			Filename: name,
			Body:     "uploaded file: " + name,
		}, s)
	}
}

// cleanup tears down a session after its read loop exits: leave notice and
// membership removal if it was in a room, username release, transport close.
// Queued frames are flushed before the transport closes so a final error
// reply still reaches the client. Sessions that never authenticated produce
// no notices.
func (srv *Server) cleanup(s *Session) {
	if s.authenticated {
		if s.room != nil {
			s.room.BroadcastToOthers(systemNotice(s.username+" left the chat"), s)
			s.room.RemoveMember(s)
			s.room = nil
		}
		srv.registry.Unregister(s.username, s)
		activeSessions.Dec()
	}

	s.closeOutbound()
	select {
	case <-s.pumpDone:
	case <-time.After(time.Second):
	}
	if err := s.conn.Close(); err != nil && !isExpectedCloseError(err) {
		log.Printf("Error closing connection from %s: %v", s.conn.RemoteAddr(), err)
	}
	srv.untrackSession(s)

	log.Printf("Connection from %s closed", s.conn.RemoteAddr())
}
