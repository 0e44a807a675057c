package server

import (
	"encoding/json"
	"io"
	"sync"
	"testing"
)

// nopConn is a frame transport that never produces frames and swallows
// writes, for tests exercising sessions without a real connection.
type nopConn struct{}

func (nopConn) ReadFrame() ([]byte, error) { return nil, io.EOF }
func (nopConn) WriteFrame(_ []byte) error { return nil }
func (nopConn) Close() error { return nil }
func (nopConn) RemoteAddr() string { return "test:0" }

// captureConn records every frame written to it, for tests exercising the
// write pump.
type captureConn struct {
	mu     sync.Mutex
	frames [][]byte
}

func (c *captureConn) ReadFrame() ([]byte, error) { return nil, io.EOF }
func (c *captureConn) Close() error { return nil }
func (c *captureConn) RemoteAddr() string { return "test:0" }

func (c *captureConn) WriteFrame(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frames = append(c.frames, payload)
	return nil
}

func (c *captureConn) written() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.frames)
}

// newTestSession builds a session whose outbound queue can be inspected
// directly because no write pump is draining it.
func newTestSession() *Session {
	return NewSession(nopConn{})
}

// recvFrame pops the next queued frame off a session's outbound queue and
// decodes it. It fails the test when the queue is empty.
func recvFrame(t *testing.T, s *Session) map[string]any {
	t.Helper()

	select {
	case payload := <-s.out:
		var frame map[string]any
		if err := json.Unmarshal(payload, &frame); err != nil {
			t.Fatalf("Failed to decode queued frame %q: %v", payload, err)
		}
		return frame
	default:
		t.Fatal("Expected a queued frame but the outbound queue is empty")
		return nil
	}
}

// queuedFrames drains and decodes every frame currently in the queue.
func queuedFrames(t *testing.T, s *Session) []map[string]any {
	t.Helper()

	var frames []map[string]any
	for {
		select {
		case payload := <-s.out:
			var frame map[string]any
			if err := json.Unmarshal(payload, &frame); err != nil {
				t.Fatalf("Failed to decode queued frame %q: %v", payload, err)
			}
			frames = append(frames, frame)
		default:
			return frames
		}
	}
}

// fillOutboundQueue saturates a session's outbound queue so every further
// delivery to it fails.
func fillOutboundQueue(s *Session) {
	for i := 0; i < sendBufferSize; i++ {
		if !s.trySend([]byte("{}")) {
			return
		}
	}
}
