// Package testhelpers provides common utilities and helper functions for
// testing the chat relay.
//
// This package contains reusable test utilities that are shared across unit
// and integration tests: starting a relay on ephemeral ports, driving the
// newline-delimited TCP protocol as a client, and asserting on received
// frames.
package testhelpers

import (
	"bufio"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/chatrelay/internal/server"
)

// recvTimeout bounds every read a test client performs.
const recvTimeout = 2 * time.Second

// StartTestServer starts a relay on ephemeral ports with an isolated upload
// directory. The relay is shut down when the test finishes. It returns the
// server and the upload directory path.
func StartTestServer(t *testing.T) (*server.Server, string) {
	t.Helper()

	uploadDir := t.TempDir()

	cfg := server.NewConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.UploadDir = uploadDir

	srv, err := server.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(func() {
		_ = srv.Shutdown(2 * time.Second)
	})

	return srv, uploadDir
}

// ChatClient drives the relay's TCP protocol from the client side.
type ChatClient struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

// Dial connects a new chat client to the given relay address.
func Dial(t *testing.T, addr string) *ChatClient {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, recvTimeout)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", addr, err)
	}
	client := &ChatClient{t: t, conn: conn, reader: bufio.NewReader(conn)}
	t.Cleanup(client.Close)
	return client
}

// Send writes one frame to the relay.
func (c *ChatClient) Send(frame map[string]any) {
	c.t.Helper()

	payload, err := json.Marshal(frame)
	if err != nil {
		c.t.Fatalf("Failed to marshal frame: %v", err)
	}
	payload = append(payload, '\n')
	if _, err := c.conn.Write(payload); err != nil {
		c.t.Fatalf("Failed to send frame: %v", err)
	}
}

// Recv reads the next frame, failing the test if none arrives in time.
func (c *ChatClient) Recv() map[string]any {
	c.t.Helper()

	frame, ok := c.tryRecv(recvTimeout)
	if !ok {
		c.t.Fatal("Timed out waiting for a frame")
	}
	return frame
}

// RecvType reads frames until one of the given type arrives, failing the
// test if it never does.
func (c *ChatClient) RecvType(frameType string) map[string]any {
	c.t.Helper()

	deadline := time.Now().Add(recvTimeout)
	for time.Now().Before(deadline) {
		frame, ok := c.tryRecv(time.Until(deadline))
		if !ok {
			break
		}
		if frame["type"] == frameType {
			return frame
		}
	}
	c.t.Fatalf("Timed out waiting for a %q frame", frameType)
	return nil
}

// RecvSystem reads frames until a system notice with the given message
// arrives, failing the test if it never does. This skips past replayed
// history entries and unrelated notices.
func (c *ChatClient) RecvSystem(message string) map[string]any {
	c.t.Helper()

	deadline := time.Now().Add(recvTimeout)
	for time.Now().Before(deadline) {
		frame, ok := c.tryRecv(time.Until(deadline))
		if !ok {
			break
		}
		if frame["type"] == "system" && frame["message"] == message {
			return frame
		}
	}
	c.t.Fatalf("Timed out waiting for system notice %q", message)
	return nil
}

// ExpectClosed asserts that the relay closes the connection instead of
// sending further frames.
func (c *ChatClient) ExpectClosed() {
	c.t.Helper()

	_ = c.conn.SetReadDeadline(time.Now().Add(recvTimeout))
	_, err := c.reader.ReadBytes('\n')
	if err == nil {
		c.t.Fatal("Expected connection to be closed but received a frame")
	}
	if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
		c.t.Fatal("Expected connection to be closed but it is still open")
	}
}

// ExpectSilence asserts that no frame arrives within the given window.
func (c *ChatClient) ExpectSilence(window time.Duration) {
	c.t.Helper()

	if frame, ok := c.tryRecv(window); ok {
		c.t.Fatalf("Expected no frame but received: %v", frame)
	}
}

func (c *ChatClient) tryRecv(window time.Duration) (map[string]any, bool) {
	c.t.Helper()

	_ = c.conn.SetReadDeadline(time.Now().Add(window))
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return nil, false
	}

	var frame map[string]any
	if err := json.Unmarshal(line, &frame); err != nil {
		c.t.Fatalf("Failed to decode frame %q: %v", line, err)
	}
	return frame, true
}

// Authenticate sends an auth request and waits for auth_success.
func (c *ChatClient) Authenticate(username string) {
	c.t.Helper()

	c.Send(map[string]any{"type": "auth", "username": username})
	frame := c.Recv()
	if frame["type"] != "auth_success" {
		c.t.Fatalf("Expected auth_success, got: %v", frame)
	}
}

// Close shuts down the client connection. Safe to call more than once.
func (c *ChatClient) Close() {
	_ = c.conn.Close()
}

// AssertField checks that a frame carries the expected value for a key.
func AssertField(t *testing.T, frame map[string]any, key string, expected any) {
	t.Helper()

	actual, ok := frame[key]
	if !ok {
		t.Errorf("Frame does not contain %q field: %v", key, frame)
		return
	}
	if actual != expected {
		t.Errorf("Expected %q to be %v, got %v", key, expected, actual)
	}
}

// ConnectWebSocket creates a WebSocket connection to the specified URL with
// an allowed origin header set.
func ConnectWebSocket(url string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	headers.Set("Origin", "http://localhost:8080")

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}
