package server

import (
	"testing"
	"time"
)

// TestWritePumpFlushesQueueBeforeExit tests that frames queued before the
// outbound queue closes are still written out, so a final error reply reaches
// the client before the transport shuts down.
func TestWritePumpFlushesQueueBeforeExit(t *testing.T) {
	conn := &captureConn{}
	s := NewSession(conn)

	if !s.send(newError("first")) || !s.send(newError("second")) {
		t.Fatal("Expected sends to queue")
	}

	go s.writePump()
	s.closeOutbound()

	select {
	case <-s.pumpDone:
	case <-time.After(time.Second):
		t.Fatal("Write pump did not drain and exit")
	}

	if got := conn.written(); got != 2 {
		t.Errorf("Expected 2 flushed frames, got %d", got)
	}
}

// TestTrySendAfterCloseFails tests that a closed outbound queue rejects
// further sends instead of panicking.
func TestTrySendAfterCloseFails(t *testing.T) {
	s := newTestSession()
	s.closeOutbound()
	s.closeOutbound() // idempotent

	if s.trySend([]byte("{}")) {
		t.Error("Expected trySend to fail after close")
	}
}
