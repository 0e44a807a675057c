// Package server abstracts the framed transports the relay speaks: raw TCP
// with newline-delimited records, and WebSocket messages via the bridge.
package server

import (
	"bufio"
	"errors"
	"io"
	"net"

	"github.com/gorilla/websocket"
)

// errFrameTooLarge reports an inbound frame exceeding the configured limit.
var errFrameTooLarge = errors.New("frame exceeds maximum size")

// frameConn carries one logical protocol frame per read or write,
// independent of the underlying transport.
type frameConn interface {
	ReadFrame() ([]byte, error)
	WriteFrame(payload []byte) error
	Close() error
	RemoteAddr() string
}

// lineConn frames a TCP byte stream as newline-delimited records.
type lineConn struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

// newLineConn wraps a TCP connection, capping single frames at maxFrameSize
// bytes.
func newLineConn(conn net.Conn, maxFrameSize int64) *lineConn {
	scanner := bufio.NewScanner(conn)
	// The initial buffer must not exceed the cap, or the scanner would
	// accept oversized records without ever growing.
	initial := int64(64 * 1024)
	if initial > maxFrameSize {
		initial = maxFrameSize
	}
	scanner.Buffer(make([]byte, initial), int(maxFrameSize))
	return &lineConn{conn: conn, scanner: scanner}
}

// ReadFrame blocks until the next newline-terminated record arrives. It
// returns io.EOF when the peer closes the stream.
func (lc *lineConn) ReadFrame() ([]byte, error) {
	if !lc.scanner.Scan() {
		if err := lc.scanner.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				return nil, errFrameTooLarge
			}
			return nil, err
		}
		return nil, io.EOF
	}

	// The scanner reuses its buffer between calls.
	frame := make([]byte, len(lc.scanner.Bytes()))
	copy(frame, lc.scanner.Bytes())
	return frame, nil
}

// WriteFrame appends the record delimiter and writes the frame out.
func (lc *lineConn) WriteFrame(payload []byte) error {
	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, payload...)
	buf = append(buf, '\n')
	_, err := lc.conn.Write(buf)
	return err
}

// Close closes the underlying TCP connection.
func (lc *lineConn) Close() error {
	return lc.conn.Close()
}

// RemoteAddr returns the peer address for logging.
func (lc *lineConn) RemoteAddr() string {
	return lc.conn.RemoteAddr().String()
}

// wsConn frames a WebSocket connection as one protocol frame per message.
type wsConn struct {
	conn *websocket.Conn
}

// newWSConn wraps an upgraded WebSocket connection, capping inbound messages
// at maxFrameSize bytes.
func newWSConn(conn *websocket.Conn, maxFrameSize int64) *wsConn {
	conn.SetReadLimit(maxFrameSize)
	return &wsConn{conn: conn}
}

// ReadFrame blocks until the next text or binary message arrives.
func (wc *wsConn) ReadFrame() ([]byte, error) {
	for {
		messageType, payload, err := wc.conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				return nil, errFrameTooLarge
			}
			return nil, err
		}
		if messageType == websocket.TextMessage || messageType == websocket.BinaryMessage {
			return payload, nil
		}
	}
}

// WriteFrame sends the frame as a single text message.
func (wc *wsConn) WriteFrame(payload []byte) error {
	return wc.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close closes the underlying WebSocket connection.
func (wc *wsConn) Close() error {
	return wc.conn.Close()
}

// RemoteAddr returns the peer address for logging.
func (wc *wsConn) RemoteAddr() string {
	return wc.conn.RemoteAddr().String()
}
