// Package server implements the core engine of the chat relay: connection
// handling, authentication gating, room membership with bounded history,
// broadcast fan-out, private message routing, and file relaying.
//
// The implementation is organized into specialized files for configuration,
// sessions, rooms, the registry, transports, and HTTP handlers to keep the
// codebase maintainable and testable as the project grows.
package server
