// Package server wires the relay's components together and manages their
// lifecycle from startup through graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"
)

// Server is the chat relay: a TCP listener speaking the newline-delimited
// protocol, an HTTP side carrying the WebSocket bridge plus health and
// metrics endpoints, and the shared registry, gate, router, and relay that
// every connection handler dispatches into.
type Server struct {
	cfg      *Config
	registry *Registry
	gate     *AuthGate
	router   *PrivateMessageRouter
	relay    *FileRelay
	origins  *originPolicy

	listener   net.Listener
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	sessions map[*Session]struct{}
}

// New assembles a relay from the given configuration. It fails when the
// upload directory cannot be created.
func New(cfg *Config) (*Server, error) {
	cfg.sanitize()

	relay, err := NewFileRelay(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())

	srv := &Server{
		cfg:      cfg,
		registry: registry,
		gate:     NewAuthGate(registry),
		router:   NewPrivateMessageRouter(registry),
		relay:    relay,
		origins:  newOriginPolicy(cfg.AllowedOrigins),
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[*Session]struct{}),
	}
	srv.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv, nil
}

// Start binds the TCP listener and launches the accept loop and the HTTP
// server. A bind failure is returned to the caller and aborts startup;
// nothing keeps running after it.
func (srv *Server) Start() error {
	listener, err := net.Listen("tcp", srv.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", srv.cfg.ListenAddr, err)
	}
	srv.listener = listener
	log.Printf("Chat relay listening on %s", listener.Addr())

	srv.wg.Add(1)
	go func() {
		defer srv.wg.Done()
		srv.acceptLoop()
	}()

	srv.wg.Add(1)
	go func() {
		defer srv.wg.Done()
		log.Printf("HTTP server listening on %s", srv.cfg.HTTPAddr)
		if err := srv.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Addr returns the bound TCP listener address, useful when the configured
// address requested an ephemeral port.
func (srv *Server) Addr() net.Addr {
	if srv.listener == nil {
		return nil
	}
	return srv.listener.Addr()
}

// Registry exposes the room directory, primarily for tests.
func (srv *Server) Registry() *Registry {
	return srv.registry
}

// Shutdown stops accepting connections, closes every live session, and waits
// for the connection handlers to finish or the timeout to elapse.
func (srv *Server) Shutdown(timeout time.Duration) error {
	log.Println("Initiating relay shutdown...")
	srv.cancel()

	if srv.listener != nil {
		_ = srv.listener.Close()
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), timeout)
	defer stop()
	_ = srv.httpServer.Shutdown(shutdownCtx)

	srv.mu.Lock()
	sessions := make([]*Session, 0, len(srv.sessions))
	for s := range srv.sessions {
		sessions = append(sessions, s)
	}
	srv.mu.Unlock()

	for _, s := range sessions {
		_ = s.conn.Close()
	}

	done := make(chan struct{})
	go func() {
		srv.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Relay shutdown completed")
		return nil
	case <-time.After(timeout):
		log.Println("Relay shutdown timeout reached, some handlers may still be running")
		return context.DeadlineExceeded
	}
}

func (srv *Server) trackSession(s *Session) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.sessions[s] = struct{}{}
}

func (srv *Server) untrackSession(s *Session) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	delete(srv.sessions, s)
}
