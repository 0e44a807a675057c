// Package server accepts transport connections and hands each one to its own
// connection handler goroutine.
package server

import "log"

// acceptLoop accepts TCP connections until the listener closes. There is no
// connection cap: every accepted connection gets its own handler goroutine.
// A failed accept is logged and does not affect the other connections.
func (srv *Server) acceptLoop() {
	for {
		conn, err := srv.listener.Accept()
		if err != nil {
			select {
			case <-srv.ctx.Done():
				return
			default:
			}
			log.Printf("Error accepting connection: %v", err)
			continue
		}

		srv.wg.Add(1)
		go func() {
			defer srv.wg.Done()
			srv.handleConnection(newLineConn(conn, srv.cfg.MaxFrameSize))
		}()
	}
}
