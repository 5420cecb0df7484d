package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/udisondev/mmogate/internal/config"
)

// Server accepts game client connections and runs a Session per socket.
// It also routes handler responses back to the right session, keeping the
// per-socket write serialisation in one place.
type Server struct {
	cfg        config.ServerConfig
	dispatcher *Dispatcher

	mu       sync.Mutex
	listener net.Listener
	sessions map[net.Conn]*Session
}

// NewServer creates a game client acceptor.
func NewServer(cfg config.ServerConfig, dispatcher *Dispatcher) *Server {
	return &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		sessions:   make(map[net.Conn]*Session),
	}
}

// Addr returns the bound listen address, or nil before Run.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run binds the configured address and serves until ctx is canceled. A
// bind failure is fatal for the process.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from the listener. Split from Run so tests can
// inject their own listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("game server started", "address", ln.Addr(), "maxClients", s.cfg.MaxClients)

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				break
			}
			slog.Error("accept failed", "error", err)
			continue
		}

		if s.cfg.MaxClients > 0 && s.SessionCount() >= s.cfg.MaxClients {
			slog.Error("connection rejected, server full",
				"remote", remoteAddr(conn), "maxClients", s.cfg.MaxClients)
			conn.Close()
			continue
		}

		if tcpConn, ok := conn.(*net.TCPConn); ok {
			if err := tcpConn.SetKeepAlive(true); err != nil {
				slog.Warn("set keepalive failed", "error", err)
			}
			if err := tcpConn.SetKeepAlivePeriod(30 * time.Second); err != nil {
				slog.Warn("set keepalive period failed", "error", err)
			}
		}

		session := NewSession(conn, s.dispatcher, s.unregister)
		s.register(session)
		slog.Info("client connected", "remote", remoteAddr(conn))

		wg.Add(1)
		go func() {
			defer wg.Done()
			session.Run()
		}()
	}

	s.closeAllSessions()
	wg.Wait()
	return nil
}

// SendToClient writes a response frame on the session owning conn. A
// vanished session (disconnect raced the handler) is not an error worth
// surfacing; the payload just has nowhere to go.
func (s *Server) SendToClient(conn net.Conn, payload []byte) error {
	s.mu.Lock()
	session, ok := s.sessions[conn]
	s.mu.Unlock()

	if !ok {
		slog.Debug("response dropped, session gone", "remote", remoteAddr(conn))
		return nil
	}
	return session.SendResponse(payload)
}

// Broadcast writes a frame to every live session.
func (s *Server) Broadcast(payload []byte) {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()

	for _, session := range sessions {
		_ = session.SendResponse(payload)
	}
}

func (s *Server) register(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Conn()] = session
}

func (s *Server) unregister(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, session.Conn())
}

func (s *Server) closeAllSessions() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()

	for _, session := range sessions {
		session.HandleDisconnect()
	}
}
