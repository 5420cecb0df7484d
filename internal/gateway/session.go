package gateway

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/udisondev/mmogate/internal/protocol"
)

// readBufSize is the per-read staging buffer. Frames larger than one read
// accumulate across reads.
const readBufSize = 1024

// Session is one game client connection: a read loop feeding the
// dispatcher and a serialised write path for responses. The socket handle
// is shared with every event the session spawned; Close is idempotent.
type Session struct {
	conn       net.Conn
	dispatcher *Dispatcher

	writeMu sync.Mutex
	closed  atomic.Bool

	disconnectOnce sync.Once
	onClose        func(*Session)
}

// NewSession wraps an accepted connection. onClose runs once, after the
// socket is shut and the disconnect events are queued; the server uses it
// to drop the session from its registry.
func NewSession(conn net.Conn, dispatcher *Dispatcher, onClose func(*Session)) *Session {
	return &Session{
		conn:       conn,
		dispatcher: dispatcher,
		onClose:    onClose,
	}
}

// Conn returns the underlying socket.
func (s *Session) Conn() net.Conn {
	return s.conn
}

// Run reads frames until the connection dies, dispatching each one in
// arrival order. Always ends in HandleDisconnect.
func (s *Session) Run() {
	defer s.HandleDisconnect()

	staging := make([]byte, readBufSize)
	var acc []byte
	for {
		n, err := s.conn.Read(staging)
		if n > 0 {
			acc = append(acc, staging[:n]...)
			for {
				frame, rest, found := protocol.NextFrame(acc)
				if !found {
					break
				}
				acc = rest
				if len(frame) > 0 {
					s.dispatcher.DispatchClientFrame(frame, s.conn)
				}
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				slog.Error("client read failed", "remote", remoteAddr(s.conn), "error", err)
			}
			return
		}
	}
}

// SendResponse writes one framed response. Writes on the socket serialise
// on the session's mutex; a closed session skips the write silently and a
// failed write tears the connection down.
func (s *Session) SendResponse(payload []byte) error {
	if s.closed.Load() {
		return nil
	}

	buf := make([]byte, 0, len(payload)+len(protocol.ClientFrameSuffix))
	buf = append(buf, payload...)
	buf = append(buf, protocol.ClientFrameSuffix...)

	s.writeMu.Lock()
	_, err := s.conn.Write(buf)
	s.writeMu.Unlock()

	if err != nil {
		slog.Error("client write failed", "remote", remoteAddr(s.conn), "error", err)
		s.HandleDisconnect()
		return err
	}
	return nil
}

// HandleDisconnect closes the socket and queues the disconnect event pair.
// Safe to call from any goroutine, any number of times: the teardown runs
// exactly once per session lifetime.
func (s *Session) HandleDisconnect() {
	s.disconnectOnce.Do(func() {
		s.closed.Store(true)
		s.conn.Close()
		s.dispatcher.DispatchDisconnect(s.conn)
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}
