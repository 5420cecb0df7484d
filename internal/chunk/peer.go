package chunk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/udisondev/mmogate/internal/protocol"
)

// Reconnect schedule: wait base * 2^attempt between attempts, give up after
// MaxRetryCount failures in a row. Exhaustion is fatal for the process:
// a gateway without its chunk server has nothing to coordinate.
const (
	MaxRetryCount      = 5
	DefaultBackoffBase = 2 * time.Second
)

// ErrRetriesExhausted reports that the chunk server stayed unreachable
// through the whole backoff schedule.
var ErrRetriesExhausted = errors.New("chunk server unreachable after retries")

// ErrPeerClosed is returned by Send when no connection is up.
var ErrPeerClosed = errors.New("chunk peer not connected")

// Dialer opens a connection to the chunk server. Injected so tests can
// substitute a pipe or fail on purpose.
type Dialer func(ctx context.Context, addr string) (net.Conn, error)

// FrameSink consumes complete inbound frames from the chunk link. The
// gateway dispatcher implements it; keeping it an interface here breaks the
// package cycle between the two sides of the event pipeline.
type FrameSink interface {
	DispatchChunkFrame(frame []byte, conn net.Conn)
}

// Peer is the single long-lived outbound link to the chunk server. Writes
// are mutex-serialised and framed with a trailing newline; reads accumulate
// into a buffer and hand complete frames to the sink.
type Peer struct {
	addr        string
	dial        Dialer
	sink        FrameSink
	manager     *Manager
	backoffBase time.Duration

	mu   sync.Mutex
	conn net.Conn
}

// NewPeer creates a peer for the given chunk-server address. A nil dialer
// uses net.Dialer.
func NewPeer(addr string, sink FrameSink, manager *Manager, dial Dialer) *Peer {
	if dial == nil {
		var d net.Dialer
		dial = func(ctx context.Context, addr string) (net.Conn, error) {
			return d.DialContext(ctx, "tcp", addr)
		}
	}
	return &Peer{
		addr:        addr,
		dial:        dial,
		sink:        sink,
		manager:     manager,
		backoffBase: DefaultBackoffBase,
	}
}

// SetBackoffBase overrides the first retry delay. Tests shrink it.
func (p *Peer) SetBackoffBase(d time.Duration) {
	p.backoffBase = d
}

// Connected reports whether a link is currently up.
func (p *Peer) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil
}

// Send writes one frame to the chunk server, terminated with a newline.
// Concurrent senders serialise on the peer's write mutex.
func (p *Peer) Send(payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return ErrPeerClosed
	}

	buf := make([]byte, 0, len(payload)+len(protocol.ChunkFrameSuffix))
	buf = append(buf, payload...)
	buf = append(buf, protocol.ChunkFrameSuffix...)

	if _, err := p.conn.Write(buf); err != nil {
		// The read loop notices the broken socket too; closing here just
		// accelerates the reconnect.
		p.conn.Close()
		p.conn = nil
		return fmt.Errorf("writing to chunk server: %w", err)
	}
	return nil
}

// Run connects and serves the link until ctx is canceled. Every connection
// loss restarts the backoff cycle; MaxRetryCount consecutive failures end
// Run with ErrRetriesExhausted.
func (p *Peer) Run(ctx context.Context) error {
	for {
		conn, err := p.connect(ctx)
		if err != nil {
			return err
		}

		p.setConn(conn)
		slog.Info("chunk server connected", "addr", p.addr)

		err = p.readLoop(ctx, conn)
		p.dropConn(conn)

		if ctx.Err() != nil {
			return nil
		}
		slog.Error("chunk server connection lost", "addr", p.addr, "error", err)
	}
}

// Close tears down the active connection, unblocking the read loop.
func (p *Peer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

// connect dials under the exponential backoff schedule.
func (p *Peer) connect(ctx context.Context) (net.Conn, error) {
	for attempt := 0; attempt < MaxRetryCount; attempt++ {
		if attempt > 0 {
			wait := p.backoffBase << (attempt - 1)
			slog.Info("retrying chunk server", "attempt", attempt, "wait", wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		conn, err := p.dial(ctx, p.addr)
		if err == nil {
			return conn, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Error("chunk server dial failed", "addr", p.addr, "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("%w: %s", ErrRetriesExhausted, p.addr)
}

func (p *Peer) setConn(conn net.Conn) {
	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()
}

func (p *Peer) dropConn(conn net.Conn) {
	conn.Close()
	p.mu.Lock()
	if p.conn == conn {
		p.conn = nil
	}
	p.mu.Unlock()

	if p.manager != nil {
		p.manager.RemoveByConn(conn)
	}
}

// readLoop accumulates bytes and hands every complete frame to the sink.
func (p *Peer) readLoop(ctx context.Context, conn net.Conn) error {
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	staging := make([]byte, 1024)
	var acc []byte
	for {
		n, err := conn.Read(staging)
		if n > 0 {
			acc = append(acc, staging[:n]...)
			for {
				frame, rest, found := protocol.NextFrame(acc)
				if !found {
					break
				}
				acc = rest
				if len(frame) > 0 {
					p.sink.DispatchChunkFrame(frame, conn)
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.EOF
			}
			return fmt.Errorf("reading from chunk server: %w", err)
		}
	}
}
