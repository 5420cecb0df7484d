package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// entry pairs a detached record with the handler that renders it. The
// handler pointer carries any attrs/groups attached before enqueue.
type entry struct {
	h slog.Handler
	r slog.Record
}

// core is the shared queue and worker behind every derived AsyncHandler.
type core struct {
	mu      sync.RWMutex
	closed  bool
	queue   chan entry
	done    chan struct{}
	dropped atomic.Uint64
}

// AsyncHandler is a slog.Handler that never blocks the caller: records are
// enqueued and a single background worker serialises output. Records below
// ERROR render to stdout, ERROR and above to stderr. When the queue is full
// the record is dropped and counted. Record timestamps are set by slog at
// the call site, so output order reflects enqueue order, not render time.
type AsyncHandler struct {
	core   *core
	level  slog.Leveler
	stdout slog.Handler
	stderr slog.Handler
}

// New creates an AsyncHandler writing to os.Stdout/os.Stderr and starts its
// worker. queueSize bounds the number of in-flight records.
func New(level slog.Leveler, queueSize int) *AsyncHandler {
	return NewWithWriters(os.Stdout, os.Stderr, level, queueSize)
}

// NewWithWriters is New with explicit output streams.
func NewWithWriters(out, errOut io.Writer, level slog.Leveler, queueSize int) *AsyncHandler {
	if queueSize < 1 {
		queueSize = 1
	}
	opts := &slog.HandlerOptions{Level: level}
	c := &core{
		queue: make(chan entry, queueSize),
		done:  make(chan struct{}),
	}
	h := &AsyncHandler{
		core:   c,
		level:  level,
		stdout: slog.NewTextHandler(out, opts),
		stderr: slog.NewTextHandler(errOut, opts),
	}
	go c.run()
	return h
}

func (c *core) run() {
	for e := range c.queue {
		_ = e.h.Handle(context.Background(), e.r)
	}
	close(c.done)
}

// Enabled implements slog.Handler.
func (h *AsyncHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.level != nil {
		minLevel = h.level.Level()
	}
	return level >= minLevel
}

// Handle implements slog.Handler. It never blocks: a full queue or a closed
// handler drops the record.
func (h *AsyncHandler) Handle(_ context.Context, r slog.Record) error {
	target := h.stdout
	if r.Level >= slog.LevelError {
		target = h.stderr
	}

	h.core.mu.RLock()
	defer h.core.mu.RUnlock()

	if h.core.closed {
		h.core.dropped.Add(1)
		return nil
	}

	select {
	case h.core.queue <- entry{h: target, r: r.Clone()}:
	default:
		h.core.dropped.Add(1)
	}
	return nil
}

// WithAttrs implements slog.Handler. The derived handler shares the queue
// and worker.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{
		core:   h.core,
		level:  h.level,
		stdout: h.stdout.WithAttrs(attrs),
		stderr: h.stderr.WithAttrs(attrs),
	}
}

// WithGroup implements slog.Handler.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{
		core:   h.core,
		level:  h.level,
		stdout: h.stdout.WithGroup(name),
		stderr: h.stderr.WithGroup(name),
	}
}

// Dropped returns how many records were discarded because the queue was
// full or the handler closed.
func (h *AsyncHandler) Dropped() uint64 {
	return h.core.dropped.Load()
}

// Close stops intake, drains queued records and joins the worker. Safe to
// call more than once.
func (h *AsyncHandler) Close() {
	h.core.mu.Lock()
	if h.core.closed {
		h.core.mu.Unlock()
		<-h.core.done
		return
	}
	h.core.closed = true
	h.core.mu.Unlock()

	close(h.core.queue)
	<-h.core.done
}
