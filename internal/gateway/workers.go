package gateway

import (
	"hash/fnv"
	"log/slog"
	"net"
	"runtime"
	"sync"
)

// WorkerPool executes handler work across a fixed set of shard goroutines.
// Work submitted under the same key always lands on the same shard, so
// handlers for one client run in order while distinct clients proceed in
// parallel.
type WorkerPool struct {
	shards    []chan func()
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewWorkerPool starts size shard workers; size <= 0 uses the hardware
// parallelism, floored at one.
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = max(1, runtime.GOMAXPROCS(0))
	}

	p := &WorkerPool{shards: make([]chan func(), size)}
	for i := range p.shards {
		ch := make(chan func(), 256)
		p.shards[i] = ch
		p.wg.Add(1)
		go p.runShard(ch)
	}
	return p
}

func (p *WorkerPool) runShard(ch chan func()) {
	defer p.wg.Done()
	for fn := range ch {
		runGuarded(fn)
	}
}

// runGuarded contains a panicking handler to its own invocation.
func runGuarded(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("handler panicked", "panic", r)
		}
	}()
	fn()
}

// Submit queues fn on the shard owning key. Blocks when the shard's buffer
// is full: backpressure on the dispatch loop, not event loss.
func (p *WorkerPool) Submit(key uint64, fn func()) {
	p.shards[key%uint64(len(p.shards))] <- fn
}

// Size returns the number of shards.
func (p *WorkerPool) Size() int {
	return len(p.shards)
}

// Close stops intake and waits for every queued piece of work to finish.
func (p *WorkerPool) Close() {
	p.closeOnce.Do(func() {
		for _, ch := range p.shards {
			close(ch)
		}
	})
	p.wg.Wait()
}

// shardKey orders handler execution per client. An unauthenticated event
// falls back to hashing the socket address, so frames from one connection
// still serialise.
func shardKey(clientID int64, conn net.Conn) uint64 {
	if clientID != 0 {
		return uint64(clientID)
	}
	if conn == nil {
		return 0
	}
	h := fnv.New64a()
	h.Write([]byte(conn.RemoteAddr().String()))
	return h.Sum64()
}
