package event

import (
	"errors"
	"sync"
)

// ErrQueueClosed is returned by Push and PushBatch after Close.
var ErrQueueClosed = errors.New("event queue closed")

// Queue is an unbounded multi-producer/multi-consumer FIFO with blocking
// batch pop. Priorities are expressed by running several queues, not within
// one queue.
//
// Built on a condition variable rather than a channel: PopBatch must block
// until at least one event exists and then drain up to max in one step, and
// Close must wake every blocked consumer with a definitive "no more events"
// answer. Neither composes cleanly from channel operations.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Event
	closed bool
}

// NewQueue creates an open empty queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends one event.
func (q *Queue) Push(e Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, e)
	q.cond.Signal()
	return nil
}

// PushBatch appends events preserving their order.
func (q *Queue) PushBatch(es []Event) error {
	if len(es) == 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, es...)
	q.cond.Broadcast()
	return nil
}

// Pop blocks until an event is available and stores it in out. Returns false
// when the queue is closed and drained.
func (q *Queue) Pop(out *Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		if q.closed {
			return false
		}
		q.cond.Wait()
	}

	*out = q.items[0]
	q.items = q.items[1:]
	return true
}

// PopBatch blocks until at least one event is available, then drains up to
// max events into out (reslicing it to zero first). Returns false when the
// queue is closed and drained. Order is preserved.
func (q *Queue) PopBatch(out *[]Event, max int) bool {
	if max < 1 {
		max = 1
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		if q.closed {
			return false
		}
		q.cond.Wait()
	}

	n := min(max, len(q.items))
	*out = append((*out)[:0], q.items[:n]...)
	q.items = q.items[n:]
	return true
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close marks the queue closed and wakes every blocked consumer. Remaining
// events stay poppable; consumers see false once the queue drains.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
