package scheduler

import (
	"container/heap"
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs recurring tasks ordered by their next-run time. One
// goroutine sleeps until the earliest task is due, executes every ready task
// outside the lock, then re-arms each at now + interval. Scheduling an
// earlier task while the loop sleeps preempts the sleep through the wake
// channel.
type Scheduler struct {
	mu     sync.Mutex
	heap   taskHeap
	tasks  map[int64]*Task
	nextID int64
	wake   chan struct{}
	log    *slog.Logger
}

// New creates an empty scheduler logging through log.
func New(log *slog.Logger) *Scheduler {
	return &Scheduler{
		tasks: make(map[int64]*Task),
		wake:  make(chan struct{}, 1),
		log:   log,
	}
}

// Schedule registers fn to run every interval; the first run happens no
// earlier than now + interval. Returns the task id for Remove.
func (s *Scheduler) Schedule(name string, interval time.Duration, fn func()) int64 {
	s.mu.Lock()
	s.nextID++
	t := &Task{
		id:       s.nextID,
		name:     name,
		interval: interval,
		nextRun:  time.Now().Add(interval),
		fn:       fn,
	}
	s.tasks[t.id] = t
	heap.Push(&s.heap, t)
	s.mu.Unlock()

	s.signal()
	return t.id
}

// Remove marks the task stopped. The heap entry is discarded when it
// reaches the top; the task never fires again after Remove returns.
func (s *Scheduler) Remove(id int64) {
	s.mu.Lock()
	if t, ok := s.tasks[id]; ok {
		t.stopped = true
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	s.signal()
}

// Len returns the number of live tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Run executes tasks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		ready, wait := s.collectReady()

		for _, t := range ready {
			s.execute(t)
			s.rearm(t)
		}
		if len(ready) > 0 {
			// New tasks may have become ready while executing.
			continue
		}

		var timerC <-chan time.Time
		var timer *time.Timer
		if wait >= 0 {
			timer = time.NewTimer(wait)
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-s.wake:
		case <-timerC:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// collectReady pops every due non-stopped task. The returned wait is the
// delay until the next pending task, or -1 when the heap is empty.
func (s *Scheduler) collectReady() (ready []*Task, wait time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for s.heap.Len() > 0 {
		top := s.heap[0]
		if top.stopped {
			heap.Pop(&s.heap)
			continue
		}
		if top.nextRun.After(now) {
			return ready, top.nextRun.Sub(now)
		}
		heap.Pop(&s.heap)
		ready = append(ready, top)
	}
	return ready, -1
}

// execute runs the task body. A panic is contained and logged so one broken
// task cannot take down the scheduler loop.
func (s *Scheduler) execute(t *Task) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduled task panicked", "task", t.name, "panic", r)
		}
	}()
	t.fn()
}

func (s *Scheduler) rearm(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.stopped {
		return
	}
	t.nextRun = time.Now().Add(t.interval)
	heap.Push(&s.heap, t)
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
