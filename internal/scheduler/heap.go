package scheduler

import "time"

// Task is one recurring job. Owned by the scheduler; stopped tasks stay in
// the heap until they surface at the top (lazy deletion).
type Task struct {
	id       int64
	name     string
	interval time.Duration
	nextRun  time.Time
	fn       func()
	stopped  bool
	index    int
}

// taskHeap is a min-heap ordered by nextRun, earliest on top.
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool { return h[i].nextRun.Before(h[j].nextRun) }

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
