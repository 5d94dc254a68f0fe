package focus

import (
	"container/heap"
	"time"
)

// Scheduler defers a callback. Implementations must run fn on the goroutine
// that owns the Machine.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

type task struct {
	due time.Time
	seq uint64
	fn  func()
}

type taskHeap []task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}
func (h taskHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x interface{}) { *h = append(*h, x.(task)) }
func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = task{}
	*h = old[:n-1]
	return t
}

// Queue is a single-threaded timer queue. Nothing runs on its own: callbacks
// fire only from Advance, in due-time order, ties broken by insertion order.
// Queue is not safe for concurrent use.
type Queue struct {
	now   time.Time
	tasks taskHeap
	seq   uint64
}

// NewQueue creates a queue whose clock starts at start.
func NewQueue(start time.Time) *Queue {
	return &Queue{now: start}
}

// Now returns the time of the last Advance.
func (q *Queue) Now() time.Time {
	return q.now
}

// Pending returns the number of callbacks not yet run.
func (q *Queue) Pending() int {
	return len(q.tasks)
}

// AfterFunc schedules fn to run d after the queue's current time.
func (q *Queue) AfterFunc(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	q.seq++
	heap.Push(&q.tasks, task{due: q.now.Add(d), seq: q.seq, fn: fn})
}

// Advance moves the clock to now and runs every callback due by then,
// including callbacks scheduled by callbacks run during this call. The clock
// never moves backwards. It returns the number of callbacks run.
func (q *Queue) Advance(now time.Time) int {
	if now.Before(q.now) {
		now = q.now
	}

	ran := 0
	for len(q.tasks) > 0 && !q.tasks[0].due.After(now) {
		t := heap.Pop(&q.tasks).(task)
		// Callbacks see the time they were due, so chained delays stay exact.
		q.now = t.due
		t.fn()
		ran++
	}
	q.now = now
	return ran
}

// Elapse advances the clock by d.
func (q *Queue) Elapse(d time.Duration) int {
	return q.Advance(q.now.Add(d))
}
