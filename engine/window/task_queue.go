package window

import "sync"

// taskQueue collects work handed to the window thread from any goroutine. Posted tasks
// run in submission order; at most one frame callback is pending, and it runs after the
// posted tasks of the same drain.
type taskQueue struct {
	mu     sync.Mutex
	posted []func()
	frame  func()

	// wake interrupts the blocking event wait so the queue gets drained.
	wake func()
}

func newTaskQueue(wake func()) *taskQueue {
	return &taskQueue{wake: wake}
}

// post enqueues fn and wakes the event loop.
func (q *taskQueue) post(fn func()) {
	q.mu.Lock()
	q.posted = append(q.posted, fn)
	q.mu.Unlock()
	q.signal()
}

// requestFrame schedules fn as the next frame callback, replacing any pending one.
func (q *taskQueue) requestFrame(fn func()) {
	q.mu.Lock()
	q.frame = fn
	q.mu.Unlock()
	q.signal()
}

// pending reports whether a drain would run anything.
func (q *taskQueue) pending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.posted) > 0 || q.frame != nil
}

// drain runs every posted task, then the pending frame callback. Tasks posted or frames
// requested while draining run on the next drain.
func (q *taskQueue) drain() {
	q.mu.Lock()
	posted := q.posted
	frame := q.frame
	q.posted = nil
	q.frame = nil
	q.mu.Unlock()

	for _, fn := range posted {
		fn()
	}
	if frame != nil {
		frame()
	}
}

func (q *taskQueue) signal() {
	if q.wake != nil {
		q.wake()
	}
}
