package worker

import (
	"sync"
	"time"
)

// DefaultIdleDelay is how long the loop sleeps when no job is pending
const DefaultIdleDelay = time.Millisecond

// Job is a unit of background work producing R
type Job[R any] interface {
	Execute() R
}

// Completed pairs a finished job with its result
type Completed[J any, R any] struct {
	Job    J
	Result R
}

// Thread runs submitted jobs one at a time on a single goroutine, in
// submission order. Results are collected until the owner polls them.
type Thread[J Job[R], R any] struct {
	mu        sync.Mutex
	pending   []J
	completed []Completed[J, R]
	running   bool
	stopped   bool

	idle time.Duration
	quit chan struct{}
	done chan struct{}
}

// NewThread creates a stopped thread. A non-positive idle delay selects
// DefaultIdleDelay.
func NewThread[J Job[R], R any](idle time.Duration) *Thread[J, R] {
	if idle <= 0 {
		idle = DefaultIdleDelay
	}
	return &Thread[J, R]{idle: idle}
}

// Start launches the loop. It returns false when the thread is already
// running or has been stopped.
func (t *Thread[J, R]) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.stopped {
		return false
	}
	t.quit = make(chan struct{})
	t.done = make(chan struct{})
	t.running = true
	go t.loop(t.quit, t.done)
	return true
}

// Stop ends the loop and waits for it. A job already executing finishes
// and its result stays pollable; jobs still pending are dropped.
func (t *Thread[J, R]) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	running := t.running
	if running {
		close(t.quit)
	}
	t.mu.Unlock()

	if running {
		<-t.done
	}

	t.mu.Lock()
	t.running = false
	t.pending = nil
	t.mu.Unlock()
}

// IsRunning reports whether the loop goroutine is active
func (t *Thread[J, R]) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Submit appends a job to the pending queue
func (t *Thread[J, R]) Submit(job J) {
	t.mu.Lock()
	t.pending = append(t.pending, job)
	t.mu.Unlock()
}

// Poll pops the oldest completed job
func (t *Thread[J, R]) Poll() (Completed[J, R], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.completed) == 0 {
		return Completed[J, R]{}, false
	}
	c := t.completed[0]
	t.completed[0] = Completed[J, R]{}
	t.completed = t.completed[1:]
	return c, true
}

func (t *Thread[J, R]) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *Thread[J, R]) CompletedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.completed)
}

func (t *Thread[J, R]) next() (J, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero J
	if len(t.pending) == 0 {
		return zero, false
	}
	job := t.pending[0]
	t.pending[0] = zero
	t.pending = t.pending[1:]
	return job, true
}

func (t *Thread[J, R]) loop(quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-quit:
			return
		default:
		}

		job, ok := t.next()
		if !ok {
			select {
			case <-quit:
				return
			case <-time.After(t.idle):
			}
			continue
		}

		result := job.Execute()

		t.mu.Lock()
		t.completed = append(t.completed, Completed[J, R]{Job: job, Result: result})
		t.mu.Unlock()
	}
}
