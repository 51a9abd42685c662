package sched

import "sync"

// CompletionWaiter is implemented by a ring gateway. WaitOne blocks until at
// least one completion has been processed; processing a completion means
// resuming its awaiter, typically by calling Scheduler.Enqueue so the resume
// happens at a safe point rather than reentrantly inside completion
// draining.
type CompletionWaiter interface {
	WaitOne() error
}

// Scheduler is a FIFO ready queue driven by one goroutine at a time.
// Individual tasks run as goroutines (the idiomatic-Go re-expression of a
// coroutine frame, see DESIGN.md), but any code that needs to resume a
// waiter without running reentrantly inside a completion callback enqueues
// a thunk here instead.
type Scheduler struct {
	mu     sync.Mutex
	ready  []func()
	waiter CompletionWaiter
}

func NewScheduler(waiter CompletionWaiter) *Scheduler {
	return &Scheduler{waiter: waiter}
}

// SetWaiter attaches the completion waiter after construction, for the
// common wiring order where the ring gateway itself needs a *Scheduler
// reference (to enqueue resumptions) before it exists to hand back here.
func (s *Scheduler) SetWaiter(w CompletionWaiter) {
	s.mu.Lock()
	s.waiter = w
	s.mu.Unlock()
}

// Enqueue appends a resumable handle to the tail of the ready queue.
func (s *Scheduler) Enqueue(fn func()) {
	s.mu.Lock()
	s.ready = append(s.ready, fn)
	s.mu.Unlock()
}

// RunUntilIdle pops and resumes handles until the queue is empty, including
// any enqueued as a side effect of running an earlier one.
func (s *Scheduler) RunUntilIdle() {
	for {
		s.mu.Lock()
		if len(s.ready) == 0 {
			s.mu.Unlock()
			return
		}
		fn := s.ready[0]
		s.ready = s.ready[1:]
		s.mu.Unlock()
		fn()
	}
}

// Join drains the ready queue, then, if t is still pending, blocks the
// calling goroutine on the scheduler's completion waiter, repeating until t
// finishes and returning its value.
func Join[T any](s *Scheduler, t *Task[T]) (T, error) {
	for {
		s.RunUntilIdle()
		select {
		case <-t.done:
			return t.val, t.err
		default:
		}
		if s.waiter == nil {
			<-t.done
			return t.val, t.err
		}
		if err := s.waiter.WaitOne(); err != nil {
			var zero T
			return zero, err
		}
	}
}
