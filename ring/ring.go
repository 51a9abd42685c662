// Package ring is the thin binding over the kernel's io_uring facility:
// operation builders prepare submission entries, Submit blocks the calling
// goroutine until the matching completion arrives, and WaitOne is the
// blocking drain the scheduler parks on when its ready queue runs dry.
package ring

import (
	"sync"
	"syscall"

	"github.com/pawelgaczynski/giouring"

	"github.com/co-async-go/co-async/sched"
)

// Options configures ring depth.
type Options struct {
	// Entries is the submission/completion queue depth. Zero defaults to 256.
	Entries uint32
}

var DefaultOptions = Options{Entries: 256}

type cqeResult struct {
	res   int32
	flags uint32
}

// Ring owns one *giouring.Ring plus the user-data-keyed waiter table that
// Submit/SubmitLinked register into and WaitOne drains.
type Ring struct {
	mu      sync.Mutex
	ring    *giouring.Ring
	sched   *sched.Scheduler
	next    uint64
	waiters map[uint64]chan cqeResult
}

// Open creates a new ring whose completions are enqueued onto s. Open does
// not register the ring as s's completion waiter; once the caller passes it
// to s.SetWaiter, sched.Join calls r.WaitOne whenever its ready queue is
// empty and a task is still pending.
func Open(opts Options, s *sched.Scheduler) (*Ring, error) {
	entries := opts.Entries
	if entries == 0 {
		entries = DefaultOptions.Entries
	}
	gr, err := giouring.CreateRing(entries)
	if err != nil {
		return nil, err
	}
	return &Ring{
		ring:    gr,
		sched:   s,
		next:    1,
		waiters: make(map[uint64]chan cqeResult),
	}, nil
}

func (r *Ring) Close() {
	r.ring.QueueExit()
}

// getSQE returns a free submission queue entry, submitting already-prepared
// entries once if the queue is momentarily full.
func (r *Ring) getSQE() *giouring.SubmissionQueueEntry {
	sqe := r.ring.GetSQE()
	if sqe == nil {
		r.ring.Submit()
		sqe = r.ring.GetSQE()
	}
	return sqe
}

func (r *Ring) allocUserData() uint64 {
	r.next++
	return r.next
}

// Submit prepares one SQE via build, submits it, and blocks the calling
// goroutine until the matching completion arrives, returning the kernel
// result code (non-negative success or negative errno).
func (r *Ring) Submit(build SQEBuilder) (int32, uint64, error) {
	return r.SubmitNotify(build, nil)
}

// SubmitNotify is Submit with an in-flight notification: once the entry has
// been handed to the kernel, but before blocking on its completion,
// inFlight is invoked with the entry's user-data. Cancellation needs this;
// a canceller must learn which user-data to target while the operation is
// still in flight, not after it has already completed.
func (r *Ring) SubmitNotify(build SQEBuilder, inFlight func(ud uint64)) (int32, uint64, error) {
	ch := make(chan cqeResult, 1)
	r.mu.Lock()
	ud := r.allocUserData()
	r.waiters[ud] = ch
	sqe := r.getSQE()
	if sqe == nil {
		delete(r.waiters, ud)
		r.mu.Unlock()
		return 0, 0, syscall.ENOMEM
	}
	build(sqe)
	sqe.UserData = ud
	_, err := r.ring.Submit()
	r.mu.Unlock()
	if err != nil {
		return 0, ud, err
	}
	if inFlight != nil {
		inFlight(ud)
	}
	res := <-ch
	return res.res, ud, nil
}

// SubmitLinked prepares a and b as a single chain with IOSQE_IO_LINK set on
// a: completion or cancellation of a cascades to b (typically a
// link-timeout). It returns a's result and user-data; b's own result is
// discarded once its completion is drained.
func (r *Ring) SubmitLinked(a, b SQEBuilder) (int32, uint64, error) {
	chA := make(chan cqeResult, 1)
	r.mu.Lock()
	udA := r.allocUserData()
	udB := r.allocUserData()
	r.waiters[udA] = chA
	r.waiters[udB] = make(chan cqeResult, 1)

	sqeA := r.getSQE()
	if sqeA == nil {
		delete(r.waiters, udA)
		delete(r.waiters, udB)
		r.mu.Unlock()
		return 0, 0, syscall.ENOMEM
	}
	a(sqeA)
	sqeA.UserData = udA
	sqeA.Flags |= giouring.SqeIOLink

	sqeB := r.getSQE()
	if sqeB == nil {
		delete(r.waiters, udA)
		delete(r.waiters, udB)
		r.mu.Unlock()
		return 0, 0, syscall.ENOMEM
	}
	b(sqeB)
	sqeB.UserData = udB

	_, err := r.ring.Submit()
	r.mu.Unlock()
	if err != nil {
		return 0, udA, err
	}
	res := <-chA
	return res.res, udA, nil
}

// Cancel issues a cancel-by-user-data submission targeting ud. If the
// target already completed, the kernel treats the cancel as a no-op.
func (r *Ring) Cancel(ud uint64) {
	r.mu.Lock()
	sqe := r.getSQE()
	if sqe == nil {
		r.mu.Unlock()
		return
	}
	sqe.PrepareCancel64(ud, 0)
	sqe.UserData = 0
	r.ring.Submit()
	r.mu.Unlock()
}

// WaitOne implements sched.CompletionWaiter: block for at least one
// completion and resume its awaiter.
func (r *Ring) WaitOne() error {
	_, err := r.ring.SubmitAndWait(1)
	if err != nil && !temporary(err) {
		return err
	}
	r.drain()
	return nil
}

const batchSize = 64

func (r *Ring) drain() {
	var cqes [batchSize]*giouring.CompletionQueueEvent
	for {
		peeked := r.ring.PeekBatchCQE(cqes[:])
		if peeked == 0 {
			return
		}
		r.mu.Lock()
		for _, cqe := range cqes[:peeked] {
			if cqe.UserData == 0 {
				continue
			}
			ch, ok := r.waiters[cqe.UserData]
			if !ok {
				continue
			}
			delete(r.waiters, cqe.UserData)
			result := cqeResult{res: cqe.Res, flags: cqe.Flags}
			resumeCh := ch
			if r.sched != nil {
				r.sched.Enqueue(func() { resumeCh <- result })
			} else {
				resumeCh <- result
			}
		}
		r.mu.Unlock()
		r.ring.CQAdvance(peeked)
		if peeked < uint32(batchSize) {
			return
		}
	}
}

func temporary(err error) bool {
	errno, ok := err.(syscall.Errno)
	if !ok {
		return false
	}
	return errno == syscall.EINTR || errno == syscall.EAGAIN
}
