package sched

import (
	"sync"
	"sync/atomic"
)

// Canceller is registered against a CancelToken for the lifetime of one
// in-flight operation; RequestCancel attempts to abort it (for ring ops, by
// issuing a cancel-by-user-data submission).
type Canceller interface {
	RequestCancel()
}

// CancelToken is a shared {canceled, cancellers} record. Multiple
// goroutines may invoke operations against the same token concurrently, so
// the cancellers slice is guarded by a mutex.
type CancelToken struct {
	canceled   atomic.Bool
	mu         sync.Mutex
	cancellers []Canceller
}

func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Canceled reports whether Cancel has been called.
func (t *CancelToken) Canceled() bool {
	return t.canceled.Load()
}

// Cancel marks the token canceled and requests cancellation of every
// currently registered canceller. Idempotent.
func (t *CancelToken) Cancel() {
	if !t.canceled.CompareAndSwap(false, true) {
		return
	}
	t.mu.Lock()
	cancellers := t.cancellers
	t.mu.Unlock()
	for _, c := range cancellers {
		c.RequestCancel()
	}
}

// register adds c to the cancellers list; if the token is already canceled
// it requests cancellation immediately instead (a cancel that raced the
// registration must not be lost).
func (t *CancelToken) register(c Canceller) {
	if t.canceled.Load() {
		c.RequestCancel()
		return
	}
	t.mu.Lock()
	t.cancellers = append(t.cancellers, c)
	t.mu.Unlock()
}

// unregister removes c once its operation has completed; a cancel request
// after this point is a no-op for c.
func (t *CancelToken) unregister(c Canceller) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, existing := range t.cancellers {
		if existing == c {
			t.cancellers = append(t.cancellers[:i], t.cancellers[i+1:]...)
			return
		}
	}
}

// Invoke runs op under tok: if tok is already canceled, op never runs and
// Invoke short-circuits with ErrCanceled; else c is registered for the
// duration of op and unregistered once it returns.
func Invoke[T any](tok *CancelToken, c Canceller, op func() (T, error)) (T, error) {
	var zero T
	if tok == nil {
		return op()
	}
	if tok.Canceled() {
		return zero, ErrCanceled
	}
	tok.register(c)
	defer tok.unregister(c)
	return op()
}
