package sched

import "context"

// Task is a one-shot future producing a T: constructed detached, awaited or
// joined exactly once. Backed by a goroutine plus a single-slot result,
// matching DESIGN.md's decision for the coroutine-frame re-expression.
type Task[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Spawn starts fn immediately on its own goroutine and detaches it: the
// caller may discard the returned Task without leaking the goroutine, since
// fn still runs to completion and simply has nowhere to deliver its result
// if nobody awaits it.
func Spawn[T any](fn func() (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.val, t.err = fn()
	}()
	return t
}

// Await blocks the calling goroutine until t completes or ctx is canceled,
// whichever comes first.
func Await[T any](ctx context.Context, t *Task[T]) (T, error) {
	select {
	case <-t.done:
		return t.val, t.err
	case <-ctx.Done():
		var zero T
		return zero, Wrap(Canceled, ctx.Err())
	}
}

// Done reports whether t has finished without blocking.
func (t *Task[T]) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// WhenAll awaits every task and returns their results in the original
// order; tasks keep running concurrently while earlier ones are awaited.
func WhenAll[T any](ctx context.Context, tasks ...*Task[T]) ([]Result[T], error) {
	out := make([]Result[T], len(tasks))
	for i, t := range tasks {
		v, err := Await(ctx, t)
		out[i] = Result[T]{val: v, err: err}
	}
	return out, ctx.Err()
}
