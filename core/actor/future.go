package actor

import (
	"context"
	"sync"
	"sync/atomic"
)

// Future is a single-assignment result. It resolves exactly once, to a value or
// to a fault, and every current and later waiter observes the same outcome.
type Future[T any] struct {
	state atomic.Uint32 // 0 pending, 1 resolving, 2 resolved
	done  chan struct{}

	val T
	err error

	mu        sync.Mutex
	callbacks []func(T, error)
}

const (
	futurePending uint32 = iota
	futureResolving
	futureResolved
)

// NewFuture creates a pending future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future already resolved to v.
func Resolved[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.complete(v, nil)
	return f
}

// complete resolves the future. It returns false if the future was already
// resolved, in which case nothing changes.
func (f *Future[T]) complete(v T, err error) bool {
	if !f.state.CompareAndSwap(futurePending, futureResolving) {
		return false
	}
	f.val, f.err = v, err
	f.state.Store(futureResolved)
	close(f.done)

	f.mu.Lock()
	cbs := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()
	for _, cb := range cbs {
		cb(v, err)
	}
	return true
}

// Done is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Poll returns the outcome without blocking. ok is false while pending.
func (f *Future[T]) Poll() (v T, err error, ok bool) {
	if f.state.Load() != futureResolved {
		return v, nil, false
	}
	return f.val, f.err, true
}

// Wait blocks until the future resolves or ctx is done. Abandoning the wait
// does not affect the future.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	if v, err, ok := f.Poll(); ok {
		return v, err
	}
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete registers cb to run with the outcome. If the future is already
// resolved cb runs immediately on the calling goroutine, otherwise on the
// goroutine that resolves it.
func (f *Future[T]) OnComplete(cb func(T, error)) {
	f.mu.Lock()
	if f.state.Load() != futureResolved {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	cb(f.val, f.err)
}
