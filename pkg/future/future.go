// Package future provides a result that is settled by code other than the
// code waiting for it.
//
// A [Future] starts pending. The first call to [Future.Resolve],
// [Future.Reject] or [Future.Cancel] settles it and later calls do nothing.
// Resolving or rejecting completes the future and closes [Future.Done];
// cancelling means it will never complete, and [Future.Await] reports
// [errors.ErrCancelled].
//
//	f := future.New[string]()
//	go func() { f.Resolve(load()) }()
//	v, err := f.Await(ctx)
package future

import (
	"context"
	"sync"

	"github.com/go-drift/motion/pkg/errors"
)

// Future is a value that becomes available later. The zero value is not
// usable; create futures with [New].
type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	settled   chan struct{}
	value     T
	err       error
	complete  bool
	cancelled bool
}

// New returns a pending future.
func New[T any]() *Future[T] {
	return &Future[T]{
		done:    make(chan struct{}),
		settled: make(chan struct{}),
	}
}

// Resolve completes the future with v. It reports whether this call settled
// the future.
func (f *Future[T]) Resolve(v T) bool {
	return f.finish(v, nil)
}

// Reject completes the future with err. A nil err is replaced by
// [errors.ErrRejected]. It reports whether this call settled the future.
func (f *Future[T]) Reject(err error) bool {
	if err == nil {
		err = errors.ErrRejected
	}
	var zero T
	return f.finish(zero, err)
}

func (f *Future[T]) finish(v T, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.complete || f.cancelled {
		return false
	}
	f.value, f.err = v, err
	f.complete = true
	close(f.done)
	close(f.settled)
	return true
}

// Cancel marks the future as never completing. It reports whether this call
// settled the future; cancelling a completed future does nothing.
func (f *Future[T]) Cancel() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.complete || f.cancelled {
		return false
	}
	f.cancelled = true
	close(f.settled)
	return true
}

// Done returns a channel closed when the future is resolved or rejected.
// It stays open forever if the future is cancelled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Complete reports whether the future was resolved or rejected.
func (f *Future[T]) Complete() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.complete
}

// Cancelled reports whether the future was cancelled.
func (f *Future[T]) Cancelled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

// Result returns the settled value and error without blocking. A pending
// future returns [errors.ErrPending]; a cancelled one [errors.ErrCancelled].
func (f *Future[T]) Result() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case f.complete:
		return f.value, f.err
	case f.cancelled:
		var zero T
		return zero, errors.ErrCancelled
	default:
		var zero T
		return zero, errors.ErrPending
	}
}

// Await blocks until the future settles or ctx ends.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.settled:
		return f.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
