// Package event provides typed publish/subscribe channels.
//
// Each [Event] handles a single kind of event; create one per event you need
// to emit. Subscriptions return a [disposable.Disposable] that removes
// exactly that listener.
//
//	var resized event.Event[Size]
//	sub := resized.Add(func(s Size) { relayout(s) })
//	defer sub.Dispose()
//	resized.Emit(Size{W: 640, H: 480})
//
// Emission is synchronous and visits listeners in subscription order. A
// listener removed while an emission is in progress is not called if it has
// not been reached yet. Listener panics propagate to the caller of Emit; the
// event holds no lock while listeners run, so it stays usable afterwards.
package event

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-drift/motion/pkg/disposable"
)

type subscription[T any] struct {
	fn     func(T)
	active atomic.Bool
}

// Event is a typed event emitter for single-value payloads.
// The zero value is ready to use. Event must not be copied after first use.
type Event[T any] struct {
	mu   sync.Mutex
	subs []*subscription[T]
}

// New returns an empty Event.
func New[T any]() *Event[T] {
	return &Event[T]{}
}

// Emit calls every registered listener with v.
func (e *Event[T]) Emit(v T) {
	e.mu.Lock()
	if len(e.subs) == 0 {
		e.mu.Unlock()
		return
	}
	// Snapshot so listeners may subscribe or unsubscribe during emission.
	subs := slices.Clone(e.subs)
	e.mu.Unlock()

	for _, s := range subs {
		if s.active.Load() {
			s.fn(v)
		}
	}
}

// Add registers a listener and returns a token that removes it.
func (e *Event[T]) Add(listener func(T)) disposable.Disposable {
	s := &subscription[T]{fn: listener}
	return e.subscribe(s)
}

// On is an alias for Add.
func (e *Event[T]) On(listener func(T)) disposable.Disposable {
	return e.Add(listener)
}

// Once registers a listener that is removed before its first invocation.
// The wrapper is complete before the subscription is published, and it
// claims the subscription with a compare-and-swap, so concurrent or
// re-entrant emits call listener at most once.
func (e *Event[T]) Once(listener func(T)) disposable.Disposable {
	s := &subscription[T]{}
	s.fn = func(v T) {
		if !s.active.CompareAndSwap(true, false) {
			return
		}
		e.remove(s)
		listener(v)
	}
	return e.subscribe(s)
}

func (e *Event[T]) subscribe(s *subscription[T]) disposable.Disposable {
	s.active.Store(true)
	e.mu.Lock()
	e.subs = append(e.subs, s)
	e.mu.Unlock()
	return disposable.New(func() { e.remove(s) })
}

func (e *Event[T]) remove(s *subscription[T]) {
	s.active.Store(false)
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := slices.Index(e.subs, s); i >= 0 {
		e.subs = slices.Delete(e.subs, i, i+1)
	}
}

// Len returns the number of registered listeners.
func (e *Event[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

// Dispose removes all listeners. The event can be reused afterwards.
func (e *Event[T]) Dispose() {
	e.mu.Lock()
	subs := e.subs
	e.subs = nil
	e.mu.Unlock()
	for _, s := range subs {
		s.active.Store(false)
	}
}

// Destroy is an alias for Dispose.
func (e *Event[T]) Destroy() {
	e.Dispose()
}
