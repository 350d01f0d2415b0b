package event

import "github.com/go-drift/motion/pkg/disposable"

type pair[A, B any] struct {
	a A
	b B
}

// Event2 is a typed event emitter for two-value payloads.
// For three or more values, use [Event] with a struct payload.
type Event2[A, B any] struct {
	inner Event[pair[A, B]]
}

// New2 returns an empty Event2.
func New2[A, B any]() *Event2[A, B] {
	return &Event2[A, B]{}
}

// Emit calls every registered listener with a and b.
func (e *Event2[A, B]) Emit(a A, b B) {
	e.inner.Emit(pair[A, B]{a, b})
}

// Add registers a listener and returns a token that removes it.
func (e *Event2[A, B]) Add(listener func(A, B)) disposable.Disposable {
	return e.inner.Add(func(p pair[A, B]) { listener(p.a, p.b) })
}

// On is an alias for Add.
func (e *Event2[A, B]) On(listener func(A, B)) disposable.Disposable {
	return e.Add(listener)
}

// Once registers a listener that is removed before its first invocation.
func (e *Event2[A, B]) Once(listener func(A, B)) disposable.Disposable {
	return e.inner.Once(func(p pair[A, B]) { listener(p.a, p.b) })
}

// Len returns the number of registered listeners.
func (e *Event2[A, B]) Len() int {
	return e.inner.Len()
}

// Dispose removes all listeners. The event can be reused afterwards.
func (e *Event2[A, B]) Dispose() {
	e.inner.Dispose()
}

// Destroy is an alias for Dispose.
func (e *Event2[A, B]) Destroy() {
	e.inner.Dispose()
}
