// Package disposable provides one-shot cleanup handles.
//
// A [Disposable] is returned whenever a subscription or other resource is
// acquired. Calling Dispose more than once is always safe and has no
// further effect. A [Group] collects several disposables so they can be
// released together and, unlike a single [Func], can be reused afterwards.
package disposable

import "sync"

// Disposable is a resource with a cleanup method.
type Disposable interface {
	Dispose()
}

// Func wraps a cleanup function that runs at most once.
type Func struct {
	mu      sync.Mutex
	cleanup func()
}

// New returns a Disposable that calls cleanup on its first Dispose.
func New(cleanup func()) *Func {
	return &Func{cleanup: cleanup}
}

// Dispose runs the cleanup function. Later calls do nothing.
func (d *Func) Dispose() {
	d.mu.Lock()
	fn := d.cleanup
	d.cleanup = nil
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Destroy is an alias for Dispose.
func (d *Func) Destroy() {
	d.Dispose()
}

// Disposed reports whether Dispose has been called.
func (d *Func) Disposed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cleanup == nil
}

type nop struct{}

func (nop) Dispose() {}

// Nop is a Disposable that does nothing.
var Nop Disposable = nop{}
