package testing

import (
	"slices"
	"sync"

	"github.com/go-drift/motion/pkg/disposable"
)

// Frames is a FrameSource whose frames are produced on demand by Pump.
// It lets tests run a started Timer without goroutines.
type Frames struct {
	mu        sync.Mutex
	callbacks []*frameCallback
	count     int
}

type frameCallback struct {
	fn func()
}

// NewFrames returns a manual frame source.
func NewFrames() *Frames {
	return &Frames{}
}

// OnFrame registers callback for every subsequent Pump.
func (f *Frames) OnFrame(callback func()) disposable.Disposable {
	cb := &frameCallback{fn: callback}
	f.mu.Lock()
	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
	return disposable.New(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if i := slices.Index(f.callbacks, cb); i >= 0 {
			f.callbacks = slices.Delete(f.callbacks, i, i+1)
		}
	})
}

// Pump delivers one frame to every registered callback.
func (f *Frames) Pump() {
	f.mu.Lock()
	callbacks := slices.Clone(f.callbacks)
	f.count++
	f.mu.Unlock()
	for _, cb := range callbacks {
		cb.fn()
	}
}

// Subscribers returns the number of registered callbacks.
func (f *Frames) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.callbacks)
}

// Count returns the number of frames pumped so far.
func (f *Frames) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}
