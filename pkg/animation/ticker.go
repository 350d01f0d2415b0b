package animation

import (
	"time"

	"github.com/go-drift/motion/pkg/disposable"
	"github.com/go-drift/motion/pkg/errors"
)

// DefaultFrameInterval is the frame period used when none is configured.
const DefaultFrameInterval = time.Second / 60

// FrameSource delivers per-frame callbacks to a running [Timer].
//
// OnFrame registers callback to be invoked once per frame until the returned
// token is disposed. Render loops adapt their vsync or animation-frame hook
// to this interface; headless hosts use [IntervalSource] or drive the timer
// by hand with [Timer.Tick].
type FrameSource interface {
	OnFrame(callback func()) disposable.Disposable
}

// FrameSourceFunc adapts a function to the FrameSource interface.
type FrameSourceFunc func(callback func()) disposable.Disposable

// OnFrame calls f(callback).
func (f FrameSourceFunc) OnFrame(callback func()) disposable.Disposable {
	return f(callback)
}

// IntervalSource produces frames at a fixed interval from a clock ticker.
//
// Frames are delivered on a dedicated goroutine per subscription. A panic in
// a frame callback is recovered and reported through [errors.ReportPanic] so
// one bad listener does not stop the loop.
type IntervalSource struct {
	clock    Clock
	interval time.Duration
}

// NewIntervalSource returns a source ticking every interval on c.
// A nil clock uses the package clock; a non-positive interval uses
// [DefaultFrameInterval].
func NewIntervalSource(c Clock, interval time.Duration) *IntervalSource {
	if c == nil {
		c = currentClock()
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &IntervalSource{clock: c, interval: interval}
}

// Interval returns the frame period.
func (s *IntervalSource) Interval() time.Duration {
	return s.interval
}

// OnFrame starts a ticker goroutine that calls callback every interval.
// Disposing the returned token stops the ticker. It does not wait for an
// in-flight callback, so it is safe to dispose from inside the callback.
func (s *IntervalSource) OnFrame(callback func()) disposable.Disposable {
	ticker := s.clock.Ticker(s.interval)
	stop := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				s.frame(callback)
			case <-stop:
				return
			}
		}
	}()

	return disposable.New(func() {
		ticker.Stop()
		close(stop)
	})
}

func (s *IntervalSource) frame(callback func()) {
	defer errors.Recover("animation.IntervalSource")
	callback()
}
