package animation

import (
	"sync"
	"time"

	"github.com/go-drift/motion/pkg/disposable"
	"github.com/go-drift/motion/pkg/event"
)

// Timer emits the elapsed time between frames to its listeners.
//
// A Timer is either stopped or running. While running it is subscribed to a
// [FrameSource] and ticks once per frame. It can also be ticked by hand with
// [Timer.Tick] or [Timer.TickOverride], which is how headless hosts and tests
// drive animations.
//
// The elapsed value passed to listeners is the real time since the previous
// tick multiplied by the timer's speed.
type Timer struct {
	event.Event[time.Duration]

	clock  Clock
	source FrameSource

	mu       sync.Mutex
	lastTime time.Time
	speed    float64
	frames   disposable.Disposable
}

// TimerOption configures a Timer.
type TimerOption func(*Timer)

// WithClock sets the timer's time source.
func WithClock(c Clock) TimerOption {
	return func(t *Timer) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithSpeed sets the initial speed multiplier.
func WithSpeed(speed float64) TimerOption {
	return func(t *Timer) {
		t.speed = speed
	}
}

// WithFrameSource sets the frame source used by Start.
func WithFrameSource(src FrameSource) TimerOption {
	return func(t *Timer) {
		t.source = src
	}
}

// NewTimer creates a stopped timer. Without options it uses the package
// clock, a speed of 1, and a 60 fps [IntervalSource] when started.
func NewTimer(opts ...TimerOption) *Timer {
	t := &Timer{speed: 1}
	for _, opt := range opts {
		opt(t)
	}
	if t.clock == nil {
		t.clock = currentClock()
	}
	if t.source == nil {
		t.source = NewIntervalSource(t.clock, DefaultFrameInterval)
	}
	t.lastTime = t.clock.Now()
	return t
}

// Tick computes the time since the previous tick and emits it scaled by speed.
// Elapsed time is never negative, even if the clock is moved backwards.
func (t *Timer) Tick() {
	now := t.clock.Now()
	t.mu.Lock()
	elapsed := now.Sub(t.lastTime)
	t.lastTime = now
	speed := t.speed
	t.mu.Unlock()

	if elapsed < 0 {
		elapsed = 0
	}
	t.Emit(time.Duration(float64(elapsed) * speed))
}

// TickOverride rebases the elapsed-time reference to now and emits elapsed
// as given, ignoring speed. Use it for fixed-step simulation and tests.
func (t *Timer) TickOverride(elapsed time.Duration) {
	t.ResetElapsed()
	t.Emit(elapsed)
}

// ResetElapsed rebases the elapsed-time reference to now without emitting.
// Call it after a pause so the next tick does not include the paused time.
func (t *Timer) ResetElapsed() {
	now := t.clock.Now()
	t.mu.Lock()
	t.lastTime = now
	t.mu.Unlock()
}

// Start subscribes the timer to its frame source. A running timer is
// restarted.
func (t *Timer) Start() {
	t.Stop()
	t.ResetElapsed()
	frames := t.source.OnFrame(t.Tick)
	t.mu.Lock()
	t.frames = frames
	t.mu.Unlock()
}

// Stop unsubscribes the timer from its frame source. Listeners are kept.
func (t *Timer) Stop() {
	t.mu.Lock()
	frames := t.frames
	t.frames = nil
	t.mu.Unlock()
	if frames != nil {
		frames.Dispose()
	}
}

// Running reports whether the timer is subscribed to its frame source.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames != nil
}

// Speed returns the speed multiplier.
func (t *Timer) Speed() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.speed
}

// SetSpeed sets the multiplier applied to elapsed time by Tick.
func (t *Timer) SetSpeed(speed float64) {
	t.mu.Lock()
	t.speed = speed
	t.mu.Unlock()
}

var (
	defaultTimer     *Timer
	defaultTimerOnce sync.Once
)

// DefaultTimer returns the process-wide timer. It is created on first use
// and never starts by itself: call Start, or Tick it from your own loop.
func DefaultTimer() *Timer {
	defaultTimerOnce.Do(func() {
		defaultTimer = NewTimer()
	})
	return defaultTimer
}
