package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/go-drift/motion/pkg/animation"
)

// DefaultFrameDuration is the frame step used by PumpAndSettle.
const DefaultFrameDuration = 16 * time.Millisecond

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: tweens still running")

// Harness wires an isolated engine to a fake clock and a manual frame
// source, so tests control exactly how much time each frame covers.
type Harness struct {
	Clock  *clock.Mock
	Frames *Frames
	Timer  *animation.Timer
	Engine *animation.Engine
}

// NewHarness creates a harness with a started timer. When tb is non-nil,
// every remaining tween is disposed and the timer stopped at cleanup.
func NewHarness(tb testing.TB, opts ...animation.EngineOption) *Harness {
	h := &Harness{
		Clock:  NewFakeClock(),
		Frames: NewFrames(),
	}
	h.Timer = animation.NewTimer(
		animation.WithClock(h.Clock),
		animation.WithFrameSource(h.Frames),
	)
	h.Engine = animation.NewEngine(h.Timer, opts...)
	h.Timer.Start()
	if tb != nil {
		tb.Helper()
		tb.Cleanup(func() {
			h.Engine.RemoveAllTweens()
			h.Timer.Stop()
		})
	}
	return h
}

// Get creates a tween on the harness engine.
func (h *Harness) Get(target animation.Target, opts ...animation.TweenOption) (*animation.Tween, error) {
	return h.Engine.Get(target, opts...)
}

// Advance moves the clock forward by d and pumps one frame, so the timer
// emits exactly d scaled by its speed.
func (h *Harness) Advance(d time.Duration) {
	h.Clock.Add(d)
	h.Frames.Pump()
}

// Step ticks the timer once per elapsed value with TickOverride.
func (h *Harness) Step(elapsed ...time.Duration) {
	for _, d := range elapsed {
		h.Timer.TickOverride(d)
	}
}

// PumpAndSettle advances frame by frame until no tweens remain or timeout
// of simulated time has passed.
func (h *Harness) PumpAndSettle(timeout time.Duration) error {
	var elapsed time.Duration
	for elapsed < timeout {
		if h.Engine.Count() == 0 {
			return nil
		}
		h.Advance(DefaultFrameDuration)
		elapsed += DefaultFrameDuration
	}
	if h.Engine.Count() == 0 {
		return nil
	}
	return ErrSettleTimeout
}
