package animation

import (
	"maps"
	"time"
)

type stepKind int

const (
	stepTo stepKind = iota
	stepWait
	stepCall
)

// step is one unit of a tween's sequence. Interpolation and wait steps carry
// per-pass progress that is reset when the tween loops.
type step struct {
	kind     stepKind
	values   Props
	duration time.Duration
	ease     EaseFunc
	call     func()

	started bool
	elapsed time.Duration
	initial Props
}

// startValues reads the target's current value of every property the step
// moves. It touches only immutable step fields, so it runs without the
// tween lock.
func (s *step) startValues(target Target) Props {
	if s.kind != stepTo {
		return nil
	}
	initial := make(Props, len(s.values))
	for name := range s.values {
		v, _ := target.Property(name)
		initial[name] = v
	}
	return initial
}

// begin marks the first visit of a pass.
func (s *step) begin(initial Props) {
	s.started = true
	s.elapsed = 0
	s.initial = initial
}

// progress returns normalized time in [0, 1].
func (s *step) progress() float64 {
	if s.duration <= 0 {
		return 1
	}
	t := float64(s.elapsed) / float64(s.duration)
	if t > 1 {
		return 1
	}
	return t
}

// move snapshots the interpolation at t. ok is false for wait steps.
func (s *step) move(t float64) (m move, ok bool) {
	if s.kind != stepTo {
		return move{}, false
	}
	return move{from: s.initial, to: s.values, ease: s.ease, t: t}, true
}

// move is one interpolation frame. It is captured under the tween lock and
// written to the target after the lock is released, so targets may call
// back into the tween or its engine.
type move struct {
	from, to Props
	ease     EaseFunc
	t        float64
}

func (m move) apply(target Target) {
	if m.t >= 1 {
		// Land exactly on the declared values whatever the ease returns.
		for name, end := range m.to {
			target.SetProperty(name, end)
		}
		return
	}
	eased := m.ease(m.t)
	for name, end := range m.to {
		target.SetProperty(name, LerpFloat64(m.from[name], end, eased))
	}
}

func (s *step) reset() {
	s.started = false
	s.elapsed = 0
	s.initial = nil
}

func newToStep(values Props, d time.Duration, ease EaseFunc) *step {
	return &step{kind: stepTo, values: maps.Clone(values), duration: max(d, 0), ease: ease}
}

func newWaitStep(d time.Duration) *step {
	return &step{kind: stepWait, duration: max(d, 0)}
}

func newCallStep(fn func()) *step {
	return &step{kind: stepCall, call: fn}
}

// LerpFloat64 linearly interpolates between two float64 values.
func LerpFloat64(a, b float64, t float64) float64 {
	return a + (b-a)*t
}
