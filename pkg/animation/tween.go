package animation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/go-drift/motion/pkg/disposable"
	"github.com/go-drift/motion/pkg/errors"
	"github.com/go-drift/motion/pkg/future"
)

const loopForever = -1

// Tween animates the numeric properties of one target through an ordered
// sequence of steps: interpolations ([Tween.To]), pauses ([Tween.Wait]) and
// callbacks ([Tween.Call]).
//
// A tween is created by [Engine.Get], advances on every tick of the engine's
// timer, and disposes itself after its last pass. Builder methods return the
// tween so calls can be chained:
//
//	tw, _ := engine.Get(box, animation.WithLoop(1))
//	tw.To(animation.Props{"x": 100}, time.Second, "quadOut").
//		Wait(250 * time.Millisecond).
//		Call(func() { fmt.Println("arrived") }).
//		To(animation.Props{"x": 0}, time.Second, "quadIn")
//
// Interpolation steps read their start values when they begin, not when they
// are added, so each step continues from wherever the previous one ended.
type Tween struct {
	id     uuid.UUID
	engine *Engine
	span   trace.Span

	mu         sync.Mutex
	target     Target
	key        any
	steps      []*step
	cursor     int
	loop       int
	paused     bool
	onComplete func()
	listener   disposable.Disposable

	result    *future.Future[struct{}]
	resolved  bool
	completed bool
	disposed  bool
	err       error
}

// ID returns the tween's unique identifier.
func (tw *Tween) ID() uuid.UUID {
	return tw.id
}

// Target returns the animated object, or nil once the tween is disposed.
func (tw *Tween) Target() Target {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.target
}

// To appends a step that moves each property in values to its end value over
// d using the named ease from the engine's table. An empty ease name means
// "linear". An unknown ease, or a property the target cannot hold, fails the
// tween immediately: the error is reported, recorded in [Tween.Err], and the
// tween is disposed.
func (tw *Tween) To(values Props, d time.Duration, ease string) *Tween {
	const op = "animation.Tween.To"
	fn, err := tw.engine.eases.Lookup(ease)
	if err != nil {
		tw.fail(op, errors.KindEasing, err)
		return tw
	}
	if h, ok := tw.Target().(interface{ Has(string) bool }); ok {
		for name := range values {
			if !h.Has(name) {
				tw.fail(op, errors.KindConfig, fmt.Errorf("%w: %q", errors.ErrUnknownProperty, name))
				return tw
			}
		}
	}
	return tw.push(op, newToStep(values, d, fn))
}

// Wait appends a step that does nothing for d.
func (tw *Tween) Wait(d time.Duration) *Tween {
	return tw.push("animation.Tween.Wait", newWaitStep(d))
}

// Call appends a step that runs fn once when reached. Call steps take no
// time: the steps after them continue within the same tick.
func (tw *Tween) Call(fn func()) *Tween {
	if fn == nil {
		fn = func() {}
	}
	return tw.push("animation.Tween.Call", newCallStep(fn))
}

func (tw *Tween) push(op string, s *step) *Tween {
	tw.mu.Lock()
	if tw.disposed {
		tw.mu.Unlock()
		tw.fail(op, errors.KindDisposed, errors.ErrDisposed)
		return tw
	}
	tw.steps = append(tw.steps, s)
	tw.mu.Unlock()
	return tw
}

// fail records and reports err, then disposes the tween.
func (tw *Tween) fail(op string, kind errors.ErrorKind, err error) {
	ae := &errors.AnimationError{
		Op:         op,
		Kind:       kind,
		Err:        err,
		Tween:      tw.id.String(),
		StackTrace: errors.CaptureStack(),
	}
	tw.mu.Lock()
	if tw.err == nil {
		tw.err = ae
	}
	tw.mu.Unlock()
	errors.ReportTo(tw.engine.handler, ae)
	tw.Dispose()
}

// Err returns the first error recorded by a builder call, if any.
func (tw *Tween) Err() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.err
}

// Pause stops the tween from advancing without losing its progress.
func (tw *Tween) Pause() { tw.SetPaused(true) }

// Resume continues a paused tween.
func (tw *Tween) Resume() { tw.SetPaused(false) }

// SetPaused pauses or resumes the tween.
func (tw *Tween) SetPaused(paused bool) {
	tw.mu.Lock()
	tw.paused = paused
	tw.mu.Unlock()
}

// Paused reports whether the tween is paused.
func (tw *Tween) Paused() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.paused
}

// Completed reports whether the tween finished its last pass.
func (tw *Tween) Completed() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.completed
}

// Disposed reports whether the tween has stopped, by completion or cancellation.
func (tw *Tween) Disposed() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.disposed
}

// Status returns the tween's lifecycle state.
func (tw *Tween) Status() TweenStatus {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	switch {
	case tw.completed:
		return TweenCompleted
	case tw.disposed:
		return TweenCancelled
	case tw.paused:
		return TweenPaused
	default:
		return TweenRunning
	}
}

// Future returns the tween's completion future, creating it on first use.
// It resolves after the final pass and is cancelled if the tween is disposed
// first. Every call returns the same future.
func (tw *Tween) Future() *future.Future[struct{}] {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.result == nil {
		tw.result = future.New[struct{}]()
		switch {
		case tw.resolved:
			tw.result.Resolve(struct{}{})
		case tw.disposed && !tw.completed:
			tw.result.Cancel()
		}
	}
	return tw.result
}

// Done returns a channel that is closed when the tween completes its final
// pass. It is never closed if the tween is cancelled; use [Tween.Await] to
// observe cancellation too. Every call returns the same channel.
func (tw *Tween) Done() <-chan struct{} {
	return tw.Future().Done()
}

// Await blocks until the tween completes, is disposed, or ctx ends. It
// returns nil on completion, the recorded builder error or
// [errors.ErrCancelled] if the tween was disposed first, and ctx.Err() if
// the context ended first.
func (tw *Tween) Await(ctx context.Context) error {
	_, err := tw.Future().Await(ctx)
	if errors.Is(err, errors.ErrCancelled) {
		if failed := tw.Err(); failed != nil {
			return failed
		}
	}
	return err
}

// update advances the tween by elapsed. It is the tween's timer listener.
//
// Interpolation and wait steps consume the tick's elapsed time; once one of
// them finishes, the following steps are visited in the same tick with no
// time left, so call steps and completion happen without waiting a frame.
// The sequence wraps at most once per tick. Target reads and writes happen
// with the tween unlocked.
func (tw *Tween) update(elapsed time.Duration) {
	budget := elapsed
	wrapped := false
	for {
		tw.mu.Lock()
		if tw.disposed || tw.paused {
			tw.mu.Unlock()
			return
		}

		if tw.cursor >= len(tw.steps) {
			if tw.loop == 0 {
				tw.mu.Unlock()
				tw.complete()
				return
			}
			if wrapped {
				tw.mu.Unlock()
				return
			}
			wrapped = true
			if tw.loop > 0 {
				tw.loop--
			}
			tw.cursor = 0
			for _, s := range tw.steps {
				s.reset()
			}
			remaining, empty := tw.loop, len(tw.steps) == 0
			tw.mu.Unlock()

			tw.engine.looped(tw, remaining)
			if empty {
				return
			}
			continue
		}

		s := tw.steps[tw.cursor]
		if s.kind == stepCall {
			tw.cursor++
			fn := s.call
			tw.mu.Unlock()
			fn()
			continue
		}

		target := tw.target
		if !s.started {
			tw.mu.Unlock()
			initial := s.startValues(target)
			tw.mu.Lock()
			// The target may have paused, disposed or rewound the tween.
			if tw.disposed || tw.paused || tw.cursor >= len(tw.steps) || tw.steps[tw.cursor] != s {
				tw.mu.Unlock()
				return
			}
			if !s.started {
				s.begin(initial)
			}
		}
		s.elapsed += budget
		budget = 0
		t := s.progress()
		m, moves := s.move(t)
		if t >= 1 {
			tw.cursor++
		}
		tw.mu.Unlock()

		if moves {
			m.apply(target)
		}
		if t < 1 {
			return
		}
	}
}

func (tw *Tween) complete() {
	tw.mu.Lock()
	if tw.disposed || tw.completed {
		tw.mu.Unlock()
		return
	}
	tw.completed = true
	onComplete := tw.onComplete
	tw.mu.Unlock()

	if onComplete != nil {
		onComplete()
	}

	tw.mu.Lock()
	tw.resolved = true
	result := tw.result
	tw.mu.Unlock()
	if result != nil {
		result.Resolve(struct{}{})
	}

	tw.Dispose()
}

// Dispose stops the tween: it unsubscribes from the timer, leaves the
// engine's registry, and drops its target and steps. Calling Dispose again
// does nothing. A disposed tween cannot be restarted.
func (tw *Tween) Dispose() {
	tw.mu.Lock()
	if tw.disposed {
		tw.mu.Unlock()
		return
	}
	tw.disposed = true
	listener := tw.listener
	completed, err := tw.completed, tw.err
	tw.listener = nil
	tw.target = nil
	tw.steps = nil
	tw.cursor = 0
	tw.onComplete = nil
	result := tw.result
	tw.mu.Unlock()

	if result != nil && !completed {
		result.Cancel()
	}

	if listener != nil {
		listener.Dispose()
	}
	tw.engine.remove(tw)

	switch {
	case completed:
		tw.span.SetStatus(codes.Ok, "")
		tw.engine.logger.Debug("tween completed", zap.Stringer("tween", tw.id))
	case err != nil:
		tw.span.RecordError(err)
		tw.span.SetStatus(codes.Error, err.Error())
		tw.engine.logger.Debug("tween failed", zap.Stringer("tween", tw.id), zap.Error(err))
	default:
		tw.span.AddEvent("cancelled")
		tw.engine.logger.Debug("tween cancelled", zap.Stringer("tween", tw.id))
	}
	tw.span.End()
}

// Destroy is an alias for Dispose.
func (tw *Tween) Destroy() {
	tw.Dispose()
}
