// Package sim builds tweens from a resolved timeline and steps them at a
// fixed frame rate.
package sim

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/go-drift/motion/cmd/motion/internal/config"
	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/disposable"
	"github.com/go-drift/motion/pkg/errors"
)

// Note is a message emitted by a call step.
type Note struct {
	Time    time.Duration
	Target  string
	Message string
}

// State is a target's values after a frame.
type State struct {
	Target string
	Values animation.Props
}

// Frame is the result of one simulation step. Frame 0 holds the initial
// values before any time has passed.
type Frame struct {
	Index  int
	Time   time.Duration
	States []State
	Notes  []Note
}

// Result summarizes a finished run.
type Result struct {
	Frames    int
	Elapsed   time.Duration
	Completed bool
}

// Option configures a Scene.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	metrics *animation.Metrics
	eases   animation.Eases
}

// WithLogger sets the logger passed to the engine.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics passed to the engine.
func WithMetrics(m *animation.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithEases sets the ease table steps resolve against.
func WithEases(e animation.Eases) Option {
	return func(o *options) { o.eases = e }
}

// returnedErrors keeps builder errors off the global handler: Build returns
// them, and the caller reports them once.
type returnedErrors struct{ logger *zap.Logger }

func (h returnedErrors) HandleError(err *errors.AnimationError) {
	h.logger.Debug("tween build failed", zap.Error(err))
}

func (h returnedErrors) HandlePanic(err *errors.PanicError) {
	errors.ReportPanic(err)
}

type sceneTarget struct {
	name   string
	values *animation.Values
	props  []string
}

// Scene is a set of tweens built from a timeline, driven by its own timer.
type Scene struct {
	timeline *config.Resolved
	timer    *animation.Timer
	engine   *animation.Engine
	targets  []*sceneTarget
	tweens   *disposable.Group

	ticks   int
	elapsed time.Duration
	pending []Note
}

// Build creates the scene's targets and tweens. No time passes until Step
// or Run is called. Builder failures such as unknown eases are returned
// with the target and step that caused them.
func Build(tl *config.Resolved, opts ...Option) (*Scene, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	// The timer is only ever ticked by hand, so it never needs a running
	// frame source.
	timer := animation.NewTimer(animation.WithFrameSource(animation.FrameSourceFunc(
		func(func()) disposable.Disposable { return disposable.Nop },
	)))
	s := &Scene{
		timeline: tl,
		timer:    timer,
		engine: animation.NewEngine(timer,
			animation.WithLogger(o.logger),
			animation.WithMetrics(o.metrics),
			animation.WithEases(o.eases),
			animation.WithErrorHandler(returnedErrors{logger: o.logger})),
		tweens: disposable.NewGroup(),
	}

	for i, def := range tl.Targets {
		if err := s.addTarget(def); err != nil {
			s.Dispose()
			return nil, fmt.Errorf("targets[%d] %q: %w", i, def.Name, err)
		}
	}
	return s, nil
}

func (s *Scene) addTarget(def config.Target) error {
	values := animation.NewValues(def.Values)
	st := &sceneTarget{name: def.Name, values: values}

	var opts []animation.TweenOption
	if def.Override {
		opts = append(opts, animation.WithOverride())
	}
	switch {
	case def.Loop.Forever:
		opts = append(opts, animation.WithLoopForever())
	case def.Loop.Count > 0:
		opts = append(opts, animation.WithLoop(def.Loop.Count))
	}

	tw, err := s.engine.Get(values, opts...)
	if err != nil {
		return err
	}
	s.tweens.Add(tw)

	for j, step := range def.Steps {
		switch step.Kind() {
		case "to":
			for name := range step.To {
				if _, ok := values.Property(name); !ok {
					values.SetProperty(name, 0)
				}
			}
			tw.To(animation.Props(step.To), step.Duration.Std(), step.Ease)
		case "wait":
			tw.Wait(step.Wait.Std())
		case "call":
			msg := *step.Call
			tw.Call(func() {
				s.pending = append(s.pending, Note{Time: s.elapsed, Target: st.name, Message: msg})
			})
		}
		if err := tw.Err(); err != nil {
			return fmt.Errorf("steps[%d]: %w", j, err)
		}
	}

	st.props = slices.Sorted(maps.Keys(values.Snapshot()))
	s.targets = append(s.targets, st)
	return nil
}

// Properties returns the sorted property names of every target, keyed by
// target name.
func (s *Scene) Properties() map[string][]string {
	out := make(map[string][]string, len(s.targets))
	for _, t := range s.targets {
		out[t.name] = slices.Clone(t.props)
	}
	return out
}

// Targets returns the target names in timeline order.
func (s *Scene) Targets() []string {
	names := make([]string, len(s.targets))
	for i, t := range s.targets {
		names[i] = t.name
	}
	return names
}

// Engine returns the engine running the scene's tweens.
func (s *Scene) Engine() *animation.Engine {
	return s.engine
}

// Settled reports whether every tween has finished.
func (s *Scene) Settled() bool {
	return s.engine.Count() == 0
}

// Snapshot returns the current frame without advancing time.
func (s *Scene) Snapshot(index int) Frame {
	f := Frame{Index: index, Time: s.elapsed}
	for _, t := range s.targets {
		f.States = append(f.States, State{Target: t.name, Values: t.values.Snapshot()})
	}
	return f
}

// Step advances the scene by one frame. Frame boundaries fall on
// [config.Resolved.FrameTime], so n steps at n fps cover exactly one second.
func (s *Scene) Step(index int) Frame {
	s.ticks++
	next := s.timeline.FrameTime(s.ticks)
	d := next - s.elapsed
	s.elapsed = next
	s.pending = nil
	s.timer.TickOverride(d)
	f := s.Snapshot(index)
	f.Notes = s.pending
	s.pending = nil
	return f
}

// Run calls fn with frame 0 and then with every stepped frame until all
// tweens finish, the timeline's max is reached, or ctx is cancelled.
// Errors returned by fn stop the run.
func (s *Scene) Run(ctx context.Context, fn func(Frame) error) (Result, error) {
	if err := fn(s.Snapshot(0)); err != nil {
		return Result{}, err
	}
	var res Result
	for i := 1; !s.Settled(); i++ {
		if limit := s.timeline.Max; limit > 0 && s.elapsed >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := fn(s.Step(i)); err != nil {
			return res, err
		}
		res.Frames = i
	}
	res.Elapsed = s.elapsed
	res.Completed = s.Settled()
	return res, nil
}

// Dispose cancels every remaining tween.
func (s *Scene) Dispose() {
	s.tweens.Dispose()
}
