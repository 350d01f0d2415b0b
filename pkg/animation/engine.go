package animation

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/go-drift/motion/pkg/errors"
)

// Engine owns a registry of live tweens and the timer that drives them.
//
// Every tween created through an engine subscribes to the engine's timer and
// stays in the registry until it is disposed, either by finishing or by
// cancellation. Independent engines share no state, which keeps tests and
// separate scenes isolated. For ambient use, [DefaultEngine] is bound to
// [DefaultTimer].
type Engine struct {
	timer   *Timer
	eases   Eases
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *Metrics
	handler errors.ErrorHandler

	mu     sync.Mutex
	tweens []*Tween
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEases sets the ease table steps are resolved against.
func WithEases(eases Eases) EngineOption {
	return func(e *Engine) {
		if eases != nil {
			e.eases = eases
		}
	}
}

// WithLogger sets the logger used for tween lifecycle events.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTracer sets the tracer used to record one span per tween.
func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithMetrics sets the metrics the engine reports to.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithErrorHandler routes the engine's configuration and builder errors to h
// instead of the global handler from [errors.SetHandler].
func WithErrorHandler(h errors.ErrorHandler) EngineOption {
	return func(e *Engine) {
		e.handler = h
	}
}

// NewEngine returns an engine driven by timer. A nil timer uses
// [DefaultTimer].
func NewEngine(timer *Timer, opts ...EngineOption) *Engine {
	if timer == nil {
		timer = DefaultTimer()
	}
	e := &Engine{
		timer:  timer,
		eases:  DefaultEases(),
		logger: zap.NewNop(),
		tracer: noop.NewTracerProvider().Tracer("github.com/go-drift/motion/pkg/animation"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timer returns the timer driving the engine's tweens.
func (e *Engine) Timer() *Timer {
	return e.timer
}

// Eases returns the engine's ease table.
func (e *Engine) Eases() Eases {
	return e.eases
}

// TweenOption configures a tween created by [Engine.Get].
type TweenOption func(*tweenConfig)

type tweenConfig struct {
	override   bool
	loop       int
	onComplete func()
	ctx        context.Context
	err        error
}

// WithOverride disposes any live tweens on the same target before the new
// tween is created.
func WithOverride() TweenOption {
	return func(c *tweenConfig) {
		c.override = true
	}
}

// WithLoop repeats the step sequence n more times after the first pass.
// Zero disables looping. A negative n fails the Get call with
// [errors.ErrInvalidLoop]; use [WithLoopForever] for an endless loop.
func WithLoop(n int) TweenOption {
	return func(c *tweenConfig) {
		if n < 0 {
			c.err = fmt.Errorf("%w: %d (must be >= 0)", errors.ErrInvalidLoop, n)
			return
		}
		c.loop = n
	}
}

// WithLoopForever repeats the step sequence until the tween is disposed.
func WithLoopForever() TweenOption {
	return func(c *tweenConfig) {
		c.loop = loopForever
	}
}

// WithOnComplete sets a callback run once when the tween finishes its last
// pass. It is not run when the tween is cancelled.
func WithOnComplete(fn func()) TweenOption {
	return func(c *tweenConfig) {
		c.onComplete = fn
	}
}

// WithContext parents the tween's trace span on ctx.
func WithContext(ctx context.Context) TweenOption {
	return func(c *tweenConfig) {
		c.ctx = ctx
	}
}

// Get creates a tween on target and subscribes it to the engine's timer.
// The tween starts consuming ticks immediately; add steps with To, Wait
// and Call before the next tick.
func (e *Engine) Get(target Target, opts ...TweenOption) (*Tween, error) {
	cfg := tweenConfig{ctx: context.Background()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if target == nil {
		cfg.err = errors.New("nil target")
	}
	if cfg.ctx == nil {
		cfg.ctx = context.Background()
	}
	if cfg.err != nil {
		err := &errors.AnimationError{Op: "animation.Engine.Get", Kind: errors.KindConfig, Err: cfg.err}
		errors.ReportTo(e.handler, err)
		return nil, err
	}

	if cfg.override {
		e.RemoveTweens(target)
	}

	tw := &Tween{
		id:         uuid.New(),
		engine:     e,
		target:     target,
		key:        identityOf(target),
		loop:       cfg.loop,
		onComplete: cfg.onComplete,
	}
	_, tw.span = e.tracer.Start(cfg.ctx, "animation.Tween",
		trace.WithAttributes(
			attribute.String("tween.id", tw.id.String()),
			attribute.String("tween.target", fmt.Sprintf("%T", tw.key)),
			attribute.Int("tween.loop", cfg.loop),
			attribute.Bool("tween.override", cfg.override),
		))

	e.metrics.created()
	e.mu.Lock()
	e.tweens = append(e.tweens, tw)
	e.mu.Unlock()

	listener := e.timer.Add(tw.update)
	tw.mu.Lock()
	if tw.disposed {
		// Cancelled by a concurrent RemoveAllTweens before subscribing.
		tw.mu.Unlock()
		listener.Dispose()
		return tw, nil
	}
	tw.listener = listener
	tw.mu.Unlock()

	e.logger.Debug("tween created",
		zap.Stringer("tween", tw.id),
		zap.Int("loop", cfg.loop),
		zap.Bool("override", cfg.override))
	return tw, nil
}

// RemoveTweens disposes every live tween whose target is target. target may
// be the Target passed to Get or, for [Reflect] targets, the wrapped
// pointer. Matching is by identity, never by value.
func (e *Engine) RemoveTweens(target any) {
	for _, tw := range e.TweensOf(target) {
		tw.Dispose()
	}
}

// RemoveAllTweens disposes every live tween.
func (e *Engine) RemoveAllTweens() {
	e.mu.Lock()
	tweens := slices.Clone(e.tweens)
	e.mu.Unlock()
	for _, tw := range tweens {
		tw.Dispose()
	}
}

// TweensOf returns the live tweens on target in creation order.
func (e *Engine) TweensOf(target any) []*Tween {
	if t, ok := target.(Target); ok {
		target = identityOf(t)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*Tween
	for _, tw := range e.tweens {
		if sameIdentity(tw.key, target) {
			out = append(out, tw)
		}
	}
	return out
}

// Count returns the number of live tweens.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tweens)
}

func (e *Engine) remove(tw *Tween) {
	e.mu.Lock()
	i := slices.Index(e.tweens, tw)
	if i >= 0 {
		e.tweens = slices.Delete(e.tweens, i, i+1)
	}
	e.mu.Unlock()
	if i < 0 {
		return
	}
	e.metrics.finished(tw.Completed())
}

func (e *Engine) looped(tw *Tween, remaining int) {
	e.metrics.looped()
	tw.span.AddEvent("loop", trace.WithAttributes(attribute.Int("tween.loop.remaining", remaining)))
	e.logger.Debug("tween looped", zap.Stringer("tween", tw.id), zap.Int("remaining", remaining))
}

// sameIdentity compares a and b with == without panicking on
// uncomparable dynamic types.
func sameIdentity(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// DefaultEngine returns the process-wide engine bound to [DefaultTimer].
func DefaultEngine() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = NewEngine(DefaultTimer())
	})
	return defaultEngine
}

// Get creates a tween on the default engine.
//
//	tw, err := animation.Get(box, animation.WithOverride())
//	if err != nil {
//		return err
//	}
//	tw.To(animation.Props{"x": 5, "y": 10}, 2*time.Second, "quadInOut")
//	<-tw.Done()
func Get(target Target, opts ...TweenOption) (*Tween, error) {
	return DefaultEngine().Get(target, opts...)
}

// RemoveTweens disposes the default engine's tweens on target.
func RemoveTweens(target any) {
	DefaultEngine().RemoveTweens(target)
}

// RemoveAllTweens disposes every tween of the default engine.
func RemoveAllTweens() {
	DefaultEngine().RemoveAllTweens()
}
