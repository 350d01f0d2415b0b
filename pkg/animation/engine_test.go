package animation_test

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
	motiontest "github.com/go-drift/motion/pkg/testing"
)

func TestEngine_Registry(t *testing.T) {
	h := motiontest.NewHarness(t)
	a := animation.NewValues(animation.Props{"x": 0})
	b := animation.NewValues(animation.Props{"x": 0})

	ta1, err := h.Get(a)
	require.NoError(t, err)
	ta2, err := h.Get(a)
	require.NoError(t, err)
	tb, err := h.Get(b)
	require.NoError(t, err)

	assert.Equal(t, 3, h.Engine.Count())
	assert.Equal(t, []*animation.Tween{ta1, ta2}, h.Engine.TweensOf(a))
	assert.Equal(t, []*animation.Tween{tb}, h.Engine.TweensOf(b))
	assert.NotEqual(t, ta1.ID(), ta2.ID())

	h.Engine.RemoveTweens(a)
	assert.True(t, ta1.Disposed())
	assert.True(t, ta2.Disposed())
	assert.False(t, tb.Disposed())
	assert.Equal(t, 1, h.Engine.Count())
}

func TestEngine_IdentityNotEquality(t *testing.T) {
	h := motiontest.NewHarness(t)
	// Equal contents, distinct objects.
	a := animation.NewValues(animation.Props{"x": 1})
	b := animation.NewValues(animation.Props{"x": 1})

	ta, err := h.Get(a)
	require.NoError(t, err)
	tb, err := h.Get(b)
	require.NoError(t, err)

	h.Engine.RemoveTweens(a)
	assert.True(t, ta.Disposed())
	assert.False(t, tb.Disposed())
}

func TestEngine_RemoveTweensUnknownTarget(t *testing.T) {
	h := motiontest.NewHarness(t)
	tw, err := h.Get(animation.NewValues(nil))
	require.NoError(t, err)

	h.Engine.RemoveTweens(animation.NewValues(nil))
	h.Engine.RemoveTweens(nil)
	h.Engine.RemoveTweens(map[string]int{})
	assert.False(t, tw.Disposed())
}

func TestEngine_Override(t *testing.T) {
	h := motiontest.NewHarness(t)
	box := animation.NewValues(animation.Props{"x": 0})
	first, err := h.Get(box)
	require.NoError(t, err)
	first.To(animation.Props{"x": 100}, sec, "linear")

	second, err := h.Get(box, animation.WithOverride())
	require.NoError(t, err)
	second.To(animation.Props{"x": -10}, sec, "linear")

	assert.True(t, first.Disposed())
	assert.Equal(t, []*animation.Tween{second}, h.Engine.TweensOf(box))

	h.Step(sec)
	assert.Equal(t, -10.0, box.Get("x"))
}

func TestEngine_RemoveAllTweens(t *testing.T) {
	h := motiontest.NewHarness(t)
	var tweens []*animation.Tween
	for range 3 {
		tw, err := h.Get(animation.NewValues(nil), animation.WithLoopForever())
		require.NoError(t, err)
		tw.Wait(sec)
		tweens = append(tweens, tw)
	}

	h.Engine.RemoveAllTweens()

	assert.Equal(t, 0, h.Engine.Count())
	assert.Equal(t, 0, h.Timer.Len())
	for _, tw := range tweens {
		assert.Equal(t, animation.TweenCancelled, tw.Status())
	}
}

func TestEngine_RemoveDuringTick(t *testing.T) {
	h := motiontest.NewHarness(t)
	victim, err := h.Get(animation.NewValues(animation.Props{"x": 0}))
	require.NoError(t, err)
	victim.To(animation.Props{"x": 10}, sec, "linear")

	killer, err := h.Get(animation.NewValues(nil))
	require.NoError(t, err)
	killer.Call(func() { h.Engine.RemoveAllTweens() })

	h.Step(ms(500))
	h.Step(ms(500))
	assert.True(t, victim.Disposed())
	assert.Equal(t, 0, h.Engine.Count())
}

func TestEngine_GetErrors(t *testing.T) {
	rec := silenceErrors(t)
	h := motiontest.NewHarness(t)

	tw, err := h.Get(nil)
	assert.Nil(t, tw)
	var ae *errors.AnimationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, errors.KindConfig, ae.Kind)
	assert.Equal(t, "animation.Engine.Get", ae.Op)

	tw, err = h.Get(animation.NewValues(nil), animation.WithLoop(-2))
	assert.Nil(t, tw)
	assert.ErrorIs(t, err, errors.ErrInvalidLoop)
	assert.Contains(t, err.Error(), "-2")

	assert.Len(t, rec.Errors(), 2)
	assert.Equal(t, 0, h.Engine.Count())
}

func TestEngine_CustomEases(t *testing.T) {
	eases := animation.DefaultEases().Clone()
	eases["step"] = func(t float64) float64 {
		if t < 1 {
			return 0
		}
		return 1
	}
	h := motiontest.NewHarness(t, animation.WithEases(eases))
	assert.Contains(t, h.Engine.Eases().Names(), "step")
	assert.NotContains(t, animation.DefaultEases().Names(), "step")

	box := animation.NewValues(animation.Props{"x": 0})
	tw, err := h.Get(box)
	require.NoError(t, err)
	tw.To(animation.Props{"x": 10}, sec, "step")

	h.Step(ms(900))
	assert.Equal(t, 0.0, box.Get("x"))
	h.Step(ms(100))
	assert.Equal(t, 10.0, box.Get("x"))
}

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := animation.NewMetrics(reg)
	h := motiontest.NewHarness(t, animation.WithMetrics(m))

	done, err := h.Get(animation.NewValues(nil), animation.WithLoop(2))
	require.NoError(t, err)
	done.Wait(sec)
	cancelled, err := h.Get(animation.NewValues(nil))
	require.NoError(t, err)
	cancelled.Wait(10 * sec)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Created))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Active))

	h.Step(sec, sec, sec)
	cancelled.Dispose()
	cancelled.Dispose()

	assert.Equal(t, 0.0, testutil.ToFloat64(m.Active))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Completed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cancelled))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Loops))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestEngine_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := motiontest.NewHarness(t, animation.WithLogger(zap.New(core)))

	tw, err := h.Get(animation.NewValues(nil), animation.WithLoop(1))
	require.NoError(t, err)
	tw.Wait(sec)
	h.Step(sec, sec)

	assert.Equal(t, 1, logs.FilterMessage("tween created").Len())
	assert.Equal(t, 1, logs.FilterMessage("tween looped").Len())
	completed := logs.FilterMessage("tween completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, tw.ID().String(), completed[0].ContextMap()["tween"])

	other, err := h.Get(animation.NewValues(nil))
	require.NoError(t, err)
	other.Dispose()
	assert.Equal(t, 1, logs.FilterMessage("tween cancelled").Len())
}

func TestEngine_ConcurrentUse(t *testing.T) {
	h := motiontest.NewHarness(t)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				tw, err := h.Get(animation.NewValues(animation.Props{"x": 0}))
				if err != nil {
					t.Error(err)
					return
				}
				tw.To(animation.Props{"x": 1}, ms(10), "quadOut")
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 50 {
			h.Step(ms(5))
		}
	}()
	wg.Wait()

	require.NoError(t, h.PumpAndSettle(sec))
	assert.Equal(t, 0, h.Engine.Count())
}

func TestPackageLevelEngine(t *testing.T) {
	box := animation.NewValues(animation.Props{"x": 0})
	tw, err := animation.Get(box)
	require.NoError(t, err)
	t.Cleanup(animation.RemoveAllTweens)
	tw.To(animation.Props{"x": 1}, sec, "linear")

	assert.Equal(t, []*animation.Tween{tw}, animation.DefaultEngine().TweensOf(box))
	animation.RemoveTweens(box)
	assert.True(t, tw.Disposed())
}

type ctxKey struct{}

// recordingTracer records span starts and hands out no-op spans.
type recordingTracer struct {
	noop.Tracer

	mu     sync.Mutex
	names  []string
	ctxs   []context.Context
	config []trace.SpanConfig
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	r.mu.Lock()
	r.names = append(r.names, name)
	r.ctxs = append(r.ctxs, ctx)
	r.config = append(r.config, trace.NewSpanStartConfig(opts...))
	r.mu.Unlock()
	return r.Tracer.Start(ctx, name, opts...)
}

func TestEngine_Tracing(t *testing.T) {
	tracer := &recordingTracer{}
	h := motiontest.NewHarness(t, animation.WithTracer(tracer))
	ctx := context.WithValue(context.Background(), ctxKey{}, "parent")

	tw, err := h.Get(animation.NewValues(animation.Props{"x": 0}),
		animation.WithContext(ctx), animation.WithLoop(1))
	require.NoError(t, err)
	tw.To(animation.Props{"x": 1}, ms(100), "linear")
	require.NoError(t, h.PumpAndSettle(sec))

	require.Equal(t, []string{"animation.Tween"}, tracer.names)
	assert.Equal(t, "parent", tracer.ctxs[0].Value(ctxKey{}))
	attrs := tracer.config[0].Attributes()
	assert.Contains(t, attrs, attribute.String("tween.id", tw.ID().String()))
	assert.Contains(t, attrs, attribute.Int("tween.loop", 1))
	assert.Contains(t, attrs, attribute.Bool("tween.override", false))
}
