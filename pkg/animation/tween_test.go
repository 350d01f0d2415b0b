package animation_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
	motiontest "github.com/go-drift/motion/pkg/testing"
)

const sec = time.Second

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// silenceErrors routes reported errors to a recorder for the test's duration.
func silenceErrors(t *testing.T) *recordingHandler {
	t.Helper()
	h := &recordingHandler{}
	prev := errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(prev) })
	return h
}

type recordingHandler struct {
	mu     sync.Mutex
	errs   []*errors.AnimationError
	panics []*errors.PanicError
}

func (h *recordingHandler) HandleError(err *errors.AnimationError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *recordingHandler) HandlePanic(err *errors.PanicError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, err)
}

func (h *recordingHandler) Errors() []*errors.AnimationError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.errs)
}

func (h *recordingHandler) Panics() []*errors.PanicError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.panics)
}

func TestTween_LinearScenario(t *testing.T) {
	h := motiontest.NewHarness(t)
	box := animation.NewValues(animation.Props{"x": 0})
	completed := 0
	tw, err := h.Get(box, animation.WithOnComplete(func() { completed++ }))
	require.NoError(t, err)
	tw.To(animation.Props{"x": 10}, 2*sec, "linear")

	h.Step(ms(500))
	assert.Equal(t, 2.5, box.Get("x"))
	h.Step(ms(500))
	assert.Equal(t, 5.0, box.Get("x"))
	h.Step(sec)
	assert.Equal(t, 10.0, box.Get("x"))

	assert.Equal(t, 1, completed, "completes on the tick that finishes the last step")
	assert.True(t, tw.Completed())
	assert.True(t, tw.Disposed())
	assert.Equal(t, 0, h.Engine.Count())
	assert.Nil(t, tw.Target(), "disposed tween releases its target")
}

func TestTween_ConvergesExactly(t *testing.T) {
	h := motiontest.NewHarness(t)
	box := animation.NewValues(animation.Props{"x": 0.1, "y": -3})
	tw, err := h.Get(box)
	require.NoError(t, err)
	tw.To(animation.Props{"x": 0.3, "y": 7.7}, 900*time.Millisecond, "elasticOut")

	h.Step(ms(300), ms(300), ms(300))
	assert.Equal(t, 0.3, box.Get("x"))
	assert.Equal(t, 7.7, box.Get("y"))
}

func TestTween_WaitThenCallSameTick(t *testing.T) {
	h := motiontest.NewHarness(t)
	calls := 0
	tw, err := h.Get(animation.NewValues(nil))
	require.NoError(t, err)
	tw.Wait(sec).Call(func() { calls++ })

	h.Step(ms(1500))
	assert.Equal(t, 1, calls)
	assert.True(t, tw.Completed())
}

func TestTween_CallStepIsWeightless(t *testing.T) {
	h := motiontest.NewHarness(t)
	box := animation.NewValues(animation.Props{"x": 0})
	var order []string
	tw, err := h.Get(box)
	require.NoError(t, err)
	tw.Call(func() { order = append(order, "first") }).
		To(animation.Props{"x": 10}, sec, "linear").
		Call(func() { order = append(order, "second") })

	h.Step(ms(500))
	assert.Equal(t, []string{"first"}, order)
	assert.Equal(t, 5.0, box.Get("x"), "call step does not use up the tick")

	h.Step(ms(500))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestTween_LazyStartValues(t *testing.T) {
	h := motiontest.NewHarness(t)
	box := animation.NewValues(animation.Props{"x": 0})
	tw, err := h.Get(box)
	require.NoError(t, err)
	tw.To(animation.Props{"x": 10}, sec, "linear").
		Wait(sec).
		To(animation.Props{"x": 20}, sec, "linear")

	h.Step(sec)
	assert.Equal(t, 10.0, box.Get("x"))

	// Changes made before a step begins become its start value.
	box.SetProperty("x", 0)
	h.Step(sec)
	assert.Equal(t, 0.0, box.Get("x"))
	h.Step(ms(500))
	assert.Equal(t, 10.0, box.Get("x"))
	h.Step(ms(500))
	assert.Equal(t, 20.0, box.Get("x"))
}

func TestTween_Sequence(t *testing.T) {
	h := motiontest.NewHarness(t)
	box := animation.NewValues(animation.Props{"x": 0, "y": 0})
	tw, err := h.Get(box)
	require.NoError(t, err)
	tw.To(animation.Props{"x": 4}, sec, "").
		Wait(sec).
		To(animation.Props{"y": 8}, sec, "quadIn")

	h.Step(sec)
	assert.Equal(t, 4.0, box.Get("x"))
	h.Step(ms(500))
	assert.Equal(t, 0.0, box.Get("y"), "wait does not mutate")
	h.Step(ms(500))
	h.Step(ms(500))
	assert.Equal(t, 2.0, box.Get("y"), "quadIn at t=0.5 is 0.25")
	h.Step(ms(500))
	assert.Equal(t, 8.0, box.Get("y"))
	assert.True(t, tw.Completed())
}

func TestTween_FiniteLoop(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		h := motiontest.NewHarness(t)
		passes, completed := 0, 0
		tw, err := h.Get(animation.NewValues(animation.Props{"x": 0}),
			animation.WithLoop(n),
			animation.WithOnComplete(func() { completed++ }))
		require.NoError(t, err)
		tw.To(animation.Props{"x": 1}, ms(100), "linear").Call(func() { passes++ })
		done := tw.Done()

		for range 50 {
			h.Step(ms(100))
		}
		assert.Equal(t, n+1, passes, "loop=%d", n)
		assert.Equal(t, 1, completed, "loop=%d", n)
		select {
		case <-done:
		default:
			t.Errorf("loop=%d: Done not closed", n)
		}
	}
}

func TestTween_CompletionAfterAllPasses(t *testing.T) {
	h := motiontest.NewHarness(t)
	passes := 0
	var passesAtCompletion int
	tw, err := h.Get(animation.NewValues(nil),
		animation.WithLoop(2),
		animation.WithOnComplete(func() { passesAtCompletion = passes }))
	require.NoError(t, err)
	tw.Wait(sec).Call(func() { passes++ })

	h.Step(sec, sec)
	assert.False(t, tw.Completed())
	h.Step(sec)
	assert.True(t, tw.Completed())
	assert.Equal(t, 3, passesAtCompletion)
}

func TestTween_InfiniteLoop(t *testing.T) {
	h := motiontest.NewHarness(t)
	passes, completed := 0, 0
	tw, err := h.Get(animation.NewValues(nil),
		animation.WithLoopForever(),
		animation.WithOnComplete(func() { completed++ }))
	require.NoError(t, err)
	tw.Wait(ms(100)).Call(func() { passes++ })

	for range 100 {
		h.Step(ms(100))
	}
	assert.Equal(t, 100, passes)
	assert.Zero(t, completed)
	assert.False(t, tw.Disposed())

	h.Engine.RemoveTweens(tw.Target())
	assert.True(t, tw.Disposed())
	h.Step(ms(100))
	assert.Equal(t, 100, passes)
	assert.Zero(t, completed, "cancellation never completes")
	assert.ErrorIs(t, tw.Await(context.Background()), errors.ErrCancelled)
}

func TestTween_InfiniteLoopZeroDuration(t *testing.T) {
	h := motiontest.NewHarness(t)
	calls := 0
	tw, err := h.Get(animation.NewValues(nil), animation.WithLoopForever())
	require.NoError(t, err)
	tw.Call(func() { calls++ })

	// The first tick runs the initial pass and one repeat; after that the
	// sequence wraps once per tick.
	h.Step(ms(16))
	assert.Equal(t, 2, calls)
	h.Step(ms(16), ms(16))
	assert.Equal(t, 4, calls)
}

func TestTween_LoopRestartsFromCurrentValues(t *testing.T) {
	h := motiontest.NewHarness(t)
	box := animation.NewValues(animation.Props{"x": 0})
	tw, err := h.Get(box, animation.WithLoop(1))
	require.NoError(t, err)
	tw.To(animation.Props{"x": 10}, sec, "linear").Call(func() { box.SetProperty("x", 0) })

	h.Step(sec)
	h.Step(ms(500))
	assert.Equal(t, 5.0, box.Get("x"))
	h.Step(ms(500))
	assert.True(t, tw.Completed())
}

func TestTween_Pause(t *testing.T) {
	h := motiontest.NewHarness(t)
	box := animation.NewValues(animation.Props{"x": 0})
	tw, err := h.Get(box)
	require.NoError(t, err)
	tw.To(animation.Props{"x": 10}, sec, "linear")

	h.Step(ms(200))
	tw.Pause()
	assert.Equal(t, animation.TweenPaused, tw.Status())
	h.Step(sec, sec)
	assert.Equal(t, 2.0, box.Get("x"))

	tw.Resume()
	assert.False(t, tw.Paused())
	h.Step(ms(300))
	assert.Equal(t, 5.0, box.Get("x"))
}

func TestTween_PauseFromCallback(t *testing.T) {
	h := motiontest.NewHarness(t)
	box := animation.NewValues(animation.Props{"x": 0})
	var tw *animation.Tween
	tw, err := h.Get(box)
	require.NoError(t, err)
	tw.Call(func() { tw.Pause() }).To(animation.Props{"x": 10}, sec, "linear")

	h.Step(ms(500))
	assert.Equal(t, 0.0, box.Get("x"))
	tw.Resume()
	h.Step(ms(500))
	assert.Equal(t, 5.0, box.Get("x"))
}

func TestTween_DisposeIdempotent(t *testing.T) {
	h := motiontest.NewHarness(t)
	box := animation.NewValues(animation.Props{"x": 0})
	tw, err := h.Get(box)
	require.NoError(t, err)
	tw.To(animation.Props{"x": 10}, sec, "linear")

	tw.Dispose()
	tw.Destroy()
	tw.Dispose()

	assert.Equal(t, animation.TweenCancelled, tw.Status())
	assert.Equal(t, 0, h.Engine.Count())
	assert.Equal(t, 0, h.Timer.Len(), "unsubscribed from the timer")
	h.Step(sec)
	assert.Equal(t, 0.0, box.Get("x"))
}

func TestTween_DisposeFromOwnCallback(t *testing.T) {
	h := motiontest.NewHarness(t)
	var tw *animation.Tween
	after := 0
	tw, err := h.Get(animation.NewValues(nil))
	require.NoError(t, err)
	tw.Call(func() { tw.Dispose() }).Call(func() { after++ })

	h.Step(ms(16))
	assert.Zero(t, after)
	assert.True(t, tw.Disposed())
	assert.False(t, tw.Completed())
}

// hookedTarget calls back into its tween from the property accessors.
type hookedTarget struct {
	*animation.Values
	tw    *animation.Tween
	reads  int
	onRead func()
	onSet  func(v float64)
}

func (h *hookedTarget) Property(name string) (float64, bool) {
	h.reads++
	_ = h.tw.Status()
	if h.onRead != nil {
		h.onRead()
	}
	return h.Values.Property(name)
}

func (h *hookedTarget) SetProperty(name string, v float64) {
	h.Values.SetProperty(name, v)
	if h.onSet != nil {
		h.onSet(v)
	}
}

// stepWithin fails the test instead of hanging when a tick does not return.
func stepWithin(t *testing.T, h *motiontest.Harness, elapsed ...time.Duration) {
	t.Helper()
	returned := make(chan struct{})
	go func() {
		defer close(returned)
		h.Step(elapsed...)
	}()
	select {
	case <-returned:
	case <-time.After(5 * time.Second):
		t.Fatal("tick did not return: target callback blocked on the tween")
	}
}

func TestTween_TargetCallsBack(t *testing.T) {
	t.Run("pause", func(t *testing.T) {
		h := motiontest.NewHarness(t)
		box := &hookedTarget{Values: animation.NewValues(animation.Props{"x": 0})}
		tw, err := h.Get(box)
		require.NoError(t, err)
		box.tw = tw
		box.onSet = func(v float64) {
			if v >= 5 && !tw.Paused() {
				tw.Pause()
			}
		}
		tw.To(animation.Props{"x": 10}, sec, "linear")

		stepWithin(t, h, ms(500))
		assert.Equal(t, 5.0, box.Get("x"))
		assert.Equal(t, animation.TweenPaused, tw.Status())
		assert.Equal(t, 1, box.reads)

		stepWithin(t, h, ms(500))
		assert.Equal(t, 5.0, box.Get("x"))
	})

	t.Run("remove", func(t *testing.T) {
		h := motiontest.NewHarness(t)
		box := &hookedTarget{Values: animation.NewValues(animation.Props{"x": 0})}
		tw, err := h.Get(box)
		require.NoError(t, err)
		box.tw = tw
		box.onSet = func(v float64) {
			if v >= 5 {
				h.Engine.RemoveTweens(box)
			}
		}
		tw.To(animation.Props{"x": 10}, sec, "linear").Call(func() { t.Error("call step ran after removal") })

		stepWithin(t, h, ms(500), ms(500))
		assert.Equal(t, 5.0, box.Get("x"))
		assert.Equal(t, animation.TweenCancelled, tw.Status())
		assert.Equal(t, 0, h.Engine.Count())
	})

	t.Run("dispose while reading start values", func(t *testing.T) {
		h := motiontest.NewHarness(t)
		box := &hookedTarget{Values: animation.NewValues(animation.Props{"x": 1})}
		tw, err := h.Get(box)
		require.NoError(t, err)
		box.tw = tw
		box.onRead = func() { tw.Dispose() }
		box.onSet = func(float64) { t.Error("target written after dispose") }
		tw.To(animation.Props{"x": 10}, sec, "linear")

		stepWithin(t, h, ms(500))
		assert.Equal(t, 1.0, box.Get("x"))
		assert.Equal(t, animation.TweenCancelled, tw.Status())
	})
}

func TestTween_UnknownEase(t *testing.T) {
	rec := silenceErrors(t)
	h := motiontest.NewHarness(t)
	box := animation.NewValues(animation.Props{"x": 0})
	tw, err := h.Get(box)
	require.NoError(t, err)

	tw.To(animation.Props{"x": 10}, sec, "wobble")

	require.Error(t, tw.Err())
	assert.ErrorIs(t, tw.Err(), errors.ErrUnknownEase)
	assert.Contains(t, tw.Err().Error(), `"wobble"`)
	var ae *errors.AnimationError
	require.ErrorAs(t, tw.Err(), &ae)
	assert.Equal(t, errors.KindEasing, ae.Kind)
	assert.True(t, tw.Disposed())
	require.Len(t, rec.Errors(), 1)

	// Further builder calls are rejected but keep the first error.
	tw.Wait(sec)
	assert.ErrorIs(t, tw.Err(), errors.ErrUnknownEase)

	h.Step(sec)
	assert.Equal(t, 0.0, box.Get("x"))
	assert.ErrorIs(t, tw.Await(context.Background()), errors.ErrUnknownEase)
}

func TestTween_BuilderOnDisposed(t *testing.T) {
	silenceErrors(t)
	h := motiontest.NewHarness(t)
	tw, err := h.Get(animation.NewValues(nil))
	require.NoError(t, err)
	tw.Dispose()

	tw.Wait(sec)
	var ae *errors.AnimationError
	require.ErrorAs(t, tw.Err(), &ae)
	assert.Equal(t, errors.KindDisposed, ae.Kind)
	assert.ErrorIs(t, tw.Err(), errors.ErrDisposed)
}

func TestTween_Await(t *testing.T) {
	h := motiontest.NewHarness(t)
	tw, err := h.Get(animation.NewValues(animation.Props{"x": 0}))
	require.NoError(t, err)
	tw.To(animation.Props{"x": 1}, sec, "linear")

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tw.Await(ctx), context.DeadlineExceeded)

	result := make(chan error, 1)
	go func() { result <- tw.Await(context.Background()) }()
	h.Step(sec)
	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Await did not return after completion")
	}

	// Done after completion is already closed.
	select {
	case <-tw.Done():
	default:
		t.Error("Done should be closed after completion")
	}
	assert.Equal(t, animation.TweenCompleted, tw.Status())
}

func TestTween_Future(t *testing.T) {
	t.Run("shared", func(t *testing.T) {
		h := motiontest.NewHarness(t)
		tw, err := h.Get(animation.NewValues(nil))
		require.NoError(t, err)
		tw.Wait(sec)
		f := tw.Future()
		assert.Same(t, f, tw.Future())
		assert.False(t, f.Complete())

		h.Step(sec)
		assert.True(t, f.Complete())
		assert.False(t, f.Cancelled())
	})

	t.Run("cancelled on dispose", func(t *testing.T) {
		h := motiontest.NewHarness(t)
		tw, err := h.Get(animation.NewValues(nil))
		require.NoError(t, err)
		tw.Wait(sec)
		f := tw.Future()

		h.Engine.RemoveTweens(tw.Target())
		assert.True(t, f.Cancelled())
		_, err = f.Result()
		assert.ErrorIs(t, err, errors.ErrCancelled)
	})

	t.Run("created after dispose", func(t *testing.T) {
		h := motiontest.NewHarness(t)
		tw, err := h.Get(animation.NewValues(nil))
		require.NoError(t, err)
		tw.Dispose()
		assert.True(t, tw.Future().Cancelled())
		assert.ErrorIs(t, tw.Await(context.Background()), errors.ErrCancelled)
	})

	t.Run("requested from onComplete", func(t *testing.T) {
		h := motiontest.NewHarness(t)
		var tw *animation.Tween
		tw, err := h.Get(animation.NewValues(nil), animation.WithOnComplete(func() {
			tw.Dispose()
			tw.Future()
		}))
		require.NoError(t, err)
		tw.Wait(sec)

		h.Step(sec)
		assert.True(t, tw.Future().Complete())
		assert.NoError(t, tw.Await(context.Background()))
	})
}

func TestTween_ZeroDurationStep(t *testing.T) {
	h := motiontest.NewHarness(t)
	box := animation.NewValues(animation.Props{"x": 0})
	tw, err := h.Get(box)
	require.NoError(t, err)
	tw.To(animation.Props{"x": 3}, 0, "linear").To(animation.Props{"x": 6}, -sec, "linear")

	h.Step(0)
	assert.Equal(t, 6.0, box.Get("x"))
	assert.True(t, tw.Completed())
}

func TestTween_EmptyCompletesOnFirstTick(t *testing.T) {
	h := motiontest.NewHarness(t)
	completed := false
	_, err := h.Get(animation.NewValues(nil), animation.WithOnComplete(func() { completed = true }))
	require.NoError(t, err)
	h.Step(ms(16))
	assert.True(t, completed)
}

func TestTween_ReflectTarget(t *testing.T) {
	silenceErrors(t)
	type sprite struct {
		X, Y  float64
		Alpha float32
		Frame int
		Name  string
	}
	h := motiontest.NewHarness(t)
	s := &sprite{Alpha: 1}
	target, err := animation.Reflect(s)
	require.NoError(t, err)

	tw, err := h.Get(target)
	require.NoError(t, err)
	tw.To(animation.Props{"X": 100, "Alpha": 0, "Frame": 10}, sec, "linear")

	h.Step(ms(250))
	assert.Equal(t, 25.0, s.X)
	assert.InDelta(t, 0.75, s.Alpha, 1e-6)
	assert.Equal(t, 2, s.Frame)

	// Cancelling by the struct pointer finds the wrapper's tween.
	h.Engine.RemoveTweens(s)
	assert.True(t, tw.Disposed())

	bad, err := h.Get(target)
	require.NoError(t, err)
	bad.To(animation.Props{"Name": 1}, sec, "linear")
	assert.ErrorIs(t, bad.Err(), errors.ErrUnknownProperty)
}

func TestTween_AdvanceThroughTimer(t *testing.T) {
	h := motiontest.NewHarness(t)
	box := animation.NewValues(animation.Props{"x": 0})
	tw, err := h.Get(box)
	require.NoError(t, err)
	tw.To(animation.Props{"x": 100}, sec, "linear")

	h.Timer.SetSpeed(2)
	h.Advance(ms(250))
	assert.Equal(t, 50.0, box.Get("x"))

	require.NoError(t, h.PumpAndSettle(5*sec))
	assert.Equal(t, 100.0, box.Get("x"))
}

func TestTween_PumpAndSettleTimeout(t *testing.T) {
	h := motiontest.NewHarness(t)
	tw, err := h.Get(animation.NewValues(nil), animation.WithLoopForever())
	require.NoError(t, err)
	tw.Wait(ms(100))

	assert.ErrorIs(t, h.PumpAndSettle(sec), motiontest.ErrSettleTimeout)
}
