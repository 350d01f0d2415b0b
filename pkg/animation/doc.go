// Package animation provides a frame clock and a property tweening engine.
//
// # Core Components
//
//   - [Timer]: emits the elapsed time between frames. It runs from a
//     [FrameSource] or is ticked by hand with [Timer.Tick] and
//     [Timer.TickOverride].
//
//   - [Engine]: owns a registry of live tweens, the ease table, and the
//     timer they listen to. [Engine.RemoveTweens] and
//     [Engine.RemoveAllTweens] cancel tweens by target or all at once.
//
//   - [Tween]: a sequence of interpolation, wait and call steps applied to
//     one [Target]. Tweens loop, pause, and report completion through
//     [Tween.Done], [Tween.Await] and [Tween.Future].
//
//   - [Eases]: named easing functions. [DefaultEases] holds linear, the
//     Penner families and the CSS cubic-bezier keywords.
//
// # Basic Usage
//
//	timer := animation.NewTimer()
//	engine := animation.NewEngine(timer)
//	timer.Start()
//	defer timer.Stop()
//
//	box := animation.NewValues(animation.Props{"x": 0})
//	tw, err := engine.Get(box, animation.WithOverride())
//	if err != nil {
//	    return err
//	}
//	tw.To(animation.Props{"x": 100}, 300*time.Millisecond, "quadOut")
//	return tw.Await(ctx)
//
// # Targets
//
// Engines never own their targets. [Values] holds named numbers;
// [Reflect] adapts a pointer to a struct with numeric fields. Targets are
// matched by identity, and their accessors are called without any engine
// lock held, so they may call back into the tween or the engine.
//
// # Default Instances
//
// [DefaultTimer] and [DefaultEngine] exist for ambient use. The default
// timer is never started implicitly: call Start, or tick it from your own
// render loop.
package animation
