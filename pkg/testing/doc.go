// Package testing provides deterministic drivers for animation tests.
//
// # Quick Start
//
// Create a harness, build a tween, and step time explicitly:
//
//	func TestSlide(t *testing.T) {
//	    h := motiontest.NewHarness(t)
//	    box := animation.NewValues(animation.Props{"x": 0})
//	    tw, _ := h.Get(box)
//	    tw.To(animation.Props{"x": 10}, time.Second, "linear")
//
//	    h.Advance(500 * time.Millisecond)
//	    if got := box.Get("x"); got != 5 {
//	        t.Errorf("x = %v, want 5", got)
//	    }
//	}
//
// Advance moves the fake clock and pumps a frame, exercising the same
// Tick path a real render loop uses. Step calls TickOverride directly.
// PumpAndSettle runs 16ms frames until every tween has finished.
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import motiontest "github.com/go-drift/motion/pkg/testing"
package testing
