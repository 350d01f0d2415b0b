package future

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// Wait blocks until d has passed on clk or ctx ends. A nil clk uses the real
// clock; tests pass a *clock.Mock and advance it. A non-positive d returns
// at once.
func Wait(ctx context.Context, clk clock.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if clk == nil {
		clk = clock.New()
	}
	t := clk.Timer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// After returns a future resolved once d has passed on clk. It is cancelled
// if ctx ends first.
func After(ctx context.Context, clk clock.Clock, d time.Duration) *Future[struct{}] {
	f := New[struct{}]()
	go func() {
		if err := Wait(ctx, clk, d); err != nil {
			f.Cancel()
			return
		}
		f.Resolve(struct{}{})
	}()
	return f
}
