package animation

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Clock provides time for timers. It is satisfied by the real clock from
// github.com/benbjohnson/clock and by its Mock, which tests use to control
// animation timing deterministically.
type Clock = clock.Clock

var (
	clockMu sync.RWMutex
	// pkgClock is the time source for timers created without WithClock.
	pkgClock Clock = clock.New()
)

// SetClock replaces the package clock used by timers created afterwards
// without [WithClock]. Returns the previous clock so callers can restore it
// during cleanup.
func SetClock(c Clock) Clock {
	clockMu.Lock()
	defer clockMu.Unlock()
	prev := pkgClock
	if c == nil {
		c = clock.New()
	}
	pkgClock = c
	return prev
}

func currentClock() Clock {
	clockMu.RLock()
	defer clockMu.RUnlock()
	return pkgClock
}

// Now returns the current time from the package clock.
func Now() time.Time { return currentClock().Now() }
