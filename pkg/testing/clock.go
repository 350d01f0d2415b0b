package testing

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Epoch is the time fake clocks start at.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewFakeClock returns a mock clock starting at [Epoch].
// Advance it with Add or Set; it is safe for concurrent use.
func NewFakeClock() *clock.Mock {
	c := clock.NewMock()
	c.Set(Epoch)
	return c
}
