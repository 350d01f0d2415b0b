package animation

import "fmt"

// TweenStatus represents the lifecycle state of a tween.
//
//	          Pause()
//	Running ◄─────────► Paused
//	   │      Resume()     │
//	   │ last pass         │ Dispose()
//	   ▼                   ▼
//	Completed           Cancelled
//
// A running tween that is disposed becomes Cancelled as well.
type TweenStatus int

const (
	// TweenRunning means the tween advances on every tick.
	TweenRunning TweenStatus = iota
	// TweenPaused means the tween keeps its progress but ignores ticks.
	TweenPaused
	// TweenCompleted means the tween finished its last pass.
	TweenCompleted
	// TweenCancelled means the tween was disposed before completing.
	TweenCancelled
)

// String returns a human-readable representation of the status.
func (s TweenStatus) String() string {
	switch s {
	case TweenRunning:
		return "running"
	case TweenPaused:
		return "paused"
	case TweenCompleted:
		return "completed"
	case TweenCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("TweenStatus(%d)", int(s))
	}
}
