// Package errors provides structured error handling for motion.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Sentinel errors matched with [Is].
var (
	// ErrUnknownEase is returned when a step names an ease that is not registered.
	ErrUnknownEase = stderrors.New("unknown ease")
	// ErrInvalidLoop is returned for a loop count that is negative or not an integer.
	ErrInvalidLoop = stderrors.New("invalid loop count")
	// ErrDisposed is returned when a disposed tween is used.
	ErrDisposed = stderrors.New("tween disposed")
	// ErrCancelled is returned by Await when a tween or future is cancelled
	// before completing.
	ErrCancelled = stderrors.New("cancelled")
	// ErrPending is returned when the result of an unsettled future is read.
	ErrPending = stderrors.New("future pending")
	// ErrRejected is the error of a future rejected without a reason.
	ErrRejected = stderrors.New("future rejected")
	// ErrUnknownProperty is returned when a step names a property the target does not have.
	ErrUnknownProperty = stderrors.New("unknown property")
)

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// New returns an error with the given text.
func New(text string) error { return stderrors.New(text) }

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConfig indicates invalid tween or timer configuration.
	KindConfig
	// KindEasing indicates an ease lookup failure.
	KindEasing
	// KindDisposed indicates use of a disposed tween.
	KindDisposed
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindParsing indicates a timeline parsing failure.
	KindParsing
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindEasing:
		return "easing"
	case KindDisposed:
		return "disposed"
	case KindPanic:
		return "panic"
	case KindParsing:
		return "parsing"
	default:
		return "unknown"
	}
}

// AnimationError represents a structured error raised by the animation engine.
type AnimationError struct {
	// Op is the operation that failed (e.g., "animation.Tween.To").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Tween is the identifier of the tween involved, if any.
	Tween string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *AnimationError) Error() string {
	if e.Tween != "" {
		return fmt.Sprintf("%s [%s] tween=%s: %v", e.Op, e.Kind, e.Tween, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *AnimationError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "animation.IntervalSource").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ParseError represents a failure to decode a timeline file.
type ParseError struct {
	// File is the path of the timeline, if known.
	File string
	// Field is the dotted path of the offending field (e.g., "targets[0].loop").
	Field string
	// Got is the raw value found.
	Got any
	// Err is the underlying error.
	Err error
}

func (e *ParseError) Error() string {
	prefix := e.Field
	if e.File != "" {
		prefix = e.File + ": " + e.Field
	}
	if e.Got != nil {
		return fmt.Sprintf("%s: %v (got %v)", prefix, e.Err, e.Got)
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *AnimationError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
