// Package errors provides structured error handling for the Loom framework.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindStructural indicates a programmer error such as an invalid path
	// expression, a rejected attachment, or a type-restriction violation.
	KindStructural
	// KindBinding indicates a failure inside the binding engine.
	KindBinding
	// KindListener indicates a failure raised by an application-supplied
	// event or binding callback.
	KindListener
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindBinding:
		return "binding"
	case KindListener:
		return "listener"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// LoomError represents a structured error in the Loom framework.
type LoomError struct {
	// Op is the operation that failed (e.g., "observable.Attach").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Source describes the observable object involved, if applicable.
	Source string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *LoomError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s [%s] source=%s: %v", e.Op, e.Kind, e.Source, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *LoomError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "binding.Subscription.evaluate").
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

// ListenerError represents a panic recovered from an application-supplied
// event listener or binding callback. Delivery to subsequent listeners
// continues after the error is reported.
type ListenerError struct {
	// Source describes the object the event was emitted on.
	Source string
	// Event is the name of the event being delivered.
	Event string
	// Recovered is the panic value.
	Recovered any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *ListenerError) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("listener panic on %s during %q: %v", e.Source, e.Event, e.Recovered)
	}
	return fmt.Sprintf("listener panic on %s: %v", e.Source, e.Recovered)
}

// ErrorHandler receives errors reported by the Loom framework.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *LoomError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleListenerError is called when an event listener panics.
	HandleListenerError(err *ListenerError)
}
