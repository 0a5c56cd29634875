// Package errors provides the error type shared by the job pipeline, the
// CLI and the search server. An *Error records the component and operation
// that failed and a Kind that callers map to exit codes and HTTP statuses.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Kind classifies a failure.
type Kind uint8

const (
	// Other is the zero Kind; KindOf keeps looking down the chain past it.
	Other Kind = iota
	// Invalid covers malformed points, jobs and request parameters.
	Invalid
	// NotFound is returned for unknown search ids.
	NotFound
	// Conflict is returned when a search is already in a final state.
	Conflict
	// IO covers reading and writing point and job files.
	IO
	// Cancelled means the search was interrupted.
	Cancelled
)

var kindNames = [...]string{
	Other:     "other",
	Invalid:   "invalid",
	NotFound:  "not_found",
	Conflict:  "conflict",
	IO:        "io",
	Cancelled: "cancelled",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// HTTPStatus maps k to the status the search API answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case Invalid:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Cancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a failure annotated with where it happened.
type Error struct {
	Kind      Kind
	Component string
	Operation string
	Message   string
	Err       error
	Stack     []string
}

// Error renders "component.operation: message: cause", leaving out empty
// parts.
func (e *Error) Error() string {
	where := e.Component
	if e.Operation != "" {
		if where != "" {
			where += "."
		}
		where += e.Operation
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{where, e.Message} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

// WithOperation sets the operation and returns e.
func (e *Error) WithOperation(op string) *Error {
	e.Operation = op
	return e
}

// WithComponent sets the component and returns e.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// WithKind sets the kind and returns e.
func (e *Error) WithKind(kind Kind) *Error {
	e.Kind = kind
	return e
}

// StackTrace returns the frames captured when e was created.
func (e *Error) StackTrace() []string {
	return e.Stack
}

// New creates an error with a message.
func New(msg string) *Error {
	return &Error{Message: msg, Stack: callers()}
}

// Errorf creates an error with a formatted message.
func Errorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Stack: callers()}
}

// Wrap annotates err. It returns nil if err is nil.
func Wrap(err error, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Err: err, Message: msg, Stack: callers()}
}

// Wrapf annotates err with a formatted message. It returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Err: err, Message: fmt.Sprintf(format, args...), Stack: callers()}
}

// callers captures the stack of the function that built the error, minus
// runtime and this package.
func callers() []string {
	var pcs [32]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var stack []string
	for {
		f, more := frames.Next()
		if !strings.HasPrefix(f.Function, "runtime.") && !strings.Contains(f.File, "internal/errors/") {
			stack = append(stack, fmt.Sprintf("%s\n\t%s:%d", f.Function, f.File, f.Line))
		}
		if !more {
			return stack
		}
	}
}

// KindOf returns the first non-Other kind in err's chain. Context
// cancellation anywhere in the chain is reported as Cancelled.
func KindOf(err error) Kind {
	if err == nil {
		return Other
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return Cancelled
	}
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return Other
		}
		if e.Kind != Other {
			return e.Kind
		}
		err = e.Err
	}
	return Other
}

// Operation returns the operation of the outermost *Error in err's chain.
func Operation(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Operation
	}
	return ""
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// Unwrap returns the result of calling the Unwrap method on err, if any.
func Unwrap(err error) error { return stderrors.Unwrap(err) }
