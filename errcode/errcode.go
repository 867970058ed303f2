package errcode

import "errors"

// Code is a stable, caller-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Bus ownership could not be taken within the wait policy.
	Busy Code = "busy"
	// A bounded wait elapsed.
	Timeout Code = "timeout"
	// The transport reported a failed transaction.
	IOError Code = "io_error"
	// A guarded write was attempted without holding the bus.
	NotHeld Code = "not_held"

	InvalidParams Code = "invalid_params"
	UnknownBus    Code = "unknown_bus"
	UnknownPin    Code = "unknown_pin"
	UnknownBoard  Code = "unknown_board"
	Unsupported   Code = "unsupported"

	Error Code = "error" // generic fallback
)

// E keeps a code together with the failing operation and its cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.IOError) match a wrapped *E.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Wrap builds an *E for op. A nil cause yields nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	// The outermost *E wins over any Code it wraps.
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Error
}

// MapDriverErr maps a raw transport error to a Code.
func MapDriverErr(err error) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, Timeout):
		return Timeout
	case errors.Is(err, Busy):
		return Busy
	default:
		return IOError
	}
}
