package apperrors

import "errors"

// appError is the concrete Error implementation. Instances are immutable;
// every mutator returns a copy.
type appError struct {
	msg        string
	base       error
	wrapped    []error
	statuscode int
}

func (e *appError) Error() string {
	return e.msg
}

// Unwrap returns the base error for compatibility with errors.Is / errors.As.
func (e *appError) Unwrap() error {
	return e.base
}

// New derives a fresh error with the given message, using the current error
// as its base. The status code is inherited.
func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		statuscode: e.statuscode,
	}
}

// Msg replaces the message while wrapping the original error and everything
// it already wrapped.
func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		wrapped:    append([]error{e}, e.wrapped...),
		statuscode: e.statuscode,
	}
}

// Err attaches additional causes. The message and status code are kept.
func (e *appError) Err(errs ...error) Error {
	return &appError{
		msg:        e.msg,
		base:       e,
		wrapped:    append([]error{e}, errs...),
		statuscode: e.statuscode,
	}
}

// SetStatusCode returns a copy carrying the given HTTP status code.
func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statuscode = code
	return &cp
}

// StatusCode returns the HTTP status code, or 0 when none was set.
func (e *appError) StatusCode() int {
	return e.statuscode
}

// Is reports whether target matches the base error or any attached cause.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.wrapped {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// New creates a root-level error with the given message. Packages declare
// their sentinel errors with this and derive specific instances from them.
func New(msg string) Error {
	return &appError{msg: msg}
}
