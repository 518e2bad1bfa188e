// Package apperrors provides the error type used throughout the client.
// Errors carry an HTTP status code alongside the message and support
// wrapping, so callers can classify failures with errors.Is while still
// reading the server's status.
package apperrors

// Error extends the standard error interface with status code handling
// and message derivation. Methods that build new errors keep the original
// in the wrap chain so sentinel checks keep working.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error     // derives a fresh error using the current one as base
	Msg(msg string) Error     // replaces the message, wrapping the original
	Err(errs ...error) Error  // attaches additional causes
	SetStatusCode(int) Error  // returns a copy carrying the HTTP status code
	StatusCode() int          // HTTP status code, 0 when unset
}
