// Package apperr classifies errors that cross a component boundary so that
// callers can decide how to log, retry, and respond without string-matching
// error messages. Each Kind maps to exactly one HTTP status in the API layer
// and one retry/backoff behavior in the collector.
package apperr

import "net/http"

// Kind is one of the six error categories the system distinguishes.
type Kind int

const (
	// KindValidation: malformed request parameters. Surfaced to the caller
	// with an explanatory message, 422.
	KindValidation Kind = iota
	// KindUpstreamTransient: network or 5xx from a kit. Retried within a
	// poll, then absorbed into backoff; never surfaced to query callers.
	KindUpstreamTransient
	// KindUpstreamFatal: 4xx or persistent schema error from a kit. Logged,
	// emits a kit-error health event, not retried within the poll.
	KindUpstreamFatal
	// KindStorageUnavailable: connection refused or pool exhausted. Readers
	// surface 503; writers pause and retry on the pool's reconnect policy.
	KindStorageUnavailable
	// KindStorageRow: an unparseable row inside a batch. The offending row
	// is skipped and counted; the batch continues.
	KindStorageRow
	// KindInternal: everything else. Logged with context, 500 to API
	// callers, counted for the task.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUpstreamTransient:
		return "upstream_transient"
	case KindUpstreamFatal:
		return "upstream_fatal"
	case KindStorageUnavailable:
		return "storage_unavailable"
	case KindStorageRow:
		return "storage_row"
	default:
		return "internal"
	}
}

// HTTPStatus is the status code an API handler should use when this kind of
// error escapes to a response. KindUpstreamTransient/Fatal/StorageRow never
// reach the API layer directly; they are absorbed by the collector.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error wraps an underlying error with a Kind, so callers can switch on
// apperr.As(err).Kind without parsing messages.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an *Error of the given kind wrapping err with a message.
func New(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Validation is a convenience constructor for the common case of a
// malformed request parameter.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// As extracts an *Error from err via errors.As semantics, returning nil if
// err is not (or does not wrap) an *Error.
func As(err error) *Error {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil
		}
		err = u.Unwrap()
	}
	return nil
}
