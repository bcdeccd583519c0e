// Package fault defines the error taxonomy shared by every bigtext operation
package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors identifying the kind of a failure.
var (
	// ErrSourceUnavailable is returned when a source file is missing or unreadable.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrUnsupportedEncoding is returned when an encoding name cannot be resolved.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrOffsetOutOfRange is returned when an insert or substring offset
	// lies outside the source's character range.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrDestinationWrite is returned when an output file cannot be created,
	// written, flushed or closed.
	ErrDestinationWrite = errors.New("destination write failure")

	// ErrInvalidArgument is returned for malformed parameters.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error is a failure of a single operation step
type Error struct {
	Kind error  // one of the sentinel errors above
	Op   string // operation that failed, e.g. "open", "write"
	Path string // file involved, if any
	Err  error  // underlying cause, may be nil
}

// New creates an Error of the given kind
func New(kind error, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Invalid returns an ErrInvalidArgument failure with a formatted message
func Invalid(op, format string, args ...any) *Error {
	return New(ErrInvalidArgument, op, "", fmt.Errorf(format, args...))
}

// OutOfRange returns an ErrOffsetOutOfRange failure describing the offset
func OutOfRange(op string, offset, length int64) *Error {
	return New(ErrOffsetOutOfRange, op, "", fmt.Errorf("offset %d, length %d", offset, length))
}

// HTTPStatus maps an error to the HTTP status the server answers with
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrSourceUnavailable):
		return http.StatusNotFound
	case errors.Is(err, ErrUnsupportedEncoding), errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrOffsetOutOfRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
