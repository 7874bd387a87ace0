package templating

import (
	"context"
	"errors"
	"io/fs"
	"net"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrInvalidTemplate reports malformed template syntax.
	ErrInvalidTemplate = errors.New("invalid template")
	// ErrRender reports a tag whose key the context lacks.
	ErrRender = errors.New("render error")
	// ErrIO reports an unreadable template or output.
	ErrIO = errors.New("i/o error")
	// ErrNetwork reports a failed template download.
	ErrNetwork = errors.New("request error")
	// ErrNotFound reports a missing template resource.
	ErrNotFound = errors.New("resource not found")
	// ErrTimeout reports a download that exceeded its
	// deadline.
	ErrTimeout = errors.New("operation timed out")
)

// Error is the structured failure returned by the engine.
type Error struct {
	// Kind is one of the Err* sentinels.
	Kind error
	// Detail describes the failure.
	Detail string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()

	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Is matches the error kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalidTemplate(detail string) *Error {
	return &Error{Kind: ErrInvalidTemplate, Detail: detail}
}

func renderFailure(detail string) *Error {
	return &Error{Kind: ErrRender, Detail: detail}
}

type statusCoder interface {
	StatusCode() int
}

// Classify wraps err in an *Error whose kind reflects the
// cause: deadline and timeout errors become ErrTimeout,
// fs.ErrNotExist becomes ErrNotFound, network and HTTP
// status errors become ErrNetwork and everything else
// ErrIO. Errors that already are an *Error are returned
// unchanged. Classify returns nil for a nil err.
func Classify(detail string, err error) error {
	if err == nil {
		return nil
	}

	var te *Error
	if errors.As(err, &te) {
		return err
	}

	kind := ErrIO

	var (
		ne net.Error
		sc statusCoder
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = ErrTimeout
	case errors.As(err, &ne) && ne.Timeout():
		kind = ErrTimeout
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.As(err, &ne), errors.As(err, &sc):
		kind = ErrNetwork
	}

	return &Error{Kind: kind, Detail: detail, Err: err}
}
