package testafy

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure surfaced by an API call.
type ErrorKind int

const (
	// KindConfiguration means the client is missing required configuration
	// (for example the base URI). No request was attempted.
	KindConfiguration ErrorKind = iota + 1
	// KindInvalidEndpoint means the base URI or route could not form a valid URL.
	KindInvalidEndpoint
	// KindClientRequest means the service rejected the request with HTTP 400
	// and an error message (bad script, bad credentials, unknown test id).
	KindClientRequest
	// KindServer means the service answered with any other non-2xx status.
	KindServer
	// KindTransport means the request never produced a usable response.
	KindTransport
)

// String makes ErrorKind satisfy the fmt.Stringer interface.
func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindInvalidEndpoint:
		return "invalid_endpoint"
	case KindClientRequest:
		return "client_request"
	case KindServer:
		return "server"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

var (
	// ErrNoTestID is returned by Submit when the service acknowledged the
	// request but did not issue a test id.
	ErrNoTestID = errors.New("service did not return a test id")

	// ErrPollTimeout is returned when a run did not reach a terminal status
	// within WaitOptions.MaxWait.
	ErrPollTimeout = errors.New("timed out waiting for test run to finish")
)

// Error is the single error type returned by the transport.
type Error struct {
	Kind ErrorKind
	// Op is the route that was being called, e.g. "test/status".
	Op string
	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int
	// Message is the server supplied error text for KindClientRequest,
	// otherwise a short description.
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	switch {
	case e.Op != "" && e.StatusCode != 0:
		return fmt.Sprintf("%s error calling %s (HTTP %d): %s", e.Kind, e.Op, e.StatusCode, msg)
	case e.Op != "":
		return fmt.Sprintf("%s error calling %s: %s", e.Kind, e.Op, msg)
	default:
		return fmt.Sprintf("%s error: %s", e.Kind, msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

// KindOf returns the kind of the *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsTransient reports whether a failed call may succeed when repeated.
// Client request and configuration errors are never transient.
func IsTransient(err error) bool {
	switch KindOf(err) {
	case KindTransport, KindServer:
		return true
	default:
		return false
	}
}

func newError(kind ErrorKind, op string, status int, msg string, cause error) *Error {
	return &Error{
		Kind:       kind,
		Op:         op,
		StatusCode: status,
		Message:    msg,
		Err:        cause,
	}
}
