package meetupapi

import (
	"errors"
	"fmt"
)

// HTTPError is a non-success response from the meetup API.
type HTTPError struct {
	Op         string
	StatusCode int
	Detail     string // server-provided detail, empty when absent
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}

// TransportError means the request could not complete: dial, timeout,
// or an unreadable response body.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsHTTP reports whether err is an HTTP-level failure.
func IsHTTP(err error) bool {
	var he *HTTPError
	return errors.As(err, &he)
}

// DetailOf returns the server-provided detail of an HTTP-level failure.
func DetailOf(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Detail
	}
	return ""
}

// DetailOr returns the server-provided detail, or fallback when there is none.
func DetailOr(err error, fallback string) string {
	if d := DetailOf(err); d != "" {
		return d
	}
	return fallback
}
