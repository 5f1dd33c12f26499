// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dberr

import (
	"errors"
	"fmt"
	"time"
)

// A Descriptor is one server-reported error extracted from the errors
// list embedded in a non-2XX response body.
type Descriptor struct {
	// ID is the numeric error code assigned by the server.
	ID int `json:"ID"`
	// Message is the human-readable description accompanying the code.
	// It may be empty; the server is not obliged to provide one for
	// every descriptor.
	Message string `json:"message"`
}

// A ResponseError is returned when the server answers with a non-2XX
// status. It carries the full descriptor list verbatim so callers can
// inspect every reported code, not just the surfaced message.
//
// A ResponseError is never retried by any layer of this library.
type ResponseError struct {
	// StatusCode is the HTTP status code of the failed response.
	StatusCode int
	// Errors holds the descriptors extracted from the response body,
	// in the order the server listed them. It is empty if the body
	// carried no recognizable errors list.
	Errors []Descriptor
}

// Error returns the message of the first descriptor with a non-empty
// message, or a generic fallback naming the status code.
func (e *ResponseError) Error() string {
	for _, d := range e.Errors {
		if d.Message != "" {
			return d.Message
		}
	}
	return fmt.Sprintf("command failed with status code %d", e.StatusCode)
}

// A TimeoutError is returned when a request, or the polling window of
// a long-running operation, exceeds its allotted duration.
//
// For a transport timeout, URL and Body identify the offending
// request. For a poller timeout, Resource identifies the polled
// resource. Duration always carries the window that was exceeded.
type TimeoutError struct {
	// URL is the request URL, for transport timeouts.
	URL string
	// Body is the request body that was in flight, for transport
	// timeouts. May be nil.
	Body any
	// Resource identifies the polled resource, for poller timeouts.
	Resource string
	// Duration is the window that elapsed without completion.
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("timed out after %s waiting on %s", e.Duration, e.Resource)
	}
	return fmt.Sprintf("request to %s timed out after %s", e.URL, e.Duration)
}

// Timeout reports true so the error is recognized by any code testing
// for the standard Timeout() bool contract, including the net/url
// machinery.
func (e *TimeoutError) Timeout() bool {
	return true
}

// An UnexpectedStateError is returned by the poller when the server
// reports a resource status that is neither the desired terminal
// status nor in the caller's transient set. It is fatal to the calling
// operation and is never retried, since it signals the server is in a
// state the caller did not anticipate.
type UnexpectedStateError struct {
	// ID identifies the polled resource.
	ID string
	// Status is the status the server reported.
	Status string
	// Expected lists the statuses the caller anticipated, terminal
	// status first.
	Expected []string
	// Record is the full resource snapshot as returned by the status
	// fetch, for diagnostics.
	Record any
}

func (e *UnexpectedStateError) Error() string {
	return fmt.Sprintf("resource %s is in unexpected state %q (expected one of %v)", e.ID, e.Status, e.Expected)
}

// A DecodeError is returned when a wire payload cannot be parsed. It
// always carries the raw text so the malformed payload is never lost
// to diagnostics.
type DecodeError struct {
	// Raw is the payload that failed to parse.
	Raw string
	// Err is the underlying parse error, if any.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed wire payload: %q", e.Raw)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err, or any error it wraps, is a timeout.
// Both TimeoutError and any error exposing a Timeout() bool method
// that reports true qualify.
func IsTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// IsUnexpectedState reports whether err, or any error it wraps, is an
// UnexpectedStateError.
func IsUnexpectedState(err error) bool {
	var u *UnexpectedStateError
	return errors.As(err, &u)
}

// IsDecode reports whether err, or any error it wraps, is a
// DecodeError.
func IsDecode(err error) bool {
	var d *DecodeError
	return errors.As(err, &d)
}

// AsResponseError extracts a ResponseError from err's chain. The
// second return value reports whether one was found.
func AsResponseError(err error) (*ResponseError, bool) {
	var r *ResponseError
	ok := errors.As(err, &r)
	return r, ok
}
