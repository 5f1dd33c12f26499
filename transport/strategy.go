// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	urlpkg "net/url"
	"time"

	"github.com/coraldb/coral/dberr"
	"github.com/coraldb/coral/ejson"
)

// DefaultTimeout is the request timeout applied when a RequestInfo
// does not carry one. Every request has a non-zero timeout.
const DefaultTimeout = 30 * time.Second

// ErrClosed is returned by Request after the strategy has been closed.
// Close is terminal: a closed strategy fails every subsequent request
// immediately, without touching the network.
var ErrClosed = errors.New("coral/transport: strategy is closed")

// A RequestInfo describes one logical request. It is immutable per
// call: strategies read it and never modify it.
type RequestInfo struct {
	// Method is the HTTP method. The client layer defaults it to POST,
	// since the command protocol posts a single JSON object per call.
	Method string

	// URL is the absolute request URL.
	URL string

	// Params holds query parameters. Order is irrelevant.
	Params map[string]string

	// Body is the structured command body, encoded with ejson.Marshal
	// before sending. A nil Body sends no request body.
	Body any

	// Timeout bounds the request. A zero value resolves to
	// DefaultTimeout.
	Timeout time.Duration

	// TimeoutErr, when non-nil, constructs the error surfaced if the
	// timeout fires, in place of the default *dberr.TimeoutError.
	TimeoutErr func(info RequestInfo) error

	// Token is the authentication token attached per the strategy's
	// header provider. It is injected by the client at request time and
	// travels no further than the request headers.
	Token string

	// Auth, when non-nil, overrides the strategy's header provider for
	// this request. Cloned clients targeting a different service
	// surface use this to change the header convention while sharing
	// the strategy's session.
	Auth HeaderProvider

	// UserAgent is the client-identity string sent with the request.
	UserAgent string
}

// A Response is the assembled result of one request. The transport
// layer does not interpret status codes; classification belongs to
// dberr.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Header holds the raw response headers. Callers use the subset
	// they need, such as Location on resource-creation responses.
	// Treat it as read-only.
	Header http.Header

	// Body is the decoded response body, or nil if the response body
	// was empty.
	Body any

	// Raw is the undecoded response body.
	Raw []byte
}

// A Strategy sends logical requests over one wire protocol. The two
// implementations, Simple and Muxed, differ in connection-lifecycle
// semantics but present identical request contracts.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Strategy interface {
	// Request sends one request and assembles the response. It returns
	// an error from the dberr taxonomy on timeout or malformed
	// payloads, and ErrClosed after Close.
	Request(ctx context.Context, info RequestInfo) (*Response, error)

	// Close releases the strategy's connections. It is idempotent and
	// terminal.
	Close() error

	// Closed reports whether Close has been called.
	Closed() bool
}

// A HeaderProvider renders an authentication token into a header name
// and value. Different target services use different header
// conventions, so the provider is configured per strategy
// instantiation (and overridable per request), never hard-coded.
type HeaderProvider func(token string) (name, value string)

// TokenHeader is the header convention of the data-command surface:
// the token travels verbatim in a Token header.
func TokenHeader(token string) (string, string) {
	return "Token", token
}

// BearerHeader is the header convention of the administrative surface:
// the token travels as an Authorization bearer credential.
func BearerHeader(token string) (string, string) {
	return "Authorization", "Bearer " + token
}

// resolveTimeout returns the effective timeout for a request.
func resolveTimeout(info RequestInfo) time.Duration {
	if info.Timeout > 0 {
		return info.Timeout
	}
	return DefaultTimeout
}

// timeoutError builds the error surfaced when a request's timer fires,
// honoring the caller-supplied constructor if one was given.
func timeoutError(info RequestInfo, d time.Duration) error {
	if info.TimeoutErr != nil {
		return info.TimeoutErr(info)
	}
	return &dberr.TimeoutError{URL: info.URL, Body: info.Body, Duration: d}
}

// newHTTPRequest converts a RequestInfo into an http.Request bound to
// ctx, encoding the body and attaching the auth and identity headers.
func newHTTPRequest(ctx context.Context, info RequestInfo, auth HeaderProvider) (*http.Request, error) {
	u, err := urlpkg.Parse(info.URL)
	if err != nil {
		return nil, err
	}
	if len(info.Params) > 0 {
		q := u.Query()
		for k, v := range info.Params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	method := info.Method
	if method == "" {
		method = http.MethodPost
	}

	var body io.Reader
	if info.Body != nil {
		b, err := ejson.Marshal(info.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if info.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if info.UserAgent != "" {
		req.Header.Set("User-Agent", info.UserAgent)
	}
	if info.Auth != nil {
		auth = info.Auth
	}
	if auth != nil && info.Token != "" {
		name, value := auth(info.Token)
		req.Header.Set(name, value)
	}
	return req, nil
}

// assemble buffers the entire response body, decodes it, and captures
// the status code and headers. The body is parsed only after the
// stream ends; a non-empty body that is not valid extended JSON is a
// hard *dberr.DecodeError naming the raw text. Read errors are
// returned unwrapped for the strategy to map onto its timeout path.
func assemble(resp *http.Response) (*Response, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Raw:        raw,
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		body, err := ejson.Unmarshal(raw)
		if err != nil {
			return nil, err
		}
		out.Body = body
	}
	return out, nil
}

// isTimeout reports whether a transport error is a timeout, either
// because the request context's deadline expired or because the error
// chain reports Timeout() true.
func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() == context.DeadlineExceeded {
		return true
	}
	return dberr.IsTimeout(err)
}
