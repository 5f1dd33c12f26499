// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"net/http"
	"sync"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"

	"github.com/coraldb/coral/dberr"
)

// SimpleConfig configures a Simple strategy.
type SimpleConfig struct {
	// HTTPClient sends the requests. If nil, a fresh http.Client
	// backed by the default pooled transport is used.
	HTTPClient *http.Client

	// Auth renders the authentication token into a header. If nil,
	// TokenHeader is used.
	Auth HeaderProvider

	// Log receives per-request debug logging. If nil, a logger scoped
	// to this component is derived from the standard logger.
	Log logrus.FieldLogger
}

// Simple is the one-request-per-call strategy. Each call builds a
// fresh HTTP request and relies on the underlying client's connection
// pool; there is no session state to manage beyond idle connections.
type Simple struct {
	httpClient *http.Client
	auth       HeaderProvider
	log        logrus.FieldLogger

	mu     sync.Mutex
	closed bool
}

// NewSimple returns a Simple strategy using the given configuration.
func NewSimple(cfg SimpleConfig) *Simple {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	auth := cfg.Auth
	if auth == nil {
		auth = TokenHeader
	}
	log := cfg.Log
	if log == nil {
		log = logrus.WithField("component", "coral/transport")
	}
	return &Simple{
		httpClient: httpClient,
		auth:       auth,
		log:        log,
	}
}

// Request sends one request, racing it against the resolved timeout.
func (s *Simple) Request(ctx context.Context, info RequestInfo) (*Response, error) {
	if s.Closed() {
		return nil, ErrClosed
	}

	d := resolveTimeout(info)
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	req, err := newHTTPRequest(ctx, info, s.auth)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, timeoutError(info, d)
		}
		return nil, trace.Wrap(err)
	}

	out, err := assemble(resp)
	if err != nil {
		if dberr.IsDecode(err) {
			return nil, err
		}
		if isTimeout(ctx, err) {
			return nil, timeoutError(info, d)
		}
		return nil, trace.Wrap(err)
	}
	s.log.WithFields(logrus.Fields{
		"method": req.Method,
		"url":    req.URL.String(),
		"status": out.StatusCode,
	}).Debug("request complete")
	return out, nil
}

// Close marks the strategy closed and releases idle connections.
func (s *Simple) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.httpClient.CloseIdleConnections()
	return nil
}

// Closed reports whether Close has been called.
func (s *Simple) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
