// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"crypto/tls"
	"net"
	urlpkg "net/url"
	"strings"
	"sync"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"

	"github.com/coraldb/coral/dberr"
)

// A DialFunc opens the underlying connection for a muxed session.
// addr is a host:port authority.
type DialFunc func(ctx context.Context, addr string) (net.Conn, error)

// MuxedConfig configures a Muxed strategy.
type MuxedConfig struct {
	// Auth renders the authentication token into a header. If nil,
	// TokenHeader is used.
	Auth HeaderProvider

	// TLS configures the default dialer. Ignored when Dial is set.
	TLS *tls.Config

	// Dial opens the session's underlying connection. If nil, a TLS
	// dial negotiating h2 is used. Tests substitute in-process
	// connections here.
	Dial DialFunc

	// Log receives session-lifecycle debug logging. If nil, a logger
	// scoped to this component is derived from the standard logger.
	Log logrus.FieldLogger
}

// Muxed is the persistent multiplexed-session strategy. One strategy
// instance owns at most one live HTTP/2 session; concurrent requests
// interleave over it and may complete in any order.
//
// The session is created lazily on first use. When it stops accepting
// new requests, because the peer tore it down on idle or connection
// limits or because it failed, the next request transparently opens a
// fresh session. Revival replaces a single conn pointer under the
// strategy's lock; requests already in flight on the dying session are
// untouched and settle through their own timers and error events.
type Muxed struct {
	auth HeaderProvider
	dial DialFunc
	log  logrus.FieldLogger
	t    *http2.Transport

	mu     sync.Mutex
	conn   *http2.ClientConn
	closed bool
}

// NewMuxed returns a Muxed strategy using the given configuration. No
// connection is opened until the first request.
func NewMuxed(cfg MuxedConfig) *Muxed {
	auth := cfg.Auth
	if auth == nil {
		auth = TokenHeader
	}
	dial := cfg.Dial
	if dial == nil {
		dial = tlsDial(cfg.TLS)
	}
	log := cfg.Log
	if log == nil {
		log = logrus.WithField("component", "coral/transport")
	}
	return &Muxed{
		auth: auth,
		dial: dial,
		log:  log,
		t:    &http2.Transport{},
	}
}

// Request sends one request over the session, reviving the session
// first if it can no longer take requests. The request races against
// the resolved timeout; when the timer fires the call returns a typed
// timeout error carrying the request body and the configured duration,
// and cancellation of the request context resets the pending stream so
// it is not left dangling. Each call settles exactly once: a late
// response after the timeout has fired is discarded by the transport,
// never delivered.
func (m *Muxed) Request(ctx context.Context, info RequestInfo) (*Response, error) {
	d := resolveTimeout(info)
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	req, err := newHTTPRequest(ctx, info, m.auth)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	cc, err := m.session(ctx, req.URL)
	if err != nil {
		if err != ErrClosed && isTimeout(ctx, err) {
			return nil, timeoutError(info, d)
		}
		return nil, err
	}

	// The status code is captured from the response start; the body
	// streams in afterward and is buffered in full by assemble before
	// decoding. Session-level transport errors surface here, on the
	// specific pending request they belong to, and nowhere else.
	resp, err := cc.RoundTrip(req)
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
	return out, nil
}

// session returns the live HTTP/2 session, opening a fresh one if the
// current session is absent or no longer accepting requests.
func (m *Muxed) session(ctx context.Context, u *urlpkg.URL) (*http2.ClientConn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.conn != nil && m.conn.CanTakeNewRequest() {
		return m.conn, nil
	}
	if m.conn != nil {
		m.log.Debug("session no longer accepting requests, reviving")
	}

	nc, err := m.dial(ctx, authority(u))
	if err != nil {
		return nil, trace.Wrap(err)
	}
	cc, err := m.t.NewClientConn(nc)
	if err != nil {
		_ = nc.Close()
		return nil, trace.Wrap(err)
	}
	m.conn = cc
	return cc, nil
}

// Close tears the session down. It is terminal: every subsequent
// Request fails immediately with ErrClosed.
func (m *Muxed) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.conn == nil {
		return nil
	}
	conn := m.conn
	m.conn = nil
	return trace.Wrap(conn.Close())
}

// Closed reports whether Close has been called.
func (m *Muxed) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// tlsDial returns the default DialFunc: a TLS dial negotiating h2.
func tlsDial(cfg *tls.Config) DialFunc {
	return func(ctx context.Context, addr string) (net.Conn, error) {
		var c *tls.Config
		if cfg != nil {
			c = cfg.Clone()
		} else {
			c = &tls.Config{}
		}
		if !hasProto(c.NextProtos, http2.NextProtoTLS) {
			c.NextProtos = append([]string{http2.NextProtoTLS}, c.NextProtos...)
		}
		d := &tls.Dialer{Config: c}
		return d.DialContext(ctx, "tcp", addr)
	}
}

func hasProto(protos []string, proto string) bool {
	for _, p := range protos {
		if p == proto {
			return true
		}
	}
	return false
}

// authority returns the host:port to dial for a URL, defaulting the
// port from the scheme.
func authority(u *urlpkg.URL) string {
	host := u.Host
	if hasPort(host) {
		return host
	}
	if u.Scheme == "http" {
		return host + ":80"
	}
	return host + ":443"
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

var (
	_ Strategy = (*Simple)(nil)
	_ Strategy = (*Muxed)(nil)
)
