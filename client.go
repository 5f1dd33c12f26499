// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package coral

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"

	"github.com/coraldb/coral/dberr"
	"github.com/coraldb/coral/transport"
)

// Config carries the construction parameters of a Client.
//
// Overrides are field-by-field: a zero field takes the documented
// default, a set field replaces it entirely. There is no recursive
// merging of option groups.
type Config struct {
	// BaseURL is the service endpoint requests are issued against.
	// Required.
	BaseURL string

	// Token is the authentication token. Required. The token is held
	// in an unexported field of the client, is never returned by any
	// accessor, and reaches the wire only through the transport
	// strategy's header provider.
	Token string

	// Strategy sends the requests. If nil, a Simple strategy with
	// default configuration is used. The strategy is fixed for the
	// client's lifetime.
	Strategy transport.Strategy

	// Auth renders the token into a header. If nil, the data-surface
	// convention (transport.TokenHeader) is used.
	Auth transport.HeaderProvider

	// Callers optionally identifies the calling application in the
	// client-identity string sent with every request.
	Callers []Caller

	// Timeout is the default per-request timeout. Zero falls through
	// to transport.DefaultTimeout.
	Timeout time.Duration

	// Log receives the client's debug logging. If nil, a logger scoped
	// to this component is derived from the standard logger. The
	// client never mutates global logger state.
	Log logrus.FieldLogger
}

// CheckAndSetDefaults validates the configuration and fills defaults.
// Configuration errors are fatal at construction time, never deferred
// to the first request.
func (cfg *Config) CheckAndSetDefaults() error {
	if cfg.BaseURL == "" {
		return trace.BadParameter("missing base URL")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return trace.BadParameter("invalid base URL %q", cfg.BaseURL)
	}
	if cfg.Token == "" {
		return trace.BadParameter("missing authentication token")
	}
	if cfg.Strategy == nil {
		cfg.Strategy = transport.NewSimple(transport.SimpleConfig{Log: cfg.Log})
	}
	if cfg.Auth == nil {
		cfg.Auth = transport.TokenHeader
	}
	if cfg.Log == nil {
		cfg.Log = logrus.WithField("component", "coral")
	}
	return nil
}

// A Client issues commands to the database service through a fixed
// transport strategy. Create one per logical client and reuse it; use
// Clone to derive specialized clients that share the strategy.
type Client struct {
	baseURL  string
	token    string
	strategy transport.Strategy
	auth     transport.HeaderProvider
	agent    string
	timeout  time.Duration
	log      logrus.FieldLogger
}

// NewClient constructs a Client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		token:    cfg.Token,
		strategy: cfg.Strategy,
		auth:     cfg.Auth,
		agent:    userAgent(cfg.Callers),
		timeout:  cfg.Timeout,
		log:      cfg.Log,
	}, nil
}

// Request merges the client's defaults into info and delegates to the
// transport strategy. It returns the raw response: this layer does not
// interpret status codes.
//
// A relative info.URL is resolved against the client's base URL; an
// empty one targets the base URL itself. A zero info.Timeout takes the
// client default, and a missing method defaults to POST in the
// transport.
func (c *Client) Request(ctx context.Context, info transport.RequestInfo) (*transport.Response, error) {
	info.URL = c.resolveURL(info.URL)
	if info.Timeout == 0 {
		info.Timeout = c.timeout
	}
	if info.Auth == nil {
		info.Auth = c.auth
	}
	info.Token = c.token
	info.UserAgent = c.agent
	resp, err := c.strategy.Request(ctx, info)
	return resp, trace.Wrap(err)
}

// ExecuteCommand posts a single command object keyed by the
// server-defined command name, classifies a non-2XX response into the
// dberr taxonomy, and returns the decoded response body.
func (c *Client) ExecuteCommand(ctx context.Context, name string, payload any) (any, error) {
	resp, err := c.Request(ctx, transport.RequestInfo{
		Body: map[string]any{name: payload},
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if err := dberr.Classify(resp.StatusCode, resp.Body); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// CloneOptions selects the fields a derived client overrides. Each
// field replaces its counterpart when set and is inherited when zero.
type CloneOptions struct {
	// BaseURL retargets the derived client.
	BaseURL string
	// Token replaces the authentication token.
	Token string
	// Auth replaces the header convention, for surfaces that expect a
	// different header than the parent's.
	Auth transport.HeaderProvider
}

// Clone derives a specialized client that reuses the parent's
// transport strategy, and therefore its session, avoiding duplicate
// connection setup. Only the parent's strategy performs session
// revival; the derived client merely issues requests through it.
func (c *Client) Clone(opts CloneOptions) *Client {
	clone := *c
	if opts.BaseURL != "" {
		clone.baseURL = strings.TrimSuffix(opts.BaseURL, "/")
	}
	if opts.Token != "" {
		clone.token = opts.Token
	}
	if opts.Auth != nil {
		clone.auth = opts.Auth
	}
	return &clone
}

// Close closes the underlying transport strategy. Derived clients
// share the strategy, so closing any of them closes all of them.
func (c *Client) Close() error {
	return trace.Wrap(c.strategy.Close())
}

func (c *Client) resolveURL(u string) string {
	switch {
	case u == "":
		return c.baseURL
	case strings.Contains(u, "://"):
		return u
	default:
		return c.baseURL + "/" + strings.TrimPrefix(u, "/")
	}
}
