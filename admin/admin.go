// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package admin

import (
	"context"
	"net/http"
	"path"
	"time"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/coraldb/coral"
	"github.com/coraldb/coral/dberr"
	"github.com/coraldb/coral/poll"
	"github.com/coraldb/coral/transport"
)

// DefaultBaseURL is the administrative API endpoint.
const DefaultBaseURL = "https://api.coraldb.com/v2"

// Well-known resource statuses. The set is open-ended and the server
// is the source of truth; these constants exist only so call sites
// spell the common values consistently.
const (
	StatusActive       = "ACTIVE"
	StatusPending      = "PENDING"
	StatusInitializing = "INITIALIZING"
	StatusMaintenance  = "MAINTENANCE"
	StatusTerminating  = "TERMINATING"
	StatusTerminated   = "TERMINATED"
	StatusError        = "ERROR"
)

// DatabaseInfo is the info sub-record of a database resource.
type DatabaseInfo struct {
	Name                string
	CloudProvider       string
	Region              string
	Keyspace            string
	AdditionalKeyspaces []string
}

// A DatabaseRecord is the administrative resource record of one
// database: its identifier, current server-reported status, and info.
type DatabaseRecord struct {
	ID     string
	Status string
	Info   DatabaseInfo
}

// A DatabaseDefinition describes a database to create.
type DatabaseDefinition struct {
	Name          string `json:"name"`
	CloudProvider string `json:"cloudProvider"`
	Region        string `json:"region"`
	Keyspace      string `json:"keyspace,omitempty"`
}

// Config carries the construction parameters of an Admin.
type Config struct {
	// BaseURL is the administrative endpoint. If empty, DefaultBaseURL
	// is used.
	BaseURL string

	// Token optionally replaces the parent client's token for the
	// administrative surface.
	Token string

	// Waiter sets the interval between status fetches. If nil, the
	// poll package default is used.
	Waiter poll.Waiter

	// Timeout bounds each blocking operation's overall polling window.
	// Zero means the poll package default.
	Timeout time.Duration

	// Clock drives polling. If nil, the real clock is used.
	Clock clockwork.Clock

	// Log receives operation-level debug logging. If nil, a logger
	// scoped to this component is derived from the standard logger.
	Log logrus.FieldLogger
}

// An Admin issues administrative operations. It holds a client cloned
// onto the administrative surface; the clone shares the parent's
// transport strategy, so no second session is opened.
type Admin struct {
	client  *coral.Client
	waiter  poll.Waiter
	timeout time.Duration
	clock   clockwork.Clock
	log     logrus.FieldLogger
}

// New derives an Admin from a data-surface client.
func New(c *coral.Client, cfg Config) (*Admin, error) {
	if c == nil {
		return nil, trace.BadParameter("missing client")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	log := cfg.Log
	if log == nil {
		log = logrus.WithField("component", "coral/admin")
	}
	return &Admin{
		client: c.Clone(coral.CloneOptions{
			BaseURL: baseURL,
			Token:   cfg.Token,
			Auth:    transport.BearerHeader,
		}),
		waiter:  cfg.Waiter,
		timeout: cfg.Timeout,
		clock:   clock,
		log:     log,
	}, nil
}

// WaitOptions tune the blocking behavior of one operation. A nil
// *WaitOptions means blocking with the Admin's defaults.
type WaitOptions struct {
	// Blocking enables or disables polling. Nil means enabled.
	Blocking *bool

	// Waiter overrides the interval between status fetches.
	Waiter poll.Waiter

	// Timeout overrides the operation's overall polling window.
	Timeout time.Duration
}

// GetDatabase fetches the current resource record of a database.
func (a *Admin) GetDatabase(ctx context.Context, id string) (DatabaseRecord, error) {
	resp, err := a.client.Request(ctx, transport.RequestInfo{
		Method: http.MethodGet,
		URL:    "databases/" + id,
	})
	if err != nil {
		return DatabaseRecord{}, trace.Wrap(err)
	}
	if err := dberr.Classify(resp.StatusCode, resp.Body); err != nil {
		return DatabaseRecord{}, err
	}
	return recordFromBody(resp.Body), nil
}

// CreateDatabase asks the service to provision a database. The new
// database's identifier comes from the Location header of the
// creation response.
//
// By default the call blocks until the database reaches ACTIVE,
// treating INITIALIZING and PENDING as transient, under one time
// budget covering the creation request and every status fetch. With
// blocking disabled it returns right after the creation request,
// without fetching status at all; the returned record then carries
// only the identifier and PENDING.
func (a *Admin) CreateDatabase(ctx context.Context, def DatabaseDefinition, opts *WaitOptions) (DatabaseRecord, error) {
	budget := a.budget(opts)

	resp, err := a.client.Request(ctx, transport.RequestInfo{
		Method: http.MethodPost,
		URL:    "databases",
		Body:   def,
	})
	if err != nil {
		return DatabaseRecord{}, trace.Wrap(err)
	}
	if err := dberr.Classify(resp.StatusCode, resp.Body); err != nil {
		return DatabaseRecord{}, err
	}
	id := path.Base(resp.Header.Get("Location"))
	if id == "" || id == "." {
		return DatabaseRecord{}, trace.BadParameter("creation response carried no location header")
	}
	a.log.WithField("id", id).Debug("database creation accepted")

	pollOpts := a.pollOptions(opts)
	res, err := poll.Await(ctx, a.fetcher(id), StatusActive, []string{StatusInitializing, StatusPending}, budget, pollOpts)
	if err != nil {
		return DatabaseRecord{}, trace.Wrap(err)
	}
	if rec, ok := res.Record.(DatabaseRecord); ok {
		return rec, nil
	}
	return DatabaseRecord{ID: id, Status: StatusPending}, nil
}

// DropDatabase asks the service to terminate a database, blocking by
// default until it reaches TERMINATED, with TERMINATING transient.
func (a *Admin) DropDatabase(ctx context.Context, id string, opts *WaitOptions) error {
	budget := a.budget(opts)

	resp, err := a.client.Request(ctx, transport.RequestInfo{
		Method: http.MethodPost,
		URL:    "databases/" + id + "/terminate",
	})
	if err != nil {
		return trace.Wrap(err)
	}
	if err := dberr.Classify(resp.StatusCode, resp.Body); err != nil {
		return err
	}

	_, err = poll.Await(ctx, a.fetcher(id), StatusTerminated, []string{StatusTerminating}, budget, a.pollOptions(opts))
	return trace.Wrap(err)
}

// Database scopes namespace operations to one database.
func (a *Admin) Database(id string) *DBAdmin {
	return &DBAdmin{admin: a, id: id}
}

// A DBAdmin administers the namespaces of one database.
type DBAdmin struct {
	admin *Admin
	id    string
}

// CreateNamespace creates a namespace, blocking by default until the
// database returns to ACTIVE, with MAINTENANCE transient.
func (d *DBAdmin) CreateNamespace(ctx context.Context, name string, opts *WaitOptions) error {
	return d.namespaceOp(ctx, http.MethodPost, name, opts)
}

// DropNamespace drops a namespace, blocking by default until the
// database returns to ACTIVE, with MAINTENANCE transient.
func (d *DBAdmin) DropNamespace(ctx context.Context, name string, opts *WaitOptions) error {
	return d.namespaceOp(ctx, http.MethodDelete, name, opts)
}

func (d *DBAdmin) namespaceOp(ctx context.Context, method, name string, opts *WaitOptions) error {
	a := d.admin
	budget := a.budget(opts)

	resp, err := a.client.Request(ctx, transport.RequestInfo{
		Method: method,
		URL:    "databases/" + d.id + "/keyspaces/" + name,
	})
	if err != nil {
		return trace.Wrap(err)
	}
	if err := dberr.Classify(resp.StatusCode, resp.Body); err != nil {
		return err
	}

	_, err = poll.Await(ctx, a.fetcher(d.id), StatusActive, []string{StatusMaintenance}, budget, a.pollOptions(opts))
	return trace.Wrap(err)
}

// budget opens the operation's shared time window. It is created
// before the triggering request so the whole multi-step operation,
// trigger included, consumes one window.
func (a *Admin) budget(opts *WaitOptions) *poll.Budget {
	timeout := a.timeout
	if opts != nil && opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	return poll.NewBudget(timeout, a.clock)
}

func (a *Admin) pollOptions(opts *WaitOptions) poll.Options {
	out := poll.Options{
		Waiter: a.waiter,
		Clock:  a.clock,
	}
	if opts != nil {
		out.Blocking = opts.Blocking
		if opts.Waiter != nil {
			out.Waiter = opts.Waiter
		}
	}
	return out
}

// fetcher adapts GetDatabase to the poller's status-fetch contract.
func (a *Admin) fetcher(id string) poll.Fetcher {
	return func(ctx context.Context) (poll.Resource, error) {
		rec, err := a.GetDatabase(ctx, id)
		if err != nil {
			return poll.Resource{ID: id}, trace.Wrap(err)
		}
		return poll.Resource{ID: rec.ID, Status: rec.Status, Record: rec}, nil
	}
}

// recordFromBody maps a decoded resource body onto a DatabaseRecord.
// Unknown fields are ignored; missing fields stay zero.
func recordFromBody(body any) DatabaseRecord {
	m, ok := body.(map[string]any)
	if !ok {
		return DatabaseRecord{}
	}
	rec := DatabaseRecord{
		ID:     str(m["id"]),
		Status: str(m["status"]),
	}
	if info, ok := m["info"].(map[string]any); ok {
		rec.Info = DatabaseInfo{
			Name:          str(info["name"]),
			CloudProvider: str(info["cloudProvider"]),
			Region:        str(info["region"]),
			Keyspace:      str(info["keyspace"]),
		}
		if extra, ok := info["additionalKeyspaces"].([]any); ok {
			for _, k := range extra {
				if s, ok := k.(string); ok {
					rec.Info.AdditionalKeyspaces = append(rec.Info.AdditionalKeyspaces, s)
				}
			}
		}
	}
	return rec
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
