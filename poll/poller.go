// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package poll

import (
	"context"
	"time"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"

	"github.com/coraldb/coral/dberr"
)

// DefaultTimeout is the overall polling window applied when neither
// the options nor an explicit budget carry one.
const DefaultTimeout = 10 * time.Minute

// A Resource is one snapshot of the polled resource: its identifier,
// the status the server reported, and the full record for diagnostics.
type Resource struct {
	ID     string
	Status string
	Record any
}

// A Fetcher fetches the current resource snapshot. It decouples the
// poller from any one resource type: the caller supplies whatever
// status-fetch request its resource requires.
type Fetcher func(ctx context.Context) (Resource, error)

// Options configures one Await call.
type Options struct {
	// Blocking enables or disables polling. Nil means enabled. When
	// disabled, Await returns immediately without invoking the
	// fetcher; the caller's triggering request has already succeeded
	// and the resource may still reflect an in-progress remote state.
	Blocking *bool

	// Waiter sets the interval between fetches. If nil, DefaultWaiter
	// is used.
	Waiter Waiter

	// Timeout bounds the overall polling window when no explicit
	// Budget is passed. Zero means DefaultTimeout.
	Timeout time.Duration

	// Clock drives the poller's sleeps and elapsed-time accounting.
	// If nil, the real clock is used.
	Clock clockwork.Clock
}

// blocking resolves the Blocking option, defaulting to true.
func (o Options) blocking() bool {
	return o.Blocking == nil || *o.Blocking
}

// clock resolves the Clock option.
func (o Options) clock() clockwork.Clock {
	if o.Clock != nil {
		return o.Clock
	}
	return clockwork.NewRealClock()
}

// A Budget is the elapsed-time window of one logical administrative
// operation. A single Budget spans every polling call the operation
// makes: an operation that triggers provisioning and then awaits it
// consumes one window across both steps, rather than resetting the
// clock at each Await. Create it once when the operation starts.
type Budget struct {
	clock    clockwork.Clock
	timeout  time.Duration
	deadline time.Time
}

// NewBudget starts a budget of the given timeout. A non-positive
// timeout means DefaultTimeout. A nil clock means the real clock.
func NewBudget(timeout time.Duration, clock clockwork.Clock) *Budget {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Budget{
		clock:    clock,
		timeout:  timeout,
		deadline: clock.Now().Add(timeout),
	}
}

// Exceeded reports whether the window has elapsed.
func (b *Budget) Exceeded() bool {
	return !b.clock.Now().Before(b.deadline)
}

// Timeout returns the window's total duration.
func (b *Budget) Timeout() time.Duration {
	return b.timeout
}

// Await polls the fetcher until the resource reaches the terminal
// status.
//
// Each iteration fetches the current snapshot. A terminal status
// returns the snapshot. A status in the transient set sleeps one
// waiter interval and fetches again, unless the budget's overall
// window has elapsed, in which case Await fails with a
// *dberr.TimeoutError naming the resource and the window. Any other
// status fails immediately, without sleeping, with a
// *dberr.UnexpectedStateError carrying the full resource record; such
// a status signals a server state the caller did not anticipate and is
// never retried.
//
// A nil budget starts a fresh window from the options' timeout. When
// the same logical operation awaits more than once, pass the same
// Budget to every call so the window is shared, not reset.
//
// With blocking disabled, Await performs no polling at all: it returns
// a zero Resource and nil error without invoking the fetcher.
//
// The sleep between fetches aborts if ctx is canceled; there is no
// other interruption mechanism.
func Await(ctx context.Context, fetch Fetcher, terminal string, transients []string, budget *Budget, opts Options) (Resource, error) {
	if !opts.blocking() {
		return Resource{}, nil
	}

	clock := opts.clock()
	if budget == nil {
		budget = NewBudget(opts.Timeout, clock)
	}
	waiter := opts.Waiter
	if waiter == nil {
		waiter = DefaultWaiter
	}

	for attempt := 0; ; attempt++ {
		res, err := fetch(ctx)
		if err != nil {
			return res, trace.Wrap(err)
		}
		if res.Status == terminal {
			return res, nil
		}
		if !inSet(transients, res.Status) {
			return res, &dberr.UnexpectedStateError{
				ID:       res.ID,
				Status:   res.Status,
				Expected: append([]string{terminal}, transients...),
				Record:   res.Record,
			}
		}
		if budget.Exceeded() {
			return res, &dberr.TimeoutError{
				Resource: res.ID,
				Duration: budget.Timeout(),
			}
		}
		select {
		case <-clock.After(waiter.Wait(attempt)):
		case <-ctx.Done():
			return res, trace.Wrap(ctx.Err())
		}
	}
}

func inSet(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
