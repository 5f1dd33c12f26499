// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coraldb/coral/dberr"
)

// scriptedFetcher replays a fixed status sequence, then sticks on the
// last entry.
type scriptedFetcher struct {
	statuses []string
	calls    int
}

func (f *scriptedFetcher) fetch(_ context.Context) (Resource, error) {
	i := f.calls
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	f.calls++
	return Resource{
		ID:     "db-123",
		Status: f.statuses[i],
		Record: map[string]any{"id": "db-123", "status": f.statuses[i]},
	}, nil
}

func fastOptions() Options {
	return Options{Waiter: NewFixedWaiter(time.Millisecond)}
}

func TestAwaitTerminal(t *testing.T) {
	f := &scriptedFetcher{statuses: []string{"PENDING", "PENDING", "ACTIVE"}}

	res, err := Await(context.Background(), f.fetch, "ACTIVE", []string{"PENDING"}, nil, fastOptions())

	require.NoError(t, err)
	assert.Equal(t, 3, f.calls)
	assert.Equal(t, "db-123", res.ID)
	assert.Equal(t, "ACTIVE", res.Status)
	assert.Equal(t, map[string]any{"id": "db-123", "status": "ACTIVE"}, res.Record)
}

func TestAwaitImmediatelyTerminal(t *testing.T) {
	f := &scriptedFetcher{statuses: []string{"ACTIVE"}}

	res, err := Await(context.Background(), f.fetch, "ACTIVE", []string{"PENDING"}, nil, Options{Waiter: NewFixedWaiter(time.Hour)})

	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, "ACTIVE", res.Status)
}

func TestAwaitTimeout(t *testing.T) {
	f := &scriptedFetcher{statuses: []string{"PENDING"}}
	opts := Options{
		Waiter:  NewFixedWaiter(10 * time.Millisecond),
		Timeout: 50 * time.Millisecond,
	}

	start := time.Now()
	res, err := Await(context.Background(), f.fetch, "ACTIVE", []string{"PENDING"}, nil, opts)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, dberr.IsTimeout(err))
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.GreaterOrEqual(t, f.calls, 2)
	assert.Equal(t, "PENDING", res.Status)

	var te *dberr.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "db-123", te.Resource)
	assert.Equal(t, 50*time.Millisecond, te.Duration)
}

func TestAwaitUnexpectedState(t *testing.T) {
	f := &scriptedFetcher{statuses: []string{"PARKED"}}

	start := time.Now()
	res, err := Await(context.Background(), f.fetch, "ACTIVE", []string{"PENDING", "INITIALIZING"}, nil, Options{Waiter: NewFixedWaiter(time.Hour)})

	require.Error(t, err)
	assert.True(t, dberr.IsUnexpectedState(err))
	// Fails on the first unexpected snapshot without sleeping.
	assert.Equal(t, 1, f.calls)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, "PARKED", res.Status)

	var use *dberr.UnexpectedStateError
	require.ErrorAs(t, err, &use)
	assert.Equal(t, "db-123", use.ID)
	assert.Equal(t, "PARKED", use.Status)
	assert.Equal(t, []string{"ACTIVE", "PENDING", "INITIALIZING"}, use.Expected)
	assert.Equal(t, map[string]any{"id": "db-123", "status": "PARKED"}, use.Record)
}

func TestAwaitNonBlocking(t *testing.T) {
	f := &scriptedFetcher{statuses: []string{"PENDING"}}
	blocking := false

	res, err := Await(context.Background(), f.fetch, "ACTIVE", []string{"PENDING"}, nil, Options{Blocking: &blocking})

	require.NoError(t, err)
	assert.Equal(t, 0, f.calls)
	assert.Equal(t, Resource{}, res)
}

func TestAwaitFetchError(t *testing.T) {
	boom := errors.New("status fetch failed")
	fetch := func(_ context.Context) (Resource, error) {
		return Resource{}, boom
	}

	_, err := Await(context.Background(), fetch, "ACTIVE", nil, nil, fastOptions())

	assert.ErrorIs(t, err, boom)
}

func TestAwaitContextCanceled(t *testing.T) {
	f := &scriptedFetcher{statuses: []string{"PENDING"}}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := Await(ctx, f.fetch, "ACTIVE", []string{"PENDING"}, nil, Options{Waiter: NewFixedWaiter(time.Hour)})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, f.calls)
}

// A single budget spans every Await of one logical operation: time the
// operation already spent before polling counts against the window.
func TestAwaitSharedBudget(t *testing.T) {
	clock := clockwork.NewFakeClock()
	budget := NewBudget(100*time.Millisecond, clock)

	// The triggering request consumed the whole window already.
	clock.Advance(150 * time.Millisecond)
	assert.True(t, budget.Exceeded())

	f := &scriptedFetcher{statuses: []string{"PENDING"}}
	_, err := Await(context.Background(), f.fetch, "ACTIVE", []string{"PENDING"}, budget, Options{Clock: clock})

	require.Error(t, err)
	assert.True(t, dberr.IsTimeout(err))
	assert.Equal(t, 1, f.calls)

	var te *dberr.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 100*time.Millisecond, te.Duration)
}

func TestBudgetDefaults(t *testing.T) {
	b := NewBudget(0, nil)
	assert.Equal(t, DefaultTimeout, b.Timeout())
	assert.False(t, b.Exceeded())

	clock := clockwork.NewFakeClock()
	b = NewBudget(time.Minute, clock)
	assert.False(t, b.Exceeded())
	clock.Advance(time.Minute)
	assert.True(t, b.Exceeded())
}
