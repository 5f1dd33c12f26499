// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package poll

import (
	"math/rand"
	"sync"
	"time"
)

// A Waiter specifies how long to wait between two consecutive status
// fetches.
//
// Implementations of Waiter must be safe for concurrent use by
// multiple goroutines.
//
// Use NewFixedWaiter for a constant poll interval, or NewExpWaiter for
// a jittered exponential backoff when hammering the status endpoint at
// a fixed rate is undesirable.
type Waiter interface {
	// Wait returns the wait before the next fetch, given the
	// zero-based count of fetches already made.
	Wait(attempt int) time.Duration
}

// DefaultWaiter is the default poll interval: a fixed ten seconds,
// suited to provisioning operations that take minutes to complete.
var DefaultWaiter = NewFixedWaiter(10 * time.Second)

// NewFixedWaiter constructs a Waiter that always returns the given
// duration.
func NewFixedWaiter(d time.Duration) Waiter {
	return fixedWaiter(d)
}

type fixedWaiter time.Duration

func (w fixedWaiter) Wait(_ int) time.Duration {
	return time.Duration(w)
}

// NewExpWaiter constructs a Waiter implementing an exponential backoff
// formula with optional jitter.
//
// The formula implemented is the "Full Jitter" approach described in:
// https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter.
//
// Parameters base and max control the exponential calculation of the
// ceiling:
//
//	ceil := max(base * 2**attempt, max)
//
// Base and max must be positive values, and max must be at least equal
// to base.
//
// Parameter jitter seeds the random number generator used to pick a
// wait between 0 and ceil. Pass nil for no jitter (the waiter returns
// ceil directly), or a time.Time, int, int64, rand.Source, or
// *rand.Rand.
func NewExpWaiter(base, max time.Duration, jitter interface{}) Waiter {
	if base < 1 {
		panic("coral/poll: base must be positive")
	}
	if max < base {
		panic("coral/poll: max must be at least base")
	}
	r := jitterToRand(jitter)
	return &jitterExpWaiter{
		base: base,
		max:  max,
		rand: r,
	}
}

type jitterExpWaiter struct {
	base time.Duration
	max  time.Duration
	rand *rand.Rand
	lock sync.Mutex
}

func (w *jitterExpWaiter) Wait(attempt int) time.Duration {
	exp := int64(1) << attempt
	if exp < 1 {
		exp = 1<<63 - 1
	}

	ceil := int64(w.base) * exp
	if ceil < int64(w.base) || int64(w.max) < ceil {
		ceil = int64(w.max)
	}

	duration := ceil
	if ceil > 0 {
		w.lock.Lock()
		defer w.lock.Unlock()
		if w.rand != nil {
			duration = w.rand.Int63n(ceil)
		}
	}

	return time.Duration(duration)
}

func jitterToRand(jitter interface{}) *rand.Rand {
	var s rand.Source
	switch j := jitter.(type) {
	case nil:
		return nil
	case time.Time:
		s = rand.NewSource(j.UnixNano())
	case int:
		s = rand.NewSource(int64(j))
	case int64:
		s = rand.NewSource(j)
	case *rand.Rand:
		if j == nil {
			panic("coral/poll: jitter may not be a typed nil")
		}
		return j
	case rand.Source:
		s = j
	default:
		panic("coral/poll: invalid jitter type")
	}
	return rand.New(s)
}
