// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package dberr defines the typed error taxonomy surfaced by the coral
// client library, and classifies server responses into it.
//
// The taxonomy distinguishes four failure families: a transport
// timeout (TimeoutError), a structured non-2XX server response
// (ResponseError), a polled resource reporting a status the caller did
// not anticipate (UnexpectedStateError), and a malformed wire payload
// (DecodeError). Classification never retries; retry policy belongs to
// the poll package and nowhere else.
//
// Use the IsTimeout, IsUnexpectedState, and IsDecode predicates, or
// AsResponseError, to branch on the failure family without depending
// on error message text.
package dberr
