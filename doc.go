// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package coral is a client library for a remote document-database
// service speaking JSON-encoded commands over HTTP.
//
// A Client binds a base URL, an authentication token, and a transport
// strategy chosen once at construction time. The strategy owns the
// connection-lifecycle semantics: transport.Simple issues one request
// per call over a pooled connection, while transport.Muxed multiplexes
// concurrent requests over one persistent session that is revived
// transparently when the peer tears it down. On top of the strategy,
// Client merges per-request defaults, attaches the client-identity
// string, and injects the token through the strategy's header
// provider; it does not interpret response status codes.
//
// ExecuteCommand is the seam consumed by command-builder layers: it
// posts a single JSON object keyed by the server-defined command name,
// encoded in the extended-JSON wire format of the ejson package, and
// classifies non-2XX responses into the dberr taxonomy.
//
// Clone derives a specialized client, such as one targeting the
// administrative surface, that shares the underlying strategy and its
// session while overriding the base URL, token, or header convention.
// The admin package builds its blocking create/drop operations on a
// cloned client and the poll package's status poller.
//
// Client is safe for concurrent use by multiple goroutines. Instances
// should be reused rather than created per request, since the strategy
// may hold live connection state.
package coral
