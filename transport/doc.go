// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transport sends encoded commands to the database service and
// assembles wire responses.
//
// A Strategy owns the connection-lifecycle semantics of one wire
// protocol. Two strategies are provided and fixed at client
// construction time: Simple issues one request per call over a pooled
// standard HTTP client, while Muxed holds a single persistent HTTP/2
// session per strategy instance, multiplexing concurrent requests over
// it and transparently reviving the session when the peer tears it
// down. Both enforce the per-request timeout by racing the request
// against the context deadline, and both buffer the entire response
// body before decoding it with the ejson wire codec.
//
// No ordering is guaranteed between concurrent requests sharing one
// muxed session; the transport may interleave and complete them in any
// order. A request's only cancellation mechanism is its timeout (or
// its caller's context); there is no separate cancel token.
package transport
