// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package poll turns a sequence of status-fetch requests into a single
// blocking administrative operation.
//
// Remote provisioning operations (creating a database, dropping a
// namespace) complete asynchronously on the server: the triggering
// request returns while the resource moves through transient statuses
// toward a terminal one. Await repeatedly fetches the resource status
// until the terminal status is reached, a transient status prompts
// another fetch after a wait, an unanticipated status fails the
// operation, or the operation's time budget runs out.
//
// Which statuses are terminal and which are transient is call-site
// configuration; no enumeration in this package is authoritative,
// because the server owns the status vocabulary.
//
// Retry lives here and only here. The transport and client layers
// never reissue a request; the poller's loop is the single sanctioned
// retry mechanism, and it is always bounded by a Budget.
package poll
