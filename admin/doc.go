// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package admin implements the administrative surface: creating and
// dropping databases and namespaces through the service's DevOps API.
//
// The administrative endpoints use a different base URL and a
// different authentication header convention than the data-command
// surface, so an Admin wraps a client cloned onto that surface while
// sharing the parent's transport strategy and session.
//
// Provisioning is asynchronous on the server: a create or drop request
// returns while the resource works through transient statuses
// (INITIALIZING, PENDING, MAINTENANCE, TERMINATING) toward a terminal
// one. By default the operations here block, polling the resource
// status with the poll package until the terminal status is reached,
// under a single time budget spanning the whole operation. With
// blocking disabled they return as soon as the triggering request
// succeeds, and the returned record may still reflect an in-progress
// remote state.
package admin
