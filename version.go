// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package coral

import "strings"

const (
	// LibraryName identifies this library in the client-identity
	// string.
	LibraryName = "coral-go"
	// LibraryVersion is this library's version.
	LibraryVersion = "0.1.0"
)

// A Caller is one caller-supplied entry in the client-identity chain,
// formatted as name/version, or as a bare name when Version is empty.
type Caller struct {
	Name    string
	Version string
}

// userAgent derives the client-identity string: the caller chain in
// order, then the library itself, space-joined.
func userAgent(callers []Caller) string {
	parts := make([]string, 0, len(callers)+1)
	for _, c := range callers {
		if c.Name == "" {
			continue
		}
		if c.Version == "" {
			parts = append(parts, c.Name)
			continue
		}
		parts = append(parts, c.Name+"/"+c.Version)
	}
	parts = append(parts, LibraryName+"/"+LibraryVersion)
	return strings.Join(parts, " ")
}
