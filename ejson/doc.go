// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package ejson implements the extended-JSON wire format used by the
// coral command protocol.
//
// Extended JSON is a superset of JSON carrying conventions for types
// JSON cannot natively express. Timestamps travel as
// {"$date": <milliseconds since epoch>} so downstream consumers get
// numeric, sortable values. Sixteen-byte binary identifiers travel as
// {"$uuid": "<8-4-4-4-12 lowercase hex>"}, twelve-byte identifiers as
// {"$objectId": "<24 hex>"}, and binary values of other subtypes as
// {"$binary": {"base64": ..., "subType": ...}}. Everything else
// follows ordinary JSON rules.
//
// Sixty-four-bit integers and high-precision decimals are rendered as
// bare JSON numbers. This is a semantic compromise of the wire format:
// consumers that read JSON numbers into IEEE-754 doubles lose
// precision above 2^53 (and beyond double precision for decimals). The
// boundary is documented on Marshal and deliberately not corrected
// here, because the format is the compatibility-critical artifact and
// any consumer of the raw bytes must see the same encoding. Decoding
// within this package is exact: integer-form numbers come back as
// int64 and fractional numbers as arbitrary-precision decimals.
//
// The codec round-trips: for every supported value v,
// Unmarshal(Marshal(v)) reproduces v's observable value, and
// marshaling the same value twice yields byte-identical output.
package ejson
