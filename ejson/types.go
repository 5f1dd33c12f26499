// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ejson

import (
	"encoding/hex"
	"fmt"
)

// Binary subtypes recognized as UUID encodings. Binary values tagged
// with either subtype, and exactly sixteen bytes long, are rendered on
// the wire as hyphenated hexadecimal identifiers rather than base64.
const (
	// SubtypeUUIDLegacy is the legacy UUID binary subtype.
	SubtypeUUIDLegacy byte = 0x03
	// SubtypeUUID is the standard UUID binary subtype.
	SubtypeUUID byte = 0x04
)

// A Binary is a subtype-tagged byte string. Values whose subtype is
// SubtypeUUID or SubtypeUUIDLegacy, and whose payload is sixteen
// bytes, encode as {"$uuid": ...}; every other Binary encodes through
// the generic {"$binary": ...} rule.
type Binary struct {
	Subtype byte
	Data    []byte
}

// isUUID reports whether the binary carries one of the two recognized
// UUID subtypes with a full sixteen-byte payload.
func (b Binary) isUUID() bool {
	return (b.Subtype == SubtypeUUID || b.Subtype == SubtypeUUIDLegacy) && len(b.Data) == 16
}

// An ObjectID is a twelve-byte document identifier, rendered on the
// wire as twenty-four lowercase hexadecimal characters.
type ObjectID [12]byte

// ObjectIDFromHex parses a twenty-four character hexadecimal string
// into an ObjectID.
func ObjectIDFromHex(s string) (ObjectID, error) {
	var id ObjectID
	if len(s) != 24 {
		return id, fmt.Errorf("ejson: object id must be 24 hex characters, got %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("ejson: invalid object id %q: %v", s, err)
	}
	copy(id[:], b)
	return id, nil
}

// Hex returns the lowercase hexadecimal rendering of the identifier.
func (id ObjectID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id ObjectID) String() string {
	return id.Hex()
}
