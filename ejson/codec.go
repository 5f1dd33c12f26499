// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ejson

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coraldb/coral/dberr"
)

// Marshal encodes a value into the compact extended-JSON wire format.
//
// The value is walked depth-first. time.Time values encode as
// {"$date": <milliseconds since epoch>}. uuid.UUID values, and Binary
// values carrying a recognized UUID subtype, encode as {"$uuid": ...}
// with lowercase 8-4-4-4-12 hex grouping. ObjectID values encode as
// {"$objectId": ...}. Other Binary values encode through the generic
// {"$binary": ...} rule. int64 and decimal.Decimal values are rendered
// as bare JSON numbers: above 2^53 (or beyond IEEE-754 double
// precision for decimals) such numbers are lossy for consumers that
// parse JSON numbers into doubles. That precision boundary is a
// property of the wire format itself, not of this encoder.
//
// Encoding is deterministic: object keys are emitted in sorted order,
// so marshaling the same value twice yields byte-identical output.
func Marshal(v any) ([]byte, error) {
	w, err := wireValue(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// MarshalIndent is like Marshal but pretty-prints with two-space
// indentation. It exists for human-readable diagnostics only; the wire
// format is the compact form produced by Marshal.
func MarshalIndent(v any) ([]byte, error) {
	w, err := wireValue(v)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(w, "", "  ")
}

// Unmarshal decodes extended-JSON text into native values, inverting
// the Marshal mapping.
//
// Objects decode as map[string]any, arrays as []any, strings as
// string, booleans as bool, and null as nil. Numbers decode exactly:
// integer-form numbers that fit become int64, everything else becomes
// decimal.Decimal. Tagged forms produce time.Time ($date, UTC),
// uuid.UUID ($uuid), ObjectID ($objectId), and Binary ($binary).
//
// A malformed payload produces a *dberr.DecodeError carrying the raw
// text, never a silent empty result.
func Unmarshal(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &dberr.DecodeError{Raw: string(data), Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &dberr.DecodeError{Raw: string(data), Err: fmt.Errorf("trailing data after JSON value")}
	}
	v, err := nativeValue(raw)
	if err != nil {
		return nil, &dberr.DecodeError{Raw: string(data), Err: err}
	}
	return v, nil
}

// wireValue rewrites v into a value encoding/json can render as the
// wire format.
func wireValue(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return map[string]any{"$date": x.UnixMilli()}, nil
	case uuid.UUID:
		return map[string]any{"$uuid": x.String()}, nil
	case ObjectID:
		return map[string]any{"$objectId": x.Hex()}, nil
	case Binary:
		if x.isUUID() {
			u, err := uuid.FromBytes(x.Data)
			if err != nil {
				return nil, err
			}
			return map[string]any{"$uuid": u.String()}, nil
		}
		return map[string]any{"$binary": map[string]any{
			"base64":  base64.StdEncoding.EncodeToString(x.Data),
			"subType": fmt.Sprintf("%02x", x.Subtype),
		}}, nil
	case decimal.Decimal:
		return json.RawMessage(x.String()), nil
	case json.Number:
		return json.RawMessage(x), nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			w, err := wireValue(val)
			if err != nil {
				return nil, err
			}
			out[k] = w
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			w, err := wireValue(val)
			if err != nil {
				return nil, err
			}
			out[i] = w
		}
		return out, nil
	default:
		// Plain strings, booleans, integers and floats, and any caller
		// struct, follow ordinary encoding/json rules. int64 renders
		// from decimal digits, so it is exact on the wire.
		return v, nil
	}
}

// nativeValue rewrites a decoded generic value into native types,
// reviving tagged forms.
func nativeValue(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		return nativeNumber(x)
	case map[string]any:
		if len(x) == 1 {
			if tagged, ok, err := revive(x); ok || err != nil {
				return tagged, err
			}
		}
		out := make(map[string]any, len(x))
		for k, val := range x {
			n, err := nativeValue(val)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			n, err := nativeValue(val)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return v, nil
	}
}

// nativeNumber maps a JSON number onto int64 when it is integer-form
// and fits, and onto an arbitrary-precision decimal otherwise.
func nativeNumber(n json.Number) (any, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %v", s, err)
	}
	return d, nil
}

// revive maps a single-key object onto a tagged native value. The
// second return value reports whether the key was a recognized tag.
func revive(m map[string]any) (any, bool, error) {
	if raw, ok := m["$date"]; ok {
		n, ok := raw.(json.Number)
		if !ok {
			return nil, true, fmt.Errorf("$date value must be a number, got %T", raw)
		}
		ms, err := n.Int64()
		if err != nil {
			return nil, true, fmt.Errorf("$date value %q is not a whole number of milliseconds", n)
		}
		return time.UnixMilli(ms).UTC(), true, nil
	}
	if raw, ok := m["$uuid"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, true, fmt.Errorf("$uuid value must be a string, got %T", raw)
		}
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, true, fmt.Errorf("invalid $uuid %q: %v", s, err)
		}
		return u, true, nil
	}
	if raw, ok := m["$objectId"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, true, fmt.Errorf("$objectId value must be a string, got %T", raw)
		}
		id, err := ObjectIDFromHex(s)
		if err != nil {
			return nil, true, err
		}
		return id, true, nil
	}
	if raw, ok := m["$binary"]; ok {
		body, ok := raw.(map[string]any)
		if !ok {
			return nil, true, fmt.Errorf("$binary value must be an object, got %T", raw)
		}
		b64, _ := body["base64"].(string)
		sub, _ := body["subType"].(string)
		data, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, true, fmt.Errorf("invalid $binary base64: %v", err)
		}
		subtype, err := strconv.ParseUint(sub, 16, 8)
		if err != nil {
			return nil, true, fmt.Errorf("invalid $binary subType %q", sub)
		}
		return Binary{Subtype: byte(subtype), Data: data}, true, nil
	}
	return nil, false, nil
}
