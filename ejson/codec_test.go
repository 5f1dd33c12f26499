// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ejson

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coraldb/coral/dberr"
)

func TestRoundTrip(t *testing.T) {
	u := uuid.MustParse("c0ffee00-1234-4678-9abc-def012345678")
	oid, err := ObjectIDFromHex("507f1f77bcf86cd799439011")
	require.NoError(t, err)
	ts := time.UnixMilli(1700000000123).UTC()

	in := map[string]any{
		"text": "hello",
		"flag": true,
		"null": nil,
		"big":  int64(9007199254740993), // 2^53 + 1
		"dec":  decimal.RequireFromString("123456789.000000001"),
		"when": ts,
		"id":   u,
		"oid":  oid,
		"bin":  Binary{Subtype: 0x80, Data: []byte{1, 2, 3}},
		"nested": map[string]any{
			"list": []any{int64(1), "two", ts},
		},
	}

	b, err := Marshal(in)
	require.NoError(t, err)
	out, err := Unmarshal(b)
	require.NoError(t, err)

	m, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hello", m["text"])
	assert.Equal(t, true, m["flag"])
	assert.Nil(t, m["null"])
	assert.Equal(t, int64(9007199254740993), m["big"])
	assert.True(t, m["dec"].(decimal.Decimal).Equal(decimal.RequireFromString("123456789.000000001")))
	assert.Equal(t, ts, m["when"])
	assert.Equal(t, u, m["id"])
	assert.Equal(t, oid, m["oid"])
	assert.Equal(t, Binary{Subtype: 0x80, Data: []byte{1, 2, 3}}, m["bin"])
	nested := m["nested"].(map[string]any)
	assert.Equal(t, []any{int64(1), "two", ts}, nested["list"])
}

func TestWireShapes(t *testing.T) {
	ts := time.UnixMilli(1700000000123).UTC()
	u := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")

	testCases := []struct {
		name string
		in   any
		want string
	}{
		{"date", map[string]any{"when": ts}, `{"when":{"$date":1700000000123}}`},
		{"uuid", map[string]any{"id": u}, `{"id":{"$uuid":"00112233-4455-6677-8899-aabbccddeeff"}}`},
		{"big int", int64(9007199254740993), `9007199254740993`},
		{"decimal", decimal.RequireFromString("1.50"), `1.50`},
		{"binary", Binary{Subtype: 0x80, Data: []byte{1, 2, 3}}, `{"$binary":{"base64":"AQID","subType":"80"}}`},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			b, err := Marshal(testCase.in)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, string(b))
		})
	}
}

// Binary values tagged with a recognized UUID subtype travel as $uuid
// and come back normalized to uuid.UUID.
func TestBinaryUUIDSubtypes(t *testing.T) {
	u := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")
	for _, subtype := range []byte{SubtypeUUIDLegacy, SubtypeUUID} {
		b, err := Marshal(Binary{Subtype: subtype, Data: u[:]})
		require.NoError(t, err)
		assert.Equal(t, `{"$uuid":"00112233-4455-6677-8899-aabbccddeeff"}`, string(b))
		out, err := Unmarshal(b)
		require.NoError(t, err)
		assert.Equal(t, u, out)
	}
}

func TestIdempotentEncoding(t *testing.T) {
	in := map[string]any{
		"z": int64(1),
		"a": []any{decimal.RequireFromString("2.5"), "x"},
		"m": map[string]any{"k": time.UnixMilli(5).UTC()},
	}
	first, err := Marshal(in)
	require.NoError(t, err)
	second, err := Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFractionalNumbersDecodeExactly(t *testing.T) {
	out, err := Unmarshal([]byte(`{"price":19.99,"qty":3}`))
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.True(t, m["price"].(decimal.Decimal).Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(3), m["qty"])
}

func TestOversizeIntegerDecodesAsDecimal(t *testing.T) {
	out, err := Unmarshal([]byte(`92233720368547758080`)) // beyond int64
	require.NoError(t, err)
	d, ok := out.(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("92233720368547758080")))
}

func TestDecodeErrors(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{"not json", `{not json`},
		{"trailing data", `{}tail`},
		{"bad uuid", `{"$uuid":"nope"}`},
		{"bad object id", `{"$objectId":"short"}`},
		{"non-numeric date", `{"$date":"yesterday"}`},
		{"bad binary base64", `{"$binary":{"base64":"???","subType":"80"}}`},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			out, err := Unmarshal([]byte(testCase.raw))
			require.Error(t, err)
			assert.Nil(t, out)
			var de *dberr.DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, testCase.raw, de.Raw)
		})
	}
}

func TestMarshalIndent(t *testing.T) {
	b, err := MarshalIndent(map[string]any{"a": int64(1)})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(b))
}

func TestObjectIDFromHex(t *testing.T) {
	_, err := ObjectIDFromHex("xyz")
	assert.Error(t, err)
	_, err = ObjectIDFromHex("zz7f1f77bcf86cd799439011")
	assert.Error(t, err)
	id, err := ObjectIDFromHex("507f1f77bcf86cd799439011")
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", id.Hex())
}
