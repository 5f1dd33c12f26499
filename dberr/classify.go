// Copyright 2026 The coral Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dberr

import "encoding/json"

// Classify maps a response status code and decoded body to the error
// taxonomy. It returns nil for any status below 300. For status 300
// and above it returns a ResponseError carrying the descriptors
// extracted from the body's errors list, if the body has one.
//
// Classify never retries and never inspects the body of a successful
// response.
func Classify(statusCode int, body any) error {
	if statusCode < 300 {
		return nil
	}
	return &ResponseError{
		StatusCode: statusCode,
		Errors:     ExtractDescriptors(body),
	}
}

// ExtractDescriptors pulls {ID, message} pairs out of the errors list
// of a decoded response body. The body is expected to be a JSON object
// with a top-level "errors" array; any other shape yields nil.
//
// Entries missing a message keep an empty Message; entries missing an
// ID keep a zero ID. Entries that are not objects are skipped.
func ExtractDescriptors(body any) []Descriptor {
	m, ok := body.(map[string]any)
	if !ok {
		return nil
	}
	list, ok := m["errors"].([]any)
	if !ok {
		return nil
	}
	ds := make([]Descriptor, 0, len(list))
	for _, entry := range list {
		e, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		var d Descriptor
		d.ID = toInt(e["ID"])
		if msg, ok := e["message"].(string); ok {
			d.Message = msg
		}
		ds = append(ds, d)
	}
	return ds
}

// toInt accepts the numeric representations produced by the two JSON
// decode paths in use: json.Number / int64 from the wire codec, and
// float64 from a plain encoding/json decode.
func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0
		}
		return int(i)
	default:
		return 0
	}
}
