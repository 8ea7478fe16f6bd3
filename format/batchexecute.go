// Copyright 2016 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package format

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// IsBatchExecutePath reports whether urlPath names a batch-execute
// endpoint (spec §4.2: "URL path contains batchexecute").
func IsBatchExecutePath(urlPath string) bool {
	return strings.Contains(urlPath, "batchexecute")
}

// RPCCall is one inner call of a batch-execute request envelope:
// [rpcId, innerJson, null, "generic"].
type RPCCall struct {
	RPCID     string
	InnerJSON string
}

// ParseRequest decodes a batch-execute request body: form-encoded, with
// field f.req holding the JSON envelope [[[rpcId, innerJson, null,
// "generic"], ...]].
func ParseRequest(body []byte) (calls []RPCCall, ok bool) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, false
	}
	raw := values.Get("f.req")
	if raw == "" {
		return nil, false
	}
	var envelope [][]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, false
	}
	for _, outer := range envelope {
		for _, innerRaw := range outer {
			var tuple []json.RawMessage
			if err := json.Unmarshal(innerRaw, &tuple); err != nil {
				continue
			}
			if len(tuple) < 2 {
				continue
			}
			var rpcID string
			if err := json.Unmarshal(tuple[0], &rpcID); err != nil {
				continue
			}
			var innerJSON string
			_ = json.Unmarshal(tuple[1], &innerJSON)
			calls = append(calls, RPCCall{RPCID: rpcID, InnerJSON: innerJSON})
		}
	}
	if calls == nil {
		return nil, false
	}
	return calls, true
}

// EncodeRequest rebuilds the `f.req` form value for calls, the inverse
// of ParseRequest, used to verify spec §8's batch-execute round-trip
// property.
func EncodeRequest(calls []RPCCall) string {
	outer := make([][]interface{}, 1)
	inner := make([]interface{}, len(calls))
	for i, c := range calls {
		inner[i] = []interface{}{c.RPCID, c.InnerJSON, nil, "generic"}
	}
	outer[0] = inner
	b, _ := json.Marshal(outer)
	values := url.Values{}
	values.Set("f.req", string(b))
	return values.Encode()
}

// XSSIPrefix is the anti-JSON-hijacking prefix batch-execute responses
// carry before their length-prefixed JSON frames (spec §6).
const XSSIPrefix = ")]}'\n"

// ResponseEntry is one "wrb.fr" tuple extracted from a batch-execute
// response frame: a success tuple carries InnerJSON and no ErrorCode; an
// error tuple carries ErrorCode and no InnerJSON.
type ResponseEntry struct {
	RPCID     string
	InnerJSON string
	HasInner  bool
	ErrorCode int
	HasError  bool
}

// ParseResponse decodes a batch-execute response body: the XSSI prefix
// followed by repeated <length>\n<jsonChunk> frames. Only entries whose
// first element is "wrb.fr" are surfaced.
func ParseResponse(body []byte) (entries []ResponseEntry, ok bool) {
	s := string(body)
	if !strings.HasPrefix(s, XSSIPrefix) {
		return nil, false
	}
	s = s[len(XSSIPrefix):]
	for len(s) > 0 {
		nl := strings.IndexByte(s, '\n')
		if nl < 0 {
			break
		}
		lengthLine := strings.TrimSpace(s[:nl])
		if lengthLine == "" {
			s = s[nl+1:]
			continue
		}
		length, err := strconv.Atoi(lengthLine)
		if err != nil || length < 0 || length > len(s)-nl-1 {
			return entries, len(entries) > 0
		}
		chunk := s[nl+1 : nl+1+length]
		s = s[nl+1+length:]

		var frame []json.RawMessage
		if err := json.Unmarshal([]byte(chunk), &frame); err != nil {
			continue
		}
		for _, itemRaw := range frame {
			var tuple []json.RawMessage
			if err := json.Unmarshal(itemRaw, &tuple); err != nil {
				continue
			}
			if len(tuple) == 0 {
				continue
			}
			var tag string
			if err := json.Unmarshal(tuple[0], &tag); err != nil || tag != "wrb.fr" {
				continue
			}
			entry := ResponseEntry{}
			if len(tuple) > 1 {
				_ = json.Unmarshal(tuple[1], &entry.RPCID)
			}
			if len(tuple) > 2 && string(tuple[2]) != "null" {
				var inner string
				if json.Unmarshal(tuple[2], &inner) == nil {
					entry.InnerJSON = inner
					entry.HasInner = true
				}
			}
			if len(tuple) > 3 && string(tuple[3]) != "null" {
				var code int
				if json.Unmarshal(tuple[3], &code) == nil {
					entry.ErrorCode = code
					entry.HasError = true
				}
			}
			entries = append(entries, entry)
		}
	}
	return entries, len(entries) > 0
}
