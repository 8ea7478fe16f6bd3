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

// Package rpcerror decodes validation-error responses (spec §4.3) into
// a uniform field-discovery list, from either a JSON body or a binary
// google.rpc.Status message.
package rpcerror

import (
	"encoding/json"
	"strings"

	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/protobuf/proto"
)

// JSONStatus mirrors the JSON shape of spec §6's "Recognised error
// shape": { error: { code, message, details[] } }.
type JSONStatus struct {
	Error struct {
		Code    int              `json:"code"`
		Message string           `json:"message"`
		Details []map[string]any `json:"details"`
	} `json:"error"`
}

// detail is the uniform shape rpcerror walks regardless of input
// encoding: a JSON object with an "@type" discriminator plus whatever
// type-specific fields (fieldViolations, reason, domain, metadata) that
// @type implies.
type detail = map[string]any

// decodeJSON unmarshals a JSON error body into a list of detail objects
// plus the top-level message, or ok=false if it is not the recognised
// shape at all.
func decodeJSON(body []byte) (details []detail, message string, ok bool) {
	var st JSONStatus
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, "", false
	}
	if st.Error.Message == "" && len(st.Error.Details) == 0 {
		return nil, "", false
	}
	return st.Error.Details, st.Error.Message, true
}

// decodeBinary decodes a binary google.rpc.Status message (spec §6:
// field 1 = code, field 2 = message, field 3 = repeated Any) and lifts
// it into the same detail/message shape decodeJSON produces, so Parse
// never needs to branch on the original encoding again afterward.
func decodeBinary(body []byte) (details []detail, message string, ok bool) {
	var st spb.Status
	if err := proto.Unmarshal(body, &st); err != nil {
		return nil, "", false
	}
	for _, any := range st.GetDetails() {
		d, dok := anyToDetail(any.GetTypeUrl(), any.GetValue())
		if !dok {
			continue
		}
		details = append(details, d)
	}
	return details, st.GetMessage(), true
}

// anyToDetail resolves a google.protobuf.Any into a detail map keyed the
// same way the JSON form keys it ("@type" plus the decoded fields),
// recognising BadRequest and ErrorInfo (spec §4.3); any other type URL
// is carried through with no decoded fields so pass 1/2 can still see
// its presence without misinterpreting its payload.
func anyToDetail(typeURL string, value []byte) (detail, bool) {
	d := detail{"@type": typeURL}
	switch {
	case strings.Contains(typeURL, "BadRequest"):
		fvs, ok := decodeBadRequest(value)
		if !ok {
			return nil, false
		}
		d["fieldViolations"] = fvs
	case strings.Contains(typeURL, "ErrorInfo"):
		reason, domain, ok := decodeErrorInfo(value)
		if !ok {
			return nil, false
		}
		d["reason"] = reason
		d["domain"] = domain
	}
	return d, true
}
