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

package probe

import (
	"context"

	"github.com/google/vdd/format"
	"github.com/google/vdd/rpcerror"
	"github.com/google/vdd/scalar"
)

// DefaultMaxDepth is spec §4.4's default nested-probe depth.
const DefaultMaxDepth = 2

// Detail records one attempted probe request, regardless of whether it
// yielded fields, for the caller's probeDetails[] audit trail.
type Detail struct {
	ContentType string
	URL         string
	Status      int
	Indices     []int
	FieldsFound int
}

// Result is the probe engine's output (spec §4.4: "Return {fields,
// metadata, scopes, probeDetails[]}").
type Result struct {
	Fields      []rpcerror.Field
	Metadata    rpcerror.Metadata
	Scopes      []string
	ProbeDetail []Detail
}

// Engine drives the root and nested probing rounds against one target.
type Engine struct {
	Relay    Relay
	MaxDepth int
}

// NewEngine returns an Engine with spec's default max depth.
func NewEngine(relay Relay) *Engine {
	return &Engine{Relay: relay, MaxDepth: DefaultMaxDepth}
}

// Run executes the full root + nested probing sequence against target,
// using headers as the credential headers to forward. ok is false when
// all three root content types yielded no fields (spec's ProbeRejected).
func (e *Engine) Run(ctx context.Context, target string, headers map[string]string) (Result, bool) {
	var result Result
	usedContentType := ""

	for _, ct := range contentTypes {
		stringFields, meta, scopes, detail, _ := e.attempt(ctx, target, ct, headers, nil, stringPayload(ct))
		result.ProbeDetail = append(result.ProbeDetail, detail)
		result.Scopes = append(result.Scopes, scopes...)
		if meta.Service != "" {
			result.Metadata = meta
		}
		result.Fields = mergeFields(result.Fields, stringFields)

		intFields, meta2, scopes2, detail2, _ := e.attempt(ctx, target, ct, headers, nil, intPayload(ct))
		result.ProbeDetail = append(result.ProbeDetail, detail2)
		result.Scopes = append(result.Scopes, scopes2...)
		if meta2.Service != "" {
			result.Metadata = meta2
		}
		result.Fields = mergeFields(result.Fields, intFields)

		if len(stringFields) > 0 || len(intFields) > 0 {
			usedContentType = ct
			break
		}
	}

	if usedContentType == "" {
		return result, false
	}

	e.runNested(ctx, target, usedContentType, headers, &result)
	return result, true
}

// stringPayload/intPayload build the root-level probe body for a given
// content type: JSON-encoded positional array for the two JSON
// variants, raw protobuf bytes for application/x-protobuf.
func stringPayload(ct string) func(indices []int) []byte {
	return func(indices []int) []byte {
		if ct == "application/x-protobuf" {
			base := ProtobufStringProbe(FieldCount)
			if len(indices) > 0 {
				base = WrapProtobuf(base, indices)
			}
			return base
		}
		base := interface{}(JSONStringProbe(FieldCount))
		if len(indices) > 0 {
			base = WrapJSON(base, indices)
		}
		return EncodeJSON(base)
	}
}

func intPayload(ct string) func(indices []int) []byte {
	return func(indices []int) []byte {
		if ct == "application/x-protobuf" {
			base := ProtobufIntProbe(FieldCount)
			if len(indices) > 0 {
				base = WrapProtobuf(base, indices)
			}
			return base
		}
		base := interface{}(JSONIntProbe(FieldCount))
		if len(indices) > 0 {
			base = WrapJSON(base, indices)
		}
		return EncodeJSON(base)
	}
}

type nestedWork struct {
	indices []int
	depth   int
	parent  int // index into result.Fields of the field this probe nests under
}

// runNested implements spec §4.4's nested probing: message fields dive
// one level via [parentNumber]; repeated fields dive via
// [fieldNumber, 1]; an enum indicator upgrades the parent from message
// to enum and discards its pending children.
func (e *Engine) runNested(ctx context.Context, target, usedContentType string, headers map[string]string, result *Result) {
	var queue []nestedWork
	for i, f := range result.Fields {
		switch {
		case f.Type == scalar.Message:
			queue = append(queue, nestedWork{indices: []int{f.Number}, depth: 1, parent: i})
		case f.Repeated:
			queue = append(queue, nestedWork{indices: []int{f.Number, 1}, depth: 1, parent: i})
		}
	}

	for len(queue) > 0 {
		work := queue[0]
		queue = queue[1:]
		if work.depth > e.MaxDepth {
			continue
		}

		intFields, _, scopes, detail, _ := e.attempt(ctx, target, usedContentType, headers, work.indices, intPayload(usedContentType))
		result.ProbeDetail = append(result.ProbeDetail, detail)
		result.Scopes = append(result.Scopes, scopes...)

		stringFields, _, scopes2, detail2, _ := e.attempt(ctx, target, usedContentType, headers, work.indices, stringPayload(usedContentType))
		result.ProbeDetail = append(result.ProbeDetail, detail2)
		result.Scopes = append(result.Scopes, scopes2...)

		discovered := mergeFields(intFields, stringFields)
		if len(discovered) == 0 {
			continue
		}

		parent := &result.Fields[work.parent]
		if hasEnum(discovered) {
			parent.Type = scalar.Enum
			parent.Children = nil
			continue
		}
		parent.Children = mergeFields(parent.Children, discovered)

		if work.depth+1 > e.MaxDepth {
			continue
		}
		for _, child := range discovered {
			switch {
			case child.Type == scalar.Message:
				queue = append(queue, nestedWork{
					indices: append(append([]int{}, work.indices...), child.Number),
					depth:   work.depth + 1,
					parent:  work.parent,
				})
			case child.Repeated:
				queue = append(queue, nestedWork{
					indices: append(append([]int{}, work.indices...), child.Number, 1),
					depth:   work.depth + 1,
					parent:  work.parent,
				})
			}
		}
	}
}

func hasEnum(fields []rpcerror.Field) bool {
	for _, f := range fields {
		if f.Type == scalar.Enum {
			return true
		}
	}
	return false
}

// attempt fires one probe request and parses any validation-error
// response it elicits.
func (e *Engine) attempt(ctx context.Context, target, contentType string, headers map[string]string, indices []int, buildBody func([]int) []byte) ([]rpcerror.Field, rpcerror.Metadata, []string, Detail, bool) {
	url := probeURL(target, contentType)
	body := buildBody(indices)

	req := Request{Method: "POST", Headers: cloneHeaders(headers, contentType), Body: body}
	resp, err := e.Relay.Fetch(ctx, url, req)
	detail := Detail{ContentType: contentType, URL: url, Indices: indices}
	if err != nil || !resp.OK {
		return nil, rpcerror.Metadata{}, nil, detail, false
	}
	detail.Status = resp.Status

	respContentType := resp.Headers["Content-Type"]
	binary := format.IsProtobufContentType(respContentType)
	result, ok := rpcerror.Parse(resp.Body, binary)
	if !ok {
		return nil, rpcerror.Metadata{}, nil, detail, false
	}
	detail.FieldsFound = len(result.Fields)

	var scopes []string
	if resp.Status == 403 {
		scopes = rpcerror.ExtractScopes(resp.Headers["WWW-Authenticate"])
	}
	return result.Fields, result.Metadata, scopes, detail, true
}

func cloneHeaders(headers map[string]string, contentType string) map[string]string {
	out := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		out[k] = v
	}
	out["Content-Type"] = contentType
	return out
}
