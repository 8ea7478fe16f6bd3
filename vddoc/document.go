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

package vddoc

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/google/vdd/format"
	"github.com/google/vdd/scalar"
	"github.com/google/vdd/wire"
)

// reservedQueryParams are excluded from query-parameter learning (spec
// §4.7's "excluding literal key/api_key").
var reservedQueryParams = map[string]bool{"key": true, "api_key": true}

// LearnQueryParams records every query parameter present in values onto
// method, typing each by its first observed value (spec §4.7).
func LearnQueryParams(method *Method, values url.Values) {
	for name, vs := range values {
		if reservedQueryParams[name] || len(vs) == 0 {
			continue
		}
		p, ok := method.Parameters.Get(name)
		if !ok {
			p = &ParamDef{Name: name, Location: LocationQuery}
			if ParamTypeFromValue(vs[0]) == "number" {
				p.Type = scalar.Double
			} else {
				p.Type = scalar.String
			}
			method.Parameters.Set(name, p)
		}
		for _, v := range vs {
			method.Stats.ObserveParam(name, v)
		}
	}
}

// LearnPathParams compares the actual request path against the method's
// stored path template, converting any segment that differs or looks
// dynamic into a `{path_<name>}` placeholder and registering a path
// parameter (spec §4.7).
func LearnPathParams(method *Method, actualPath string) {
	template := strings.Trim(method.Path, "/")
	actual := strings.Trim(actualPath, "/")
	templateSegs := splitNonEmpty(template)
	actualSegs := splitNonEmpty(actual)
	if len(templateSegs) != len(actualSegs) {
		return
	}

	out := make([]string, len(actualSegs))
	changed := false
	for i, seg := range actualSegs {
		tSeg := templateSegs[i]
		if strings.HasPrefix(tSeg, "{") {
			out[i] = tSeg
			name := strings.TrimSuffix(strings.TrimPrefix(tSeg, "{path_"), "}")
			registerPathParam(method, name, seg)
			continue
		}
		if tSeg != seg || isDynamicSegment(seg) {
			name := tSeg
			if name == "" {
				name = "segment"
			}
			out[i] = "{path_" + name + "}"
			registerPathParam(method, name, seg)
			changed = true
			continue
		}
		out[i] = tSeg
	}
	if changed {
		method.Path = "/" + strings.Join(out, "/")
	}
}

func registerPathParam(method *Method, name, value string) {
	p, ok := method.Parameters.Get(name)
	if !ok {
		p = &ParamDef{Name: name, Location: LocationPath}
		if ParamTypeFromValue(value) == "number" {
			p.Type = scalar.Double
		} else {
			p.Type = scalar.String
		}
		method.Parameters.Set(name, p)
	}
	method.Stats.ObserveParam(name, value)
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

// generateBodySchema classifies body by content type and URL path (spec
// §4.2/§4.7/§4.8) and builds a schema named name from it. ok is false
// when the body's format carries no learnable schema shape (SSE,
// NDJSON, multipart, GraphQL, async-chunked envelopes).
func generateBodySchema(schemas *OrderedMap[*Schema], name, contentType, urlPath string, body []byte) (*Schema, bool) {
	if strings.Contains(strings.ToLower(contentType), "www-form-urlencoded") && !format.IsBatchExecutePath(urlPath) {
		if values, err := url.ParseQuery(string(body)); err == nil {
			if raw := values.Get("f.req"); raw != "" {
				if arr, ok := format.ParseJSPB([]byte(raw)); ok {
					return GenerateSchemaFromJSPB(schemas, name, wire.DecodeJSPB(arr)), true
				}
			}
		}
	}

	kind := format.Classify(contentType, urlPath, body)
	switch kind {
	case format.KindJSON:
		var value map[string]interface{}
		if err := json.Unmarshal(body, &value); err != nil {
			return nil, false
		}
		return GenerateSchemaFromJSON(schemas, name, value), true
	case format.KindJSPB:
		arr, ok := format.ParseJSPB(body)
		if !ok {
			return nil, false
		}
		return GenerateSchemaFromJSPB(schemas, name, wire.DecodeJSPB(arr)), true
	case format.KindGRPCWeb:
		frames, ok := format.ParseFrames(body, format.IsGRPCWebText(contentType))
		if !ok || len(frames) == 0 {
			return nil, false
		}
		nodes, ok := wire.DecodeTree(frames[0].Payload, 0)
		if !ok {
			return nil, false
		}
		return GenerateSchemaFromProtobuf(schemas, name, nodes), true
	case format.KindProtobuf:
		nodes, ok := wire.DecodeTree(body, 0)
		if !ok {
			return nil, false
		}
		return GenerateSchemaFromProtobuf(schemas, name, nodes), true
	default:
		return nil, false
	}
}

// LearnRequestBody implements spec §4.7's body-learning dispatch for a
// single (non-batch-execute) request body, generating a
// `<MethodNameSafe>Request` schema and merging it into doc.Schemas, then
// pointing method.Request at it.
func LearnRequestBody(doc *Document, method *Method, contentType, urlPath string, body []byte) bool {
	return learnBody(doc, method, contentType, urlPath, body, "Request", func(m *Method, ref *Ref) { m.Request = ref })
}

// LearnResponseBody is LearnRequestBody's response-side counterpart,
// producing a `<MethodNameSafe>Response` schema (spec §4.8 step 2).
func LearnResponseBody(doc *Document, method *Method, contentType, urlPath string, body []byte) bool {
	return learnBody(doc, method, contentType, urlPath, body, "Response", func(m *Method, ref *Ref) { m.Response = ref })
}

func learnBody(doc *Document, method *Method, contentType, urlPath string, body []byte, suffix string, attach func(*Method, *Ref)) bool {
	name := SchemaNameForMethod(method.ID, suffix)
	fresh := NewOrderedMap[*Schema]()
	incoming, ok := generateBodySchema(fresh, name, contentType, urlPath, body)
	if !ok {
		return false
	}
	fresh.Set(name, incoming)

	if existing, ok := doc.Schemas.Get(name); ok {
		MergeSchemaInto(doc.Schemas, fresh, existing, incoming, false)
	} else {
		copySchemaTreeByName(doc.Schemas, fresh, name)
	}
	attach(method, &Ref{Ref: name})
	method.RecordContentType(contentType)
	return true
}

// copySchemaTreeByName copies source[name] (and, recursively, every
// schema it references) into target, used the first time a method's
// body schema has no prior entry to merge against.
func copySchemaTreeByName(target, source *OrderedMap[*Schema], name string) {
	if target.Has(name) {
		return
	}
	schema, ok := source.Get(name)
	if !ok {
		return
	}
	target.Set(name, schema)
	for _, k := range schema.Properties.Keys() {
		p, _ := schema.Properties.Get(k)
		if p.Ref != "" {
			copySchemaTreeByName(target, source, p.Ref)
		}
		if p.Items != nil && p.Items.Ref != "" {
			copySchemaTreeByName(target, source, p.Items.Ref)
		}
	}
}

// LearnBatchExecuteRequest implements spec §4.7's "batch-execute form =>
// per-RPC synthetic method" rule: each inner RPC call gets its own
// resolved method (named after its rpcId) and its own request schema
// generated from the call's inner JSON payload.
func LearnBatchExecuteRequest(doc *Document, resourceName, interfaceName string, calls []format.RPCCall) []*Method {
	var methods []*Method
	for _, call := range calls {
		baseName := call.RPCID
		if baseName == "" {
			continue
		}
		m := ResolveMethod(doc, resourceName, interfaceName, baseName, "POST", "")
		var value map[string]interface{}
		if err := json.Unmarshal([]byte(call.InnerJSON), &value); err == nil {
			name := SchemaNameForMethod(m.ID, "Request")
			fresh := NewOrderedMap[*Schema]()
			incoming := GenerateSchemaFromJSON(fresh, name, value)
			fresh.Set(name, incoming)
			if existing, ok := doc.Schemas.Get(name); ok {
				MergeSchemaInto(doc.Schemas, fresh, existing, incoming, false)
			} else {
				copySchemaTreeByName(doc.Schemas, fresh, name)
			}
			m.Request = &Ref{Ref: name}
		}
		methods = append(methods, m)
	}
	return methods
}

// PreserveVirtualParts implements spec §4.7's "Virtual-part
// preservation": when newDoc has just been built from a freshly-fetched
// or converted official discovery document, copy oldDoc's learned and
// probed methods into it (each Method and its parameters are copied; its
// Stats, chain sets and request/response refs are shared with oldDoc,
// not copied), and for every method name still
// present in newDoc's own resources, carry over its custom renames and
// accumulated stats/chains from the corresponding old method.
func PreserveVirtualParts(newDoc, oldDoc *Document) {
	for _, resourceName := range []string{ResourceLearned, ResourceProbed} {
		oldResource, ok := oldDoc.Resources.Get(resourceName)
		if !ok {
			continue
		}
		newResource, ok := newDoc.Resources.Get(resourceName)
		if !ok {
			newResource = NewResource()
			newDoc.Resources.Set(resourceName, newResource)
		}
		for _, name := range oldResource.Methods.Keys() {
			oldMethod, _ := oldResource.Methods.Get(name)
			newResource.Methods.Set(name, cloneMethod(oldMethod))
		}
	}

	officialResource, ok := newDoc.Resources.Get(ResourceOfficial)
	if !ok {
		return
	}
	for _, resourceName := range []string{ResourceLearned, ResourceProbed} {
		resource, ok := newDoc.Resources.Get(resourceName)
		if !ok {
			continue
		}
		for _, name := range resource.Methods.Keys() {
			carried, _ := resource.Methods.Get(name)
			if officialMethod, ok := officialResource.Methods.Get(name); ok {
				officialMethod.Stats = carried.Stats
				officialMethod.Outgoing = carried.Outgoing
				officialMethod.Incoming = carried.Incoming
				for _, pn := range carried.Parameters.Keys() {
					p, _ := carried.Parameters.Get(pn)
					if p.CustomName {
						officialMethod.Parameters.Set(pn, p)
					}
				}
			}
		}
	}
}

func cloneMethod(m *Method) *Method {
	clone := &Method{
		ID:         m.ID,
		Path:       m.Path,
		HTTPMethod: m.HTTPMethod,
		Parameters: NewOrderedMap[*ParamDef](),
		Request:    m.Request,
		Response:   m.Response,
		Stats:      m.Stats,
		Outgoing:   m.Outgoing,
		Incoming:   m.Incoming,
	}
	clone.ContentTypes = append([]string(nil), m.ContentTypes...)
	for _, name := range m.Parameters.Keys() {
		p, _ := m.Parameters.Get(name)
		cp := *p
		clone.Parameters.Set(name, &cp)
	}
	return clone
}
