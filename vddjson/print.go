// Copyright 2017 Google Inc. All Rights Reserved.
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

// Package vddjson prints a vddoc.Document as deterministic, ordered,
// indented JSON. vddoc.OrderedMap already round-trips through
// encoding/json in insertion order, but cmd/vddtool export wants
// indentation and key order it controls directly rather than whatever
// encoding/json's generic struct walk produces, so the tree is walked
// by hand the way jsonwriter.Marshal walked a yaml.MapSlice.
package vddjson

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/vdd/vddoc"
)

const indentUnit = "  "

type writer struct {
	b bytes.Buffer
}

// Print renders doc as indented JSON text.
func Print(doc *vddoc.Document) []byte {
	var w writer
	w.writeDocument(doc, "")
	w.b.WriteByte('\n')
	return w.b.Bytes()
}

func (w *writer) s(s string) { w.b.WriteString(s) }

func (w *writer) stringValue(s string) {
	w.s("\"")
	w.s(escape(s))
	w.s("\"")
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func (w *writer) writeDocument(doc *vddoc.Document, indent string) {
	inner := indent + indentUnit
	w.s("{\n")
	w.s(inner + "\"rootUrl\": ")
	w.stringValue(doc.RootURL)
	w.s(",\n")
	w.s(inner + "\"resources\": ")
	w.writeResources(doc.Resources, inner)
	w.s(",\n")
	w.s(inner + "\"schemas\": ")
	w.writeSchemas(doc.Schemas, inner)
	w.s("\n")
	w.s(indent + "}")
}

func (w *writer) writeResources(resources *vddoc.OrderedMap[*vddoc.Resource], indent string) {
	keys := resources.Keys()
	if len(keys) == 0 {
		w.s("{}")
		return
	}
	inner := indent + indentUnit
	w.s("{\n")
	for i, name := range keys {
		r, _ := resources.Get(name)
		w.s(inner)
		w.stringValue(name)
		w.s(": ")
		w.writeResource(r, inner)
		w.comma(i, len(keys))
	}
	w.s(indent + "}")
}

func (w *writer) writeResource(r *vddoc.Resource, indent string) {
	inner := indent + indentUnit
	w.s("{\n")
	w.s(inner + "\"methods\": ")
	w.writeMethods(r.Methods, inner)
	w.s("\n")
	w.s(indent + "}")
}

func (w *writer) writeMethods(methods *vddoc.OrderedMap[*vddoc.Method], indent string) {
	keys := methods.Keys()
	if len(keys) == 0 {
		w.s("{}")
		return
	}
	inner := indent + indentUnit
	w.s("{\n")
	for i, name := range keys {
		m, _ := methods.Get(name)
		w.s(inner)
		w.stringValue(name)
		w.s(": ")
		w.writeMethod(m, inner)
		w.comma(i, len(keys))
	}
	w.s(indent + "}")
}

func (w *writer) writeMethod(m *vddoc.Method, indent string) {
	inner := indent + indentUnit
	w.s("{\n")
	fields := [][2]string{
		{"id", m.ID},
		{"path", m.Path},
		{"httpMethod", m.HTTPMethod},
	}
	for _, f := range fields {
		w.s(inner)
		w.stringValue(f[0])
		w.s(": ")
		w.stringValue(f[1])
		w.s(",\n")
	}
	w.s(inner + "\"parameters\": ")
	w.writeParameters(m.Parameters, inner)
	if m.Request != nil {
		w.s(",\n" + inner + "\"request\": ")
		w.writeRef(m.Request)
	}
	if m.Response != nil {
		w.s(",\n" + inner + "\"response\": ")
		w.writeRef(m.Response)
	}
	if len(m.ContentTypes) > 0 {
		w.s(",\n" + inner + "\"contentTypes\": ")
		w.writeStringArray(m.ContentTypes, inner)
	}
	w.s("\n")
	w.s(indent + "}")
}

func (w *writer) writeRef(ref *vddoc.Ref) {
	w.s("{\"$ref\": ")
	w.stringValue(ref.Ref)
	w.s("}")
}

func (w *writer) writeParameters(params *vddoc.OrderedMap[*vddoc.ParamDef], indent string) {
	keys := params.Keys()
	if len(keys) == 0 {
		w.s("{}")
		return
	}
	inner := indent + indentUnit
	w.s("{\n")
	for i, name := range keys {
		p, _ := params.Get(name)
		w.s(inner)
		w.stringValue(name)
		w.s(": ")
		w.writeParam(p, inner)
		w.comma(i, len(keys))
	}
	w.s(indent + "}")
}

func (w *writer) writeParam(p *vddoc.ParamDef, indent string) {
	inner := indent + indentUnit
	w.s("{\n")
	w.s(inner + "\"name\": ")
	w.stringValue(p.Name)
	w.s(",\n" + inner + "\"type\": ")
	w.stringValue(string(p.Type))
	w.s(",\n" + inner + "\"location\": ")
	w.stringValue(p.Location)
	w.s(",\n" + inner + "\"required\": ")
	w.bool(p.Required)
	w.s("\n")
	w.s(indent + "}")
}

func (w *writer) writeSchemas(schemas *vddoc.OrderedMap[*vddoc.Schema], indent string) {
	keys := schemas.Keys()
	if len(keys) == 0 {
		w.s("{}")
		return
	}
	inner := indent + indentUnit
	w.s("{\n")
	for i, name := range keys {
		s, _ := schemas.Get(name)
		w.s(inner)
		w.stringValue(name)
		w.s(": ")
		w.writeSchema(s, inner)
		w.comma(i, len(keys))
	}
	w.s(indent + "}")
}

func (w *writer) writeSchema(s *vddoc.Schema, indent string) {
	inner := indent + indentUnit
	w.s("{\n")
	w.s(inner + "\"id\": ")
	w.stringValue(s.ID)
	w.s(",\n" + inner + "\"type\": ")
	w.stringValue(s.Type)
	w.s(",\n" + inner + "\"properties\": ")
	w.writeProperties(s.Properties, inner)
	w.s("\n")
	w.s(indent + "}")
}

func (w *writer) writeProperties(props *vddoc.OrderedMap[*vddoc.PropertyDef], indent string) {
	keys := props.Keys()
	if len(keys) == 0 {
		w.s("{}")
		return
	}
	inner := indent + indentUnit
	w.s("{\n")
	for i, name := range keys {
		p, _ := props.Get(name)
		w.s(inner)
		w.stringValue(name)
		w.s(": ")
		w.writeProperty(p, inner)
		w.comma(i, len(keys))
	}
	w.s(indent + "}")
}

func (w *writer) writeProperty(p *vddoc.PropertyDef, indent string) {
	inner := indent + indentUnit
	w.s("{\n")
	w.s(inner + "\"type\": ")
	w.stringValue(string(p.Type))
	w.s(",\n" + inner + "\"label\": ")
	w.stringValue(string(p.Label))
	if p.Number != nil {
		w.s(",\n" + inner + "\"number\": ")
		w.s(strconv.Itoa(*p.Number))
	}
	if p.Ref != "" {
		w.s(",\n" + inner + "\"$ref\": ")
		w.stringValue(p.Ref)
	}
	if p.Items != nil {
		w.s(",\n" + inner + "\"items\": ")
		w.writeItems(p.Items)
	}
	w.s("\n")
	w.s(indent + "}")
}

func (w *writer) writeItems(items *vddoc.Items) {
	parts := []string{}
	if items.Type != "" {
		parts = append(parts, fmt.Sprintf("\"type\": \"%s\"", escape(string(items.Type))))
	}
	if items.Ref != "" {
		parts = append(parts, fmt.Sprintf("\"$ref\": \"%s\"", escape(items.Ref)))
	}
	w.s("{" + strings.Join(parts, ", ") + "}")
}

func (w *writer) writeStringArray(arr []string, indent string) {
	if len(arr) == 0 {
		w.s("[]")
		return
	}
	inner := indent + indentUnit
	w.s("[\n")
	for i, v := range arr {
		w.s(inner)
		w.stringValue(v)
		w.comma(i, len(arr))
	}
	w.s(indent + "]")
}

func (w *writer) bool(b bool) {
	if b {
		w.s("true")
	} else {
		w.s("false")
	}
}

func (w *writer) comma(i, n int) {
	if i < n-1 {
		w.s(",")
	}
	w.s("\n")
}
