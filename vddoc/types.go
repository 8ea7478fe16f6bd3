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
	"github.com/google/vdd/chain"
	"github.com/google/vdd/scalar"
	"github.com/google/vdd/stats"
)

// Reserved resource names (spec §3).
const (
	ResourceLearned  = "learned"
	ResourceProbed   = "probed"
	ResourceOfficial = "official"
)

// Document is the per-service Virtual Discovery Document (spec §3).
type Document struct {
	RootURL   string                  `json:"rootUrl"`
	Resources *OrderedMap[*Resource]  `json:"resources"`
	Schemas   *OrderedMap[*Schema]    `json:"schemas"`
}

// NewDocument returns an empty Document rooted at rootURL (spec §4.7:
// "First observation of a service lazily creates the VDD with an empty
// learned resource").
func NewDocument(rootURL string) *Document {
	d := &Document{
		RootURL:   rootURL,
		Resources: NewOrderedMap[*Resource](),
		Schemas:   NewOrderedMap[*Schema](),
	}
	d.Resources.Set(ResourceLearned, NewResource())
	return d
}

// Resource groups methods under one of the three canonical provenance
// buckets (spec §3).
type Resource struct {
	Methods *OrderedMap[*Method] `json:"methods"`
}

// NewResource returns an empty Resource.
func NewResource() *Resource {
	return &Resource{Methods: NewOrderedMap[*Method]()}
}

// Ref is a `{$ref: SchemaName}` pointer into Document.Schemas.
type Ref struct {
	Ref string `json:"$ref"`
}

// Method is one discovered API method (spec §3).
type Method struct {
	ID           string                  `json:"id"`
	Path         string                  `json:"path"`
	HTTPMethod   string                  `json:"httpMethod"`
	Parameters   *OrderedMap[*ParamDef]  `json:"parameters"`
	Request      *Ref                    `json:"request,omitempty"`
	Response     *Ref                    `json:"response,omitempty"`
	ContentTypes []string                `json:"contentTypes,omitempty"`

	Stats    *stats.MethodStats `json:"_stats,omitempty"`
	Outgoing *chain.Set         `json:"-"`
	Incoming *chain.Set         `json:"-"`
}

// NewMethod returns an empty Method with id/path/httpMethod set.
func NewMethod(id, path, httpMethod string) *Method {
	return &Method{
		ID:         id,
		Path:       path,
		HTTPMethod: httpMethod,
		Parameters: NewOrderedMap[*ParamDef](),
		Stats:      stats.NewMethodStats(),
		Outgoing:   chain.NewSet(),
		Incoming:   chain.NewSet(),
	}
}

// RecordContentType moves ct to the front of ContentTypes, deduping
// (spec's Open Question resolution: "ordered, most-recent-first").
func (m *Method) RecordContentType(ct string) {
	if ct == "" {
		return
	}
	for i, existing := range m.ContentTypes {
		if existing == ct {
			m.ContentTypes = append(m.ContentTypes[:i], m.ContentTypes[i+1:]...)
			break
		}
	}
	m.ContentTypes = append([]string{ct}, m.ContentTypes...)
}

// ParamDef is one method parameter (spec §3).
type ParamDef struct {
	Name        string      `json:"name"`
	Type        scalar.Type `json:"type"`
	Location    string      `json:"location"`
	Required    bool        `json:"required"`
	Description string      `json:"description,omitempty"`
	Format      string      `json:"format,omitempty"`
	Enum        []string    `json:"enum,omitempty"`

	CustomName         bool                `json:"-"`
	RequiredConfidence float64             `json:"-"`
	DetectedEnum       []string            `json:"-"`
	DefaultValue       string              `json:"-"`
	Range              *stats.NumericRange `json:"-"`
}

// Param locations (spec §3).
const (
	LocationQuery  = "query"
	LocationPath   = "path"
	LocationHeader = "header"
	LocationBody   = "body"
)

// Schema is a named object or scalar shape (spec §3).
type Schema struct {
	ID         string                     `json:"id"`
	Type       string                     `json:"type"`
	Properties *OrderedMap[*PropertyDef]  `json:"properties,omitempty"`
}

// NewObjectSchema returns an empty "object"-typed Schema.
func NewObjectSchema(id string) *Schema {
	return &Schema{ID: id, Type: "object", Properties: NewOrderedMap[*PropertyDef]()}
}

// Items describes an array PropertyDef's element shape.
type Items struct {
	Type scalar.Type `json:"type,omitempty"`
	Ref  string      `json:"$ref,omitempty"`
}

// PropertyDef is one schema property (spec §3).
type PropertyDef struct {
	Name   string      `json:"name"`
	Number *int        `json:"number,omitempty"`
	Type   scalar.Type `json:"type"`
	Label  scalar.Label `json:"label"`
	Ref    string      `json:"$ref,omitempty"`
	Items  *Items      `json:"items,omitempty"`

	CustomName bool `json:"-"`
}
