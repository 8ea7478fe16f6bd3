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
	"testing"

	"github.com/google/vdd/rpcerror"
	"github.com/google/vdd/scalar"
)

func TestGenerateSchemaFromProbeSetsFieldNumbers(t *testing.T) {
	schemas := NewOrderedMap[*Schema]()
	fields := []rpcerror.Field{
		{Name: "id", Number: 1, HasNumber: true, Type: scalar.String, Required: true},
		{Name: "tags", Number: 2, HasNumber: true, Type: scalar.String, Repeated: true},
	}
	schema := GenerateSchemaFromProbe(schemas, "WidgetRequest", fields)

	id, ok := schema.Properties.Get("id")
	if !ok || id.Number == nil || *id.Number != 1 || id.Label != scalar.Required {
		t.Fatalf("got %+v", id)
	}
	tags, ok := schema.Properties.Get("tags")
	if !ok || tags.Type != scalar.Array || tags.Items == nil || tags.Items.Type != scalar.String {
		t.Fatalf("got %+v", tags)
	}
}

func TestGenerateSchemaFromProbeLeavesUnnumberedFieldNil(t *testing.T) {
	schemas := NewOrderedMap[*Schema]()
	fields := []rpcerror.Field{
		{Name: "mystery", Type: scalar.String},
	}
	schema := GenerateSchemaFromProbe(schemas, "WidgetRequest", fields)

	prop, ok := schema.Properties.Get("mystery")
	if !ok || prop.Number != nil {
		t.Fatalf("expected nil Number for an unnumbered field, got %+v", prop)
	}
}

func TestGenerateSchemaFromProbeRecursesIntoChildren(t *testing.T) {
	schemas := NewOrderedMap[*Schema]()
	fields := []rpcerror.Field{
		{
			Name: "owner", Number: 3, HasNumber: true, Type: scalar.Message,
			MessageType: "vdd.test.Owner",
			Children: []rpcerror.Field{
				{Name: "email", Number: 1, HasNumber: true, Type: scalar.String},
			},
		},
	}
	schema := GenerateSchemaFromProbe(schemas, "WidgetRequest", fields)

	owner, ok := schema.Properties.Get("owner")
	if !ok || owner.Type != scalar.Message || owner.Ref != "vddtestOwner" {
		t.Fatalf("got %+v", owner)
	}
	child, ok := schemas.Get("vddtestOwner")
	if !ok {
		t.Fatal("expected child schema registered under sanitized message type name")
	}
	email, ok := child.Properties.Get("email")
	if !ok || email.Type != scalar.String {
		t.Fatalf("got %+v", email)
	}
}

func TestGenerateSchemaFromProbeRepeatedMessage(t *testing.T) {
	schemas := NewOrderedMap[*Schema]()
	fields := []rpcerror.Field{
		{
			Name: "items", Number: 4, HasNumber: true, Type: scalar.Message, Repeated: true,
			Children: []rpcerror.Field{
				{Name: "sku", Number: 1, HasNumber: true, Type: scalar.String},
			},
		},
	}
	schema := GenerateSchemaFromProbe(schemas, "OrderRequest", fields)

	items, ok := schema.Properties.Get("items")
	if !ok || items.Type != scalar.Array || items.Items == nil || items.Items.Type != scalar.Message {
		t.Fatalf("got %+v", items)
	}
	if _, ok := schemas.Get(items.Items.Ref); !ok {
		t.Fatalf("expected nested schema registered under %q", items.Items.Ref)
	}
}
