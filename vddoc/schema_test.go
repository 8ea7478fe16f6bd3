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

	"github.com/google/go-cmp/cmp"

	"github.com/google/vdd/scalar"
)

func TestGenerateSchemaFromJSON(t *testing.T) {
	schemas := NewOrderedMap[*Schema]()
	value := map[string]interface{}{
		"name":  "abc",
		"count": float64(3),
		"ratio": float64(1.5),
		"nested": map[string]interface{}{
			"id": "x",
		},
	}
	schema := GenerateSchemaFromJSON(schemas, "FooRequest", value)

	name, ok := schema.Properties.Get("name")
	if !ok || name.Type != scalar.String {
		t.Fatalf("got %+v", name)
	}
	count, ok := schema.Properties.Get("count")
	if !ok || count.Type != scalar.Int64 {
		t.Fatalf("got %+v", count)
	}
	ratio, ok := schema.Properties.Get("ratio")
	if !ok || ratio.Type != scalar.Double {
		t.Fatalf("got %+v", ratio)
	}
	nested, ok := schema.Properties.Get("nested")
	if !ok || nested.Type != scalar.Message || nested.Ref != "FooRequestNested" {
		t.Fatalf("got %+v", nested)
	}
	if !schemas.Has("FooRequestNested") {
		t.Fatal("expected nested schema to be registered")
	}
}

func TestMergeSchemaInsertsNewProperty(t *testing.T) {
	target := NewOrderedMap[*Schema]()
	existing := NewObjectSchema("FooRequest")
	existing.Properties.Set("field2", &PropertyDef{Name: "field2", Number: intp(2), Type: scalar.String, Label: scalar.Optional})
	target.Set("FooRequest", existing)

	source := NewOrderedMap[*Schema]()
	incoming := NewObjectSchema("FooRequest")
	incoming.Properties.Set("context", &PropertyDef{Name: "context", Number: intp(2), Type: scalar.String, Label: scalar.Required})
	incoming.Properties.Set("field5", &PropertyDef{Name: "field5", Number: intp(5), Type: scalar.String, Label: scalar.Optional})
	source.Set("FooRequest", incoming)

	MergeSchemaInto(target, source, existing, incoming, true)

	if existing.Properties.Has("field2") {
		t.Fatal("expected field2 to be re-keyed away")
	}
	context, ok := existing.Properties.Get("context")
	if !ok || context.Number == nil || *context.Number != 2 || context.Label != scalar.Required {
		t.Fatalf("got %+v", context)
	}
	field5, ok := existing.Properties.Get("field5")
	if !ok || field5.Number == nil || *field5.Number != 5 {
		t.Fatalf("got %+v", field5)
	}
}

func TestMergePropertyNeverDowngradesType(t *testing.T) {
	existing := &PropertyDef{Type: scalar.Double}
	incoming := &PropertyDef{Type: scalar.Int64}
	merged := mergeProperty(existing, incoming, false)
	if merged.Type != scalar.Double {
		t.Fatalf("got %v", merged.Type)
	}
}

func TestMergePropertyUpgradesStringToSpecific(t *testing.T) {
	existing := &PropertyDef{Type: scalar.String}
	incoming := &PropertyDef{Type: scalar.Int64}
	merged := mergeProperty(existing, incoming, false)
	if merged.Type != scalar.Int64 {
		t.Fatalf("got %v", merged.Type)
	}
}

func TestMergePropertyUpgradesStringToMessageByFullShape(t *testing.T) {
	existing := &PropertyDef{Name: "owner", Number: intp(3), Type: scalar.String, Label: scalar.Optional}
	incoming := &PropertyDef{Name: "owner", Number: intp(3), Type: scalar.Message, Label: scalar.Optional, Ref: "Owner"}

	got := mergeProperty(existing, incoming, false)
	want := &PropertyDef{Name: "owner", Number: intp(3), Type: scalar.Message, Label: scalar.Optional, Ref: "Owner"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mergeProperty() mismatch (-want +got):\n%s", diff)
	}
}

func intp(n int) *int { return &n }
