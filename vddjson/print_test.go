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

package vddjson

import (
	"encoding/json"
	"testing"

	"github.com/google/vdd/scalar"
	"github.com/google/vdd/vddoc"
)

func TestPrintRoundTripsThroughJSON(t *testing.T) {
	doc := vddoc.NewDocument("https://example.com")
	resource, _ := doc.Resources.Get(vddoc.ResourceLearned)
	method := vddoc.NewMethod("example.com.widgets_id", "/widgets/{id}", "GET")
	method.Parameters.Set("id", &vddoc.ParamDef{Name: "id", Type: scalar.String, Location: vddoc.LocationPath, Required: true})
	method.Response = &vddoc.Ref{Ref: "WidgetsIdResponse"}
	resource.Methods.Set("widgets_id", method)

	schema := vddoc.NewObjectSchema("WidgetsIdResponse")
	num := 1
	schema.Properties.Set("name", &vddoc.PropertyDef{Name: "name", Type: scalar.String, Label: scalar.Optional, Number: &num})
	doc.Schemas.Set("WidgetsIdResponse", schema)

	out := Print(doc)

	var decoded map[string]interface{}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("printed output is not valid JSON: %v\n%s", err, out)
	}
	if decoded["rootUrl"] != "https://example.com" {
		t.Fatalf("got %+v", decoded)
	}
	resources, ok := decoded["resources"].(map[string]interface{})
	if !ok || resources["learned"] == nil {
		t.Fatalf("expected learned resource, got %+v", decoded["resources"])
	}
	schemas, ok := decoded["schemas"].(map[string]interface{})
	if !ok || schemas["WidgetsIdResponse"] == nil {
		t.Fatalf("expected WidgetsIdResponse schema, got %+v", decoded["schemas"])
	}
}

func TestPrintEmptyCollectionsRenderAsEmptyObjects(t *testing.T) {
	doc := vddoc.NewDocument("https://example.com")
	out := Print(doc)

	var decoded map[string]interface{}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("printed output is not valid JSON: %v\n%s", err, out)
	}
	resources, ok := decoded["resources"].(map[string]interface{})
	if !ok {
		t.Fatalf("got %+v", decoded["resources"])
	}
	if _, ok := resources["learned"]; !ok {
		t.Fatal("expected the lazily-created learned resource to survive printing")
	}
	schemas, ok := decoded["schemas"].(map[string]interface{})
	if !ok || len(schemas) != 0 {
		t.Fatalf("expected schemas to print as an empty object, got %+v", decoded["schemas"])
	}
}
