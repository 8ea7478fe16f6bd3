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

package rpcerror

import (
	"testing"

	"github.com/google/vdd/scalar"
)

func findField(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// TestParseRequiredAndInvalidValue seeds the context/browse_id/query
// three-violation scenario: two probed fields come back with a type and
// field number, and a nested required field is named only by a
// "Missing required field" violation against its parent.
func TestParseRequiredAndInvalidValue(t *testing.T) {
	body := []byte(`{
		"error": {
			"code": 400,
			"message": "Invalid request",
			"details": [
				{
					"@type": "type.googleapis.com/google.rpc.BadRequest",
					"fieldViolations": [
						{"field": "context", "description": "Invalid value at 'context' (TYPE_STRING), x2"},
						{"field": "browse_id", "description": "Invalid value at 'browse_id' (TYPE_STRING), x5"},
						{"field": "context", "description": "Missing required field query at 'context'"}
					]
				}
			]
		}
	}`)

	result, ok := Parse(body, false)
	if !ok {
		t.Fatal("parse failed")
	}

	context, ok := findField(result.Fields, "context")
	if !ok {
		t.Fatal("missing context field")
	}
	if context.Number != 2 || context.Type != scalar.String || !context.Required {
		t.Fatalf("context = %+v", context)
	}

	browseID, ok := findField(result.Fields, "browse_id")
	if !ok {
		t.Fatal("missing browse_id field")
	}
	if browseID.Number != 5 || browseID.Type != scalar.String || browseID.Required {
		t.Fatalf("browse_id = %+v", browseID)
	}

	query, ok := findField(result.Fields, "query")
	if !ok {
		t.Fatal("missing query field")
	}
	if !query.Required || query.HasNumber || query.Type != scalar.Unknown {
		t.Fatalf("query = %+v", query)
	}
}

func TestParseAnyDetailExpandsChildren(t *testing.T) {
	body := []byte(`{
		"error": {
			"code": 400,
			"message": "Invalid request",
			"details": [
				{
					"@type": "type.googleapis.com/google.rpc.BadRequest",
					"fieldViolations": [
						{"field": "payload", "description": "Invalid value at 'payload' (type.googleapis.com/google.protobuf.Any), x3"}
					]
				}
			]
		}
	}`)

	result, ok := Parse(body, false)
	if !ok {
		t.Fatal("parse failed")
	}
	payload, ok := findField(result.Fields, "payload")
	if !ok {
		t.Fatal("missing payload field")
	}
	if payload.MessageType != "google.protobuf.Any" || len(payload.Children) != 2 {
		t.Fatalf("payload = %+v", payload)
	}
	if payload.Children[0].Name != "type_url" || payload.Children[1].Name != "data" {
		t.Fatalf("children = %+v", payload.Children)
	}
}

func TestExtractScopes(t *testing.T) {
	header := `Bearer realm="https://example.com", error="insufficient_scope", scope="a b c"`
	scopes := ExtractScopes(header)
	if len(scopes) != 3 || scopes[0] != "a" || scopes[2] != "c" {
		t.Fatalf("got %v", scopes)
	}
}

func TestExtractScopesMissing(t *testing.T) {
	if scopes := ExtractScopes(`Bearer realm="https://example.com"`); scopes != nil {
		t.Fatalf("got %v, want nil", scopes)
	}
}
