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

package discovery

import (
	"context"
	"testing"

	"github.com/google/vdd/probe"
	"github.com/google/vdd/vddoc"
)

const googleDiscoveryFixture = `{
  "kind": "discovery#restDescription",
  "discoveryVersion": "v1",
  "rootUrl": "https://widgets.googleapis.com/",
  "servicePath": "widgets/v1/",
  "schemas": {
    "Widget": {
      "type": "object",
      "properties": {
        "id": {"type": "string"},
        "count": {"type": "integer"}
      }
    }
  },
  "resources": {
    "widgets": {
      "methods": {
        "get": {
          "id": "widgets.widgets.get",
          "path": "widgets/v1/widgets/{id}",
          "httpMethod": "GET",
          "parameters": {
            "id": {"type": "string", "location": "path", "required": true}
          },
          "response": {"$ref": "Widget"}
        }
      }
    }
  }
}`

const openAPIV3Fixture = `{
  "openapi": "3.0.0",
  "paths": {
    "/widgets/{id}": {
      "get": {
        "operationId": "getWidget",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {
            "content": {
              "application/json": {"schema": {"$ref": "#/components/schemas/Widget"}}
            }
          }
        }
      }
    }
  },
  "components": {
    "schemas": {
      "Widget": {
        "type": "object",
        "properties": {"id": {"type": "string"}}
      }
    }
  }
}`

func TestConvertGoogleDiscoveryDocument(t *testing.T) {
	doc, ok := convertGoogleDiscoveryDocument("widgets.googleapis.com", []byte(googleDiscoveryFixture))
	if !ok {
		t.Fatal("expected conversion to succeed")
	}
	official, ok := doc.Resources.Get(vddoc.ResourceOfficial)
	if !ok {
		t.Fatal("expected an official resource")
	}
	method, ok := official.Methods.Get("widgets_get")
	if !ok {
		t.Fatalf("expected widgets_get method, got %v", official.Methods.Keys())
	}
	if method.HTTPMethod != "GET" || method.Response == nil || method.Response.Ref != "Widget" {
		t.Fatalf("got %+v", method)
	}
	if !method.Parameters.Has("id") {
		t.Fatal("expected path parameter id")
	}
	if !doc.Schemas.Has("Widget") {
		t.Fatal("expected Widget schema registered")
	}
}

func TestConvertOpenAPIDocument(t *testing.T) {
	doc, ok := convertOpenAPIDocument("example.com", []byte(openAPIV3Fixture))
	if !ok {
		t.Fatal("expected conversion to succeed")
	}
	official, _ := doc.Resources.Get(vddoc.ResourceOfficial)
	method, ok := official.Methods.Get("getWidget")
	if !ok {
		t.Fatalf("expected getWidget method, got %v", official.Methods.Keys())
	}
	if method.Response == nil || method.Response.Ref != "Widget" {
		t.Fatalf("got %+v", method)
	}
	if !doc.Schemas.Has("Widget") {
		t.Fatal("expected Widget schema registered")
	}
}

func TestLooksLikeDetectors(t *testing.T) {
	if !looksLikeGoogleDiscoveryDocument([]byte(googleDiscoveryFixture)) {
		t.Fatal("expected google discovery fixture to be detected")
	}
	if !looksLikeOpenAPIDocument([]byte(openAPIV3Fixture)) {
		t.Fatal("expected openapi fixture to be detected")
	}
	if looksLikeOpenAPIDocument([]byte(googleDiscoveryFixture)) {
		t.Fatal("did not expect google discovery fixture to look like openapi")
	}
}

type fakeRelay struct {
	responses map[string]probe.Response
	calls     []string
}

func (r *fakeRelay) Fetch(ctx context.Context, url string, req probe.Request) (probe.Response, error) {
	r.calls = append(r.calls, req.Method+" "+url)
	if resp, ok := r.responses[req.Method+" "+url]; ok {
		return resp, nil
	}
	return probe.Response{OK: false}, nil
}

func TestFetchOfficialTriesWellKnownURLsInOrder(t *testing.T) {
	relay := &fakeRelay{responses: map[string]probe.Response{
		"GET https://example.com/v1/openapi.json": {OK: true, Status: 200, Body: []byte(openAPIV3Fixture)},
	}}
	client := NewClient(relay)

	doc, ok := client.FetchOfficial(context.Background(), "example.com")
	if !ok {
		t.Fatal("expected a document")
	}
	official, _ := doc.Resources.Get(vddoc.ResourceOfficial)
	if !official.Methods.Has("getWidget") {
		t.Fatal("expected converted document")
	}
	if len(relay.calls) == 0 || relay.calls[0] != "GET https://example.com/openapi.json" || relay.calls[len(relay.calls)-1] != "GET https://example.com/v1/openapi.json" {
		t.Fatalf("expected /openapi.json tried first and /v1/openapi.json last, got %v", relay.calls)
	}
}

func TestFetchOfficialReturnsFalseWhenNothingMatches(t *testing.T) {
	relay := &fakeRelay{responses: map[string]probe.Response{}}
	client := NewClient(relay)
	if _, ok := client.FetchOfficial(context.Background(), "example.com"); ok {
		t.Fatal("expected no document when every candidate fails")
	}
}

func TestCandidatesForGoogleapisHostIncludeDiscoveryRest(t *testing.T) {
	client := NewClient(&fakeRelay{})
	client.SetAPIKeyLookup(func(host string) (string, bool) { return "test-key", true })
	candidates := client.candidatesForHost("widgets.googleapis.com")

	var sawDiscoveryRest, sawAPIKeyHeader, sawKeyQueryParam bool
	for _, c := range candidates {
		if c.url == "https://widgets.googleapis.com/$discovery/rest?version=v1" {
			sawDiscoveryRest = true
		}
		if c.headers["X-Goog-Api-Key"] == "test-key" {
			sawAPIKeyHeader = true
		}
		if c.url == "https://widgets.googleapis.com/$discovery/rest?version=v1&key=test-key" {
			sawKeyQueryParam = true
		}
	}
	if !sawDiscoveryRest || !sawAPIKeyHeader || !sawKeyQueryParam {
		t.Fatalf("missing expected candidate variants: %+v", candidates)
	}
}
