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
	"testing"
)

const rootBadRequestBody = `{
	"error": {
		"code": 400,
		"message": "Invalid request",
		"details": [
			{
				"@type": "type.googleapis.com/google.rpc.BadRequest",
				"fieldViolations": [
					{"field": "context", "description": "Invalid value at 'context' (TYPE_STRING), x2"},
					{"field": "browse_id", "description": "Invalid value at 'browse_id' (TYPE_STRING), x5"}
				]
			}
		]
	}
}`

type fakeRelay struct {
	bodies map[string]string // content-type -> response body
}

func (f *fakeRelay) Fetch(ctx context.Context, url string, req Request) (Response, error) {
	body, ok := f.bodies[req.Headers["Content-Type"]]
	if !ok {
		return Response{OK: false}, nil
	}
	return Response{
		OK:      true,
		Status:  400,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    []byte(body),
	}, nil
}

func TestRunRootLevelSuccess(t *testing.T) {
	relay := &fakeRelay{bodies: map[string]string{
		"application/json+protobuf": rootBadRequestBody,
	}}
	engine := NewEngine(relay)
	result, ok := engine.Run(context.Background(), "https://example.com/v1/api", nil)
	if !ok {
		t.Fatal("expected success")
	}
	if len(result.Fields) != 2 {
		t.Fatalf("got %d fields: %+v", len(result.Fields), result.Fields)
	}
	numbers := map[int]bool{}
	for _, f := range result.Fields {
		numbers[f.Number] = true
	}
	if !numbers[2] || !numbers[5] {
		t.Fatalf("missing expected field numbers: %+v", result.Fields)
	}
}

func TestRunAllContentTypesRejected(t *testing.T) {
	relay := &fakeRelay{bodies: map[string]string{}}
	engine := NewEngine(relay)
	_, ok := engine.Run(context.Background(), "https://example.com/v1/api", nil)
	if ok {
		t.Fatal("expected rejection")
	}
}

func TestForceAltJSON(t *testing.T) {
	if got := forceAltJSON("https://x.com/v1/a"); got != "https://x.com/v1/a?alt=json" {
		t.Fatalf("got %q", got)
	}
	if got := forceAltJSON("https://x.com/v1/a?foo=bar"); got != "https://x.com/v1/a?foo=bar&alt=json" {
		t.Fatalf("got %q", got)
	}
	if got := forceAltJSON("https://x.com/v1/a?alt=media"); got != "https://x.com/v1/a?alt=json" {
		t.Fatalf("got %q", got)
	}
}
