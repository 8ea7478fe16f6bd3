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

package orchestrator

import (
	"context"
	"testing"
	"time"

	"google.golang.org/genproto/googleapis/api/httpbody"

	"github.com/google/vdd/probe"
	"github.com/google/vdd/vddoc"
)

type noopRelay struct{}

func (noopRelay) Fetch(ctx context.Context, url string, req probe.Request) (probe.Response, error) {
	return probe.Response{OK: false}, nil
}

func TestHandleRequestLearnsMethodAndParams(t *testing.T) {
	o := New(noopRelay{}, nil, nil)
	o.HandleRequest(context.Background(), TrafficRequest{
		TabID:     "t1",
		RequestID: "r1",
		URL:       "https://example.com/api/widgets/1?filter=red",
		Method:    "GET",
		Body:      &httpbody.HttpBody{ContentType: "application/json"},
	})

	doc := o.DocumentFor("example.com")
	if doc == nil {
		t.Fatal("expected a document to exist")
	}
	method, _, ok := vddoc.FindMethod(doc, "widgets_id")
	if !ok {
		t.Fatal("expected widgets_id method learned")
	}
	if !method.Parameters.Has("filter") {
		t.Fatal("expected filter query param learned")
	}
}

func TestHandleRequestThenResponseLearnsResponseSchema(t *testing.T) {
	o := New(noopRelay{}, nil, NewMemoryStore())
	req := TrafficRequest{
		TabID:     "t1",
		RequestID: "r1",
		URL:       "https://example.com/widgets",
		Method:    "GET",
		Body:      &httpbody.HttpBody{ContentType: "application/json"},
	}
	o.HandleRequest(context.Background(), req)
	o.HandleResponse(TrafficResponse{
		RequestID: "r1",
		Status:    200,
		Body:      &httpbody.HttpBody{ContentType: "application/json", Data: []byte(`{"name":"abc"}`)},
	})

	doc := o.DocumentFor("example.com")
	if !doc.Schemas.Has("WidgetsResponse") {
		t.Fatalf("expected WidgetsResponse schema, got schemas: %v", doc.Schemas.Keys())
	}
}

func TestHandleResponseWithUnknownRequestIDIsNoop(t *testing.T) {
	o := New(noopRelay{}, nil, nil)
	o.HandleResponse(TrafficResponse{RequestID: "missing", Status: 200})
}

func TestMemoryStorePersistsVDDOnLearn(t *testing.T) {
	store := NewMemoryStore()
	o := New(noopRelay{}, nil, store)
	o.HandleRequest(context.Background(), TrafficRequest{
		TabID:     "t1",
		RequestID: "r1",
		URL:       "https://example.com/widgets",
		Method:    "GET",
		Body:      &httpbody.HttpBody{ContentType: "application/json"},
	})

	if _, ok := store.Get("vdd:example.com"); !ok {
		t.Fatal("expected document persisted to store")
	}
}

func TestHandleRequestDetectsChainLinkFromPriorResponseBody(t *testing.T) {
	o := New(noopRelay{}, nil, nil)
	o.HandleRequest(context.Background(), TrafficRequest{
		TabID:     "t1",
		RequestID: "r1",
		URL:       "https://example.com/browse",
		Method:    "GET",
		Body:      &httpbody.HttpBody{ContentType: "application/json"},
	})
	o.HandleResponse(TrafficResponse{
		RequestID: "r1",
		Status:    200,
		Body: &httpbody.HttpBody{
			ContentType: "application/json",
			Data:        []byte(`{"videoId":"dQw4w9WgXcQ"}`),
		},
	})

	o.HandleRequest(context.Background(), TrafficRequest{
		TabID:     "t1",
		RequestID: "r2",
		URL:       "https://example.com/next",
		Method:    "POST",
		Body: &httpbody.HttpBody{
			ContentType: "application/json",
			Data:        []byte(`{"videoId":"dQw4w9WgXcQ"}`),
		},
	})

	doc := o.DocumentFor("example.com")
	next, _, ok := vddoc.FindMethod(doc, "next")
	if !ok {
		t.Fatal("expected next method learned")
	}
	links := next.Incoming.All()
	if len(links) != 1 || links[0].ParamLocation != "body" || links[0].ParamName != "videoId" {
		t.Fatalf("got %+v", links)
	}
}

type fakeFetcher struct {
	doc *vddoc.Document
	ok  bool
}

func (f fakeFetcher) FetchOfficial(ctx context.Context, host string) (*vddoc.Document, bool) {
	return f.doc, f.ok
}

func TestRunDiscoveryMarksNotFoundOnFailure(t *testing.T) {
	o := New(noopRelay{}, fakeFetcher{ok: false}, nil)
	o.runDiscovery(context.Background(), "example.com")

	o.mu.Lock()
	attempt := o.discoveryAttempts["example.com"]
	o.mu.Unlock()
	if attempt.status != "not_found" {
		t.Fatalf("got %+v", attempt)
	}
}

func TestShouldAttemptDiscoveryRespectsCooldown(t *testing.T) {
	o := New(noopRelay{}, fakeFetcher{}, nil)
	o.discoveryAttempts["example.com"] = discoveryAttempt{status: "not_found", at: time.Now()}
	if o.shouldAttemptDiscovery("example.com") {
		t.Fatal("expected cooldown to suppress immediate retry")
	}
	o.discoveryAttempts["example.com"] = discoveryAttempt{status: "not_found", at: time.Now().Add(-10 * time.Minute)}
	if !o.shouldAttemptDiscovery("example.com") {
		t.Fatal("expected retry after cooldown elapses")
	}
}

func TestRunDiscoveryPreservesVirtualParts(t *testing.T) {
	o := New(noopRelay{}, nil, nil)
	o.HandleRequest(context.Background(), TrafficRequest{
		TabID:     "t1",
		RequestID: "r1",
		URL:       "https://example.com/widgets",
		Method:    "GET",
		Body:      &httpbody.HttpBody{ContentType: "application/json"},
	})
	oldDoc := o.DocumentFor("example.com")
	learned, _ := oldDoc.Resources.Get(vddoc.ResourceLearned)
	if learned.Methods.Len() == 0 {
		t.Fatal("expected a learned method before discovery")
	}

	official := vddoc.NewDocument("https://example.com")
	official.Resources.Set(vddoc.ResourceOfficial, vddoc.NewResource())
	o.fetcher = fakeFetcher{doc: official, ok: true}
	o.runDiscovery(context.Background(), "example.com")

	newDoc := o.DocumentFor("example.com")
	newLearned, ok := newDoc.Resources.Get(vddoc.ResourceLearned)
	if !ok || newLearned.Methods.Len() == 0 {
		t.Fatal("expected learned resource preserved across discovery refresh")
	}
}
