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

package format

import (
	"bytes"
	"strconv"
	"testing"
)

func itoa(n int) string { return strconv.Itoa(n) }

func TestGRPCWebFrameRoundTrip(t *testing.T) {
	frames := []Frame{
		{Payload: []byte("hello protobuf bytes")},
		{Trailer: true, Payload: []byte("grpc-status: 0\r\n")},
	}
	encoded := EncodeFrames(frames, false)
	decoded, ok := ParseFrames(encoded, false)
	if !ok {
		t.Fatal("parse failed")
	}
	if len(decoded) != len(frames) {
		t.Fatalf("got %d frames, want %d", len(decoded), len(frames))
	}
	for i := range frames {
		if decoded[i].Trailer != frames[i].Trailer {
			t.Fatalf("frame %d trailer mismatch", i)
		}
		if !bytes.Equal(decoded[i].Payload, frames[i].Payload) {
			t.Fatalf("frame %d payload mismatch: %q vs %q", i, decoded[i].Payload, frames[i].Payload)
		}
	}
}

func TestGRPCWebFrameTruncated(t *testing.T) {
	if _, ok := ParseFrames([]byte{0x00, 0x00, 0x00, 0x00, 0x05, 'h', 'i'}, false); ok {
		t.Fatal("expected truncated frame to fail")
	}
}

func TestBatchExecuteRequestRoundTrip(t *testing.T) {
	calls := []RPCCall{
		{RPCID: "abc123", InnerJSON: `[1,"x"]`},
		{RPCID: "def456", InnerJSON: `[2,"y"]`},
	}
	body := []byte(EncodeRequest(calls))
	got, ok := ParseRequest(body)
	if !ok {
		t.Fatal("parse failed")
	}
	if len(got) != len(calls) {
		t.Fatalf("got %d calls, want %d", len(got), len(calls))
	}
	for i := range calls {
		if got[i] != calls[i] {
			t.Fatalf("call %d = %+v, want %+v", i, got[i], calls[i])
		}
	}
}

func TestBatchExecuteResponseParse(t *testing.T) {
	chunk := `[["wrb.fr","abc123","[1,2]",null]]`
	body := []byte(XSSIPrefix + itoa(len(chunk)) + "\n" + chunk + "\n")
	entries, ok := ParseResponse(body)
	if !ok {
		t.Fatalf("parse failed")
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].RPCID != "abc123" || !entries[0].HasInner || entries[0].InnerJSON != "[1,2]" {
		t.Fatalf("got %+v", entries[0])
	}
}

func TestAsyncChunkedClassification(t *testing.T) {
	jspbChunk := `[1,"x"]`
	htmlChunk := `<div>hi</div>`
	body := XSSIPrefix +
		toHexLen(len(jspbChunk)) + ";" + jspbChunk +
		toHexLen(len(htmlChunk)) + ";" + htmlChunk
	chunks, ok := ParseChunks([]byte(body))
	if !ok {
		t.Fatal("parse failed")
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	if chunks[0].Kind != ChunkJSPB {
		t.Fatalf("chunk 0 kind = %v", chunks[0].Kind)
	}
	if chunks[1].Kind != ChunkHTML {
		t.Fatalf("chunk 1 kind = %v", chunks[1].Kind)
	}
}

func toHexLen(n int) string {
	const hexDigits = "0123456789abcdef"
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{hexDigits[n%16]}, b...)
		n /= 16
	}
	return string(b)
}

func TestSSEParse(t *testing.T) {
	body := "event: update\ndata: line1\ndata: line2\nid: 7\n\n: this is a comment\n\n"
	events, ok := ParseSSE([]byte(body))
	if !ok {
		t.Fatal("parse failed")
	}
	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}
	if events[0].Data != "line1\nline2" || events[0].Event != "update" || events[0].ID != "7" {
		t.Fatalf("got %+v", events[0])
	}
}

func TestNDJSONParse(t *testing.T) {
	body := "{\"a\":1}\n{\"b\":2}\n"
	if !IsNDJSON("application/x-ndjson", []byte(body)) {
		t.Fatal("expected IsNDJSON true")
	}
	values, ok := ParseNDJSON([]byte(body))
	if !ok || len(values) != 2 {
		t.Fatalf("got %v %v", values, ok)
	}
}

func TestGraphQLParse(t *testing.T) {
	body := `{"query":"query Foo { bar }","variables":{"id":1}}`
	env, ok := ParseGraphQL([]byte(body))
	if !ok {
		t.Fatal("parse failed")
	}
	if env.Query != "query Foo { bar }" {
		t.Fatalf("got %+v", env)
	}
}

func TestClassifyOrder(t *testing.T) {
	if k := Classify("application/grpc-web+proto", "", []byte{0, 0, 0, 0, 0}); k != KindGRPCWeb {
		t.Fatalf("got %v", k)
	}
	if k := Classify("application/json", "", []byte(`{"a":1}`)); k != KindJSON {
		t.Fatalf("got %v", k)
	}
	if k := Classify("", "", []byte(`[1,2,3]`)); k != KindJSPB {
		t.Fatalf("bare JSON array should classify as jspb, got %v", k)
	}
}
