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

package wire

import "testing"

// TestPackedRepeatedEncode is spec §8 scenario 5: field #4, int32,
// value [1, 2, 300] encodes to tag(4, LEN) || len(4) || 01 02 AC 02.
func TestPackedRepeatedEncode(t *testing.T) {
	got := EncodePackedVarints(4, []uint64{1, 2, 300})
	want := []byte{0x22, 0x04, 0x01, 0x02, 0xAC, 0x02}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (% x)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x (got % x)", i, got[i], want[i], got)
		}
	}
}

func TestDecodeTreeString(t *testing.T) {
	// "café" ends in a multi-byte UTF-8 rune whose last byte has its
	// high bit set, so it can never terminate a varint sequence at the
	// data boundary: rule 2 (packed varints) fails structurally and
	// rule 3 (UTF-8 string) wins, exactly as spec §4.1 orders them.
	b := EncodeString(1, "café")
	nodes, ok := DecodeTree(b, 0)
	if !ok || len(nodes) != 1 {
		t.Fatalf("decode failed: %v %v", nodes, ok)
	}
	if nodes[0].Kind != KindString || nodes[0].Str != "café" {
		t.Fatalf("got %+v", nodes[0])
	}
}

func TestDecodeTreePackedAtRoot(t *testing.T) {
	b := EncodePackedVarints(4, []uint64{1, 2, 300})
	nodes, ok := DecodeTree(b, 0)
	if !ok || len(nodes) != 1 {
		t.Fatalf("decode failed: %v %v", nodes, ok)
	}
	n := nodes[0]
	if n.Kind != KindPackedVarint || len(n.Packed) != 3 {
		t.Fatalf("got %+v", n)
	}
	if n.Packed[2].Value != 300 {
		t.Fatalf("packed[2] = %d, want 300", n.Packed[2].Value)
	}
}

func TestDecodeTreeEmbeddedMessageNeedsDepth(t *testing.T) {
	// At depth 0 the embedded-message heuristic is never tried (spec
	// §4.1 rule 1 only applies "when depth > 0"); this just asserts
	// decoding still succeeds and falls through to one of the other
	// three interpretations rather than erroring.
	inner := EncodeString(1, "child")
	outer := EncodeMessage(2, inner)
	nodes, ok := DecodeTree(outer, 0)
	if !ok || len(nodes) != 1 {
		t.Fatalf("decode failed: %v %v", nodes, ok)
	}
	if nodes[0].Kind == KindMessage {
		t.Fatalf("rule 1 should not apply at depth 0, got message")
	}
}

func TestDecodeTreeNestedMessage(t *testing.T) {
	inner := EncodeString(1, "child")
	wrapped := EncodeMessage(1, EncodeMessage(2, inner))
	nodes, ok := DecodeTree(wrapped, 1) // depth=1 so the nested LEN may resolve as a message
	if !ok || len(nodes) != 1 {
		t.Fatalf("decode failed: %v %v", nodes, ok)
	}
	if nodes[0].Kind != KindMessage {
		t.Fatalf("want message, got %v", nodes[0].Kind)
	}
	child := nodes[0].Message
	if len(child) != 1 || child[0].Field != 2 {
		t.Fatalf("got %+v", child)
	}
}

// TestDecodeTreeJSPBThreeElement is spec §8 scenario 3: input array
// [null, "hello", [1,2,3], [["a","b"]]].
func TestDecodeTreeJSPBThreeElement(t *testing.T) {
	arr := []interface{}{
		nil,
		"hello",
		[]interface{}{float64(1), float64(2), float64(3)},
		[]interface{}{[]interface{}{"a", "b"}},
	}
	nodes := DecodeJSPB(arr)
	if len(nodes) != 3 {
		t.Fatalf("want 3 nodes (null skipped), got %d: %+v", len(nodes), nodes)
	}
	if nodes[0].Field != 2 || nodes[0].Scalar != "hello" {
		t.Fatalf("field 2 = %+v", nodes[0])
	}
	if nodes[1].Field != 3 || len(nodes[1].Repeated) != 3 {
		t.Fatalf("field 3 = %+v", nodes[1])
	}
	if nodes[2].Field != 4 || len(nodes[2].Message) != 1 {
		t.Fatalf("field 4 = %+v", nodes[2])
	}
	child := nodes[2].Message[0]
	if child.Field != 1 || len(child.Repeated) != 2 {
		t.Fatalf("field 4.1 = %+v", child)
	}
}

func TestJSPBEncodeRoundTrip(t *testing.T) {
	arr := []interface{}{
		nil,
		"hello",
		[]interface{}{float64(1), float64(2), float64(3)},
		[]interface{}{[]interface{}{"a", "b"}},
	}
	nodes := DecodeJSPB(arr)
	got := EncodeJSPB(nodes)
	if len(got) != len(arr) {
		t.Fatalf("len = %d, want %d", len(got), len(arr))
	}
	if got[1] != "hello" {
		t.Fatalf("got[1] = %v", got[1])
	}
}
