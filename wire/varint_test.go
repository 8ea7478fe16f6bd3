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

import (
	"strconv"
	"testing"
)

func TestVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, MaxSafeInteger}
	for _, v := range cases {
		enc := EncodeVarint(nil, v)
		dec, n, ok := DecodeVarint(enc)
		if !ok {
			t.Fatalf("DecodeVarint(%d) failed", v)
		}
		if n != len(enc) {
			t.Fatalf("DecodeVarint(%d) consumed %d, want %d", v, n, len(enc))
		}
		if dec.Value != v {
			t.Fatalf("DecodeVarint(%d) = %d", v, dec.Value)
		}
		if dec.String != "" {
			t.Fatalf("value %d <= MaxSafeInteger should not set String", v)
		}
	}
}

func TestVarintAboveSafeInteger(t *testing.T) {
	v := uint64(MaxSafeInteger) + 1000
	enc := EncodeVarint(nil, v)
	dec, _, ok := DecodeVarint(enc)
	if !ok {
		t.Fatal("decode failed")
	}
	if dec.String != strconv.FormatUint(v, 10) {
		t.Fatalf("String = %q, want %q", dec.String, strconv.FormatUint(v, 10))
	}
}

func TestDecodeVarintTruncated(t *testing.T) {
	// A varint with the continuation bit set but no following byte.
	if _, _, ok := DecodeVarint([]byte{0x80}); ok {
		t.Fatal("expected truncated varint to fail")
	}
}

func TestZigZag(t *testing.T) {
	cases := map[uint64]int64{0: 0, 1: -1, 2: 1, 3: -2, 4: 2}
	for in, want := range cases {
		if got := ZigZag(in); got != want {
			t.Fatalf("ZigZag(%d) = %d, want %d", in, got, want)
		}
		if got := ZigZagEncode(want); got != in {
			t.Fatalf("ZigZagEncode(%d) = %d, want %d", want, got, in)
		}
	}
}
