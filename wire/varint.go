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

// Package wire implements the protobuf wire format primitives and the
// schema-free tree decoders (binary protobuf and JSPB) used throughout
// the rest of the engine.
package wire

import (
	"strconv"

	"google.golang.org/protobuf/encoding/protowire"
)

// MaxSafeInteger is the largest integer value a varint can carry while
// still round-tripping losslessly through a float64 (2^53 - 1).
const MaxSafeInteger = 1<<53 - 1

// WireType mirrors the four protobuf wire types used on the wire.
type WireType int

const (
	WireVarint WireType = 0
	Wire64Bit  WireType = 1
	WireLen    WireType = 2
	Wire32Bit  WireType = 5
)

// Varint is the decoded value of a VARINT field. Values that exceed
// MaxSafeInteger are kept in String form so precision is never lost
// silently when re-serialised to JSON.
type Varint struct {
	Value  uint64
	String string // non-empty only when Value > MaxSafeInteger
}

// DecodeVarint reads a single varint from b, returning the decoded value
// and the number of bytes consumed. ok is false on a truncated or
// malformed varint; callers must treat that as a structural decode
// failure local to this field, never propagating past the component
// boundary (spec §7, DecodeFailure).
func DecodeVarint(b []byte) (v Varint, n int, ok bool) {
	raw, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return Varint{}, 0, false
	}
	v = Varint{Value: raw}
	if raw > MaxSafeInteger {
		v.String = strconv.FormatUint(raw, 10)
	}
	return v, n, true
}

// EncodeVarint appends the wire encoding of v to dst.
func EncodeVarint(dst []byte, v uint64) []byte {
	return protowire.AppendVarint(dst, v)
}

// ZigZag returns the ZigZag-decoded signed view of an unsigned varint
// value, computed with integer arithmetic only (never bit operators) so
// that values above 2^32 are never truncated the way a naive `^(v >> 1)`
// would truncate on a 32-bit host.
func ZigZag(v uint64) int64 {
	if v%2 == 0 {
		return int64(v / 2)
	}
	return -int64((v+1)/2) // #nosec G115 -- mirrors spec's (v+1)/2 formula
}

// ZigZagEncode is the inverse of ZigZag.
func ZigZagEncode(v int64) uint64 {
	if v >= 0 {
		return uint64(v) * 2
	}
	return uint64(-v)*2 - 1
}

// EncodeTag appends a (fieldNumber, wireType) tag to dst.
func EncodeTag(dst []byte, field int32, wt WireType) []byte {
	return protowire.AppendTag(dst, protowire.Number(field), protowire.Type(wt))
}
