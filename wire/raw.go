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
	"google.golang.org/protobuf/encoding/protowire"
)

// MaxFieldNumber is the upper bound protobuf reserves for user field
// numbers (2^29 - 1); anything outside [1, MaxFieldNumber] signals a
// structural decode failure.
const MaxFieldNumber = 1<<29 - 1

// RawField is one {field, wire, data} record produced by DecodeRaw.
// Data holds the varint value (Wire 0), an 8-byte buffer (Wire 1), a
// length-delimited buffer (Wire 2), or a 4-byte buffer (Wire 5).
type RawField struct {
	Field int32
	Wire  WireType
	Data  []byte
	// VarintValue caches the decoded value for Wire 0 fields, so
	// callers such as DecodeTree need not parse Data a second time.
	VarintValue uint64
}

// DecodeRaw produces the ordered sequence of {field, wire, data} records
// found in b. It never recurses into LEN payloads — that heuristic lives
// in DecodeTree. ok is false if the byte sequence is structurally
// invalid: a field number outside [1, MaxFieldNumber], an unsupported
// wire type, or truncated data.
func DecodeRaw(b []byte) (fields []RawField, ok bool) {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, false
		}
		if num < 1 || num > MaxFieldNumber {
			return nil, false
		}
		b = b[n:]

		var data []byte
		var varintValue uint64
		switch WireType(typ) {
		case WireVarint:
			v, vn := protowire.ConsumeVarint(b)
			if vn < 0 {
				return nil, false
			}
			varintValue = v
			data = b[:vn]
			b = b[vn:]
		case Wire64Bit:
			if len(b) < 8 {
				return nil, false
			}
			data = b[:8]
			b = b[8:]
		case WireLen:
			payload, vn := protowire.ConsumeBytes(b)
			if vn < 0 {
				return nil, false
			}
			data = payload
			b = b[vn:]
		case Wire32Bit:
			if len(b) < 4 {
				return nil, false
			}
			data = b[:4]
			b = b[4:]
		default:
			return nil, false
		}
		fields = append(fields, RawField{
			Field:       int32(num),
			Wire:        WireType(typ),
			Data:        data,
			VarintValue: varintValue,
		})
	}
	return fields, true
}
