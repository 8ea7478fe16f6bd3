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

// EncodePackedVarints encodes values as a packed repeated varint field,
// the inverse of tryPackedVarints: tag(field, LEN) + len(payload) + the
// concatenated varints.
func EncodePackedVarints(field int32, values []uint64) []byte {
	var payload []byte
	for _, v := range values {
		payload = EncodeVarint(payload, v)
	}
	out := EncodeTag(nil, field, WireLen)
	out = EncodeVarint(out, uint64(len(payload)))
	return append(out, payload...)
}

// EncodeString encodes a single LEN field carrying a UTF-8 string.
func EncodeString(field int32, s string) []byte {
	out := EncodeTag(nil, field, WireLen)
	out = EncodeVarint(out, uint64(len(s)))
	return append(out, s...)
}

// EncodeVarintField encodes a single VARINT field.
func EncodeVarintField(field int32, v uint64) []byte {
	out := EncodeTag(nil, field, WireVarint)
	return EncodeVarint(out, v)
}

// EncodeMessage encodes a single embedded-message LEN field.
func EncodeMessage(field int32, payload []byte) []byte {
	out := EncodeTag(nil, field, WireLen)
	out = EncodeVarint(out, uint64(len(payload)))
	return append(out, payload...)
}
