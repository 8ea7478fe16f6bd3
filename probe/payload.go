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
	"encoding/json"
	"strconv"

	"github.com/google/vdd/wire"
)

// FieldCount is the width of the root-level string/int probes
// (spec §4.4: fields 1..300).
const FieldCount = 300

// JSONStringProbe builds the JSPB-positional string probe payload:
// ["x1", "x2", ..., "xN"].
func JSONStringProbe(n int) []interface{} {
	out := make([]interface{}, n)
	for i := 1; i <= n; i++ {
		out[i-1] = "x" + strconv.Itoa(i)
	}
	return out
}

// JSONIntProbe builds [1, 2, ..., N].
func JSONIntProbe(n int) []interface{} {
	out := make([]interface{}, n)
	for i := 1; i <= n; i++ {
		out[i-1] = i
	}
	return out
}

// EncodeJSON marshals a probe payload (possibly wrapped by WrapJSON) to
// its wire JSON body.
func EncodeJSON(payload interface{}) []byte {
	b, _ := json.Marshal(payload)
	return b
}

// WrapJSON wraps base at nesting position indices[0] -> indices[1] ->
// ... (spec §4.4's "wrap the base probe payload in arrays ... so the
// base payload appears at nesting position i1 -> i2 -> ... -> ik").
// Each level is a 1-based positional array with every other slot nil.
func WrapJSON(base interface{}, indices []int) interface{} {
	result := base
	for i := len(indices) - 1; i >= 0; i-- {
		idx := indices[i]
		arr := make([]interface{}, idx)
		arr[idx-1] = result
		result = arr
	}
	return result
}

// ProtobufStringProbe encodes n string fields i -> "xi".
func ProtobufStringProbe(n int) []byte {
	var out []byte
	for i := 1; i <= n; i++ {
		out = append(out, wire.EncodeString(int32(i), "x"+strconv.Itoa(i))...)
	}
	return out
}

// ProtobufIntProbe encodes n varint fields i -> i.
func ProtobufIntProbe(n int) []byte {
	var out []byte
	for i := 1; i <= n; i++ {
		out = append(out, wire.EncodeVarintField(int32(i), uint64(i))...)
	}
	return out
}

// WrapProtobuf is WrapJSON's protobuf analogue: it embeds base as a
// submessage at field indices[len-1], itself embedded at
// indices[len-2], and so on out to indices[0].
func WrapProtobuf(base []byte, indices []int) []byte {
	result := base
	for i := len(indices) - 1; i >= 0; i-- {
		result = wire.EncodeMessage(int32(indices[i]), result)
	}
	return result
}
