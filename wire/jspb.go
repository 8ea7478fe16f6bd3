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

// JSPBNode is a field of a decoded JSPB (JSON protobuf) positional
// array. Unlike Node, JSPB values are already JSON values; JSPBNode just
// annotates them with the field number implied by their array index.
type JSPBNode struct {
	Field int32
	// Exactly one of the following is populated.
	Scalar   interface{}   // a bare JSON primitive (string, number, bool)
	Repeated []interface{} // an array of only primitives
	Message  []*JSPBNode   // a nested message, recursively converted
	Object   map[string]interface{}
}

// DecodeJSPB converts a JSON array (already unmarshalled into
// []interface{}) into a JSPB tree per spec §4.1: index i maps to field
// number i+1; null/undefined entries are skipped; an array element
// containing any sub-array is a nested message; an array of only
// primitives is a repeated scalar; a plain object is carried as-is.
func DecodeJSPB(arr []interface{}) []*JSPBNode {
	var nodes []*JSPBNode
	for i, v := range arr {
		if v == nil {
			continue
		}
		field := int32(i + 1)
		switch val := v.(type) {
		case []interface{}:
			if containsArray(val) {
				nodes = append(nodes, &JSPBNode{Field: field, Message: DecodeJSPB(val)})
			} else {
				nodes = append(nodes, &JSPBNode{Field: field, Repeated: stripNulls(val)})
			}
		case map[string]interface{}:
			nodes = append(nodes, &JSPBNode{Field: field, Object: val})
		default:
			nodes = append(nodes, &JSPBNode{Field: field, Scalar: val})
		}
	}
	return nodes
}

func containsArray(arr []interface{}) bool {
	for _, v := range arr {
		if _, ok := v.([]interface{}); ok {
			return true
		}
	}
	return false
}

func stripNulls(arr []interface{}) []interface{} {
	out := make([]interface{}, 0, len(arr))
	for _, v := range arr {
		if v == nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// EncodeJSPB is the inverse of DecodeJSPB: it rebuilds the positional
// JSON array from a tree, padding skipped indices with nil so that
// re-encoding a decoded tree reproduces the original array (spec §8's
// JSPB round-trip property).
func EncodeJSPB(nodes []*JSPBNode) []interface{} {
	maxField := int32(0)
	for _, n := range nodes {
		if n.Field > maxField {
			maxField = n.Field
		}
	}
	out := make([]interface{}, maxField)
	for _, n := range nodes {
		idx := n.Field - 1
		switch {
		case n.Message != nil:
			out[idx] = EncodeJSPB(n.Message)
		case n.Repeated != nil:
			out[idx] = n.Repeated
		case n.Object != nil:
			out[idx] = n.Object
		default:
			out[idx] = n.Scalar
		}
	}
	return out
}
