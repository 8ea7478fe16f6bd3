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

package chain

import "strconv"

// IndexResponse walks a decoded JSON response body recursively and
// records every chainable value under methodID (spec §4.6's
// "Indexing"). A body whose contentType names image/video media is not
// walked.
func (ix *Index) IndexResponse(methodID, contentType string, decoded interface{}) {
	if IsMediaContentType(contentType) {
		return
	}
	ix.walk(methodID, "", decoded)
}

// FlattenInputs walks a decoded JSON value (e.g. a request body) and
// returns every string/number leaf as an Input located at location,
// named by its dotted path, for DetectLinks to check against the index
// (spec §4.6's "Given a new request's flattened query params and body
// values...").
func FlattenInputs(location string, value interface{}) []Input {
	var inputs []Input
	flattenInto(&inputs, location, "", value)
	return inputs
}

func flattenInto(inputs *[]Input, location, path string, value interface{}) {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, child := range v {
			flattenInto(inputs, location, joinPath(path, key), child)
		}
	case []interface{}:
		for i, child := range v {
			flattenInto(inputs, location, joinPath(path, strconv.Itoa(i)), child)
		}
	case string:
		if path != "" {
			*inputs = append(*inputs, Input{Name: path, Location: location, Value: v})
		}
	case float64:
		if path != "" {
			*inputs = append(*inputs, Input{Name: path, Location: location, Value: v})
		}
	}
}

func (ix *Index) walk(methodID, path string, value interface{}) {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, child := range v {
			ix.walk(methodID, joinPath(path, key), child)
		}
	case []interface{}:
		for i, child := range v {
			ix.walk(methodID, joinPath(path, strconv.Itoa(i)), child)
		}
	case string:
		if path != "" && IsChainableString(v) {
			ix.recordString(v, methodID, path)
		}
	case float64:
		if path != "" && IsChainableNumber(v) {
			ix.recordNumber(formatNumberKey(v), methodID, path)
		}
	}
}

func joinPath(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + "." + segment
}

func formatNumberKey(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}
