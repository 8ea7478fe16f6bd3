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

import "encoding/json"

// IsJSPB matches spec §4.2: either the content-type names json+protobuf,
// or the body is a JSON value whose top level is an array.
func IsJSPB(contentType string, body []byte) bool {
	if containsFold(contentType, "json+protobuf") {
		return true
	}
	b := trimLeadingSpace(body)
	return len(b) > 0 && b[0] == '['
}

// ParseJSPB unmarshals body as a JSON array. ok is false if it is not
// valid JSON or not an array at the top level.
func ParseJSPB(body []byte) (arr []interface{}, ok bool) {
	if err := json.Unmarshal(body, &arr); err != nil {
		return nil, false
	}
	return arr, true
}
