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

package rpcerror

import (
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/protobuf/proto"
)

// decodeBadRequest decodes a binary google.rpc.BadRequest detail into
// the same []interface{} of map[string]any shape the JSON decoder would
// hand back for `details[].fieldViolations`, so both passes in
// violations.go walk one representation regardless of wire encoding.
func decodeBadRequest(value []byte) ([]interface{}, bool) {
	var br errdetails.BadRequest
	if err := proto.Unmarshal(value, &br); err != nil {
		return nil, false
	}
	out := make([]interface{}, 0, len(br.GetFieldViolations()))
	for _, fv := range br.GetFieldViolations() {
		out = append(out, map[string]any{
			"field":       fv.GetField(),
			"description": fv.GetDescription(),
		})
	}
	return out, true
}

// decodeErrorInfo decodes a binary google.rpc.ErrorInfo detail.
func decodeErrorInfo(value []byte) (reason, domain string, ok bool) {
	var ei errdetails.ErrorInfo
	if err := proto.Unmarshal(value, &ei); err != nil {
		return "", "", false
	}
	return ei.GetReason(), ei.GetDomain(), true
}
