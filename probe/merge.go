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
	"github.com/google/vdd/rpcerror"
	"github.com/google/vdd/scalar"
)

// mergeFields implements spec §4.4's "Merging at root": fields are
// deduplicated by field number when known; on a duplicate, known type
// wins over unknown, messageType is filled in if unset, and
// required/repeated labels are upgraded (never downgraded) from true.
func mergeFields(existing []rpcerror.Field, incoming []rpcerror.Field) []rpcerror.Field {
	byNumber := map[int]int{} // field number -> index into existing
	for i, f := range existing {
		if f.HasNumber {
			byNumber[f.Number] = i
		}
	}
	for _, f := range incoming {
		if !f.HasNumber {
			existing = append(existing, f)
			continue
		}
		idx, ok := byNumber[f.Number]
		if !ok {
			byNumber[f.Number] = len(existing)
			existing = append(existing, f)
			continue
		}
		existing[idx] = mergeField(existing[idx], f)
	}
	return existing
}

func mergeField(a, b rpcerror.Field) rpcerror.Field {
	if a.Type == scalar.Unknown {
		a.Type = b.Type
	}
	if a.MessageType == "" {
		a.MessageType = b.MessageType
	}
	if b.Required {
		a.Required = true
	}
	if b.Repeated {
		a.Repeated = true
	}
	if b.Enum {
		a.Enum = true
	}
	if len(a.Children) == 0 {
		a.Children = b.Children
	}
	return a
}
