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

// Package chain maintains the cross-method data-flow index (spec
// §4.6): where a value seen in one method's response reappears as an
// input to another method.
package chain

import "strings"

// Occurrence is one place a chainable value was seen in a response.
type Occurrence struct {
	MethodID  string
	FieldPath string
}

// Index is the per-tab `values -> [(methodId, fieldPath)]` structure,
// split into string and number maps per spec §4.6.
//
// Entries are append-only for the lifetime of a browser session; spec's
// Open Question on eviction was resolved in favor of no cap (see
// DESIGN.md). A follow-up LRU eviction policy would live here if one is
// ever added.
type Index struct {
	strings map[string][]Occurrence
	numbers map[string][]Occurrence
}

// New returns an empty Index.
func New() *Index {
	return &Index{strings: map[string][]Occurrence{}, numbers: map[string][]Occurrence{}}
}

// IsChainableString reports whether s qualifies as a chainable value
// (spec §4.6: length in [4,500], not a JSON literal keyword).
func IsChainableString(s string) bool {
	if len(s) < 4 || len(s) > 500 {
		return false
	}
	switch s {
	case "true", "false", "null":
		return false
	}
	return true
}

// IsChainableNumber reports whether n qualifies (spec: "a number not in
// {-1, 0, 1}").
func IsChainableNumber(n float64) bool {
	return n != -1 && n != 0 && n != 1
}

// IsMediaContentType reports whether contentType names an image/video
// body that indexing must skip.
func IsMediaContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/")
}

// recordString indexes one (methodID, fieldPath) -> value occurrence, skipping
// duplicate (method, field) pairs for the same value.
func (ix *Index) recordString(value, methodID, fieldPath string) {
	for _, occ := range ix.strings[value] {
		if occ.MethodID == methodID && occ.FieldPath == fieldPath {
			return
		}
	}
	ix.strings[value] = append(ix.strings[value], Occurrence{MethodID: methodID, FieldPath: fieldPath})
}

func (ix *Index) recordNumber(key, methodID, fieldPath string) {
	for _, occ := range ix.numbers[key] {
		if occ.MethodID == methodID && occ.FieldPath == fieldPath {
			return
		}
	}
	ix.numbers[key] = append(ix.numbers[key], Occurrence{MethodID: methodID, FieldPath: fieldPath})
}

// LookupString returns every occurrence indexed for a string value.
func (ix *Index) LookupString(value string) []Occurrence {
	return ix.strings[value]
}

// LookupNumber returns every occurrence indexed for a numeric value.
func (ix *Index) LookupNumber(key string) []Occurrence {
	return ix.numbers[key]
}

// Clear empties the index (spec §5: "cleared on explicit clear").
func (ix *Index) Clear() {
	ix.strings = map[string][]Occurrence{}
	ix.numbers = map[string][]Occurrence{}
}
