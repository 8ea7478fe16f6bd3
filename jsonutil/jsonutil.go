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

// Package jsonutil holds small, dependency-free helpers for walking
// decoded JSON (map[string]interface{}/[]interface{}) values. Ported
// from gnostic's compiler/helpers.go, whose job was walking YAML/JSON
// maps while validating an OpenAPI document against a fixed key set;
// here the same walking idiom underlies the rpcerror violation scan and
// vddoc's schema inference, which have no fixed schema to validate
// against.
package jsonutil

import "sort"

// UnpackMap type-asserts in into a JSON object and returns its sorted
// keys alongside it, or ok=false if in is not an object.
func UnpackMap(in interface{}) (m map[string]interface{}, keys []string, ok bool) {
	m, ok = in.(map[string]interface{})
	if !ok {
		return nil, nil, false
	}
	keys = make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return m, keys, true
}

// String returns m[key] as a string, or "" if absent or not a string.
func String(m map[string]interface{}, key string) string {
	v, ok := m[key].(string)
	if !ok {
		return ""
	}
	return v
}

// Array returns m[key] as a []interface{}, or nil if absent or not an array.
func Array(m map[string]interface{}, key string) []interface{} {
	v, _ := m[key].([]interface{})
	return v
}
