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
	"regexp"
	"strconv"
	"strings"

	"github.com/google/vdd/jsonutil"
	"github.com/google/vdd/scalar"
)

// Field is one discovered field, as produced by a BadRequest violation
// or a split error-message line (spec §4.3).
type Field struct {
	Path        string // dotted path, as reported by the server
	Name        string // last path segment
	Number      int    // 0 if unknown
	HasNumber   bool
	Type        scalar.Type
	MessageType string // set when Type names a message (google.protobuf.Any special-cased)
	Required    bool
	Repeated    bool
	Enum        bool
	Children    []Field // synthetic children, e.g. Any's type_url/data
}

// Metadata carries the service/method hint an ErrorInfo detail exposes.
type Metadata struct {
	Service string
	Method  string
}

// Result is rpcerror.Parse's return value.
type Result struct {
	Fields   []Field
	Metadata Metadata
}

// missingFieldRe matches "Missing required field <name> at '<parent>'";
// the parent group is optional since the field may be at the root.
var missingFieldRe = regexp.MustCompile(`^Missing required field (\S+)(?: at '([^']*)')?`)

// invalidValueRe implements spec §4.3's three-group pattern.
var invalidValueRe = regexp.MustCompile(`^Invalid value at '([^']+)' \(([^)]+)\), (?:Base64 decoding failed for )?"?x?(\d+)"?`)

// enumIndicators are the two known substrings spec §4.3 says mark an
// enum discovered via a list-into-non-message-field violation.
var enumIndicators = []string{
	"Cannot convert a list to a message",
	"expected a value for enum field",
}

const anyTypeFullName = "google.protobuf.Any"

// Parse decodes a validation-error response body into a Result. bodyIsBinary
// tells Parse whether to decode body as a binary google.rpc.Status
// message or as JSON; callers typically know this from the response's
// Content-Type.
func Parse(body []byte, bodyIsBinary bool) (Result, bool) {
	var details []detail
	var message string
	var ok bool
	if bodyIsBinary {
		details, message, ok = decodeBinary(body)
	} else {
		details, message, ok = decodeJSON(body)
	}
	if !ok {
		return Result{}, false
	}
	return parseDetails(details, message)
}

func parseDetails(details []detail, message string) (Result, bool) {
	var violationDescs []violationDesc
	var result Result

	for _, d := range details {
		typeURL := jsonutil.String(d, "@type")
		switch {
		case strings.Contains(typeURL, "BadRequest"):
			for _, raw := range jsonutil.Array(d, "fieldViolations") {
				fv, _, ok := jsonutil.UnpackMap(raw)
				if !ok {
					continue
				}
				violationDescs = append(violationDescs, violationDesc{
					field:       jsonutil.String(fv, "field"),
					description: jsonutil.String(fv, "description"),
				})
			}
		case strings.Contains(typeURL, "ErrorInfo"):
			result.Metadata.Service = stringField(d, "service", "metadata")
			result.Metadata.Method = stringField(d, "method", "metadata")
			if reason, ok := d["reason"].(string); ok && result.Metadata.Service == "" {
				_ = reason // ErrorInfo.reason/domain carry no service/method by themselves
			}
		}
	}

	for _, line := range strings.Split(message, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Invalid value at ") || strings.HasPrefix(line, "Missing required field ") {
			violationDescs = append(violationDescs, violationDesc{description: line})
		}
	}

	if len(violationDescs) == 0 {
		return result, len(details) > 0
	}

	// Pass 1: required map.
	requiredChildren := map[string][]string{}
	var requiredOnly []Field
	for _, v := range violationDescs {
		m := missingFieldRe.FindStringSubmatch(v.description)
		if m == nil {
			continue
		}
		name := m[1]
		parent := m[2]
		if parent == "" {
			parent = v.field
		}
		requiredChildren[parent] = append(requiredChildren[parent], name)
		requiredOnly = append(requiredOnly, Field{Name: name, Required: true})
	}

	// Pass 2: field descriptions.
	var fields []Field
	seen := map[string]bool{}
	for _, v := range violationDescs {
		m := invalidValueRe.FindStringSubmatch(v.description)
		if m == nil {
			continue
		}
		path := v.field
		if path == "" {
			path = m[1]
		}
		segs := strings.Split(path, ".")
		name := segs[len(segs)-1]
		repeated := strings.HasSuffix(name, "]")
		name = strings.TrimSuffix(strings.TrimSuffix(name, "]"), "[")

		field := Field{Path: path, Name: name, Repeated: repeated}
		if n, err := strconv.Atoi(m[3]); err == nil {
			field.Number = n
			field.HasNumber = true
		}
		assignType(&field, m[2], v.description)

		parent := parentPath(path)
		if _, ok := requiredChildren[path]; ok {
			field.Required = true
		}
		if containsString(requiredChildren[parent], name) {
			field.Required = true
		}

		if !seen[path] {
			seen[path] = true
			fields = append(fields, field)
		}
	}

	for _, f := range requiredOnly {
		if !seen[f.Name] {
			seen[f.Name] = true
			fields = append(fields, f)
		}
	}

	result.Fields = fields
	return result, true
}

type violationDesc struct {
	field       string
	description string
}

// assignType implements the type/message/enum disambiguation of
// spec §4.3's pass 2.
func assignType(field *Field, typeStr string, description string) {
	if t, ok := scalar.FromProtoTypeString(typeStr); ok {
		field.Type = t
		return
	}
	if strings.HasPrefix(typeStr, "type.googleapis.com/") {
		fullName := strings.TrimPrefix(typeStr, "type.googleapis.com/")
		field.Type = scalar.Message
		field.MessageType = fullName
		if fullName == anyTypeFullName {
			field.Children = []Field{
				{Name: "type_url", Number: 1, HasNumber: true, Type: scalar.String},
				{Name: "data", Number: 2, HasNumber: true, Type: scalar.Bytes},
			}
		}
		return
	}
	for _, indicator := range enumIndicators {
		if strings.Contains(strings.ToLower(description), strings.ToLower(indicator)) {
			field.Type = scalar.Enum
			return
		}
	}
}

func parentPath(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func stringField(d detail, key, containerKey string) string {
	if v := jsonutil.String(d, key); v != "" {
		return v
	}
	if container, _, ok := jsonutil.UnpackMap(d[containerKey]); ok {
		return jsonutil.String(container, key)
	}
	return ""
}

// wwwAuthenticateScopeRe extracts the quoted scope list from a
// WWW-Authenticate header value, e.g. `Bearer realm="...", scope="a b"`.
var wwwAuthenticateScopeRe = regexp.MustCompile(`scope="([^"]*)"`)

// ExtractScopes pulls the OAuth scopes named in a 403 response's
// WWW-Authenticate header (spec §4.3).
func ExtractScopes(wwwAuthenticate string) []string {
	m := wwwAuthenticateScopeRe.FindStringSubmatch(wwwAuthenticate)
	if m == nil {
		return nil
	}
	return strings.Fields(m[1])
}
